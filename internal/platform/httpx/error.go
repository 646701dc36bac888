package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/tiemmay/api/internal/platform/requestctx"
)

// Error is the JSON envelope returned for every non-2xx response.
type Error struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	TraceID   string `json:"trace_id,omitempty"`
}

// WriteError renders the error envelope with request correlation fields.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	payload := Error{
		Code:      code,
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
		TraceID:   requestctx.TraceID(r.Context()),
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		requestctx.Logger(r.Context()).Warn("write error response", zap.Error(err))
	}
}
