package idempotency

import (
	"bytes"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/tiemmay/api/internal/platform/httpx"
	"github.com/tiemmay/api/internal/platform/requestctx"
)

const keyHeader = "Idempotency-Key"

// Middleware replays recorded responses for repeated Idempotency-Key
// values and rejects concurrent duplicates. Requests without the header
// pass through untouched.
func Middleware(store Store, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(keyHeader)
			if key == "" || store == nil {
				next.ServeHTTP(w, r)
				return
			}

			rec, err := store.Reserve(r.Context(), key, ttl)
			if err != nil {
				requestctx.Logger(r.Context()).Warn("idempotency reserve failed", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			switch rec.State {
			case StateCompleted:
				replay(w, rec.Response)
				return
			case StateInFlight:
				httpx.WriteError(w, r, http.StatusConflict, "duplicate_request", "request with this idempotency key is still in progress")
				return
			}

			capture := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(capture, r)

			if capture.status >= http.StatusInternalServerError {
				if err := store.Release(r.Context(), key); err != nil {
					requestctx.Logger(r.Context()).Warn("idempotency release failed", zap.Error(err))
				}
				return
			}

			resp := Response{
				Status: capture.status,
				Header: map[string]string{"Content-Type": capture.Header().Get("Content-Type")},
				Body:   capture.body.Bytes(),
			}
			if err := store.SaveResponse(r.Context(), key, resp); err != nil {
				requestctx.Logger(r.Context()).Warn("idempotency save failed", zap.Error(err))
			}
		})
	}
}

func replay(w http.ResponseWriter, resp *Response) {
	if resp == nil {
		w.WriteHeader(http.StatusConflict)
		return
	}
	for k, v := range resp.Header {
		if v != "" {
			w.Header().Set(k, v)
		}
	}
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}

type captureWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (c *captureWriter) WriteHeader(status int) {
	if !c.wroteHeader {
		c.status = status
		c.wroteHeader = true
	}
	c.ResponseWriter.WriteHeader(status)
}

func (c *captureWriter) Write(b []byte) (int, error) {
	if !c.wroteHeader {
		c.wroteHeader = true
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}
