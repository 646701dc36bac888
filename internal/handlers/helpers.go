package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tiemmay/api/internal/domain"
	"github.com/tiemmay/api/internal/platform/auth"
	platformfs "github.com/tiemmay/api/internal/platform/firestore"
	"github.com/tiemmay/api/internal/platform/httpx"
	"github.com/tiemmay/api/internal/platform/requestctx"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

var errBodyTooLarge = errors.New("request body too large")

func readJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errBodyTooLarge
		}
		return fmt.Errorf("read body: %w", err)
	}
	if len(data) == 0 {
		return fmt.Errorf("empty body")
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		requestctx.Logger(r.Context()).Warn("write response", zap.Error(err))
	}
}

// identityPhone resolves the caller's phone number, the key every
// customer-facing resource is scoped by.
func identityPhone(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		httpx.WriteError(w, r, http.StatusUnauthorized, "unauthorized", "authentication required")
		return auth.Identity{}, false
	}
	if identity.PhoneNumber == "" {
		httpx.WriteError(w, r, http.StatusForbidden, "phone_required", "account has no verified phone number")
		return auth.Identity{}, false
	}
	return identity, true
}

func isNotFound(err error) bool {
	return platformfs.IsNotFound(err)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// selectionsPayload is the wire shape of option selections: a string for
// single-choice variants, an array of strings for multi-choice ones.
type selectionsPayload map[string]any

func (p selectionsPayload) toDomain() (domain.SelectedOptions, error) {
	if len(p) == 0 {
		return nil, nil
	}
	selections := make(domain.SelectedOptions, len(p))
	for variantID, raw := range p {
		switch v := raw.(type) {
		case string:
			selections[variantID] = domain.SingleSelection(v)
		case []any:
			ids := make([]string, 0, len(v))
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("variant %s: option ids must be strings", variantID)
				}
				ids = append(ids, s)
			}
			selections[variantID] = domain.MultiSelection(ids...)
		default:
			return nil, fmt.Errorf("variant %s: expected string or string array", variantID)
		}
	}
	return selections, nil
}

func selectionsView(selections domain.SelectedOptions) map[string]any {
	if len(selections) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(selections))
	for variantID, sel := range selections {
		if sel.Kind == domain.VariantMultiple {
			out[variantID] = sel.OptionIDs()
			continue
		}
		out[variantID] = sel.Option
	}
	return out
}
