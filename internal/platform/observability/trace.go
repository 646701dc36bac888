package observability

import (
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/tiemmay/api/internal/platform/requestctx"
)

const cloudTraceHeader = "X-Cloud-Trace-Context"

// TraceMiddleware parses the Cloud Trace header and stores both an
// OpenTelemetry span context and the trace metadata on the request context.
func TraceMiddleware(projectID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(cloudTraceHeader)
			info, ok := parseCloudTraceHeader(header)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			info.ProjectID = projectID

			ctx := requestctx.WithTrace(r.Context(), info)
			if sc, err := spanContextFromTrace(info); err == nil {
				ctx = trace.ContextWithRemoteSpanContext(ctx, sc)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// parseCloudTraceHeader understands the "TRACE_ID/SPAN_ID;o=1" format.
func parseCloudTraceHeader(header string) (requestctx.TraceInfo, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return requestctx.TraceInfo{}, false
	}

	var info requestctx.TraceInfo
	rest := header
	if idx := strings.IndexByte(rest, ';'); idx >= 0 {
		opts := rest[idx+1:]
		rest = rest[:idx]
		for _, part := range strings.Split(opts, ";") {
			if strings.TrimSpace(part) == "o=1" {
				info.Sampled = true
			}
		}
	}
	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		info.SpanID = strings.TrimSpace(rest[idx+1:])
		rest = rest[:idx]
	}
	info.TraceID = strings.TrimSpace(rest)
	if info.TraceID == "" {
		return requestctx.TraceInfo{}, false
	}
	return info, true
}

func spanContextFromTrace(info requestctx.TraceInfo) (trace.SpanContext, error) {
	traceID, err := trace.TraceIDFromHex(info.TraceID)
	if err != nil {
		return trace.SpanContext{}, err
	}
	cfg := trace.SpanContextConfig{TraceID: traceID, Remote: true}
	if info.Sampled {
		cfg.TraceFlags = trace.FlagsSampled
	}
	if spanID, err := spanIDFromCloudTrace(info.SpanID); err == nil {
		cfg.SpanID = spanID
	}
	return trace.NewSpanContext(cfg), nil
}

// spanIDFromCloudTrace accepts the decimal span id Cloud Trace sends and
// converts it to the 8-byte hex form OpenTelemetry expects.
func spanIDFromCloudTrace(raw string) (trace.SpanID, error) {
	if id, err := trace.SpanIDFromHex(raw); err == nil {
		return id, nil
	}
	decimal, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return trace.SpanID{}, err
	}
	var id trace.SpanID
	for i := 7; i >= 0; i-- {
		id[i] = byte(decimal)
		decimal >>= 8
	}
	return id, nil
}
