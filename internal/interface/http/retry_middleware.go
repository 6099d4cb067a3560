package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yanqian/skinscan/internal/infra/config"
	"github.com/yanqian/skinscan/pkg/metrics"
)

// replayBodyLimit caps what is buffered for a replay; chat messages are small.
const replayBodyLimit = 64 << 10

var errReplayBodyTooLarge = errors.New("request body too large to replay")

// withRetry replays POST requests on allow-listed routes after a 5xx.
// Routes that create patients, clinicians or detections are never listed by
// default: a failure there may follow a committed insert.
func withRetry(handler http.Handler, cfg config.RetryConfig, logger *slog.Logger) http.Handler {
	routes := replayRoutes(cfg.Routes)
	if !cfg.Enabled || cfg.MaxAttempts <= 1 || len(routes) == 0 {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := normalizeRoute(r.URL.Path)
		if _, ok := routes[route]; !ok || r.Method != http.MethodPost || isMultipart(r) {
			handler.ServeHTTP(w, r)
			return
		}
		body, err := bufferReplayBody(r)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, errReplayBodyTooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			http.Error(w, err.Error(), status)
			return
		}

		for attempt := 1; ; attempt++ {
			out := newBufferedResponse()
			handler.ServeHTTP(out, replayRequest(r, body))
			if out.status < http.StatusInternalServerError || attempt >= cfg.MaxAttempts {
				out.flushTo(w)
				return
			}
			logger.Warn("replaying chat request after server error", "path", route, "status", out.status, "attempt", attempt)
			metrics.HTTPRetries.WithLabelValues(route).Inc()
			if !waitBackoff(r.Context(), cfg.BaseBackoff, attempt) {
				out.flushTo(w)
				return
			}
		}
	})
}

func replayRoutes(paths []string) map[string]struct{} {
	routes := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if p = normalizeRoute(p); p != "/" {
			routes[p] = struct{}{}
		}
	}
	return routes
}

func normalizeRoute(p string) string {
	return "/" + strings.Trim(strings.TrimSpace(p), "/")
}

// isMultipart reports uploads, which are never buffered for replay.
func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/")
}

func bufferReplayBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, replayBodyLimit+1))
	if err != nil {
		return nil, err
	}
	if len(data) > replayBodyLimit {
		return nil, errReplayBodyTooLarge
	}
	return data, nil
}

func replayRequest(r *http.Request, body []byte) *http.Request {
	clone := r.Clone(r.Context())
	clone.Body = io.NopCloser(bytes.NewReader(body))
	clone.ContentLength = int64(len(body))
	return clone
}

// waitBackoff sleeps base*2^(attempt-1) and reports false if the client left.
func waitBackoff(ctx context.Context, base time.Duration, attempt int) bool {
	delay := base << (attempt - 1)
	if delay <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// bufferedResponse holds one attempt's response until it is known to be final.
type bufferedResponse struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newBufferedResponse() *bufferedResponse {
	return &bufferedResponse{header: make(http.Header)}
}

func (b *bufferedResponse) Header() http.Header { return b.header }

func (b *bufferedResponse) WriteHeader(status int) {
	if b.status == 0 {
		b.status = status
	}
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

func (b *bufferedResponse) Flush() {}

func (b *bufferedResponse) flushTo(w http.ResponseWriter) {
	dst := w.Header()
	for k, v := range b.header {
		dst[k] = append([]string(nil), v...)
	}
	if b.status == 0 {
		b.status = http.StatusOK
	}
	w.WriteHeader(b.status)
	_, _ = w.Write(b.body.Bytes())
}
