package api

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries the request id in and out of the HTTP adapter.
const RequestIDHeader = "X-Request-ID"

// HTTPHandler adapts the Router to net/http. The raw request target is used
// as the path, so a query string makes a known route unmatched. Bodies over
// maxBody bytes are rejected with 400 before routing.
func HTTPHandler(rt *Router, log *slog.Logger, maxBody int64) http.Handler {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
		if err != nil {
			log.Warn("reading request body", "path", r.URL.Path, "request_id", RequestID(r.Context()), "error", err)
			writeResponse(w, statusResponse(400))
			return
		}

		resp := rt.Route(r.Context(), Request{
			Method: r.Method,
			Path:   r.RequestURI,
			Body:   body,
		})
		writeResponse(w, resp)
	})
	return withRequestID(withAccessLog(h, log))
}

func writeResponse(w http.ResponseWriter, resp Response) {
	for _, h := range resp.Headers {
		w.Header().Set(h.Name, h.Value)
	}
	w.WriteHeader(resp.StatusCode)
	if len(resp.Body) > 0 {
		_, _ = w.Write(resp.Body)
	}
}

// withRequestID takes the caller's X-Request-ID or generates one, echoes it
// on the response and stores it in the request context.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func withAccessLog(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info("http request",
			"method", r.Method,
			"path", r.RequestURI,
			"status", rec.status,
			"duration", time.Since(start),
			"request_id", RequestID(r.Context()),
		)
	})
}
