package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5"

	"github.com/helloivanco/fanrc/pkg/httputil"
)

// requestScope collects facts learned deeper in the chain that the outer
// middleware reports once the handler returns or panics.
type requestScope struct {
	sessionID string
}

const requestScopeKey contextKeyType = "request_scope"

func withRequestScope(r *http.Request) (*http.Request, *requestScope) {
	if s := scopeFromContext(r.Context()); s != nil {
		return r, s
	}
	s := &requestScope{}
	return r.WithContext(context.WithValue(r.Context(), requestScopeKey, s)), s
}

func scopeFromContext(ctx context.Context) *requestScope {
	s, _ := ctx.Value(requestScopeKey).(*requestScope)
	return s
}

// startedWriter records whether the response has begun.
type startedWriter struct {
	http.ResponseWriter
	started bool
}

func (w *startedWriter) WriteHeader(code int) {
	w.started = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *startedWriter) Write(b []byte) (int, error) {
	w.started = true
	return w.ResponseWriter.Write(b)
}

func (w *startedWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		w.started = true
		f.Flush()
	}
}

func (w *startedWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Recovery turns a handler panic into a 500 in the API error envelope. When
// the response has already started, as on an open wishlist stream, nothing
// more is written and the connection is left to close.
func Recovery(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r, scope := withRequestScope(r)
			sw := &startedWriter{ResponseWriter: w}

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				correlationID := w.Header().Get(CorrelationIDHeader)
				route := ""
				if rc := chi.RouteContext(r.Context()); rc != nil {
					route = rc.RoutePattern()
				}
				l.ErrorContext(r.Context(), "panic recovered",
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("route", route),
					slog.String("session_id", scope.sessionID),
					slog.String("correlation_id", correlationID),
					slog.Bool("response_started", sw.started),
				)

				if sw.started {
					return
				}
				httputil.WriteJSON(w, http.StatusInternalServerError, httputil.Response{
					Error: &httputil.ErrorResponse{
						Code:      "INTERNAL_ERROR",
						Message:   "an internal error occurred",
						RequestID: correlationID,
					},
				})
			}()

			next.ServeHTTP(sw, r)
		})
	}
}
