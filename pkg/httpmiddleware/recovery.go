package httpmiddleware

import (
	"net/http"

	"go.uber.org/zap"
)

// Recovery turns a handler panic into a logged 500 JSON response. Panics
// with http.ErrAbortHandler are re-raised so net/http can abort the
// connection.
//
// Recovery runs outside InjectLogger, so it logs through lg and tags the
// entry with the request id already echoed on the response.
func Recovery(lg *zap.Logger) Middleware {
	if lg == nil {
		lg = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler { //nolint:errorlint // sentinel panic value
					panic(rec)
				}
				fields := []zap.Field{
					zap.Any("panic", rec),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Stack("stack"),
				}
				if id := w.Header().Get(HeaderRequestID); id != "" {
					fields = append(fields, zap.String("request_id", id))
				}
				lg.Error("Panic recovered", fields...)
				w.Header().Set("Connection", "close")
				writeError(w, http.StatusInternalServerError, "internal server error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
