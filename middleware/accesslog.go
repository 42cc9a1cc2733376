package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// AccessLog writes one structured log line per request.
func AccessLog(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Info(r.URL.Path,
				zap.String("method", r.Method),
				zap.Int("status", ww.Status()),
				zap.Duration("time-cost", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user-agent", r.UserAgent()),
			)
		})
	}
}
