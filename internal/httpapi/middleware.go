package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/BrandonDHaskell/campusgate/internal/auth"
	"github.com/BrandonDHaskell/campusgate/internal/metrics"
)

// requestLogger logs one line per request and feeds the latency histogram.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			dur := time.Since(start)
			metrics.HTTPRequestDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(dur.Seconds())

			logger.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Str("from", r.RemoteAddr).
				Dur("dur", dur).
				Msg("http request")
		})
	}
}

// authenticate attaches the caller's principal. With enforcement off a bad
// or missing token is ignored.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.BearerToken(r)
		if err == nil && s.tokens != nil {
			var p auth.Principal
			if p, err = s.tokens.Parse(token); err == nil {
				r = r.WithContext(auth.WithPrincipal(r.Context(), p))
			}
		}
		if err != nil && s.enforceAuth {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireStationRole admits staff and admins when enforcement is on.
func (s *Server) requireStationRole(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.enforceAuth {
			p, ok := auth.FromContext(r.Context())
			if !ok || !p.Role.CanOperateStation() {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
