package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/BrandonDHaskell/campusgate/internal/auth"
	"github.com/BrandonDHaskell/campusgate/internal/campus/service"
)

type Dependencies struct {
	Logger         zerolog.Logger
	Addr           string
	UserService    *service.UserService
	AccessService  *service.AccessService
	HistoryService *service.HistoryService

	// Tokens signs login tokens. With EnforceAuth, station routes require a
	// staff or admin token and history requires any valid token.
	Tokens      *auth.Issuer
	EnforceAuth bool

	// Ready, when set, backs /healthz.
	Ready func(ctx context.Context) error
}

type Server struct {
	httpServer     *http.Server
	logger         zerolog.Logger
	router         *chi.Mux
	userService    *service.UserService
	accessService  *service.AccessService
	historyService *service.HistoryService
	tokens         *auth.Issuer
	enforceAuth    bool
	ready          func(ctx context.Context) error
}

func NewServer(d Dependencies) *Server {
	s := &Server{
		logger:         d.Logger,
		router:         chi.NewRouter(),
		userService:    d.UserService,
		accessService:  d.AccessService,
		historyService: d.HistoryService,
		tokens:         d.Tokens,
		enforceAuth:    d.EnforceAuth,
		ready:          d.Ready,
	}

	r := s.router
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		requestLogger(d.Logger),
		middleware.Recoverer,
		middleware.Timeout(30*time.Second),
	)

	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/registro", s.handleRegister)
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Get("/accesslogs", s.handleHistory)

			r.Group(func(r chi.Router) {
				r.Use(s.requireStationRole)
				r.Post("/accesslogs/record", s.handleRecordAccess)
				r.Get("/users/bycode/", s.handleMissingUserCode)
				r.Get("/users/bycode/{user_code}", s.handleUserByCode)
			})
		})
	})

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			s.logger.Warn().Err(err).Msg("readiness check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
