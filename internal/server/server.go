package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/AlexTLDR/agencydesk/internal/config"
	"github.com/AlexTLDR/agencydesk/internal/database"
	"github.com/AlexTLDR/agencydesk/internal/duplicates"
	"github.com/AlexTLDR/agencydesk/internal/metrics"
	"github.com/AlexTLDR/agencydesk/internal/server/handlers"
	"github.com/AlexTLDR/agencydesk/internal/utils"
)

const (
	sessionName     = "auth-session"
	shutdownTimeout = 10 * time.Second
)

// Deps are the collaborators the server routes requests to
type Deps struct {
	Store    handlers.Store
	Checker  *duplicates.Checker
	Phones   *utils.PhoneNormalizer
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   zerolog.Logger
}

type Server struct {
	config       *config.Config
	deps         Deps
	sessionStore *sessions.CookieStore
	router       *http.ServeMux
}

// GetStore implements handlers.Server interface
func (s *Server) GetStore() handlers.Store {
	return s.deps.Store
}

// GetChecker implements handlers.Server interface
func (s *Server) GetChecker() *duplicates.Checker {
	return s.deps.Checker
}

// GetPhones implements handlers.Server interface
func (s *Server) GetPhones() *utils.PhoneNormalizer {
	return s.deps.Phones
}

// GetMetrics implements handlers.Server interface
func (s *Server) GetMetrics() *metrics.Metrics {
	return s.deps.Metrics
}

// GetLogger implements handlers.Server interface
func (s *Server) GetLogger() zerolog.Logger {
	return s.deps.Logger
}

// GetCurrentUser returns the signed-in admin, empty when there is none
func (s *Server) GetCurrentUser(r *http.Request) (string, string) {
	session, _ := s.sessionStore.Get(r, sessionName)
	email, _ := session.Values["email"].(string)
	name, _ := session.Values["name"].(string)
	return email, name
}

func New(cfg *config.Config, deps Deps) *Server {
	if deps.Phones == nil {
		deps.Phones = utils.NewPhoneNormalizer(cfg.PhoneOptions())
	}
	if deps.Checker == nil {
		var searcher duplicates.Searcher = deps.Store
		if db, ok := deps.Store.(*database.DB); ok {
			searcher = db.Candidates()
		}
		deps.Checker = duplicates.NewChecker(searcher,
			duplicates.WithThreshold(cfg.DuplicateThreshold),
			duplicates.WithPageSize(cfg.DuplicatePageSize),
			duplicates.WithLogger(deps.Logger),
			duplicates.WithMetrics(deps.Metrics),
		)
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	s := &Server{
		config:       cfg,
		deps:         deps,
		sessionStore: store,
		router:       http.NewServeMux(),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /healthz", s.handleHealth)
	s.router.Handle("GET /metrics", promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{}))

	// Auth routes
	s.router.HandleFunc("GET /auth/google", s.handleGoogleLogin)
	s.router.HandleFunc("GET /auth/google/callback", s.handleGoogleCallback)
	s.router.HandleFunc("GET /auth/logout", s.handleLogout)

	// API routes (protected)
	s.router.HandleFunc("GET /api/me", s.requireAuth(s.handleMe))
	s.router.HandleFunc("GET /api/customers", s.requireAuth(handlers.HandleListCustomers(s)))
	s.router.HandleFunc("POST /api/customers", s.requireAuth(handlers.HandleCreateCustomer(s)))
	s.router.HandleFunc("GET /api/customers/export.csv", s.requireAuth(handlers.HandleExportCSV(s)))
	s.router.HandleFunc("POST /api/customers/check-duplicates", s.requireAuth(handlers.HandleCheckDuplicates(s)))
	s.router.HandleFunc("GET /api/customers/{id}", s.requireAuth(handlers.HandleGetCustomer(s)))
	s.router.HandleFunc("PUT /api/customers/{id}", s.requireAuth(handlers.HandleUpdateCustomer(s)))
	s.router.HandleFunc("DELETE /api/customers/{id}", s.requireAuth(handlers.HandleDeleteCustomer(s)))
	s.router.HandleFunc("POST /api/phone/format", s.requireAuth(handlers.HandleFormatPhone(s)))
	s.router.HandleFunc("GET /api/phone/countries", s.requireAuth(handlers.HandleCountries(s)))
}

// Handler returns the router wrapped in request logging
func (s *Server) Handler() http.Handler {
	return requestLogger(s.deps.Logger, s.router)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.deps.Logger.Info().Str("addr", addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.deps.Logger.Info().Msg("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.deps.Store.(interface{ PingContext(context.Context) error }); ok {
		if err := p.PingContext(r.Context()); err != nil {
			s.deps.Logger.Error().Err(err).Msg("health check failed")
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	_, _ = w.Write([]byte("ok"))
}

// requireAuth is a middleware that checks if user is authenticated
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, _ := s.GetCurrentUser(r)
		if email == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		// Check if email is in whitelist
		if !s.isAdminEmail(email) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		next(w, r)
	}
}

func (s *Server) isAdminEmail(email string) bool {
	for _, adminEmail := range s.config.AdminEmails {
		if strings.EqualFold(email, adminEmail) {
			return true
		}
	}
	return false
}
