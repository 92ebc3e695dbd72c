// Package httpapi is the JSON-over-HTTP surface of the design service.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/brandforge/internal/design"
	"github.com/dmitrijs2005/brandforge/internal/diff"
	"github.com/dmitrijs2005/brandforge/internal/logging"
	"github.com/dmitrijs2005/brandforge/internal/server/export"
	"github.com/dmitrijs2005/brandforge/internal/server/models"
	"github.com/dmitrijs2005/brandforge/internal/server/services"
	"github.com/dmitrijs2005/brandforge/internal/tiers"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

type Designs interface {
	Generate(ctx context.Context, userID, brandDescription, tier string) (*services.GenerationResult, error)
	Refine(ctx context.Context, userID string, req services.RefineRequest) (*services.RefinementResult, error)
	Get(ctx context.Context, userID, id string) (*design.Artifact, error)
	History(ctx context.Context, userID, id string, limit int) ([]*design.Artifact, error)
	Versions(ctx context.Context, userID, id string) ([]*design.Artifact, error)
	Compare(ctx context.Context, userID, fromID, toID string) (diff.Comparison, error)
	Export(ctx context.Context, userID, id string) (*export.Result, error)
}

type Credits interface {
	Account(ctx context.Context, userID string) (*models.CreditAccount, error)
	Transactions(ctx context.Context, userID string, limit int) ([]models.CreditTransaction, error)
}

type Gate interface {
	Allow(key string) (bool, time.Time)
}

type Observer interface {
	ObserveRequest(route string, code int)
	IncRateLimited()
	Handler() http.Handler
}

type Server struct {
	designs   Designs
	credits   Credits
	catalog   *tiers.Catalog
	gate      Gate
	observer  Observer
	jwtSecret []byte
	maxBody   int64
	timeout   time.Duration
	validate  *validator.Validate
	logger    logging.Logger
}

type Option func(*Server)

func WithGate(g Gate) Option { return func(s *Server) { s.gate = g } }

func WithObserver(o Observer) Option { return func(s *Server) { s.observer = o } }

// WithMaxBody caps request bodies; larger bodies are rejected as invalid.
func WithMaxBody(n int64) Option { return func(s *Server) { s.maxBody = n } }

// WithRequestTimeout bounds a whole request; it should exceed the
// generation timeout.
func WithRequestTimeout(d time.Duration) Option { return func(s *Server) { s.timeout = d } }

func NewServer(designs Designs, credits Credits, catalog *tiers.Catalog, jwtSecret []byte, logger logging.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	s := &Server{
		designs:   designs,
		credits:   credits,
		catalog:   catalog,
		jwtSecret: jwtSecret,
		maxBody:   512 << 10,
		timeout:   90 * time.Second,
		validate:  newValidator(),
		logger:    logger.With("module", "http"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.observer != nil {
		r.Handle("/metrics", s.observer.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/tiers", s.handleTiers)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Use(s.rateLimit)

			r.Post("/generations", s.handleGenerate)
			r.Post("/refinements", s.handleRefine)
			r.Get("/credits", s.handleBalance)
			r.Get("/credits/transactions", s.handleTransactions)

			r.Route("/artifacts/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetArtifact)
				r.Get("/history", s.handleHistory)
				r.Get("/versions", s.handleVersions)
				r.Get("/compare/{otherID}", s.handleCompare)
				r.Post("/export", s.handleExport)
			})
		})
	})
	return r
}
