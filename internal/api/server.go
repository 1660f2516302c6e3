// Package api serves the dashboard's HTTP surface: campaign listings,
// day-cached predictions, ad-hoc what-if projections, and a portfolio
// rollup. Handlers read through the configured campaign source and cache
// full prediction models in the snapshot store, one per campaign per
// calendar day.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/donorpulse/internal/source"
	"github.com/sells-group/donorpulse/internal/store"
)

// defaultConcurrency bounds how many portfolio predictions run at once.
const defaultConcurrency = 4

// Server wires the campaign source, the snapshot store, and the forecast
// engine behind an HTTP handler.
type Server struct {
	source      source.Source
	store       store.Store
	corsOrigins []string
	concurrency int
	now         func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithCORSOrigins sets the origins allowed to call the API.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// WithConcurrency bounds the number of concurrent portfolio predictions.
func WithConcurrency(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithClock overrides the evaluation clock, used by tests to pin the
// day bucket.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// New builds a Server over the given source and store.
func New(src source.Source, st store.Store, opts ...Option) *Server {
	s := &Server{
		source:      src,
		store:       st,
		corsOrigins: []string{"*"},
		concurrency: defaultConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/campaigns", s.handleListCampaigns)
		r.Get("/campaigns/{campaignID}/prediction", s.handlePrediction)
		r.Post("/campaigns/{campaignID}/whatif", s.handleWhatIf)
		r.Get("/portfolio", s.handlePortfolio)
	})

	return r
}

// requestLogger emits one structured log line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
