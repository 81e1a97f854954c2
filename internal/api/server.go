// Package api serves the read endpoints over the persisted validator
// yield documents. All derived figures (per-validator rollups, sort
// keys, pagination) are computed per request from the stored records.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourorg/tao-yield-api/internal/cache"
	"github.com/yourorg/tao-yield-api/internal/circuitbreaker"
	"github.com/yourorg/tao-yield-api/internal/model"
	"github.com/yourorg/tao-yield-api/internal/store"
)

// Version is reported by the health and status endpoints.
const Version = "1.0.0"

// validatorsCacheKey is the single key under which the full listing
// snapshot is cached.
const validatorsCacheKey = "validators"

// Options configures the API server.
type Options struct {
	// Port the HTTP server listens on.
	Port string

	// AdminKey guards the admin endpoints. Empty disables them.
	AdminKey string

	// CacheTTL bounds the staleness of the listing snapshot.
	CacheTTL time.Duration

	// RateLimitRPS and RateLimitBurst shape the global request budget.
	RateLimitRPS   float64
	RateLimitBurst int
}

// Server is the HTTP read API over the validator store.
type Server struct {
	opts    Options
	store   store.Store
	breaker *circuitbreaker.CircuitBreaker
	limiter *rate.Limiter
	docs    *cache.TTL[[]model.ValidatorDoc]

	server    *http.Server
	startTime time.Time
}

// NewServer wires the API server. breaker is read-only here: the
// status endpoint reports its state, nothing more.
func NewServer(opts Options, st store.Store, breaker *circuitbreaker.CircuitBreaker) *Server {
	if opts.Port == "" {
		opts.Port = "8080"
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.RateLimitRPS <= 0 {
		opts.RateLimitRPS = 10
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = 20
	}
	return &Server{
		opts:      opts,
		store:     st,
		breaker:   breaker,
		limiter:   rate.NewLimiter(rate.Limit(opts.RateLimitRPS), opts.RateLimitBurst),
		docs:      cache.New[[]model.ValidatorDoc](opts.CacheTTL),
		startTime: time.Now(),
	}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.corsMiddleware)
	r.Use(s.rateLimitMiddleware)
	r.Use(metricsMiddleware)

	r.HandleFunc("/api/validators", s.handleListValidators).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/api/validators/subnet/{subnet_id}", s.handleSubnetValidators).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/api/validators/{hotkey}", s.handleGetValidator).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/api/subnets", s.handleListSubnets).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/api/trpc/{procedures}", s.handleTRPC).Methods(http.MethodGet, http.MethodPost, http.MethodOptions)
	r.HandleFunc("/api/admin/update-subnet", s.handleUpdateSubnet).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}

// Start begins serving and blocks until the listener fails.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         ":" + s.opts.Port,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logrus.Infof("API server starting on port %s", s.opts.Port)
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// loadValidators serves the listing snapshot, hitting the store only
// when the cached copy has expired.
func (s *Server) loadValidators(ctx context.Context) ([]model.ValidatorDoc, error) {
	if docs, ok := s.docs.Get(validatorsCacheKey); ok {
		return docs, nil
	}
	docs, err := s.store.ListValidators(ctx)
	if err != nil {
		return nil, err
	}
	s.docs.Set(validatorsCacheKey, docs)
	return docs, nil
}
