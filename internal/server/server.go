package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/seo-writer/internal/generation"
	"github.com/jonathan/seo-writer/internal/server/middleware"
	"github.com/jonathan/seo-writer/internal/server/ratelimit"
	"github.com/jonathan/seo-writer/internal/status"
	"github.com/jonathan/seo-writer/internal/types"
)

// DefaultStreamInterval is how often the status stream checks for changes
const DefaultStreamInterval = 500 * time.Millisecond

// Service is the generation surface the API exposes
type Service interface {
	Generate(ctx context.Context, keyword string) (*generation.Result, error)
	Regenerate(ctx context.Context, req generation.RegenerateRequest) (*generation.Result, error)
	Load(ctx context.Context, sessionID string) (*generation.Result, error)
	History(ctx context.Context) ([]types.KeywordHistory, error)
}

// StatusSource reports the global generation status and a change counter
type StatusSource interface {
	Snapshot() status.Status
	Version() uint64
}

// Server represents the HTTP server
type Server struct {
	httpServer     *http.Server
	service        Service
	status         StatusSource
	rateLimiter    *ratelimit.Limiter
	validator      *validator.Validate
	streamInterval time.Duration
	onShutdown     func()
}

// Config holds server configuration
type Config struct {
	Port      int
	Service   Service
	Status    StatusSource
	RateLimit *ratelimit.Config // nil loads RATE_LIMIT_* from the environment
	// OnShutdown runs after the HTTP server stopped, e.g. to close the store
	OnShutdown func()
	// StreamInterval overrides DefaultStreamInterval
	StreamInterval time.Duration
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Service == nil {
		return nil, fmt.Errorf("server requires a generation service")
	}
	if cfg.Status == nil {
		return nil, fmt.Errorf("server requires a status source")
	}

	rlConfig := cfg.RateLimit
	if rlConfig == nil {
		rlConfig = ratelimit.LoadConfig()
	}

	s := &Server{
		service:        cfg.Service,
		status:         cfg.Status,
		rateLimiter:    ratelimit.NewLimiter(rlConfig),
		validator:      validator.New(),
		streamInterval: cfg.StreamInterval,
		onShutdown:     cfg.OnShutdown,
	}
	if s.streamInterval <= 0 {
		s.streamInterval = DefaultStreamInterval
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for generation runs
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the routed handler wrapped in middleware
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/status/stream", s.handleStatusStream)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)

	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/regenerate", s.handleRegenerate)

	return s.withRateLimit(middleware.Logging(middleware.CORS(mux)))
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-stop:
	case err := <-errCh:
		s.cleanup()
		return fmt.Errorf("server error: %w", err)
	}
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.cleanup()
	log.Println("Server stopped")
	return nil
}

func (s *Server) cleanup() {
	if s.onShutdown != nil {
		s.onShutdown()
	}
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		decision := s.rateLimiter.Allow(clientID, r.Method, r.URL.Path)
		s.setRateLimitHeaders(w, decision)
		if !decision.Allowed {
			s.rateLimitResponse(w, decision)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// errorFromErr writes err with the status HTTPStatus assigns to it
func (s *Server) errorFromErr(w http.ResponseWriter, err error) {
	code := HTTPStatus(err)
	if code >= http.StatusInternalServerError {
		log.Printf("Request failed: %v", err)
	}
	s.errorResponse(w, code, err.Error())
}

// extractClientID extracts the client identifier from the request.
// Uses the IP address from RemoteAddr; X-Forwarded-For is not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Decision) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Decision) {
	response := map[string]any{
		"error":     "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		seconds := max(int(info.RetryAfter.Seconds()), 1)
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d", info.Limit, info.Remaining)

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
