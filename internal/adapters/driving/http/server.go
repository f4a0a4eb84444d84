package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/sphinxsync/internal/core/ports/driven"
	"github.com/custodia-labs/sphinxsync/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	// Services
	authService     driving.AuthService
	coordinator     driving.IndexingCoordinator
	searchService   driving.SearchService
	schemaAdmin     driving.SchemaAdminService
	rotationService driving.RotationService

	// Infrastructure
	taskQueue   driven.TaskQueue
	db          Pinger // PostgreSQL health check
	redisClient Pinger // Redis health check (optional)
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	Version        string
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8080,
		Version:        "dev",
		AllowedOrigins: []string{"*"},
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	authService driving.AuthService,
	coordinator driving.IndexingCoordinator,
	searchService driving.SearchService,
	schemaAdmin driving.SchemaAdminService,
	rotationService driving.RotationService,
	taskQueue driven.TaskQueue,
	db Pinger,
	redisClient Pinger, // can be nil
) *Server {
	s := &Server{
		router:          http.NewServeMux(),
		version:         cfg.Version,
		authService:     authService,
		coordinator:     coordinator,
		searchService:   searchService,
		schemaAdmin:     schemaAdmin,
		rotationService: rotationService,
		taskQueue:       taskQueue,
		db:              db,
		redisClient:     redisClient,
	}

	// Middleware chain: recovery outermost, then CORS, then request logging.
	var handler http.Handler = s.router
	handler = NewLoggingMiddleware().Handler(handler)
	handler = NewCORSMiddleware(cfg.AllowedOrigins).Handler(handler)
	handler = NewRecoveryMiddleware().Handler(handler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Create middleware
	authMiddleware := NewAuthMiddleware(s.authService)

	// Health and metrics endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)
	s.router.Handle("GET /metrics", promhttp.Handler())

	// Auth endpoints (public)
	s.router.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	s.router.HandleFunc("POST /api/v1/auth/refresh", s.handleRefresh)

	// Auth endpoints (authenticated)
	s.router.Handle("POST /api/v1/auth/logout",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleLogout)))

	// Mutation event hook
	s.router.Handle("POST /api/v1/events",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleEvent)))

	// Search endpoints
	s.router.Handle("POST /api/v1/search",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleSearch)))
	s.router.Handle("POST /api/v1/excerpts",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleExcerpts)))

	// Bulk import mode
	s.router.Handle("POST /api/v1/bulk/enter",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleBulkEnter)))
	s.router.Handle("POST /api/v1/bulk/exit",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleBulkExit)))
	s.router.Handle("GET /api/v1/bulk",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleBulkStatus)))

	// Type registration endpoints
	s.router.Handle("GET /api/v1/types",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleListTypes)))
	s.router.Handle("POST /api/v1/types",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleRegisterType)))
	s.router.Handle("GET /api/v1/types/{name}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetType)))
	s.router.Handle("DELETE /api/v1/types/{name}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleDeregisterType)))

	// Configuration endpoints
	s.router.Handle("POST /api/v1/config/build",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleConfigBuild)))
	s.router.Handle("GET /api/v1/config/preview",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleConfigPreview)))

	// Rotation endpoints
	s.router.Handle("POST /api/v1/rotations/delta",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleRotateDeltas)))
	s.router.Handle("POST /api/v1/rotations/full",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleRebuildAll)))
	s.router.Handle("POST /api/v1/rotations/types/{name}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleRebuildType)))
	s.router.Handle("GET /api/v1/rotations",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleListRotations)))
	s.router.Handle("GET /api/v1/rotations/{index}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetRotation)))

	// Task inspection endpoints
	s.router.Handle("GET /api/v1/tasks",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleListTasks)))
	s.router.Handle("GET /api/v1/tasks/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetTask)))
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	// Channel to listen for OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-stop
	log.Println("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
