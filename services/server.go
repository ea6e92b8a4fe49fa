package services

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"

	"github.com/leocezardev/pifc/repository"
	ws "github.com/leocezardev/pifc/websocket"
)

// Server holds all server dependencies
type Server struct {
	config *Config
	store  repository.Store
	rawDB  *gorm.DB

	reasoning Reasoning
	locks     *KeyedMutex
	wsHub     *ws.Hub

	analysisService *AnalysisService
	chatService     *ChatService
	janitor         *Janitor

	authService       *AuthService
	authEndpoints     *AuthEndpoints
	contractEndpoints *ContractEndpoints
	sessionEndpoints  *SessionEndpoints
}

// NewServer creates a new server instance. rawDB is nil when the store is
// not backed by a relational database.
func NewServer(config *Config, store repository.Store, rawDB *gorm.DB) *Server {
	return &Server{
		config: config,
		store:  store,
		rawDB:  rawDB,
	}
}

// InitializeServices wires up all workflow services
func (s *Server) InitializeServices() {
	s.reasoning = NewGeminiReasoning(s.config.AI)
	s.locks = NewKeyedMutex()

	s.wsHub = ws.NewHub()
	go s.wsHub.Run()

	s.analysisService = NewAnalysisService(s.store, s.reasoning, s.locks)
	s.chatService = NewChatService(s.store, s.reasoning, s.locks, s.wsHub)
	s.janitor = NewJanitor(s.store, s.config.AI.Timeout())

	s.authService = NewAuthService(s.store, s.config.Auth.JWTSecret)
	s.authEndpoints = NewAuthEndpoints(s.authService)

	s.contractEndpoints = NewContractEndpoints(s.store, s.analysisService, s.config.Upload.MaxFileSize)
	s.sessionEndpoints = NewSessionEndpoints(s.store, s.chatService, s.wsHub, s.config.WebSocket.AllowedOrigins)

	if s.authService.Enabled() {
		slog.Info("Authentication enabled")
	} else {
		slog.Warn("JWT secret not configured, API is running open")
	}
}

// SetupRoutes configures all HTTP routes
func (s *Server) SetupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.healthHandler)

	r.Route("/api", func(r chi.Router) {
		s.authEndpoints.RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(s.authService.Middleware)
			s.contractEndpoints.RegisterRoutes(r)
			s.sessionEndpoints.RegisterRoutes(r)
		})
	})

	return r
}

// Start starts the HTTP server and blocks until shutdown
func (s *Server) Start() {
	port := s.config.Server.Port
	if port == "" {
		port = "8080"
	}

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	go s.janitor.Start(janitorCtx)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: s.SetupRoutes(),
	}

	go func() {
		slog.Info("Starting server", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	stopJanitor()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exited")
}

// CheckOrigin validates the origin of WebSocket connections to prevent CSRF attacks
func CheckOrigin(r *http.Request, allowedOriginsStr string) bool {
	origin := r.Header.Get("Origin")

	// If no allowed origins are configured, deny all requests for security
	if allowedOriginsStr == "" {
		slog.Warn("WebSocket connection rejected: no allowed origins configured", "origin", origin)
		return false
	}

	allowedOrigins := strings.Split(allowedOriginsStr, ",")
	for i := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(allowedOrigins[i])
	}

	for _, allowed := range allowedOrigins {
		if allowed == origin {
			return true
		}
	}

	slog.Warn("WebSocket connection rejected: origin not allowed", "origin", origin, "allowed_origins", allowedOriginsStr)
	return false
}

// MakeOriginChecker adapts CheckOrigin to the websocket.Upgrader signature.
func MakeOriginChecker(allowedOrigins string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		return CheckOrigin(r, allowedOrigins)
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	dbStatus := "in-memory"

	if s.rawDB != nil {
		dbStatus = "up"
		if sqlDB, err := s.rawDB.DB(); err != nil {
			dbStatus = "down"
			status = "degraded"
		} else if err := sqlDB.Ping(); err != nil {
			dbStatus = "down"
			status = "degraded"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"` + status + `","database":"` + dbStatus + `"}`))
}
