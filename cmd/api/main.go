// Package main is the entry point for the booking conversation API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bookline-ai/booking-engine/internal/config"
	"github.com/bookline-ai/booking-engine/internal/handler"
	"github.com/bookline-ai/booking-engine/internal/llm"
	"github.com/bookline-ai/booking-engine/internal/middleware"
	natsclient "github.com/bookline-ai/booking-engine/internal/nats"
	"github.com/bookline-ai/booking-engine/internal/service"
	"github.com/bookline-ai/booking-engine/pkg/logger"
	"github.com/bookline-ai/booking-engine/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting booking conversation API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "booking-engine", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Connect to NATS
	natsConn, err := natsclient.Connect(ctx, natsclient.Config{
		URL:      cfg.NATSURL,
		CAFile:   cfg.NATSCAFile,
		CertFile: cfg.NATSCertFile,
		KeyFile:  cfg.NATSKeyFile,
		Token:    cfg.NATSToken,
	}, log)
	if err != nil {
		log.Error("failed to connect to NATS", zap.Error(err))
		os.Exit(1)
	}
	defer natsConn.Close()

	// Ensure the conversation log exists
	streamManager := natsclient.NewStreamManager(natsConn)
	if err := streamManager.EnsureStream(ctx); err != nil {
		log.Error("failed to ensure stream", zap.Error(err))
		os.Exit(1)
	}

	// Initialize the model gateway. A missing key is not fatal: sessions
	// then answer through the fallback responder.
	var gateway llm.Client
	switch {
	case cfg.DefaultLLM == string(llm.ProviderOpenAI) && cfg.OpenAIAPIKey != "":
		gateway, err = llm.NewOpenAIClient(cfg.OpenAIAPIKey)
	case cfg.AnthropicAPIKey != "":
		gateway, err = llm.NewAnthropicClient(cfg.AnthropicAPIKey)
	case cfg.OpenAIAPIKey != "":
		gateway, err = llm.NewOpenAIClient(cfg.OpenAIAPIKey)
	}
	if err != nil {
		log.Warn("failed to create LLM client, running fallback-only", zap.Error(err))
		gateway = nil
	}
	if gateway == nil {
		log.Warn("no model gateway configured, sessions will use the fallback responder")
	}

	// Load agent catalog
	agents := service.NewAgentCatalog()
	agents.Register(service.DemoAgent())
	if cfg.AgentsFile != "" {
		if err := agents.LoadFile(cfg.AgentsFile); err != nil {
			log.Error("failed to load agents file", zap.Error(err))
			os.Exit(1)
		}
	}

	// Initialize services
	sessionSvc := service.NewSessionService(agents, streamManager, gateway, service.ModelSettings{
		Model:          cfg.LLMModel,
		Temperature:    cfg.LLMTemperature,
		MaxTokens:      cfg.LLMMaxTokens,
		GatewayTimeout: cfg.LLMTimeout,
	}, log)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(natsConn)
	sessionHandler := handler.NewSessionHandler(sessionSvc, log)
	messageHandler := handler.NewMessageHandler(sessionSvc, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link", "X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes with authentication
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.Start)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", sessionHandler.Get)
				r.Post("/reset", sessionHandler.Reset)
				r.Delete("/", sessionHandler.Close)

				r.Get("/messages", messageHandler.List)
				r.Post("/messages", messageHandler.Send)
			})
		})
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
