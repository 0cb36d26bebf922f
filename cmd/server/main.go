// LegalLink Assist - Multi-turn Legal Assistance Chatbot Server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/legallink/assist/internal/agent"
	"github.com/legallink/assist/internal/api"
	"github.com/legallink/assist/internal/chat"
	"github.com/legallink/assist/internal/config"
	"github.com/legallink/assist/internal/identity"
	"github.com/legallink/assist/internal/inference"
	"github.com/legallink/assist/internal/rag"
	"github.com/legallink/assist/internal/retrieval"
	"github.com/legallink/assist/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize the session store: Redis when configured, SQLite otherwise,
	// always wrapped so a backend outage degrades to in-memory sessions.
	var backend store.SessionStore
	if cfg.RedisURL != "" {
		backend, err = store.NewRedis(cfg.RedisURL, cfg.SessionTTL)
		if err != nil {
			slog.Error("Failed to initialize Redis store", "error", err)
			os.Exit(1)
		}
		slog.Info("Redis session store connected")
	} else {
		backend, err = store.NewSQLite(cfg.DBPath)
		if err != nil {
			slog.Error("Failed to initialize database", "error", err)
			os.Exit(1)
		}
		slog.Info("SQLite session store connected", "path", cfg.DBPath)
	}
	sessions := store.NewResilient(backend)
	defer func() {
		if closeErr := sessions.Close(); closeErr != nil {
			slog.Error("Failed to close session store", "error", closeErr)
		}
	}()

	// Initialize inference clients: the legal model for reasoning, the
	// language model for simplification.
	legalModel := inference.NewOllama(inference.Config{
		Endpoint:    cfg.Inference.LegalEndpoint,
		Model:       cfg.Inference.LegalModel,
		Temperature: cfg.Inference.Temperature,
		MaxTokens:   cfg.Inference.MaxTokens,
		Timeout:     cfg.Inference.Timeout,
	})
	languageModel := inference.NewOllama(inference.Config{
		Endpoint:    cfg.Inference.LanguageEndpoint,
		Model:       cfg.Inference.LanguageModel,
		Temperature: cfg.Inference.Temperature,
		MaxTokens:   cfg.Inference.MaxTokens,
		Timeout:     cfg.Inference.Timeout,
	})

	readyCtx, readyCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := legalModel.Ready(readyCtx); err != nil {
		slog.Warn("Legal model not ready, RAG answers may fail until it comes up", "error", err)
	}
	readyCancel()

	// Retrieval backends.
	vector := retrieval.NewVector(cfg.Retrieval.VectorSearchURL, cfg.Retrieval.Timeout)
	caseLaw := retrieval.NewKanoon(cfg.Retrieval.CaseLawURL, cfg.Retrieval.CaseLawAPIKey, cfg.Retrieval.Timeout)

	engine := rag.NewEngine(legalModel, languageModel, vector, caseLaw,
		cfg.Retrieval.VectorTopK, cfg.Retrieval.CaseLawLimit)
	gate := rag.NewQualityGate()

	// Agent graph and orchestrator.
	classifier := agent.NewKeywordClassifier()
	graph := agent.NewGraph(classifier, cfg.MaxGraphLoops)
	orchestrator := agent.NewOrchestrator(sessions, engine, gate, graph, classifier,
		cfg.MaxMessageLength, cfg.Retrieval.Timeout+cfg.Inference.Timeout)

	// Transport.
	connections := chat.NewConnectionManager()
	wsHandler := chat.NewWebSocketHandler(orchestrator, connections, cfg.FrontendURL, cfg.IsDevelopment())
	apiHandler := api.NewHandler(orchestrator, sessions, legalModel)

	// Setup router.
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))
	r.Use(identity.Middleware(cfg.IsDevelopment()))

	apiHandler.RegisterRoutes(r)
	r.Get("/ws/chat", wsHandler.ServeHTTP)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // model calls can be slow; turns are bounded by their own timeouts
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Session TTL janitor.
	go func() {
		ticker := time.NewTicker(cfg.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := sessions.CleanupExpired(ctx, cfg.SessionTTL)
				if err != nil {
					slog.Warn("Session cleanup failed", "error", err)
					continue
				}
				if removed > 0 {
					slog.Info("Expired sessions removed", "count", removed)
				}
			}
		}
	}()
	slog.Info("Session janitor started", "ttl", cfg.SessionTTL, "interval", cfg.CleanupInterval)

	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
