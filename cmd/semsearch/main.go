package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/HeetShah3114/21BCE2938-ML/internal/config"
	dbRedis "github.com/HeetShah3114/21BCE2938-ML/internal/db/redis"
	"github.com/HeetShah3114/21BCE2938-ML/internal/domain"
	logpkg "github.com/HeetShah3114/21BCE2938-ML/internal/logger"
	"github.com/HeetShah3114/21BCE2938-ML/internal/metrics"
	"github.com/HeetShah3114/21BCE2938-ML/internal/ratelimit"
	cacherepo "github.com/HeetShah3114/21BCE2938-ML/internal/repository/cache"
	documentrepo "github.com/HeetShah3114/21BCE2938-ML/internal/repository/document"
	"github.com/HeetShah3114/21BCE2938-ML/internal/repository/embcache"
	searchrepo "github.com/HeetShah3114/21BCE2938-ML/internal/repository/search"
	chiTransport "github.com/HeetShah3114/21BCE2938-ML/internal/transport/chi"
	openaiEmb "github.com/HeetShah3114/21BCE2938-ML/internal/transport/openai"
	indexeruc "github.com/HeetShah3114/21BCE2938-ML/internal/usecase/indexer"
	searchuc "github.com/HeetShah3114/21BCE2938-ML/internal/usecase/search"
	"github.com/HeetShah3114/21BCE2938-ML/internal/version"
)

// sampleDocuments is the fixed document set indexed at startup.
var sampleDocuments = []string{
	"Artificial Intelligence is the simulation of human intelligence in machines.",
	"Machine Learning is a subset of AI.",
	"AI is transforming industries like healthcare and finance.",
	"Natural Language Processing is a branch of AI that focuses on the interaction between computers and humans.",
	"Data science is an interdisciplinary field that uses various techniques to extract knowledge from data.",
}

func main() {
	// Optional .env for local runs (OPENAI_API_KEY etc.)
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting semantic search API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register non-init() metrics explicitly
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	// Embedder chain: OpenAI provider -> Redis-backed cache
	var embedder domain.Embedder = openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})
	embedder = embcache.New(embedder, store, metrics.EmbeddingCacheTotal, logger)
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	// Bootstrap: index schema + sample documents. The same embedder instance
	// serves indexing and querying, keeping the embedding spaces consistent.
	docRepo := documentrepo.New(store, cfg.Index.Name, cfg.Embedding.Dimensions)
	indexer := indexeruc.New(docRepo, embedder, cfg.Index.SeedWorkers, logger)
	if err := indexer.Seed(ctx, sampleDocuments); err != nil {
		logger.Fatal("Failed to seed documents", zap.Error(err))
	}

	// Request pipeline dependencies, constructed once and injected.
	limiter := ratelimit.New(cfg.RateLimit.MaxRequests)
	responseCache := cacherepo.New(store, metrics.SearchCacheTotal, logger)
	searchRepo := searchrepo.New(store, cfg.Index.Name)
	searchSvc := searchuc.New(
		limiter, responseCache, embedder, searchRepo,
		time.Duration(cfg.Cache.TTLSec)*time.Second,
	)

	server := chiTransport.NewServer(searchSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"error": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
