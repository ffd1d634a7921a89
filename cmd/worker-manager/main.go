// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"college-recommender/internal/common/camunda"
	"college-recommender/internal/common/config"
	"college-recommender/internal/common/database"
	"college-recommender/internal/common/logger"
	"college-recommender/internal/common/observability"
	"college-recommender/internal/common/validation"
	"college-recommender/internal/recommendation"
	"college-recommender/internal/store"
	"college-recommender/pkg/registry"

	ic "college-recommender/internal/workers/catalog/import-cutoffs"
	ixc "college-recommender/internal/workers/catalog/index-colleges"
	sc "college-recommender/internal/workers/catalog/search-colleges"
	gr "college-recommender/internal/workers/recommendation/generate-recommendations"
	pc "college-recommender/internal/workers/recommendation/predict-cutoff"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// backends holds the stores every worker is built from.
type backends struct {
	postgres *store.PostgresStore
	finder   recommendation.Store
	cache    *store.CachedStore
	index    *store.CollegeIndex
}

func main() {
	cfg, envFile, err := config.Load()
	if err != nil {
		fallback := logger.New("info", "console")
		fallback.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
	})

	zapLog.Info("Starting worker manager...",
		zap.String("environment", cfg.App.Environment),
		zap.String("envFile", envFile),
	)

	obs := observability.New(cfg.App.Name, log)

	ctx := context.Background()

	// --- Zeebe ---
	zeebe, err := camunda.Connect(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
	}, log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL ---
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres configuration invalid", zap.Error(err))
	}
	defer pg.Close()

	err = retryWithBackoff(func() error {
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	// --- Elasticsearch ---
	esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		zapLog.Fatal("elasticsearch configuration invalid", zap.Error(err))
	}
	err = retryWithBackoff(func() error {
		return esClient.Ping(ctx)
	}, 5, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		// Search falls back to Postgres, so a missing cluster is not fatal.
		zapLog.Warn("elasticsearch unavailable, search will use postgres", zap.Error(err))
	} else {
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Redis ---
	redis := database.NewRedis(cfg.Database.Redis)
	defer redis.Close()
	if err := redis.Ping(ctx); err != nil {
		zapLog.Warn("redis unavailable, candidate cache will miss", zap.Error(err))
	} else {
		zapLog.Info("Redis connected successfully")
	}

	b, err := buildBackends(ctx, cfg, pg, esClient, redis, log)
	if err != nil {
		zapLog.Fatal("store setup failed", zap.Error(err))
	}

	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		zapLog.Fatal("activity registry load failed", zap.Error(err), zap.String("path", cfg.Registry.Path))
	}
	validator, err := validation.NewSchemaValidator(reg)
	if err != nil {
		zapLog.Fatal("schema compilation failed", zap.Error(err))
	}

	workers := registerWorkers(cfg, zeebe, b, validator, obs, log)
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           healthMux(pg, zeebe),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error flushing metrics", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func buildBackends(
	ctx context.Context,
	cfg *config.Config,
	pg *database.PostgresClient,
	es *database.ElasticsearchClient,
	redis *database.RedisClient,
	log logger.Logger,
) (*backends, error) {
	pgStore := store.NewPostgresStore(pg.DB)
	if err := pgStore.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	b := &backends{
		postgres: pgStore,
		finder:   pgStore,
		index:    store.NewCollegeIndex(es.Client, cfg.Search.Index),
	}

	if cfg.Recommendation.CacheTTL > 0 {
		ttl := time.Duration(cfg.Recommendation.CacheTTL) * time.Second
		b.cache = store.NewCachedStore(pgStore, redis.Client, ttl, log)
		b.finder = b.cache
	}
	return b, nil
}

func registerWorkers(
	cfg *config.Config,
	zeebe *camunda.Client,
	b *backends,
	validator *validation.SchemaValidator,
	recorder camunda.Recorder,
	log logger.Logger,
) []*camunda.CamundaWorker {
	var workers []*camunda.CamundaWorker
	start := func(taskType string, handler camunda.JobHandler) {
		workers = append(workers, camunda.NewWorker(
			zeebe.GetClient(), taskType, config.GetWorkerConfig(cfg, taskType), handler, recorder, log,
		))
	}
	timeout := func(taskType string) time.Duration {
		return config.GetDuration(config.GetWorkerConfig(cfg, taskType).Timeout)
	}

	// --- Recommendation Workers ---
	if config.IsWorkerEnabled(cfg, gr.TaskType) {
		wcfg := gr.LoadConfig()
		wcfg.Timeout = timeout(gr.TaskType)
		wcfg.Engine = cfg.Recommendation.EngineConfig()
		start(gr.TaskType, gr.NewHandler(wcfg, b.finder, validator, log))
	}

	if config.IsWorkerEnabled(cfg, pc.TaskType) {
		wcfg := pc.LoadConfig()
		wcfg.Timeout = timeout(pc.TaskType)
		wcfg.Engine = cfg.Recommendation.EngineConfig()
		start(pc.TaskType, pc.NewHandler(wcfg, b.postgres, validator, log))
	}

	// --- Catalog Workers ---
	if config.IsWorkerEnabled(cfg, sc.TaskType) {
		wcfg := sc.LoadConfig()
		wcfg.Timeout = timeout(sc.TaskType)
		wcfg.MaxResults = cfg.Search.MaxResults
		wcfg.MinQueryLength = cfg.Search.MinQueryLength
		start(sc.TaskType, sc.NewHandler(wcfg, b.index, sc.SearcherFunc(b.postgres.SearchColleges), validator, log))
	}

	if config.IsWorkerEnabled(cfg, ixc.TaskType) {
		wcfg := ixc.LoadConfig()
		wcfg.Timeout = timeout(ixc.TaskType)
		start(ixc.TaskType, ixc.NewHandler(wcfg, b.postgres, b.index, log))
	}

	if config.IsWorkerEnabled(cfg, ic.TaskType) {
		wcfg := ic.LoadConfig()
		wcfg.Timeout = timeout(ic.TaskType)
		var cache ic.CacheInvalidator
		if b.cache != nil {
			cache = b.cache
		}
		start(ic.TaskType, ic.NewHandler(wcfg, b.postgres, cache, validator, log))
	}

	return workers
}

func healthMux(pg *database.PostgresClient, zeebe *camunda.Client) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pg.Ping(ctx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "postgres unavailable")
			return
		}
		if err := zeebe.HealthCheck(ctx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "zeebe unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}
