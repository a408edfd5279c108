// cmd/worker-manager/main.go
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"listing-search-workers/internal/common/camunda"
	"listing-search-workers/internal/common/config"
	"listing-search-workers/internal/common/database"
	"listing-search-workers/internal/common/logger"
	"listing-search-workers/internal/common/observability"
	"listing-search-workers/internal/insights"
	"listing-search-workers/internal/proximity"
	"listing-search-workers/internal/savedfilter"
	"listing-search-workers/internal/search"
	"listing-search-workers/internal/search/elastic"
	"listing-search-workers/internal/search/postgres"

	ni "listing-search-workers/internal/workers/insights/neighborhood-insights"
	rnp "listing-search-workers/internal/workers/insights/rank-nearby-places"
	apf "listing-search-workers/internal/workers/search/apply-property-filter"
	msf "listing-search-workers/internal/workers/search/manage-saved-filters"
	pfs "listing-search-workers/internal/workers/search/parse-filter-state"
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

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
		zap.String("searchBackend", cfg.Search.Backend),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

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

	// --- PostgreSQL, when the listing source or the saved filters need it ---
	var pg *database.PostgresClient
	if cfg.Search.Backend == config.BackendPostgres || cfg.Saved.Driver == "postgres" {
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
	}

	// --- Redis ---
	rdb := database.NewRedis(cfg.Database.Redis)
	if err := retryWithBackoff(func() error { return rdb.Ping(ctx) }, 10, time.Second, zapLog, "Redis connection"); err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()

	// --- Listing source ---
	var source search.Source
	switch cfg.Search.Backend {
	case config.BackendElasticsearch:
		var es *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		var created bool
		created, err = es.EnsureIndex(ctx, cfg.Search.ListingsIndex, elastic.IndexMapping())
		if err != nil {
			zapLog.Fatal("elasticsearch listings index unavailable", zap.Error(err))
		}
		if created {
			zapLog.Info("Created listings index", zap.String("index", cfg.Search.ListingsIndex))
		}
		source, err = elastic.NewSource(es.Client, cfg.Search.ListingsIndex, log)
	default:
		source, err = postgres.NewSource(pg.DB, cfg.Search.ListingsTable, log)
	}
	if err != nil {
		zapLog.Fatal("failed to create listing source", zap.Error(err))
	}

	executor := search.NewExecutor(source, search.Options{
		DefaultPageSize: cfg.Search.DefaultPageSize,
		MaxPageSize:     cfg.Search.MaxPageSize,
	}, log)

	// --- Saved filters ---
	store, err := openSavedFilterStore(ctx, cfg, pg, log)
	if err != nil {
		zapLog.Fatal("failed to open saved filter store", zap.Error(err))
	}

	// --- Places & insights ---
	places, err := proximity.NewGoogleProvider(cfg.Places, log)
	if err != nil {
		zapLog.Fatal("failed to create places provider", zap.Error(err))
	}
	ranker := proximity.NewRanker(places, log)

	var air insights.AirQualitySource
	if cfg.AirQuality.Enabled {
		air = insights.NewAirQualityClient(cfg.AirQuality)
	}
	cache := insights.NewRedisCache(rdb.Client, cfg.Insights.KeyPrefix, log)
	insightsService := insights.NewService(cache, places, ranker, air, log)

	// --- Workers ---
	var workers []worker.JobWorker
	register := func(taskType string, handler worker.JobHandler) {
		if w := camunda.StartWorker(zeebe.Zeebe(), taskType, config.GetWorkerConfig(cfg, taskType), handler, log); w != nil {
			workers = append(workers, w)
		}
	}
	timeout := func(taskType string) time.Duration {
		return config.GetDuration(config.GetWorkerConfig(cfg, taskType).Timeout)
	}

	register(pfs.TaskType, pfs.NewHandler(&pfs.Config{Timeout: timeout(pfs.TaskType)}, obs, log).Handle)
	register(apf.TaskType, apf.NewHandler(&apf.Config{Timeout: timeout(apf.TaskType)}, executor, obs, log).Handle)
	register(msf.TaskType, msf.NewHandler(&msf.Config{Timeout: timeout(msf.TaskType)}, store, obs, log).Handle)
	register(rnp.TaskType, rnp.NewHandler(&rnp.Config{Timeout: timeout(rnp.TaskType)}, ranker, obs, log).Handle)
	register(ni.TaskType, ni.NewHandler(&ni.Config{Timeout: timeout(ni.TaskType)}, insightsService, obs, log).Handle)

	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	readiness := func(ctx context.Context) error {
		if err := zeebe.HealthCheck(ctx); err != nil {
			return err
		}
		if pg != nil {
			if err := pg.Ping(ctx); err != nil {
				return err
			}
		}
		return rdb.Ping(ctx)
	}
	server := &http.Server{
		Addr:              cfg.Server.HealthAddress,
		Handler:           healthMux(readiness),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Server.HealthAddress))
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
		w.Close()
		w.AwaitClose()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func openSavedFilterStore(ctx context.Context, cfg *config.Config, pg *database.PostgresClient, log logger.Logger) (*savedfilter.SQLStore, error) {
	dialect, err := savedfilter.DialectFor(cfg.Saved.Driver)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	if dialect.Name == savedfilter.SQLite.Name {
		path := cfg.Database.SQLite.Path
		if path == "" {
			if path, err = database.DefaultSQLitePath(); err != nil {
				return nil, err
			}
		}
		if db, err = database.OpenSQLite(path); err != nil {
			return nil, err
		}
	} else {
		db = pg.DB
	}

	store := savedfilter.NewSQLStore(db, dialect, log)
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrating saved filters: %w", err)
	}
	return store, nil
}

func healthMux(ready func(context.Context) error) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", "")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := ready(ctx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "unavailable", err.Error())
			return
		}
		writeStatus(w, http.StatusOK, "ready", "")
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeStatus(w http.ResponseWriter, code int, status, detail string) {
	body := map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	}
	if detail != "" {
		body["error"] = detail
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
