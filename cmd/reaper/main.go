// cmd/reaper/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"studytrack/internal/accounts"
	"studytrack/internal/common/aws"
	"studytrack/internal/common/config"
	"studytrack/internal/common/database"
	"studytrack/internal/common/logger"
	"studytrack/internal/reaper"
	"studytrack/internal/store"
	"studytrack/internal/store/localstore"
	"studytrack/internal/store/pgstore"
	"studytrack/internal/store/redisstore"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "report eligible accounts without deleting anything")
	flag.Parse()

	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting inactive-account reaper...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, cleanup, err := buildBackend(ctx, cfg, zapLog)
	if err != nil {
		zapLog.Fatal("store backend failed", zap.Error(err))
	}
	defer cleanup()

	policy := store.RetryPolicy{
		MaxAttempts:  cfg.Store.Retry.MaxAttempts,
		InitialDelay: config.GetDuration(cfg.Store.Retry.InitialDelayMS),
	}
	backend = store.WithMetrics(store.WithRetry(backend, policy, log), cfg.Store.Backend)

	// --- Health & Metrics Server ---
	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "healthy",
					"time":   time.Now().Format(time.RFC3339),
				})
			})
			mux.Handle("/metrics", promhttp.Handler())
			zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Metrics.Address))
			if err := http.ListenAndServe(cfg.Metrics.Address, mux); err != nil {
				zapLog.Error("Health/Metrics server failed", zap.Error(err))
			}
		}()
	}

	accountSvc := accounts.NewService(backend, log)
	r := reaper.New(backend, accountSvc, reaper.Config{
		InactiveDays: cfg.Reaper.InactiveDays,
		Workers:      cfg.Reaper.Workers,
		DryRun:       cfg.Reaper.DryRun || *dryRun,
	}, log)

	if cfg.Notifications.Enabled {
		notifier, err := aws.NewReapNotifier(ctx, cfg.Notifications, log)
		if err != nil {
			zapLog.Fatal("notifier setup failed", zap.Error(err))
		}
		r.SetNotifier(notifier)
	}

	result, err := r.Run(ctx)
	if err != nil {
		zapLog.Fatal("sweep failed", zap.Error(err))
	}

	zapLog.Info("Sweep completed",
		zap.Int("scanned", result.Scanned),
		zap.Int("eligible", result.Eligible),
		zap.Int("reaped", result.Reaped),
		zap.Int("failed", result.Failed),
		zap.Bool("dryRun", result.DryRun),
		zap.Duration("duration", result.Duration),
	)
}

// buildBackend wires the configured document store. The returned
// cleanup closes whatever connection the backend holds.
func buildBackend(ctx context.Context, cfg *config.Config, zapLog *zap.Logger) (store.Backend, func(), error) {
	switch cfg.Store.Backend {
	case "redis":
		client, err := database.NewRedis(cfg.Store.Redis)
		if err != nil {
			return nil, nil, err
		}
		if err := client.Ping(ctx); err != nil {
			client.Close()
			return nil, nil, err
		}
		zapLog.Info("Redis connected successfully")
		return redisstore.New(client.GetClient()), func() { client.Close() }, nil

	case "postgres":
		client, err := database.NewPostgres(cfg.Store.Postgres)
		if err != nil {
			return nil, nil, err
		}
		if err := client.Ping(ctx); err != nil {
			client.Close()
			return nil, nil, err
		}
		pg := pgstore.New(client.GetDB())
		if err := pg.Migrate(ctx); err != nil {
			client.Close()
			return nil, nil, err
		}
		zapLog.Info("PostgreSQL connected successfully")
		return pg, func() { client.Close() }, nil

	default:
		zapLog.Info("Using local document store", zap.String("path", cfg.Store.Local.Path))
		return localstore.Open(cfg.Store.Local.Path), func() {}, nil
	}
}
