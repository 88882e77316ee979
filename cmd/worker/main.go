package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fruitctl/fruitctl/internal/config"
	"github.com/fruitctl/fruitctl/internal/db"
	"github.com/fruitctl/fruitctl/internal/events"
	"github.com/fruitctl/fruitctl/internal/repositories"
	"github.com/fruitctl/fruitctl/internal/services"
	"go.uber.org/zap"
)

// The worker expires stale proposals on a ticker. It never executes actions,
// so the approval service runs without a registry.
func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	if err := cfg.Validate(log); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, err := repositories.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open store", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	defer stores.Close()

	var publisher events.Publisher = events.NopPublisher{}
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	switch {
	case errors.Is(err, db.ErrRedisDisabled):
	case err != nil:
		log.Fatal("failed to connect to redis", zap.Error(err))
	default:
		defer rdb.Close()
		publisher = events.NewRedisPublisher(rdb, log)
	}

	approval := services.NewApprovalService(stores.Proposals, stores.Audit, nil, publisher, nil, log)

	log.Info("worker started",
		zap.Duration("ttl", cfg.ProposalTTL),
		zap.Duration("interval", cfg.ExpireInterval),
	)

	expireTicker := time.NewTicker(cfg.ExpireInterval)
	defer expireTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	runExpiry(ctx, approval, cfg.ProposalTTL, log)
	for {
		select {
		case <-expireTicker.C:
			runExpiry(ctx, approval, cfg.ProposalTTL, log)
		case <-sigCh:
			log.Info("shutting down worker")
			cancel()
			return
		}
	}
}

func runExpiry(ctx context.Context, approval *services.ApprovalService, ttl time.Duration, log *zap.Logger) {
	n, err := approval.ExpireStale(ctx, ttl)
	if err != nil {
		log.Error("expire stale proposals failed", zap.Error(err))
		return
	}
	log.Debug("expiry run", zap.Int("expired", n))
}
