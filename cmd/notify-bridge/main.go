package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fruitctl/fruitctl/internal/config"
	"github.com/fruitctl/fruitctl/internal/db"
	"github.com/fruitctl/fruitctl/internal/events"
	"github.com/fruitctl/fruitctl/internal/notify"
	"go.uber.org/zap"
)

// Notify bridge: subscribes to proposal events in Redis and posts each one
// to FRUITCTL_NOTIFY_URL, so whoever approves learns about new proposals.
func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	if cfg.NotifyURL == "" {
		log.Fatal("FRUITCTL_NOTIFY_URL is required")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	webhook := notify.NewWebhookClient(cfg.NotifyURL, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	if err := subscriber.Subscribe(ctx, events.StreamProposals, func(event events.Event) {
		log.Info("forwarding event", zap.String("type", event.Type))
		webhook.Forward(ctx, event)
	}); err != nil {
		log.Fatal("failed to subscribe", zap.Error(err))
	}

	log.Info("notify-bridge started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down notify-bridge")
	cancel()
}
