package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/fruitctl/fruitctl/internal/auth"
	"github.com/fruitctl/fruitctl/internal/config"
	"github.com/fruitctl/fruitctl/internal/db"
	"github.com/fruitctl/fruitctl/internal/events"
	apphttp "github.com/fruitctl/fruitctl/internal/http"
	"github.com/fruitctl/fruitctl/internal/http/handlers"
	"github.com/fruitctl/fruitctl/internal/integrations"
	"github.com/fruitctl/fruitctl/internal/integrations/calendar"
	"github.com/fruitctl/fruitctl/internal/integrations/reminders"
	"github.com/fruitctl/fruitctl/internal/obs"
	"github.com/fruitctl/fruitctl/internal/repositories"
	"github.com/fruitctl/fruitctl/internal/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	if err := cfg.Validate(log); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	stores, err := repositories.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open store", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	defer stores.Close()

	// Redis (optional)
	var rdb *redis.Client
	var publisher events.Publisher = events.NopPublisher{}
	var wsHub *handlers.WSHub
	gate := auth.NewGate(cfg.Secret)

	rdb, err = db.NewRedisClient(ctx, cfg.RedisURL, log)
	switch {
	case errors.Is(err, db.ErrRedisDisabled):
	case err != nil:
		log.Fatal("failed to connect to redis", zap.Error(err))
	default:
		defer rdb.Close()
		publisher = events.NewRedisPublisher(rdb, log)
		wsHub = handlers.NewWSHub(gate, events.NewRedisSubscriber(rdb, log), log)
		if err := wsHub.Start(ctx); err != nil {
			log.Fatal("failed to subscribe to events", zap.Error(err))
		}
	}

	// Metrics
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := obs.NewMetrics(promReg)

	// Integrations are probed before the approval service is built so the
	// service gets its final action registry at construction.
	registration := integrations.Register(ctx, enabledIntegrations(cfg), log)

	approval := services.NewApprovalService(
		stores.Proposals, stores.Audit, registration.Registry, publisher, metrics, log,
		services.WithActionTimeout(cfg.ActionTimeout),
	)

	app := apphttp.NewApp(log)
	apphttp.SetupRouter(ctx, app, apphttp.Deps{
		Config:       cfg,
		Log:          log,
		Redis:        rdb,
		Gate:         gate,
		Approval:     approval,
		Registration: registration,
		Metrics:      metrics,
		Gatherer:     promReg,
		WSHub:        wsHub,
	})

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	log.Info("starting API server",
		zap.String("addr", cfg.Addr()),
		zap.Strings("integrations", registration.Registered),
	)
	if err := app.Listen(cfg.Addr()); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}

func enabledIntegrations(cfg *config.Config) []integrations.Integration {
	var out []integrations.Integration
	if cfg.AdapterEnabled(reminders.Name) {
		out = append(out, reminders.New(nil))
	}
	if cfg.AdapterEnabled(calendar.Name) {
		out = append(out, calendar.New(nil))
	}
	return out
}
