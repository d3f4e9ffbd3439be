package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"cradi/config"
	"cradi/connection"
	"cradi/logger"
	"cradi/metrics"
	"cradi/scheduler"
	"cradi/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info").Fatalf("Failed to load config: %v", err)
	}

	log := logger.New(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clients, err := connection.Open(ctx, cfg, log)
	if err != nil {
		log.Fatalf("Failed to initialize clients: %v", err)
	}
	defer clients.Close()

	m := metrics.New()
	wf := connection.NewWorkflow(services.Deps{
		Store:      clients.Store,
		Pusher:     clients.Pusher,
		SMS:        clients.SMS,
		SMSEnabled: clients.SMSEnabled,
		Images:     clients.Images,
		Workflow:   cfg.Workflow,
		Log:        log,
		Metrics:    m,
	})

	if cfg.Scheduler.Enabled {
		var locker scheduler.Locker = scheduler.LocalLocker{}
		if clients.Redis != nil {
			locker = scheduler.NewRedisLocker(clients.Redis, log)
		}
		sched, err := scheduler.StartScheduler(cfg.Scheduler, locker, wf.Sweeper, wf.Aggregator, log)
		if err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			sched.Stop(stopCtx)
		}()
	}

	router := connection.NewRouter(wf, m, log)
	if err := connection.StartServer(ctx, ":"+cfg.Port, router, log); err != nil {
		log.WithError(err).Error("HTTP server stopped with error")
	}
}
