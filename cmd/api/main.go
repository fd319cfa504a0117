package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/insurance-graph/fraud-ring-backend/config"
	"github.com/insurance-graph/fraud-ring-backend/internal/bootstrap"
	cronjob "github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/cron"
	"github.com/insurance-graph/fraud-ring-backend/internal/logging"
)

const serviceName = "fraud-ring-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Base().WithError(err).Fatal("failed to load configuration")
	}
	logging.Setup(cfg.App.LogLevel, cfg.App.Environment)
	bootstrap.SetGinMode(cfg.App.Environment)
	log := logging.Component("api")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewApp(ctx, cfg, bootstrap.Requirements{Redis: true})
	if err != nil {
		log.LogError("bootstrap", err)
		os.Exit(1)
	}

	var scheduler *cronjob.Scheduler
	if cfg.Scheduler.Enabled {
		scheduler = cronjob.NewScheduler(app.Detection, cfg.Scheduler.Schedule)
		if err := scheduler.Start(); err != nil {
			log.LogError("scheduler", err)
			app.Close(context.Background())
			os.Exit(1)
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           bootstrap.BuildRouter(bootstrap.RouterDeps{ServiceName: serviceName, App: app}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.LogInfof("listen", "listening on %s (env=%s, store=%s)", srv.Addr, cfg.App.Environment, cfg.Store.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.LogError("listen", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.LogInfo("shutdown", "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.LogError("shutdown", err)
	}
	app.Close(shutdownCtx)
	log.LogInfo("shutdown", "stopped")
}
