package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/insurance-graph/fraud-ring-backend/config"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/repository"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/service"
	"github.com/insurance-graph/fraud-ring-backend/internal/graphstore"
	"github.com/insurance-graph/fraud-ring-backend/internal/logging"
	"github.com/insurance-graph/fraud-ring-backend/internal/storage/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Requirements lists the backing services a process refuses to start without.
// Optional ones are skipped with a warning when unreachable.
type Requirements struct {
	Redis    bool
	Postgres bool
}

// App holds the connections and services shared by the API and the worker.
type App struct {
	Config *config.Config

	Store graphstore.Store
	Redis *redis.Client
	SQL   *sql.DB
	DB    *pgxpool.Pool

	Runs        *repository.RunRepository
	Assessments *repository.AssessmentRepository

	Detection *service.DetectionService
	Claims    *service.ClaimService
	Queries   *service.QueryService
	Admin     *service.AdminService
}

func NewApp(ctx context.Context, cfg *config.Config, req Requirements) (*App, error) {
	log := logging.Component("bootstrap")
	app := &App{Config: cfg}

	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}
	app.Store = store

	if app.Redis, err = OpenRedis(ctx, &cfg.Redis); err != nil {
		if req.Redis {
			app.Close(ctx)
			return nil, err
		}
		log.LogWarnf("redis", "run history disabled: %v", err)
	}

	if app.SQL, err = postgres.NewConnection(ctx, &cfg.Database); err != nil {
		if req.Postgres {
			app.Close(ctx)
			return nil, err
		}
		log.LogWarnf("postgres", "assessment history disabled: %v", err)
	}
	if app.SQL != nil {
		if app.DB, err = OpenDB(ctx, DBOptionsFrom(&cfg.Database)); err != nil {
			log.LogWarnf("postgres", "report archive disabled: %v", err)
		}
	}

	opts := []service.DetectionOption{
		service.WithDefaultThresholds(Thresholds(&cfg.Detection)),
		service.WithLockTTL(cfg.Detection.LockTTL),
	}
	if app.Redis != nil {
		app.Runs = repository.NewRunRepository(app.Redis)
		opts = append(opts, service.WithRunStore(app.Runs))
	}
	if app.DB != nil {
		opts = append(opts, service.WithArchive(repository.NewReportArchive(app.DB)))
	}
	app.Detection = service.NewDetectionService(store, opts...)

	var recorder service.AssessmentRecorder
	if app.SQL != nil {
		app.Assessments = repository.NewAssessmentRepository(app.SQL)
		recorder = app.Assessments
	}
	app.Claims = service.NewClaimService(store, recorder)
	app.Queries = service.NewQueryService(store)
	app.Admin = service.NewAdminService(store, app.Detection)

	log.LogInfof("start", "store=%s redis=%t postgres=%t archive=%t",
		cfg.Store.Backend, app.Redis != nil, app.SQL != nil, app.DB != nil)
	return app, nil
}

// Close stops background runs, then releases every connection.
func (a *App) Close(ctx context.Context) {
	log := logging.Component("bootstrap")
	if a.Detection != nil {
		a.Detection.Shutdown()
	}
	if a.DB != nil {
		a.DB.Close()
	}
	if a.SQL != nil {
		if err := a.SQL.Close(); err != nil {
			log.LogError("close_postgres", err)
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			log.LogError("close_redis", err)
		}
	}
	if a.Store != nil {
		if err := a.Store.Close(ctx); err != nil {
			log.LogError("close_store", err)
		}
	}
}
