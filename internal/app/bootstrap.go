// Package app is the composition root: manual DI, no Wire/Dig.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/riverqueue/river"

	"defectdesk.io/desk/internal/api/handlers"
	"defectdesk.io/desk/internal/api/middleware"
	"defectdesk.io/desk/internal/config"
	"defectdesk.io/desk/internal/infrastructure"
	"defectdesk.io/desk/internal/jobs"
	"defectdesk.io/desk/internal/notification"
	"defectdesk.io/desk/internal/pkg/worker"
	"defectdesk.io/desk/internal/repository"
	"defectdesk.io/desk/internal/service"
)

// Application holds composed application dependencies.
type Application struct {
	Config *config.Config
	Router *gin.Engine
	DB     *infrastructure.DatabaseClients
	Pools  *worker.Pools
}

// Bootstrap initializes all dependencies.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Application, error) {
	db, err := infrastructure.NewDatabaseClients(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	pools, err := worker.NewPools(ctx, worker.PoolConfig{
		GeneralPoolSize: cfg.Worker.GeneralPoolSize,
		NotifyPoolSize:  cfg.Worker.NotifyPoolSize,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init worker pools: %w", err)
	}

	store := repository.NewStore(db.Pool)
	notifier := notification.NewDispatcher(store, pools)

	files, err := service.NewLocalFileStore(cfg.Storage.UploadDir)
	if err != nil {
		pools.Shutdown()
		db.Close()
		return nil, fmt.Errorf("init file store: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, jobs.NewOverdueEscalationWorker(store, notifier))
	river.AddWorker(workers, jobs.NewNotificationCleanupWorker(store, cfg.Jobs.NotificationRetention))

	overdueInterval := cfg.Jobs.OverdueCheckInterval
	if overdueInterval <= 0 {
		overdueInterval = time.Hour
	}
	periodic := []*river.PeriodicJob{
		river.NewPeriodicJob(
			river.PeriodicInterval(overdueInterval),
			func() (river.JobArgs, *river.InsertOpts) {
				return jobs.OverdueEscalationArgs{}, nil
			},
			&river.PeriodicJobOpts{RunOnStart: true},
		),
		river.NewPeriodicJob(
			river.PeriodicInterval(24*time.Hour),
			func() (river.JobArgs, *river.InsertOpts) {
				return jobs.NotificationCleanupArgs{}, nil
			},
			&river.PeriodicJobOpts{RunOnStart: true},
		),
	}

	if err := db.InitRiverClient(workers, periodic, cfg.River); err != nil {
		pools.Shutdown()
		db.Close()
		return nil, fmt.Errorf("init river: %w", err)
	}

	jwtCfg := middleware.JWTConfig{
		SigningKey: []byte(cfg.Security.JWTSecret),
		Issuer:     cfg.Security.JWTIssuer,
		ExpiresIn:  cfg.Security.JWTExpiry,
	}

	server := handlers.NewServer(handlers.ServerDeps{
		Pool:          db.Pool,
		JWTCfg:        jwtCfg,
		Auth:          service.NewAuthService(store, cfg.Security),
		Defects:       service.NewDefectService(store, notifier),
		Comments:      service.NewCommentService(store, notifier),
		Attachments:   service.NewAttachmentService(store, files, cfg.Storage.MaxFileSize),
		Actions:       service.NewActionsService(store),
		Notifications: service.NewNotificationService(store),
		Reference:     service.NewReferenceService(store),
	})

	return &Application{
		Config: cfg,
		Router: newRouter(cfg, server, jwtCfg),
		DB:     db,
		Pools:  pools,
	}, nil
}
