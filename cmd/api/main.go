package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/kidpech/user_service/internal/app"
	"github.com/kidpech/user_service/internal/app/diagnostics"
	"github.com/kidpech/user_service/internal/config"
	"github.com/kidpech/user_service/internal/domain/user"
	dbinfra "github.com/kidpech/user_service/internal/infrastructure/db"
	"github.com/kidpech/user_service/internal/infrastructure/logging"
	"github.com/kidpech/user_service/internal/infrastructure/memstore"
	"github.com/kidpech/user_service/internal/infrastructure/mongodb"
	"github.com/kidpech/user_service/internal/infrastructure/monitoring"
	"github.com/kidpech/user_service/internal/infrastructure/security"
)

// store bundles the selected record store with its readiness check and
// teardown.
type store struct {
	repo  user.Repository
	ping  diagnostics.Pinger
	close func()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.App.Env, cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logging.Sync(logger)
	logging.ReplaceGlobals(logger)

	if err := monitoring.InitSentry(cfg.Monitoring, cfg.App); err != nil {
		logger.Warn("sentry init failed", zap.Error(err))
	}
	if cfg.Monitoring.PrometheusEnabled {
		monitoring.Init()
	}
	defer monitoring.Flush()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("store init failed", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	defer st.close()

	userService := user.NewService(st.repo, security.NewBcryptHasher(cfg.Security.BcryptCost), logger)

	logBuffer := diagnostics.NewLogBuffer(cfg.Diagnostics.MaxLogLines)
	diagHandler := diagnostics.NewHandler(logBuffer, st.ping, logger)
	userHandler := user.NewHandler(userService, monitoring.CaptureError)

	router := app.NewRouter(app.RouterDeps{
		Config:      cfg,
		UserHandler: userHandler,
		Diagnostics: diagHandler,
		Logger:      logger,
		LogBuffer:   logBuffer,
	})

	server := &app.Server{Engine: router, Addr: ":" + cfg.App.Port, Logger: logger}
	if err := server.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*store, error) {
	switch {
	case cfg.Database.Driver == config.DriverMemory:
		repo, err := memstore.NewUserRepository()
		if err != nil {
			return nil, err
		}
		logger.Warn("using in-memory user store; records are lost on restart")
		return &store{repo: repo, ping: repo, close: func() {}}, nil

	case cfg.Database.Driver == config.DriverMongo:
		client, err := mongodb.Connect(ctx, cfg.Mongo, logger)
		if err != nil {
			return nil, err
		}
		repo := mongodb.NewUserRepository(client.DB)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Close(context.Background())
			return nil, err
		}
		return &store{repo: repo, ping: client, close: func() {
			if err := client.Close(context.Background()); err != nil {
				logger.Warn("mongo disconnect failed", zap.Error(err))
			}
		}}, nil

	case cfg.Database.IsSQL():
		mgr, err := dbinfra.Connect(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := dbinfra.Migrate(ctx, mgr.Write.DB, cfg.Database.Driver); err != nil {
				_ = mgr.Close()
				return nil, err
			}
			logger.Info("database migrated", zap.String("driver", cfg.Database.Driver))
		}
		return &store{repo: dbinfra.NewUserRepository(mgr), ping: mgr, close: func() {
			if err := mgr.Close(); err != nil {
				logger.Warn("db close failed", zap.Error(err))
			}
		}}, nil

	default:
		return nil, fmt.Errorf("unsupported db driver %s", cfg.Database.Driver)
	}
}
