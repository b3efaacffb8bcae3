package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"car-rental/cmd"
	"car-rental/internal/data/migrations"
	"car-rental/internal/data/repository"
	"car-rental/internal/notify"
	"car-rental/internal/usecase"
	"car-rental/internal/wire"
	"car-rental/pkg/database"
	"car-rental/pkg/locker"
	"car-rental/pkg/qrcode"
	"car-rental/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.InitLogger(config.App.Name, config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	if err := run(config, logger); err != nil {
		logger.Fatal("Application stopped with error", zap.Error(err))
	}
	logger.Info("Graceful shutdown finished")
}

func run(config *utils.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	db, err := database.InitDB(ctx, config.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("Database connected successfully")

	if config.Database.MigrateOnStart {
		if err := db.Migrate(migrations.FS, logger); err != nil {
			return err
		}
		logger.Info("Database migrated")
	}

	repo := repository.NewRepository(db, logger)

	deps := usecase.Dependencies{
		Repo:       repo,
		Transactor: repository.NewTransactor(db, logger),
		QR:         qrcode.NewEncoder(0),
	}

	if config.Redis.Enabled {
		rdb, err := locker.NewRedisClient(ctx, config.Redis.Addr, config.Redis.Password, config.Redis.DB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		deps.Locker = locker.NewRedisLocker(rdb, config.Redis.LockTTL, logger)
		logger.Info("Redis vehicle locks enabled", zap.String("addr", config.Redis.Addr))
	}

	publisher, err := notify.NewPublisher(config.Notify, logger)
	if err != nil {
		return err
	}
	dispatcher := notify.NewDispatcher(notify.NewRepositorySource(repo), publisher, notify.Config{
		Workers:    config.Notify.Workers,
		QueueSize:  config.Notify.QueueSize,
		JobTimeout: config.Notify.JobTimeout,
	}, logger)
	dispatcher.Start(context.WithoutCancel(ctx))
	deps.Notifier = dispatcher

	service := usecase.NewService(deps, logger)
	app := wire.Wiring(service, db, config, logger)

	serveErr := cmd.APIServer(ctx, app.Router, config.App.Port, config.App.ShutdownTimeout, logger)

	closeCtx, cancel := context.WithTimeout(context.Background(), config.App.ShutdownTimeout)
	defer cancel()
	if err := dispatcher.Close(closeCtx); err != nil {
		logger.Warn("Notification dispatcher closed with error", zap.Error(err))
	}

	return serveErr
}
