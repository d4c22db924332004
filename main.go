// main.go
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"event-ticketing/cmd"
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/realtime"
	"event-ticketing/internal/wire"
	"event-ticketing/migrations"
	"event-ticketing/pkg/database"
	"event-ticketing/pkg/mailer"
	"event-ticketing/pkg/observability"
	"event-ticketing/pkg/utils"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Name, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config, logger); err != nil {
		logger.Fatal("Application stopped with error", zap.Error(err))
	}
	logger.Info("Application stopped")
}

func run(ctx context.Context, config *utils.Config, logger *zap.Logger) error {
	// Tracing
	shutdownOTel, err := observability.SetupOTel(ctx, config.App.Name, config.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownOTel(flushCtx)
	}()

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("Database connected successfully")

	if err := database.Migrate(ctx, db, migrations.FS, logger); err != nil {
		return err
	}

	// Notifications live in MongoDB
	mongoClient, mdb, err := database.InitMongo(ctx, config.Mongo)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(closeCtx)
	}()

	// Redis is optional: rate limiting and the realtime bus degrade without it
	rdb, err := database.InitRedis(ctx, config.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	} else {
		logger.Warn("REDIS_ADDR not set, rate limiting disabled and realtime is single-instance")
	}

	var rabbit *amqp.Connection
	if config.Rabbit.URL != "" {
		rabbit, err = amqp.Dial(config.Rabbit.URL)
		if err != nil {
			return err
		}
		defer rabbit.Close()
		logger.Info("RabbitMQ connected")
	}

	// Initialize all repositories
	repos := repository.NewRepository(db, mdb, logger)
	if err := repos.Notification.EnsureIndexes(ctx); err != nil {
		return err
	}

	hub := realtime.NewHub(rdb, logger)
	defer hub.Close()

	// Wire all dependencies
	app, err := wire.Wiring(repos, config, wire.Infra{
		Redis:  rdb,
		Rabbit: rabbit,
		Hub:    hub,
		Mailer: mailer.New(config.Email, logger),
	}, logger)
	if err != nil {
		return err
	}
	defer app.Jobs.Close()

	if err := app.Service.Auth.EnsureAdmin(ctx, config.Admin); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return cmd.APIServer(gctx, app.Router, config.App.Port, logger) })
	g.Go(func() error { return hub.Run(gctx) })
	g.Go(func() error { return cmd.Worker(gctx, app.Consumer, logger) })
	g.Go(func() error { return cmd.Scheduler(gctx, app.Service.Reminder, config.Reminder, logger) })

	return g.Wait()
}
