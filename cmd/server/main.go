package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/bgftrust/bgf-dashboard/internal/application/service"
	"github.com/bgftrust/bgf-dashboard/internal/config"
	"github.com/bgftrust/bgf-dashboard/internal/infrastructure/persistence/repository"
	"github.com/bgftrust/bgf-dashboard/internal/infrastructure/persistence/sqlite"
	httpserver "github.com/bgftrust/bgf-dashboard/internal/interfaces/http"
	"github.com/bgftrust/bgf-dashboard/internal/report"
	"github.com/bgftrust/bgf-dashboard/pkg/database"
	"github.com/bgftrust/bgf-dashboard/pkg/utils"
)

func main() {
	// Optional .env for local development; real deployments set env vars
	_ = gotenv.Load()

	cfg, err := config.Load(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting BGF Dashboard",
		zap.Int("port", cfg.Server.Port),
		zap.String("database", cfg.Database.Path))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	txDB := sqlite.NewDB(db.DB, logger)

	// Repositories
	requestRepo := repository.NewRequestRepository(db.DB, logger)
	workflowRepo := repository.NewWorkflowRepository(db.DB, logger)
	historyRepo := repository.NewHistoryRepository(db.DB, logger)
	commentRepo := repository.NewCommentRepository(db.DB, logger)
	notificationRepo := repository.NewNotificationRepository(db.DB, logger)
	userRepo := repository.NewUserRepository(db.DB, logger)

	// Services
	notificationService := service.NewNotificationService(notificationRepo, logger)
	workflowService := service.NewWorkflowService(
		requestRepo,
		workflowRepo,
		historyRepo,
		userRepo,
		notificationService,
		txDB,
		logger,
	)
	requestService := service.NewRequestService(requestRepo, workflowRepo, workflowService, txDB, logger)
	commentService := service.NewCommentService(workflowRepo, commentRepo, logger)
	exporter := report.NewExporter(logger)
	reportService := service.NewReportService(requestRepo, exporter, logger)

	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		requestService,
		workflowService,
		commentService,
		notificationService,
		reportService,
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Server exited")
}

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "configs/config.yaml"
}
