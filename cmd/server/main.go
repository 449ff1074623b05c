package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/propai/maintenance-workflow/internal/ai"
	"github.com/propai/maintenance-workflow/internal/config"
	"github.com/propai/maintenance-workflow/internal/email"
	httpserver "github.com/propai/maintenance-workflow/internal/interfaces/http"
	"github.com/propai/maintenance-workflow/internal/report"
	"github.com/propai/maintenance-workflow/internal/repository"
	"github.com/propai/maintenance-workflow/internal/workflow"
	"github.com/propai/maintenance-workflow/pkg/database"
	"github.com/propai/maintenance-workflow/pkg/utils"
)

func main() {
	// Load .env if present; real environment wins
	_ = gotenv.Load()

	// Load configuration
	configPath := "configs/config.yaml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
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

	logger.Info("Starting maintenance workflow service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	// Initialize database
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

	// Run migrations
	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Initialize repositories
	requestRepo := repository.NewRequestRepository(db.DB, logger)
	workflowRepo := repository.NewWorkflowRepository(db.DB, logger)
	commRepo := repository.NewCommunicationRepository(db.DB, logger)

	// Initialize AI components
	chatClient := ai.NewOpenAIClient(
		cfg.OpenAI.APIKey,
		cfg.OpenAI.Model,
		cfg.OpenAI.Temperature,
		cfg.OpenAI.MaxTokens,
		cfg.OpenAI.Timeout,
		logger,
	)
	classifier := ai.NewClassifier(chatClient, logger)
	drafter := ai.NewMessageDrafter(chatClient, logger)

	// Initialize email notifier
	notifier := email.NewSender(email.Config{
		Host:        cfg.Email.SMTPHost,
		Port:        cfg.Email.SMTPPort,
		Username:    cfg.Email.Username,
		Password:    cfg.Email.Password,
		From:        cfg.Email.From,
		OwnerEmail:  cfg.Email.OwnerEmail,
		TenantEmail: cfg.Email.TenantEmail,
	}, logger)
	if !notifier.Enabled() {
		logger.Warn("SMTP not configured, email notifications disabled")
	}

	// Initialize workflow engine
	engine := workflow.NewEngine(
		db,
		requestRepo,
		workflowRepo,
		commRepo,
		classifier,
		drafter,
		notifier,
		logger,
	)

	// Initialize report exporter
	exporter := report.NewExporter(workflowRepo, logger)

	// Initialize HTTP server
	if cfg.Logger.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, engine, exporter, logger)

	// Run until interrupted
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Server exited")
}
