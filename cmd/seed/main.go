// Command seed populates the user directory with the fixed role holders a
// fresh installation needs before any request can travel the full chain.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/bgftrust/bgf-dashboard/internal/config"
	"github.com/bgftrust/bgf-dashboard/internal/domain/entity"
	"github.com/bgftrust/bgf-dashboard/internal/infrastructure/persistence/repository"
	"github.com/bgftrust/bgf-dashboard/pkg/database"
	"github.com/bgftrust/bgf-dashboard/pkg/utils"
)

var seedUsers = []entity.User{
	{ID: "hop-1", FullName: "Head of Programs", Email: "hop@bgftrust.org", Role: entity.RoleHeadOfPrograms},
	{ID: "apo-1", FullName: "Assistant Project Officer", Email: "apo@bgftrust.org", Role: entity.RoleAssistantProjectOfficer},
	{ID: "pm-1", FullName: "Project Manager", Email: "pm@bgftrust.org", Role: entity.RoleProjectManager},
	{ID: "dir-1", FullName: "Director", Email: "director@bgftrust.org", Role: entity.RoleDirector},
	{ID: "ceo-1", FullName: "Chief Executive Officer", Email: "ceo@bgftrust.org", Role: entity.RoleCEO},
	{ID: "patron-1", FullName: "Patron", Email: "patron@bgftrust.org", Role: entity.RolePatron},
	{ID: "applicant-1", FullName: "Sample Applicant", Email: "applicant@bgftrust.org", Role: entity.RoleUser},
}

func main() {
	_ = gotenv.Load()

	cfg, err := config.Load(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: "stdout",
		Format:     "console",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

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

	userRepo := repository.NewUserRepository(db.DB, logger)
	ctx := context.Background()

	for _, u := range seedUsers {
		if err := utils.ValidateEmail(u.Email); err != nil {
			logger.Fatal("Invalid seed user email", zap.String("id", u.ID), zap.Error(err))
		}

		existing, err := userRepo.GetByID(ctx, u.ID)
		if err != nil {
			logger.Fatal("Failed to check existing user", zap.String("id", u.ID), zap.Error(err))
		}
		if existing != nil {
			logger.Info("User already exists, skipping", zap.String("id", u.ID))
			continue
		}

		user := u
		if err := userRepo.Create(ctx, &user); err != nil {
			logger.Fatal("Failed to create user", zap.String("id", u.ID), zap.Error(err))
		}
		logger.Info("Seeded user",
			zap.String("id", u.ID),
			zap.String("role", u.Role.String()))
	}

	logger.Info("Seeding complete", zap.Int("users", len(seedUsers)))
}

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "configs/config.yaml"
}
