package migrations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"tailor_shop/internal/database"
	"tailor_shop/internal/models"
	"tailor_shop/internal/repository"
	"tailor_shop/internal/services"

	"gorm.io/gorm"
)

// Admin is the account seeded on an empty database.
type Admin struct {
	Username string
	Password string
}

// RunMigrations migrates the schema and creates default data.
func RunMigrations(ctx context.Context, db *gorm.DB, admin Admin, log *slog.Logger) error {
	log.Info("running database migrations")
	if err := database.AutoMigrate(db); err != nil {
		return err
	}

	users := repository.NewUserRepository(db)
	auth := services.NewAuthService(users, nil, 0)
	if err := seedAdmin(ctx, users, auth, admin, log); err != nil {
		return err
	}
	if err := seedSettings(ctx, repository.NewSettingRepository(db), log); err != nil {
		return err
	}

	log.Info("database migrations completed")
	return nil
}

func seedAdmin(ctx context.Context, users repository.UserRepository, auth services.AuthService, admin Admin, log *slog.Logger) error {
	if _, err := users.GetByUsername(ctx, admin.Username); err == nil {
		log.Debug("admin user already exists", "username", admin.Username)
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	user := &models.User{
		Username: admin.Username,
		Name:     "Administrator",
		Role:     string(models.RoleAdmin),
		IsActive: true,
	}
	if err := auth.CreateUser(ctx, user, admin.Password); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	log.Info("admin user created", "username", admin.Username)
	return nil
}

func seedSettings(ctx context.Context, settings repository.SettingRepository, log *slog.Logger) error {
	defaults := map[string]interface{}{
		models.SettingUPI:      models.DefaultUPI(),
		models.SettingBusiness: models.DefaultBusiness(),
	}
	for key, value := range defaults {
		if _, err := settings.Get(ctx, key); err == nil {
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		b, err := json.Marshal(value)
		if err != nil {
			return err
		}
		if err := settings.Upsert(ctx, &models.Setting{Key: key, Value: string(b)}); err != nil {
			return fmt.Errorf("failed to seed %s settings: %w", key, err)
		}
		log.Info("default settings created", "key", key)
	}
	return nil
}
