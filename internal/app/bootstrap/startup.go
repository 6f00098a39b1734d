// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	userstore "github.com/coursedeck/coursedeck/internal/app/store/users"
	"github.com/coursedeck/coursedeck/internal/app/system/authutil"
	"github.com/coursedeck/coursedeck/internal/app/system/status"
	"github.com/coursedeck/coursedeck/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.AdminEmail != "" {
		if err := ensureBootstrapAdmin(ctx, deps, appCfg.AdminEmail, appCfg.AdminPassword, logger); err != nil {
			return err
		}
	}
	return nil
}

// ensureBootstrapAdmin guarantees an admin account exists for the given
// email. An existing user is promoted to admin; a missing one is created
// with the configured password.
func ensureBootstrapAdmin(ctx context.Context, deps DBDeps, email, password string, logger *zap.Logger) error {
	users := deps.MongoDatabase.Collection("users")

	var existing models.User
	err := users.FindOne(ctx, bson.M{"email_ci": text.Fold(email)}).Decode(&existing)
	switch {
	case err == nil:
		if existing.Role == "admin" {
			logger.Info("bootstrap admin already present", zap.String("user_id", existing.ID.Hex()))
			return nil
		}
		_, err := users.UpdateByID(ctx, existing.ID, bson.M{"$set": bson.M{
			"role":       "admin",
			"updated_at": time.Now().UTC(),
		}})
		if err != nil {
			return fmt.Errorf("promote bootstrap admin: %w", err)
		}
		logger.Info("promoted existing user to admin",
			zap.String("user_id", existing.ID.Hex()))
		return nil

	case errors.Is(err, mongo.ErrNoDocuments):
		if password == "" {
			return fmt.Errorf("admin_password is required to create the bootstrap admin %q", email)
		}
		hash, err := authutil.HashPassword(password)
		if err != nil {
			return err
		}
		created, err := userstore.New(deps.MongoDatabase).Create(ctx, models.User{
			FullName:     "Administrator",
			Email:        email,
			PasswordHash: hash,
			Role:         "admin",
			Status:       status.Active,
		})
		if err != nil {
			return fmt.Errorf("create bootstrap admin: %w", err)
		}
		logger.Info("created bootstrap admin", zap.String("user_id", created.ID.Hex()))
		return nil

	default:
		return fmt.Errorf("look up bootstrap admin: %w", err)
	}
}
