// Package seed provisions the records Evermore needs before the first
// request: the bootstrap application admin.
package seed

import (
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/evermore-app/evermore/internal/auth/domain"
	"github.com/evermore-app/evermore/internal/auth/password"
	"github.com/evermore-app/evermore/internal/config"
	"github.com/evermore-app/evermore/internal/policy"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EnsureBootstrapAdmin creates the configured application admin when no
// user with that email exists. Idempotent across restarts.
func EnsureBootstrapAdmin(db *gorm.DB, node *snowflake.Node, cfg config.Config) error {
	email := strings.ToLower(strings.TrimSpace(cfg.BootstrapAdminEmail))
	if email == "" {
		return nil
	}
	if cfg.BootstrapAdminPassword == "" {
		return errors.New("bootstrap admin password is required when an email is set")
	}

	var existing authdomain.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := password.Hash(cfg.BootstrapAdminPassword)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	admin := authdomain.User{
		ID:           node.Generate(),
		ExternalID:   uuid.NewString(),
		Email:        email,
		Name:         "Evermore Admin",
		Role:         string(policy.RoleApplicationAdmin),
		PasswordHash: &hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	zap.L().Info("bootstrap admin provisioned", zap.String("email", email))
	return nil
}
