// Package seed bootstraps a first user so a fresh install is usable without
// manual inserts.
package seed

import (
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/ledgerline/invoicer/internal/auth/domain"
	"github.com/ledgerline/invoicer/internal/auth/password"
	"github.com/ledgerline/invoicer/internal/config"
	"gorm.io/gorm"
)

// EnsureAdminUser creates the configured admin account when no user with that
// email exists yet. Idempotent across restarts.
func EnsureAdminUser(conn *gorm.DB, cfg config.Config, node *snowflake.Node) error {
	email := strings.ToLower(strings.TrimSpace(cfg.SeedAdminEmail))
	if email == "" || cfg.SeedAdminPassword == "" {
		return nil
	}

	var existing authdomain.User
	err := conn.First(&existing, "email = ?", email).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := password.Hash(cfg.SeedAdminPassword)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	return conn.Create(&authdomain.User{
		ID:           node.Generate(),
		Name:         "Admin",
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}).Error
}
