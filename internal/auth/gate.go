package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/RebotePadel/GameHome/internal/repository"
)

// BaselineSecret is the publish secret installed on first boot.
//
// TODO: read the initial secret from configuration so a fresh deployment
// does not ship with a known password.
const BaselineSecret = "MainCourante"

// Gate checks callers against the publish secret stored in config.json.
type Gate struct {
	config    repository.ConfigRepository
	passwords *PasswordService
	logger    *slog.Logger
}

// NewGate creates a Gate over the config repository.
func NewGate(config repository.ConfigRepository, passwords *PasswordService, logger *slog.Logger) *Gate {
	return &Gate{config: config, passwords: passwords, logger: logger}
}

// Verify reports whether supplied matches the stored hash.
//
// A wrong secret and an unusable stored hash both yield (false, nil); only a
// failure to read the config is returned as an error.
func (g *Gate) Verify(ctx context.Context, supplied string) (bool, error) {
	if supplied == "" {
		return false, nil
	}

	cfg, err := g.config.GetConfig(ctx)
	if err != nil {
		return false, fmt.Errorf("auth: loading config: %w", err)
	}

	err = g.passwords.Verify(cfg.PublishPassword, supplied)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrMismatch):
		return false, nil
	default:
		g.logger.Warn("stored publish password hash is unusable", slog.String("error", err.Error()))
		return false, nil
	}
}

// Initialize makes sure the stored hash accepts the baseline secret.
//
// It runs once at startup. When the stored value is the first-boot
// placeholder, is malformed, or does not match BaselineSecret, a fresh hash
// is computed and saved. The returned bool reports whether a write happened.
func (g *Gate) Initialize(ctx context.Context) (bool, error) {
	cfg, err := g.config.GetConfig(ctx)
	if err != nil {
		return false, fmt.Errorf("auth: loading config: %w", err)
	}

	if g.passwords.Verify(cfg.PublishPassword, BaselineSecret) == nil {
		return false, nil
	}

	hash, err := g.passwords.Hash(BaselineSecret)
	if err != nil {
		return false, err
	}
	cfg.PublishPassword = hash

	if err := g.config.SaveConfig(ctx, cfg); err != nil {
		return false, fmt.Errorf("auth: saving config: %w", err)
	}

	g.logger.Info("publish password hash initialized")
	return true, nil
}
