package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/pointsboard/internal/app/models"
	appRepos "github.com/yigit/pointsboard/internal/app/repositories"
	"github.com/yigit/pointsboard/internal/pkg/apperrors"
	"golang.org/x/crypto/bcrypt"
)

// CreateDefaultAdmin writes the bootstrap admin credentials when none are stored yet.
// Existing credentials are never overwritten, so a password changed through the
// admin settings survives restarts. Empty credentials skip seeding.
func CreateDefaultAdmin(ctx context.Context, settingsRepo appRepos.AdminSettingsRepository, username, password string, lgr zerolog.Logger) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		lgr.Info().Msg("No bootstrap admin credentials configured, skipping admin seed")
		return nil
	}

	_, err := settingsRepo.GetAdminSettings(ctx)
	switch {
	case err == nil:
		lgr.Info().Msg("Admin credentials already exist, skipping creation")
		return nil
	case !errors.Is(err, apperrors.ErrAdminNotSet):
		return fmt.Errorf("error checking admin credentials: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("error hashing admin password: %w", err)
	}

	settings := &appModels.AdminSettings{
		ID:           appModels.AdminSettingsID,
		Username:     username,
		PasswordHash: string(hashedPassword),
		UpdatedAt:    time.Now(),
	}
	if err := settingsRepo.UpsertAdminSettings(ctx, settings); err != nil {
		return fmt.Errorf("error creating admin credentials: %w", err)
	}

	lgr.Info().Str("username", username).Msg("Default admin credentials created successfully")
	return nil
}
