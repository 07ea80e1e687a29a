package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/pointsboard/internal/app/models"
	"github.com/yigit/pointsboard/internal/db"
	"github.com/yigit/pointsboard/internal/pkg/apperrors"
	"github.com/yigit/pointsboard/internal/pkg/dberrors"
)

// PgAdminSettingsRepository handles the admin_settings singleton
type PgAdminSettingsRepository struct {
	db *db.PostgresDB
}

// NewAdminSettingsRepository creates a new PgAdminSettingsRepository
func NewAdminSettingsRepository(database *db.PostgresDB) *PgAdminSettingsRepository {
	return &PgAdminSettingsRepository{db: database}
}

// GetAdminSettings returns the stored admin credentials, or ErrAdminNotSet
func (r *PgAdminSettingsRepository) GetAdminSettings(ctx context.Context) (*models.AdminSettings, error) {
	sql, args, err := psql.Select("id", "username", "password_hash", "updated_at").
		From("admin_settings").Where(squirrel.Eq{"id": models.AdminSettingsID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build admin settings query: %w", err)
	}
	s, err := scanOne[models.AdminSettings, adminSettingsRow](r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrAdminNotSet
		}
		return nil, fmt.Errorf("failed to get admin settings: %w", err)
	}
	return &s, nil
}

// UpsertAdminSettings replaces the singleton row
func (r *PgAdminSettingsRepository) UpsertAdminSettings(ctx context.Context, settings *models.AdminSettings) error {
	settings.ID = models.AdminSettingsID
	if settings.UpdatedAt.IsZero() {
		settings.UpdatedAt = time.Now()
	}

	sql, args, err := psql.Insert("admin_settings").
		Columns("id", "username", "password_hash", "updated_at").
		Values(settings.ID, settings.Username, settings.PasswordHash, settings.UpdatedAt).
		Suffix("ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username, password_hash = EXCLUDED.password_hash, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build admin settings upsert: %w", err)
	}
	if _, err := r.db.Pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to save admin settings: %w", err)
	}
	return nil
}
