package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/pointsboard/internal/app/models"
	"github.com/yigit/pointsboard/internal/db"
	"github.com/yigit/pointsboard/internal/pkg/apperrors"
	"github.com/yigit/pointsboard/internal/pkg/dberrors"
	"github.com/yigit/pointsboard/internal/pkg/helpers"
	"github.com/yigit/pointsboard/internal/pkg/logger"
)

const profilesUsernameKey = "profiles_username_key"

// PgProfileRepository handles database operations for profiles
type PgProfileRepository struct {
	db *db.PostgresDB
}

// NewProfileRepository creates a new PgProfileRepository
func NewProfileRepository(database *db.PostgresDB) *PgProfileRepository {
	return &PgProfileRepository{db: database}
}

func (r *PgProfileRepository) getBy(ctx context.Context, where squirrel.Sqlizer) (*models.Profile, error) {
	sql, args, err := psql.Select(profileColumns...).From("profiles").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build profile query: %w", err)
	}

	p, err := scanOne[models.Profile, profileRow](r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

// GetProfile retrieves a profile by id
func (r *PgProfileRepository) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return r.getBy(ctx, squirrel.Eq{"id": id})
}

// GetProfileByUsername retrieves a profile by its login handle
func (r *PgProfileRepository) GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	return r.getBy(ctx, squirrel.Eq{"username": username})
}

// UpdateProfileExpiry overwrites a teacher's expiration timestamp
func (r *PgProfileRepository) UpdateProfileExpiry(ctx context.Context, id uuid.UUID, expireAt time.Time) error {
	sql, args, err := psql.Update("profiles").Set("expire_at", expireAt).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build profile expiry update: %w", err)
	}
	tag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to update profile expiry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrProfileNotFound
	}
	return nil
}

// ListProfiles returns one page of teacher profiles, newest first, whose
// username contains search (case-insensitive), and the total match count.
func (r *PgProfileRepository) ListProfiles(ctx context.Context, search string, page, size int) ([]models.Profile, int, error) {
	where := squirrel.And{squirrel.Eq{"role": models.RoleTeacher}}
	if search != "" {
		where = append(where, squirrel.ILike{"username": "%" + search + "%"})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("profiles").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build profile count query: %w", err)
	}
	var total int
	if err := r.db.Pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count profiles: %w", err)
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	sql, args, err := psql.Select(profileColumns...).From("profiles").Where(where).
		OrderBy("created_at DESC").Offset(offset).Limit(limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build profile list query: %w", err)
	}
	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list profiles: %w", err)
	}
	profiles, err := scanAll[models.Profile, profileRow](rows)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan profiles: %w", err)
	}
	return profiles, total, nil
}

// DeleteProfile removes a teacher and, through cascades, all of their records
func (r *PgProfileRepository) DeleteProfile(ctx context.Context, id uuid.UUID) error {
	sql, args, err := psql.Delete("profiles").Where(squirrel.Eq{"id": id, "role": models.RoleTeacher}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build profile delete: %w", err)
	}
	tag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrProfileNotFound
	}
	return nil
}

// RegisterWithCode inserts the profile and consumes the activation code in one
// transaction. If the code was consumed concurrently the profile insert is
// rolled back and ErrCodeAlreadyUsed is returned.
func (r *PgProfileRepository) RegisterWithCode(ctx context.Context, profile *models.Profile, code string, now time.Time) (*models.ActivationCode, error) {
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	profile.Role = models.RoleTeacher
	profile.CreatedAt = now

	var consumed *models.ActivationCode
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := insertProfile(ctx, tx, profile); err != nil {
			return err
		}

		ac, err := consumeActivationCode(ctx, tx, code, profile.ID)
		if err != nil {
			return err
		}

		expireAt := helpers.AddDays(now, ac.ValidDays)
		sql, args, err := psql.Update("profiles").Set("expire_at", expireAt).Where(squirrel.Eq{"id": profile.ID}).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build profile expiry update: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("failed to set profile expiry: %w", err)
		}
		profile.ExpireAt = &expireAt
		consumed = ac
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Str("profileID", profile.ID.String()).Str("code", consumed.Code).Msg("Activation code consumed")
	return consumed, nil
}

func insertProfile(ctx context.Context, q querier, p *models.Profile) error {
	sql, args, err := psql.Insert("profiles").
		Columns("id", "full_name", "username", "password_hash", "role", "created_at", "expire_at").
		Values(p.ID, p.FullName, p.Username, p.PasswordHash, p.Role, p.CreatedAt, helpers.PgTimestamptz(p.ExpireAt)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build profile insert: %w", err)
	}
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, profilesUsernameKey) {
			return apperrors.ErrUsernameExists
		}
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	return nil
}

// consumeActivationCode flips is_used only while the code is still unused
func consumeActivationCode(ctx context.Context, q querier, code string, consumerID uuid.UUID) (*models.ActivationCode, error) {
	sql, args, err := psql.Update("activation_codes").
		Set("is_used", true).
		Set("used_by", consumerID).
		Where(squirrel.Eq{"code": code, "is_used": false}).
		Suffix("RETURNING id, code, is_used, valid_days, used_by, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build code consumption: %w", err)
	}

	var raw activationCodeRow
	err = q.QueryRow(ctx, sql, args...).Scan(&raw.ID, &raw.Code, &raw.IsUsed, &raw.ValidDays, &raw.UsedBy, &raw.CreatedAt)
	if err == nil {
		ac, err := raw.decode()
		if err != nil {
			return nil, err
		}
		return &ac, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to consume activation code: %w", err)
	}

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM activation_codes WHERE code = $1)`, code).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check activation code: %w", err)
	}
	if exists {
		return nil, apperrors.ErrCodeAlreadyUsed
	}
	return nil, apperrors.ErrCodeNotFound
}
