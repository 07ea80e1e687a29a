package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/yigit/pointsboard/internal/app/models"
	"github.com/yigit/pointsboard/internal/db"
	"github.com/yigit/pointsboard/internal/pkg/apperrors"
	"github.com/yigit/pointsboard/internal/pkg/dberrors"
)

const activationCodesCodeKey = "activation_codes_code_key"

// PgActivationCodeRepository handles database operations for activation codes
type PgActivationCodeRepository struct {
	db *db.PostgresDB
}

// NewActivationCodeRepository creates a new PgActivationCodeRepository
func NewActivationCodeRepository(database *db.PostgresDB) *PgActivationCodeRepository {
	return &PgActivationCodeRepository{db: database}
}

func (r *PgActivationCodeRepository) selectCodes() squirrel.SelectBuilder {
	return psql.Select(activationCodeColumns...).
		From("activation_codes ac").
		LeftJoin("profiles p ON p.id = ac.used_by")
}

// CreateActivationCode inserts an unused code
func (r *PgActivationCodeRepository) CreateActivationCode(ctx context.Context, code *models.ActivationCode) error {
	if code.ID == uuid.Nil {
		code.ID = uuid.New()
	}
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now()
	}

	sql, args, err := psql.Insert("activation_codes").
		Columns("id", "code", "is_used", "valid_days", "created_at").
		Values(code.ID, code.Code, false, code.ValidDays, code.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build activation code insert: %w", err)
	}
	if _, err := r.db.Pool.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, activationCodesCodeKey) {
			return apperrors.NewConflictError("activation code already exists")
		}
		return fmt.Errorf("failed to create activation code: %w", err)
	}
	return nil
}

// FindUnusedActivationCode looks up a code that can still be redeemed
func (r *PgActivationCodeRepository) FindUnusedActivationCode(ctx context.Context, code string) (*models.ActivationCode, error) {
	sql, args, err := r.selectCodes().Where(squirrel.Eq{"ac.code": code}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build activation code query: %w", err)
	}
	ac, err := scanOne[models.ActivationCode, activationCodeRow](r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrCodeNotFound
		}
		return nil, fmt.Errorf("failed to get activation code: %w", err)
	}
	if ac.IsUsed {
		return nil, apperrors.ErrCodeAlreadyUsed
	}
	return &ac, nil
}

// GetActivationCodeByConsumer returns the code a teacher registered with
func (r *PgActivationCodeRepository) GetActivationCodeByConsumer(ctx context.Context, profileID uuid.UUID) (*models.ActivationCode, error) {
	sql, args, err := r.selectCodes().Where(squirrel.Eq{"ac.used_by": profileID}).
		OrderBy("ac.created_at DESC").Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build activation code query: %w", err)
	}
	ac, err := scanOne[models.ActivationCode, activationCodeRow](r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrCodeNotFound
		}
		return nil, fmt.Errorf("failed to get activation code: %w", err)
	}
	return &ac, nil
}

// ListActivationCodes returns every code, newest first, with the consumer's username
func (r *PgActivationCodeRepository) ListActivationCodes(ctx context.Context) ([]models.ActivationCode, error) {
	sql, args, err := r.selectCodes().OrderBy("ac.created_at DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build activation code list query: %w", err)
	}
	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activation codes: %w", err)
	}
	codes, err := scanAll[models.ActivationCode, activationCodeRow](rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan activation codes: %w", err)
	}
	return codes, nil
}

// DeleteActivationCode removes a code
func (r *PgActivationCodeRepository) DeleteActivationCode(ctx context.Context, id uuid.UUID) error {
	sql, args, err := psql.Delete("activation_codes").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build activation code delete: %w", err)
	}
	tag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to delete activation code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCodeNotFound
	}
	return nil
}
