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

// PgClassRepository handles database operations for classes
type PgClassRepository struct {
	db *db.PostgresDB
}

// NewClassRepository creates a new PgClassRepository
func NewClassRepository(database *db.PostgresDB) *PgClassRepository {
	return &PgClassRepository{db: database}
}

// CreateClass inserts a class and fills in its id and creation time
func (r *PgClassRepository) CreateClass(ctx context.Context, class *models.Class) error {
	if class.ID == uuid.Nil {
		class.ID = uuid.New()
	}
	if class.CreatedAt.IsZero() {
		class.CreatedAt = time.Now()
	}

	sql, args, err := psql.Insert("classes").
		Columns("id", "name", "user_id", "created_at").
		Values(class.ID, class.Name, class.OwnerID, class.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build class insert: %w", err)
	}
	if _, err := r.db.Pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to create class: %w", err)
	}
	return nil
}

// GetClass retrieves one of the owner's classes
func (r *PgClassRepository) GetClass(ctx context.Context, ownerID, id uuid.UUID) (*models.Class, error) {
	sql, args, err := psql.Select(classColumns...).From("classes").
		Where(squirrel.Eq{"id": id, "user_id": ownerID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build class query: %w", err)
	}

	c, err := scanOne[models.Class, classRow](r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrClassNotFound
		}
		return nil, fmt.Errorf("failed to get class: %w", err)
	}
	return &c, nil
}

// ListClasses returns the owner's classes in creation order
func (r *PgClassRepository) ListClasses(ctx context.Context, ownerID uuid.UUID) ([]models.Class, error) {
	sql, args, err := psql.Select(classColumns...).From("classes").
		Where(squirrel.Eq{"user_id": ownerID}).OrderBy("created_at ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build class list query: %w", err)
	}
	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list classes: %w", err)
	}
	classes, err := scanAll[models.Class, classRow](rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan classes: %w", err)
	}
	return classes, nil
}

// UpdateClass renames one of the owner's classes
func (r *PgClassRepository) UpdateClass(ctx context.Context, ownerID, id uuid.UUID, name string) error {
	sql, args, err := psql.Update("classes").Set("name", name).
		Where(squirrel.Eq{"id": id, "user_id": ownerID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build class update: %w", err)
	}
	tag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to update class: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrClassNotFound
	}
	return nil
}

// DeleteClass removes one of the owner's classes. Callers check CountStudents first;
// a class that still has students is refused by the students foreign key.
func (r *PgClassRepository) DeleteClass(ctx context.Context, ownerID, id uuid.UUID) error {
	sql, args, err := psql.Delete("classes").Where(squirrel.Eq{"id": id, "user_id": ownerID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build class delete: %w", err)
	}
	tag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrClassNotEmpty
		}
		return fmt.Errorf("failed to delete class: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrClassNotFound
	}
	return nil
}

// CountStudents counts the students enrolled in one of the owner's classes
func (r *PgClassRepository) CountStudents(ctx context.Context, ownerID, classID uuid.UUID) (int, error) {
	sql, args, err := psql.Select("COUNT(*)").From("students").
		Where(squirrel.Eq{"class_id": classID, "user_id": ownerID}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build student count query: %w", err)
	}
	var n int
	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count students: %w", err)
	}
	return n, nil
}
