package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/yigit/pointsboard/internal/app/models"
	"github.com/yigit/pointsboard/internal/db"
	"github.com/yigit/pointsboard/internal/pkg/apperrors"
	"github.com/yigit/pointsboard/internal/pkg/dberrors"
	"github.com/yigit/pointsboard/internal/pkg/helpers"
)

// PgStudentRepository handles database operations for students
type PgStudentRepository struct {
	db *db.PostgresDB
}

// NewStudentRepository creates a new PgStudentRepository
func NewStudentRepository(database *db.PostgresDB) *PgStudentRepository {
	return &PgStudentRepository{db: database}
}

// CreateStudent inserts a student with zero points unless set
func (r *PgStudentRepository) CreateStudent(ctx context.Context, s *models.Student) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}

	sql, args, err := psql.Insert("students").
		Columns("id", "name", "points", "user_id", "class_id", "group_id", "created_at").
		Values(s.ID, s.Name, s.Points, s.OwnerID, s.ClassID, helpers.PgUUID(s.GroupID), s.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build student insert: %w", err)
	}
	if _, err := r.db.Pool.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrClassNotFound
		}
		return fmt.Errorf("failed to create student: %w", err)
	}
	return nil
}

// GetStudent retrieves one of the owner's students
func (r *PgStudentRepository) GetStudent(ctx context.Context, ownerID, id uuid.UUID) (*models.Student, error) {
	sql, args, err := psql.Select(studentColumns...).From("students").
		Where(squirrel.Eq{"id": id, "user_id": ownerID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build student query: %w", err)
	}
	s, err := scanOne[models.Student, studentRow](r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return &s, nil
}

// ListStudents returns the owner's students ordered by points, highest first
func (r *PgStudentRepository) ListStudents(ctx context.Context, ownerID uuid.UUID, filter StudentFilter) ([]models.Student, error) {
	where := squirrel.And{squirrel.Eq{"user_id": ownerID}}
	if filter.ClassID != nil {
		where = append(where, squirrel.Eq{"class_id": *filter.ClassID})
	}
	if name := strings.TrimSpace(filter.NameContains); name != "" {
		where = append(where, squirrel.ILike{"name": "%" + name + "%"})
	}

	sql, args, err := psql.Select(studentColumns...).From("students").Where(where).
		OrderBy("points DESC", "created_at ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build student list query: %w", err)
	}
	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	students, err := scanAll[models.Student, studentRow](rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan students: %w", err)
	}
	return students, nil
}

// DeleteStudent removes one of the owner's students
func (r *PgStudentRepository) DeleteStudent(ctx context.Context, ownerID, id uuid.UUID) error {
	sql, args, err := psql.Delete("students").Where(squirrel.Eq{"id": id, "user_id": ownerID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build student delete: %w", err)
	}
	tag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// AdjustPoints adds delta (possibly negative) to a student's points in a single statement
func (r *PgStudentRepository) AdjustPoints(ctx context.Context, ownerID, id uuid.UUID, delta int) (*models.Student, error) {
	sql, args, err := psql.Update("students").
		Set("points", squirrel.Expr("points + ?", delta)).
		Where(squirrel.Eq{"id": id, "user_id": ownerID}).
		Suffix("RETURNING " + strings.Join(studentColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build points update: %w", err)
	}
	s, err := scanOne[models.Student, studentRow](r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to adjust points: %w", err)
	}
	return &s, nil
}

// RenameStudent changes a student's name
func (r *PgStudentRepository) RenameStudent(ctx context.Context, ownerID, id uuid.UUID, name string) error {
	sql, args, err := psql.Update("students").Set("name", name).
		Where(squirrel.Eq{"id": id, "user_id": ownerID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build student rename: %w", err)
	}
	tag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to rename student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}
