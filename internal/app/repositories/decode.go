package repositories

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/yigit/pointsboard/internal/app/models"
	"github.com/yigit/pointsboard/internal/pkg/helpers"
)

// ErrMalformedRow is returned when a stored row violates the model's invariants
var ErrMalformedRow = errors.New("malformed row")

func malformed(table, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrMalformedRow, table, reason)
}

func requireID(v pgtype.UUID, table, column string) (uuid.UUID, error) {
	if !v.Valid || uuid.UUID(v.Bytes) == uuid.Nil {
		return uuid.Nil, malformed(table, column+" is null")
	}
	return uuid.UUID(v.Bytes), nil
}

func requireText(v pgtype.Text, table, column string) (string, error) {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return "", malformed(table, column+" is empty")
	}
	return v.String, nil
}

type profileRow struct {
	ID           pgtype.UUID
	FullName     pgtype.Text
	Username     pgtype.Text
	PasswordHash pgtype.Text
	Role         pgtype.Text
	CreatedAt    pgtype.Timestamptz
	ExpireAt     pgtype.Timestamptz
}

var profileColumns = []string{"id", "full_name", "username", "password_hash", "role", "created_at", "expire_at"}

func (r *profileRow) targets() []any {
	return []any{&r.ID, &r.FullName, &r.Username, &r.PasswordHash, &r.Role, &r.CreatedAt, &r.ExpireAt}
}

func (r profileRow) decode() (models.Profile, error) {
	id, err := requireID(r.ID, "profiles", "id")
	if err != nil {
		return models.Profile{}, err
	}
	username, err := requireText(r.Username, "profiles", "username")
	if err != nil {
		return models.Profile{}, err
	}
	role := models.RoleType(r.Role.String)
	if !role.Valid() {
		return models.Profile{}, malformed("profiles", "unknown role "+r.Role.String)
	}
	return models.Profile{
		ID:           id,
		FullName:     r.FullName.String,
		Username:     username,
		PasswordHash: r.PasswordHash.String,
		Role:         role,
		CreatedAt:    r.CreatedAt.Time,
		ExpireAt:     helpers.TimePtr(r.ExpireAt),
	}, nil
}

type classRow struct {
	ID        pgtype.UUID
	Name      pgtype.Text
	UserID    pgtype.UUID
	CreatedAt pgtype.Timestamptz
}

var classColumns = []string{"id", "name", "user_id", "created_at"}

func (r *classRow) targets() []any {
	return []any{&r.ID, &r.Name, &r.UserID, &r.CreatedAt}
}

func (r classRow) decode() (models.Class, error) {
	id, err := requireID(r.ID, "classes", "id")
	if err != nil {
		return models.Class{}, err
	}
	owner, err := requireID(r.UserID, "classes", "user_id")
	if err != nil {
		return models.Class{}, err
	}
	return models.Class{ID: id, Name: r.Name.String, OwnerID: owner, CreatedAt: r.CreatedAt.Time}, nil
}

type studentRow struct {
	ID        pgtype.UUID
	Name      pgtype.Text
	Points    pgtype.Int4
	UserID    pgtype.UUID
	ClassID   pgtype.UUID
	GroupID   pgtype.UUID
	CreatedAt pgtype.Timestamptz
}

var studentColumns = []string{"id", "name", "points", "user_id", "class_id", "group_id", "created_at"}

func (r *studentRow) targets() []any {
	return []any{&r.ID, &r.Name, &r.Points, &r.UserID, &r.ClassID, &r.GroupID, &r.CreatedAt}
}

func (r studentRow) decode() (models.Student, error) {
	id, err := requireID(r.ID, "students", "id")
	if err != nil {
		return models.Student{}, err
	}
	owner, err := requireID(r.UserID, "students", "user_id")
	if err != nil {
		return models.Student{}, err
	}
	class, err := requireID(r.ClassID, "students", "class_id")
	if err != nil {
		return models.Student{}, err
	}
	return models.Student{
		ID:        id,
		Name:      r.Name.String,
		Points:    int(r.Points.Int32),
		OwnerID:   owner,
		ClassID:   class,
		GroupID:   helpers.UUIDPtr(r.GroupID),
		CreatedAt: r.CreatedAt.Time,
	}, nil
}

type groupRow struct {
	ID       pgtype.UUID
	Name     pgtype.Text
	UserID   pgtype.UUID
	ClassID  pgtype.UUID
	LeaderID pgtype.UUID
}

var groupColumns = []string{"id", "name", "user_id", "class_id", "leader_id"}

func (r *groupRow) targets() []any {
	return []any{&r.ID, &r.Name, &r.UserID, &r.ClassID, &r.LeaderID}
}

func (r groupRow) decode() (models.Group, error) {
	id, err := requireID(r.ID, "groups", "id")
	if err != nil {
		return models.Group{}, err
	}
	owner, err := requireID(r.UserID, "groups", "user_id")
	if err != nil {
		return models.Group{}, err
	}
	class, err := requireID(r.ClassID, "groups", "class_id")
	if err != nil {
		return models.Group{}, err
	}
	return models.Group{
		ID:       id,
		Name:     r.Name.String,
		OwnerID:  owner,
		ClassID:  class,
		LeaderID: helpers.UUIDPtr(r.LeaderID),
	}, nil
}

type activationCodeRow struct {
	ID             pgtype.UUID
	Code           pgtype.Text
	IsUsed         pgtype.Bool
	ValidDays      pgtype.Int4
	UsedBy         pgtype.UUID
	CreatedAt      pgtype.Timestamptz
	UsedByUsername pgtype.Text
}

var activationCodeColumns = []string{"ac.id", "ac.code", "ac.is_used", "ac.valid_days", "ac.used_by", "ac.created_at", "p.username"}

func (r *activationCodeRow) targets() []any {
	return []any{&r.ID, &r.Code, &r.IsUsed, &r.ValidDays, &r.UsedBy, &r.CreatedAt, &r.UsedByUsername}
}

func (r activationCodeRow) decode() (models.ActivationCode, error) {
	id, err := requireID(r.ID, "activation_codes", "id")
	if err != nil {
		return models.ActivationCode{}, err
	}
	code, err := requireText(r.Code, "activation_codes", "code")
	if err != nil {
		return models.ActivationCode{}, err
	}
	if r.ValidDays.Int32 <= 0 {
		return models.ActivationCode{}, malformed("activation_codes", "valid_days must be positive")
	}
	usedBy := helpers.UUIDPtr(r.UsedBy)
	if usedBy != nil && !r.IsUsed.Bool {
		return models.ActivationCode{}, malformed("activation_codes", "used_by set on an unused code")
	}
	return models.ActivationCode{
		ID:             id,
		Code:           code,
		IsUsed:         r.IsUsed.Bool,
		ValidDays:      int(r.ValidDays.Int32),
		UsedBy:         usedBy,
		CreatedAt:      r.CreatedAt.Time,
		UsedByUsername: helpers.TextPtr(r.UsedByUsername),
	}, nil
}

type adminSettingsRow struct {
	ID           pgtype.Int4
	Username     pgtype.Text
	PasswordHash pgtype.Text
	UpdatedAt    pgtype.Timestamptz
}

func (r *adminSettingsRow) targets() []any {
	return []any{&r.ID, &r.Username, &r.PasswordHash, &r.UpdatedAt}
}

func (r adminSettingsRow) decode() (models.AdminSettings, error) {
	username, err := requireText(r.Username, "admin_settings", "username")
	if err != nil {
		return models.AdminSettings{}, err
	}
	hash, err := requireText(r.PasswordHash, "admin_settings", "password_hash")
	if err != nil {
		return models.AdminSettings{}, err
	}
	return models.AdminSettings{ID: int(r.ID.Int32), Username: username, PasswordHash: hash, UpdatedAt: r.UpdatedAt.Time}, nil
}

type decoder[T any] interface {
	targets() []any
	decode() (T, error)
}

// scanOne scans and decodes a single row into its model
func scanOne[T any, R any, PR interface {
	*R
	decoder[T]
}](row pgx.Row) (T, error) {
	var raw R
	var zero T
	if err := row.Scan(PR(&raw).targets()...); err != nil {
		return zero, err
	}
	return PR(&raw).decode()
}

// scanAll drains rows, decoding each one
func scanAll[T any, R any, PR interface {
	*R
	decoder[T]
}](rows pgx.Rows) ([]T, error) {
	defer rows.Close()
	out := make([]T, 0)
	for rows.Next() {
		item, err := scanOne[T, R, PR](rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
