// Package repositories is the record store of the service. It persists
// profiles, classes, students, groups, activation codes and admin settings.
package repositories

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yigit/pointsboard/internal/app/models"
	"github.com/yigit/pointsboard/internal/db"
	"github.com/yigit/pointsboard/internal/domain/assignment"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// StudentFilter narrows ListStudents. Zero values match everything.
type StudentFilter struct {
	ClassID      *uuid.UUID
	NameContains string
}

// ProfileRepository stores teacher accounts
type ProfileRepository interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error)
	UpdateProfileExpiry(ctx context.Context, id uuid.UUID, expireAt time.Time) error
	ListProfiles(ctx context.Context, search string, page, size int) ([]models.Profile, int, error)
	DeleteProfile(ctx context.Context, id uuid.UUID) error
	// RegisterWithCode creates profile and consumes code in one transaction.
	// The profile's expiry is set to now plus the code's valid days.
	RegisterWithCode(ctx context.Context, profile *models.Profile, code string, now time.Time) (*models.ActivationCode, error)
}

// ClassRepository stores classes. Every call is scoped to the owning teacher.
type ClassRepository interface {
	CreateClass(ctx context.Context, class *models.Class) error
	GetClass(ctx context.Context, ownerID, id uuid.UUID) (*models.Class, error)
	ListClasses(ctx context.Context, ownerID uuid.UUID) ([]models.Class, error)
	UpdateClass(ctx context.Context, ownerID, id uuid.UUID, name string) error
	DeleteClass(ctx context.Context, ownerID, id uuid.UUID) error
	CountStudents(ctx context.Context, ownerID, classID uuid.UUID) (int, error)
}

// StudentRepository stores students. Every call is scoped to the owning teacher.
type StudentRepository interface {
	CreateStudent(ctx context.Context, student *models.Student) error
	GetStudent(ctx context.Context, ownerID, id uuid.UUID) (*models.Student, error)
	ListStudents(ctx context.Context, ownerID uuid.UUID, filter StudentFilter) ([]models.Student, error)
	DeleteStudent(ctx context.Context, ownerID, id uuid.UUID) error
	AdjustPoints(ctx context.Context, ownerID, id uuid.UUID, delta int) (*models.Student, error)
	RenameStudent(ctx context.Context, ownerID, id uuid.UUID, name string) error
}

// GroupRepository stores groups and applies committed assignments
type GroupRepository interface {
	assignment.Store
	ListGroups(ctx context.Context, ownerID, classID uuid.UUID) ([]models.Group, error)
}

// ActivationCodeRepository stores the codes issued by the admin
type ActivationCodeRepository interface {
	CreateActivationCode(ctx context.Context, code *models.ActivationCode) error
	FindUnusedActivationCode(ctx context.Context, code string) (*models.ActivationCode, error)
	GetActivationCodeByConsumer(ctx context.Context, profileID uuid.UUID) (*models.ActivationCode, error)
	ListActivationCodes(ctx context.Context) ([]models.ActivationCode, error)
	DeleteActivationCode(ctx context.Context, id uuid.UUID) error
}

// AdminSettingsRepository stores the singleton admin credential row
type AdminSettingsRepository interface {
	GetAdminSettings(ctx context.Context) (*models.AdminSettings, error)
	UpsertAdminSettings(ctx context.Context, settings *models.AdminSettings) error
}

// Repositories holds all the repository instances
type Repositories struct {
	Profiles        ProfileRepository
	Classes         ClassRepository
	Students        StudentRepository
	Groups          GroupRepository
	ActivationCodes ActivationCodeRepository
	AdminSettings   AdminSettingsRepository
}

// NewRepositories initializes the PostgreSQL repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		Profiles:        NewProfileRepository(database),
		Classes:         NewClassRepository(database),
		Students:        NewStudentRepository(database),
		Groups:          NewGroupRepository(database),
		ActivationCodes: NewActivationCodeRepository(database),
		AdminSettings:   NewAdminSettingsRepository(database),
	}
}
