package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/pointsboard/internal/app/models"
	"github.com/yigit/pointsboard/internal/app/repositories"
	"github.com/yigit/pointsboard/internal/pkg/apperrors"
)

// StudentService defines the operations on students and their points
type StudentService interface {
	CreateStudent(ctx context.Context, ownerID, classID uuid.UUID, name string) (*models.Student, error)
	ListStudents(ctx context.Context, ownerID uuid.UUID, filter repositories.StudentFilter) ([]models.Student, error)
	DeleteStudent(ctx context.Context, ownerID, id uuid.UUID) error
	AdjustPoints(ctx context.Context, ownerID, id uuid.UUID, delta int) (*models.Student, error)
	RenameStudent(ctx context.Context, ownerID, id uuid.UUID, name string) (*models.Student, error)
}

type studentServiceImpl struct {
	studentRepo repositories.StudentRepository
	classRepo   repositories.ClassRepository
	board       *scoreboard
	logger      zerolog.Logger
}

// NewStudentService creates a new student service instance
func NewStudentService(repos *repositories.Repositories, publisher ScoreboardPublisher, logger zerolog.Logger) StudentService {
	return &studentServiceImpl{
		studentRepo: repos.Students,
		classRepo:   repos.Classes,
		board: &scoreboard{
			classRepo:   repos.Classes,
			studentRepo: repos.Students,
			groupRepo:   repos.Groups,
			publisher:   publisherOrNoop(publisher),
			logger:      logger,
		},
		logger: logger,
	}
}

// CreateStudent adds an unassigned student with zero points
func (s *studentServiceImpl) CreateStudent(ctx context.Context, ownerID, classID uuid.UUID, name string) (*models.Student, error) {
	name, err := validateName("student", name)
	if err != nil {
		return nil, err
	}
	if _, err := s.classRepo.GetClass(ctx, ownerID, classID); err != nil {
		return nil, err
	}

	student := &models.Student{Name: name, OwnerID: ownerID, ClassID: classID}
	if err := s.studentRepo.CreateStudent(ctx, student); err != nil {
		return nil, err
	}
	s.board.publish(ctx, ownerID, classID, EventPointsChanged)
	return student, nil
}

// ListStudents returns the owner's students, highest points first
func (s *studentServiceImpl) ListStudents(ctx context.Context, ownerID uuid.UUID, filter repositories.StudentFilter) ([]models.Student, error) {
	filter.NameContains = strings.TrimSpace(filter.NameContains)
	return s.studentRepo.ListStudents(ctx, ownerID, filter)
}

func (s *studentServiceImpl) DeleteStudent(ctx context.Context, ownerID, id uuid.UUID) error {
	student, err := s.studentRepo.GetStudent(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.studentRepo.DeleteStudent(ctx, ownerID, id); err != nil {
		return err
	}
	s.board.publish(ctx, ownerID, student.ClassID, EventPointsChanged)
	return nil
}

// MaxPointsDelta bounds a single points adjustment in either direction
const MaxPointsDelta = 100000

// AdjustPoints adds delta to the student's points. Points may go negative but
// must stay within the range of the points column.
func (s *studentServiceImpl) AdjustPoints(ctx context.Context, ownerID, id uuid.UUID, delta int) (*models.Student, error) {
	if delta == 0 {
		return nil, fmt.Errorf("%w: delta cannot be zero", apperrors.ErrValidationFailed)
	}
	if delta > MaxPointsDelta || delta < -MaxPointsDelta {
		return nil, fmt.Errorf("%w: delta must be between %d and %d", apperrors.ErrValidationFailed, -MaxPointsDelta, MaxPointsDelta)
	}
	current, err := s.studentRepo.GetStudent(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if next := int64(current.Points) + int64(delta); next > math.MaxInt32 || next < math.MinInt32 {
		return nil, fmt.Errorf("%w: points would leave the range %d to %d", apperrors.ErrValidationFailed, math.MinInt32, math.MaxInt32)
	}

	student, err := s.studentRepo.AdjustPoints(ctx, ownerID, id, delta)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Str("studentID", id.String()).Int("delta", delta).Int("points", student.Points).Msg("Points adjusted")
	s.board.publish(ctx, ownerID, student.ClassID, EventPointsChanged)
	return student, nil
}

func (s *studentServiceImpl) RenameStudent(ctx context.Context, ownerID, id uuid.UUID, name string) (*models.Student, error) {
	name, err := validateName("student", name)
	if err != nil {
		return nil, err
	}
	if err := s.studentRepo.RenameStudent(ctx, ownerID, id, name); err != nil {
		return nil, err
	}
	student, err := s.studentRepo.GetStudent(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	s.board.publish(ctx, ownerID, student.ClassID, EventPointsChanged)
	return student, nil
}
