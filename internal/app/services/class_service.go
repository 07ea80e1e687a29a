package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/pointsboard/internal/app/models"
	"github.com/yigit/pointsboard/internal/app/repositories"
	"github.com/yigit/pointsboard/internal/pkg/apperrors"
)

// ClassService defines the operations on a teacher's classes
type ClassService interface {
	CreateClass(ctx context.Context, ownerID uuid.UUID, name string) (*models.Class, error)
	GetClass(ctx context.Context, ownerID, id uuid.UUID) (*models.Class, error)
	ListClasses(ctx context.Context, ownerID uuid.UUID) ([]models.Class, error)
	UpdateClass(ctx context.Context, ownerID, id uuid.UUID, name string) (*models.Class, error)
	DeleteClass(ctx context.Context, ownerID, id uuid.UUID) error
}

type classServiceImpl struct {
	classRepo repositories.ClassRepository
	logger    zerolog.Logger
}

// NewClassService creates a new class service instance
func NewClassService(classRepo repositories.ClassRepository, logger zerolog.Logger) ClassService {
	return &classServiceImpl{classRepo: classRepo, logger: logger}
}

func validateName(kind, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: %s name cannot be empty", apperrors.ErrValidationFailed, kind)
	}
	return name, nil
}

func (s *classServiceImpl) CreateClass(ctx context.Context, ownerID uuid.UUID, name string) (*models.Class, error) {
	name, err := validateName("class", name)
	if err != nil {
		return nil, err
	}
	class := &models.Class{Name: name, OwnerID: ownerID}
	if err := s.classRepo.CreateClass(ctx, class); err != nil {
		return nil, err
	}
	s.logger.Info().Str("classID", class.ID.String()).Str("ownerID", ownerID.String()).Msg("Class created")
	return class, nil
}

func (s *classServiceImpl) GetClass(ctx context.Context, ownerID, id uuid.UUID) (*models.Class, error) {
	return s.classRepo.GetClass(ctx, ownerID, id)
}

func (s *classServiceImpl) ListClasses(ctx context.Context, ownerID uuid.UUID) ([]models.Class, error) {
	return s.classRepo.ListClasses(ctx, ownerID)
}

func (s *classServiceImpl) UpdateClass(ctx context.Context, ownerID, id uuid.UUID, name string) (*models.Class, error) {
	name, err := validateName("class", name)
	if err != nil {
		return nil, err
	}
	if err := s.classRepo.UpdateClass(ctx, ownerID, id, name); err != nil {
		return nil, err
	}
	return s.classRepo.GetClass(ctx, ownerID, id)
}

// DeleteClass refuses to delete a class that still has students. The check
// runs before any delete is issued.
func (s *classServiceImpl) DeleteClass(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.classRepo.GetClass(ctx, ownerID, id); err != nil {
		return err
	}
	count, err := s.classRepo.CountStudents(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.NewCustomError(apperrors.ErrClassNotEmpty,
			fmt.Sprintf("class still has %d students", count))
	}
	if err := s.classRepo.DeleteClass(ctx, ownerID, id); err != nil {
		return err
	}
	s.logger.Info().Str("classID", id.String()).Msg("Class deleted")
	return nil
}
