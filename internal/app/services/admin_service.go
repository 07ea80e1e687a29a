package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/pointsboard/internal/app/models"
	"github.com/yigit/pointsboard/internal/app/repositories"
	"github.com/yigit/pointsboard/internal/domain/access"
	"github.com/yigit/pointsboard/internal/pkg/apperrors"
	"github.com/yigit/pointsboard/internal/pkg/auth"
	"github.com/yigit/pointsboard/internal/pkg/helpers"
)

// DefaultCodePrefix is used when no activation code prefix is configured
const DefaultCodePrefix = "APPLE"

const (
	codeSuffixLength = 6
	codeAlphabet     = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// AdminService defines the administrator operations
type AdminService interface {
	GenerateCode(ctx context.Context, validDays int) (*models.ActivationCode, error)
	ListCodes(ctx context.Context) ([]models.ActivationCode, error)
	DeleteCode(ctx context.Context, id uuid.UUID) error

	ListTeachers(ctx context.Context, search string, page, size int) ([]models.Profile, int, error)
	RenewTeacher(ctx context.Context, id uuid.UUID, days int) (*models.Profile, error)
	DeleteTeacher(ctx context.Context, id uuid.UUID) error

	GetSettings(ctx context.Context) (*models.AdminSettings, error)
	UpdateSettings(ctx context.Context, username, password string) (*models.AdminSettings, error)
}

type adminServiceImpl struct {
	profileRepo  repositories.ProfileRepository
	codeRepo     repositories.ActivationCodeRepository
	settingsRepo repositories.AdminSettingsRepository
	codePrefix   string
	now          Clock
	logger       zerolog.Logger
}

// NewAdminService creates a new admin service instance
func NewAdminService(repos *repositories.Repositories, codePrefix string, clock Clock, logger zerolog.Logger) AdminService {
	codePrefix = strings.ToUpper(strings.TrimSpace(codePrefix))
	if codePrefix == "" {
		codePrefix = DefaultCodePrefix
	}
	return &adminServiceImpl{
		profileRepo:  repos.Profiles,
		codeRepo:     repos.ActivationCodes,
		settingsRepo: repos.AdminSettings,
		codePrefix:   codePrefix,
		now:          clockOrNow(clock),
		logger:       logger,
	}
}

// MaxDays bounds code validity and a single renewal
const MaxDays = 3650

func validateDays(days int) error {
	if days <= 0 {
		return fmt.Errorf("%w: number of days must be positive", apperrors.ErrValidationFailed)
	}
	if days > MaxDays {
		return fmt.Errorf("%w: number of days cannot exceed %d", apperrors.ErrValidationFailed, MaxDays)
	}
	return nil
}

// newCodeSuffix derives an uppercase base-36 suffix from a random uuid
func newCodeSuffix() string {
	id := uuid.New()
	var b strings.Builder
	for i := 0; i < codeSuffixLength; i++ {
		b.WriteByte(codeAlphabet[int(id[i])%len(codeAlphabet)])
	}
	return b.String()
}

// GenerateCode issues a new unused code valid for validDays once redeemed.
// A suffix collision surfaces as ErrConflict and is not retried.
func (s *adminServiceImpl) GenerateCode(ctx context.Context, validDays int) (*models.ActivationCode, error) {
	if err := validateDays(validDays); err != nil {
		return nil, err
	}
	code := &models.ActivationCode{
		Code:      s.codePrefix + "-" + newCodeSuffix(),
		ValidDays: validDays,
		CreatedAt: s.now(),
	}
	if err := s.codeRepo.CreateActivationCode(ctx, code); err != nil {
		return nil, err
	}
	s.logger.Info().Str("code", code.Code).Int("validDays", validDays).Msg("Activation code generated")
	return code, nil
}

func (s *adminServiceImpl) ListCodes(ctx context.Context) ([]models.ActivationCode, error) {
	return s.codeRepo.ListActivationCodes(ctx)
}

func (s *adminServiceImpl) DeleteCode(ctx context.Context, id uuid.UUID) error {
	if err := s.codeRepo.DeleteActivationCode(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("codeID", id.String()).Msg("Activation code deleted")
	return nil
}

// ListTeachers pages through teacher accounts whose username contains search
func (s *adminServiceImpl) ListTeachers(ctx context.Context, search string, page, size int) ([]models.Profile, int, error) {
	return s.profileRepo.ListProfiles(ctx, strings.TrimSpace(search), page, size)
}

// RenewTeacher extends the teacher's authorization by days. A lapsed account
// is renewed from now, an active one from its current expiry.
func (s *adminServiceImpl) RenewTeacher(ctx context.Context, id uuid.UUID, days int) (*models.Profile, error) {
	if err := validateDays(days); err != nil {
		return nil, err
	}
	profile, err := s.profileRepo.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile.Role != models.RoleTeacher {
		return nil, apperrors.ErrProfileNotFound
	}

	expireAt := helpers.AddDays(access.RenewalBase(profile.ExpireAt, s.now()), days)
	if err := s.profileRepo.UpdateProfileExpiry(ctx, id, expireAt); err != nil {
		return nil, err
	}
	profile.ExpireAt = &expireAt

	s.logger.Info().
		Str("profileID", id.String()).
		Int("days", days).
		Time("expireAt", expireAt).
		Msg("Teacher authorization renewed")
	return profile, nil
}

// DeleteTeacher removes a teacher account with all its classes
func (s *adminServiceImpl) DeleteTeacher(ctx context.Context, id uuid.UUID) error {
	if err := s.profileRepo.DeleteProfile(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("profileID", id.String()).Msg("Teacher deleted")
	return nil
}

func (s *adminServiceImpl) GetSettings(ctx context.Context) (*models.AdminSettings, error) {
	return s.settingsRepo.GetAdminSettings(ctx)
}

// UpdateSettings replaces the admin credentials. The password is stored hashed.
func (s *adminServiceImpl) UpdateSettings(ctx context.Context, username, password string) (*models.AdminSettings, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username cannot be empty", apperrors.ErrValidationFailed)
	}
	if err := auth.ValidatePassword(password); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	settings := &models.AdminSettings{
		ID:           models.AdminSettingsID,
		Username:     username,
		PasswordHash: hash,
		UpdatedAt:    s.now(),
	}
	if err := s.settingsRepo.UpsertAdminSettings(ctx, settings); err != nil {
		return nil, err
	}
	s.logger.Info().Str("username", username).Msg("Admin credentials updated")
	return settings, nil
}
