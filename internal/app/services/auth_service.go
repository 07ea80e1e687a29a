package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/pointsboard/internal/app/models"
	"github.com/yigit/pointsboard/internal/app/models/dto"
	"github.com/yigit/pointsboard/internal/app/repositories"
	"github.com/yigit/pointsboard/internal/domain/access"
	"github.com/yigit/pointsboard/internal/pkg/apperrors"
	"github.com/yigit/pointsboard/internal/pkg/auth"
)

// AuthService handles registration, login and the teacher lock status
type AuthService interface {
	VerifyCode(ctx context.Context, code string) (*models.ActivationCode, error)
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	AdminLogin(ctx context.Context, req *dto.AdminLoginRequest) (*dto.AuthResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*dto.ProfileResponse, error)
	CheckAccess(ctx context.Context, userID uuid.UUID) (access.Status, error)
}

type authServiceImpl struct {
	profileRepo  repositories.ProfileRepository
	codeRepo     repositories.ActivationCodeRepository
	settingsRepo repositories.AdminSettingsRepository
	jwtService   *auth.JWTService
	now          Clock
	logger       zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	profileRepo repositories.ProfileRepository,
	codeRepo repositories.ActivationCodeRepository,
	settingsRepo repositories.AdminSettingsRepository,
	jwtService *auth.JWTService,
	clock Clock,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		profileRepo:  profileRepo,
		codeRepo:     codeRepo,
		settingsRepo: settingsRepo,
		jwtService:   jwtService,
		now:          clockOrNow(clock),
		logger:       logger,
	}
}

// VerifyCode returns the code if it exists and has not been redeemed
func (s *authServiceImpl) VerifyCode(ctx context.Context, code string) (*models.ActivationCode, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: activation code cannot be empty", apperrors.ErrValidationFailed)
	}
	return s.codeRepo.FindUnusedActivationCode(ctx, code)
}

func (s *authServiceImpl) validateRegistration(req *dto.RegisterRequest) error {
	if strings.TrimSpace(req.Code) == "" {
		return fmt.Errorf("%w: activation code cannot be empty", apperrors.ErrValidationFailed)
	}
	if strings.TrimSpace(req.FullName) == "" {
		return fmt.Errorf("%w: full name cannot be empty", apperrors.ErrValidationFailed)
	}
	if strings.TrimSpace(req.Username) == "" {
		return fmt.Errorf("%w: username cannot be empty", apperrors.ErrValidationFailed)
	}
	return auth.ValidatePassword(req.Password)
}

// Register creates a teacher profile and redeems the activation code in one step.
// A code redeemed by someone else in the meantime yields ErrCodeAlreadyUsed and
// no profile is created.
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := s.validateRegistration(req); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	profile := &models.Profile{
		FullName:     strings.TrimSpace(req.FullName),
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: hash,
	}
	code, err := s.profileRepo.RegisterWithCode(ctx, profile, strings.TrimSpace(req.Code), s.now())
	if err != nil {
		s.logger.Warn().Err(err).Str("username", profile.Username).Msg("Registration rejected")
		return nil, err
	}

	s.logger.Info().
		Str("profileID", profile.ID.String()).
		Str("code", code.Code).
		Int("validDays", code.ValidDays).
		Msg("Teacher registered")

	resp, err := s.issue(profile.ID, profile.Username, models.RoleTeacher)
	if err != nil {
		return nil, err
	}
	view := dto.FromProfile(profile, s.now())
	view.ActivationCode = code.Code
	resp.Profile = &view
	return resp, nil
}

// Login authenticates a teacher. Expired teachers can still sign in; the
// returned status tells the client to show the lock screen.
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	profile, err := s.profileRepo.GetProfileByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, apperrors.ErrProfileNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if profile.Role != models.RoleTeacher || !auth.CheckPassword(profile.PasswordHash, req.Password) {
		s.logger.Debug().Str("username", req.Username).Msg("Invalid teacher credentials")
		return nil, apperrors.ErrInvalidCredentials
	}

	resp, err := s.issue(profile.ID, profile.Username, models.RoleTeacher)
	if err != nil {
		return nil, err
	}
	view := dto.FromProfile(profile, s.now())
	resp.Profile = &view
	return resp, nil
}

// AdminLogin checks the submitted pair against the stored admin credentials
func (s *authServiceImpl) AdminLogin(ctx context.Context, req *dto.AdminLoginRequest) (*dto.AuthResponse, error) {
	settings, err := s.settingsRepo.GetAdminSettings(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrAdminNotSet) {
			s.logger.Warn().Msg("Admin login attempted before admin credentials were set")
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	decision := access.VerifyAdmin(
		access.Credentials{Username: strings.TrimSpace(req.Username), Password: req.Password},
		access.StoredCredentials{Username: settings.Username, PasswordHash: settings.PasswordHash},
	)
	if decision != access.Authorized {
		s.logger.Warn().Str("username", req.Username).Msg("Admin login rejected")
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issue(uuid.Nil, settings.Username, models.RoleAdmin)
}

// Me returns the signed-in teacher with lock status and the code they redeemed
func (s *authServiceImpl) Me(ctx context.Context, userID uuid.UUID) (*dto.ProfileResponse, error) {
	profile, err := s.profileRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := dto.FromProfile(profile, s.now())

	code, err := s.codeRepo.GetActivationCodeByConsumer(ctx, userID)
	switch {
	case err == nil:
		view.ActivationCode = code.Code
	case !errors.Is(err, apperrors.ErrCodeNotFound):
		return nil, err
	}
	return &view, nil
}

// CheckAccess evaluates the teacher's lock status now
func (s *authServiceImpl) CheckAccess(ctx context.Context, userID uuid.UUID) (access.Status, error) {
	profile, err := s.profileRepo.GetProfile(ctx, userID)
	if err != nil {
		return access.StatusExpired, err
	}
	return access.CheckExpiry(profile.ExpireAt, s.now()), nil
}

func (s *authServiceImpl) issue(userID uuid.UUID, username string, role models.RoleType) (*dto.AuthResponse, error) {
	token, expiresIn, err := s.jwtService.GenerateToken(userID, username, role)
	if err != nil {
		s.logger.Error().Err(err).Str("username", username).Msg("Failed to generate access token")
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	return &dto.AuthResponse{
		Token: dto.TokenResponse{AccessToken: token, TokenType: "Bearer", ExpiresIn: expiresIn},
	}, nil
}
