package apperrors

import "errors"

// Common errors
var (
	ErrConflict = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrAccountExpired     = errors.New("account authorization has expired")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
)

// Account Errors
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrUsernameExists  = errors.New("username already exists")
	ErrAdminNotSet     = errors.New("admin credentials are not configured")
)

// Class Errors
var (
	ErrClassNotFound = errors.New("class not found")
	ErrClassNotEmpty = errors.New("class still has students and cannot be deleted")
)

// Student and group Errors
var (
	ErrStudentNotFound  = errors.New("student not found")
	ErrGroupNotFound    = errors.New("group not found")
	ErrStudentNotInPool = errors.New("student is not in the source pool")
	ErrNotGroupMember   = errors.New("student is not a member of the group")
	ErrCommitInProgress = errors.New("a commit for this draft is already in progress")
	ErrDraftNotFound    = errors.New("assignment draft not found or expired")
)

// Activation code errors
var (
	ErrCodeNotFound    = errors.New("activation code not found")
	ErrCodeAlreadyUsed = errors.New("activation code has already been used")
)

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}
