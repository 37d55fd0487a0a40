// Package businessflow contains the core business logic and use cases for listener workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Error codes carried by BusinessError. Handlers map these to HTTP statuses.
const (
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodePermissionDenied   = "PERMISSION_DENIED"
	CodeInvalidArgument    = "INVALID_ARGUMENT"
	CodeNotFound           = "NOT_FOUND"
	CodeFailedPrecondition = "FAILED_PRECONDITION"
	CodeAlreadyExists      = "ALREADY_EXISTS"
	CodeInternal           = "INTERNAL"
)

// Business flow error constants
var (
	// Application-related errors
	ErrApplicationNotFound      = errors.New("application not found")
	ErrApplicationNotPending    = errors.New("application has already been reviewed")
	ErrApplicationAlreadyExists = errors.New("an application for this phone number already exists")
	ErrPhoneInvalid             = errors.New("phone number is invalid")
	ErrPayoutDetailsMissing     = errors.New("bank account details or a UPI ID are required")

	// Listener-related errors
	ErrListenerNotFound      = errors.New("listener not found")
	ErrListenerExists        = errors.New("a listener profile already exists for this account")
	ErrListenerSuspended     = errors.New("listener account is suspended")
	ErrOnboardingNotComplete = errors.New("onboarding is not complete")
	ErrOnboardingNotRequired = errors.New("listener is not awaiting onboarding")
	ErrInvalidAvailability   = errors.New("invalid availability state")

	// Earning and session errors
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionNotCompleted = errors.New("session is not completed")
	ErrNegativeDuration    = errors.New("session duration is negative")
	ErrMessageFromListener = errors.New("message was sent by the listener, nothing to settle")

	// Identity provider errors
	ErrIdentityUnavailable = errors.New("identity provider unavailable")
	ErrIdentityConflict    = errors.New("identity already linked to another listener")

	// Auth errors
	ErrAdminNotFound     = errors.New("admin not found")
	ErrAdminInactive     = errors.New("admin account is inactive")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrInvalidCaptcha    = errors.New("invalid captcha")
	ErrCacheNotAvailable = errors.New("cache not available")

	// Filter errors
	ErrInvalidPage           = errors.New("page must be at least 1")
	ErrInvalidPageSize       = errors.New("page size must be between 1 and 100")
	ErrStartDateAfterEndDate = errors.New("start date cannot be after end date")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

// ErrorCode extracts the code from a BusinessError chain, defaulting to CodeInternal.
func ErrorCode(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return CodeInternal
}

func IsApplicationNotFound(err error) bool {
	return errors.Is(err, ErrApplicationNotFound)
}

func IsApplicationNotPending(err error) bool {
	return errors.Is(err, ErrApplicationNotPending)
}

func IsApplicationAlreadyExists(err error) bool {
	return errors.Is(err, ErrApplicationAlreadyExists)
}

func IsPayoutDetailsMissing(err error) bool {
	return errors.Is(err, ErrPayoutDetailsMissing)
}

func IsPhoneInvalid(err error) bool {
	return errors.Is(err, ErrPhoneInvalid)
}

func IsListenerNotFound(err error) bool {
	return errors.Is(err, ErrListenerNotFound)
}

func IsListenerExists(err error) bool {
	return errors.Is(err, ErrListenerExists)
}

func IsListenerSuspended(err error) bool {
	return errors.Is(err, ErrListenerSuspended)
}

func IsOnboardingNotComplete(err error) bool {
	return errors.Is(err, ErrOnboardingNotComplete)
}

func IsOnboardingNotRequired(err error) bool {
	return errors.Is(err, ErrOnboardingNotRequired)
}

func IsInvalidAvailability(err error) bool {
	return errors.Is(err, ErrInvalidAvailability)
}

func IsSessionNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

func IsSessionNotCompleted(err error) bool {
	return errors.Is(err, ErrSessionNotCompleted)
}

func IsNegativeDuration(err error) bool {
	return errors.Is(err, ErrNegativeDuration)
}

func IsMessageFromListener(err error) bool {
	return errors.Is(err, ErrMessageFromListener)
}

func IsIdentityUnavailable(err error) bool {
	return errors.Is(err, ErrIdentityUnavailable)
}

func IsIdentityConflict(err error) bool {
	return errors.Is(err, ErrIdentityConflict)
}

func IsAdminNotFound(err error) bool {
	return errors.Is(err, ErrAdminNotFound)
}

func IsAdminInactive(err error) bool {
	return errors.Is(err, ErrAdminInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsInvalidCaptcha(err error) bool {
	return errors.Is(err, ErrInvalidCaptcha)
}

func IsCacheNotAvailable(err error) bool {
	return errors.Is(err, ErrCacheNotAvailable)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}

func IsStartDateAfterEndDate(err error) bool {
	return errors.Is(err, ErrStartDateAfterEndDate)
}
