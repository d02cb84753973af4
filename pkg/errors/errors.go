package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors
var (
	ErrValidation            = errors.New("validation failed")
	ErrMemberNotFound        = errors.New("member not found")
	ErrMemberCompleted       = errors.New("member loan is already completed")
	ErrInvalidPaymentAmount  = errors.New("invalid payment amount")
	ErrPaymentExceedsBalance = errors.New("payment amount exceeds remaining balance")
	ErrPersistence           = errors.New("persistence operation failed")
	ErrPartialWrite          = errors.New("write was only partially applied")
	ErrCache                 = errors.New("cache operation failed")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrUsernameTaken         = errors.New("username already registered")
	ErrConcurrentUpdate      = errors.New("record was changed by another request")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeValidation            = "VALIDATION_ERROR"
	ErrCodeMemberNotFound        = "MEMBER_NOT_FOUND"
	ErrCodeMemberCompleted       = "MEMBER_COMPLETED"
	ErrCodeInvalidPaymentAmount  = "INVALID_PAYMENT_AMOUNT"
	ErrCodePaymentExceedsBalance = "PAYMENT_EXCEEDS_BALANCE"
	ErrCodeDatabaseError         = "DATABASE_ERROR"
	ErrCodePartialWrite          = "PARTIAL_WRITE"
	ErrCodeCacheError            = "CACHE_ERROR"
	ErrCodeUnauthorized          = "UNAUTHORIZED"
	ErrCodeUsernameTaken         = "USERNAME_TAKEN"
	ErrCodeConcurrentUpdate      = "CONCURRENT_UPDATE"
)

// Wrap common errors with business context

func WrapValidation(message string) *BusinessError {
	return NewBusinessError(ErrCodeValidation, message, ErrValidation)
}

func WrapMemberNotFound(memberID string) *BusinessError {
	return NewBusinessError(
		ErrCodeMemberNotFound,
		fmt.Sprintf("Member with ID %s not found", memberID),
		ErrMemberNotFound,
	)
}

func WrapMemberCompleted(memberID string) *BusinessError {
	return NewBusinessError(
		ErrCodeMemberCompleted,
		fmt.Sprintf("Member with ID %s has no outstanding balance", memberID),
		ErrMemberCompleted,
	)
}

func WrapInvalidPaymentAmount(amount string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPaymentAmount,
		fmt.Sprintf("Invalid payment amount: %s", amount),
		ErrInvalidPaymentAmount,
	)
}

func WrapPaymentExceedsBalance(amount, balance string) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentExceedsBalance,
		fmt.Sprintf("Payment amount %s exceeds remaining balance %s", amount, balance),
		ErrPaymentExceedsBalance,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		errors.Join(ErrPersistence, err),
	)
}

// WrapPartialWrite reports a multi-step write that stopped after step `applied`
func WrapPartialWrite(applied string, err error) *BusinessError {
	return NewBusinessError(
		ErrCodePartialWrite,
		fmt.Sprintf("%s was applied but the follow-up write failed", applied),
		errors.Join(ErrPartialWrite, err),
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		errors.Join(ErrCache, err),
	)
}

func WrapUnauthorized(message string) *BusinessError {
	return NewBusinessError(ErrCodeUnauthorized, message, ErrUnauthorized)
}

func WrapUsernameTaken(username string) *BusinessError {
	return NewBusinessError(
		ErrCodeUsernameTaken,
		fmt.Sprintf("Username %s is already registered", username),
		ErrUsernameTaken,
	)
}

func WrapConcurrentUpdate(memberID string) *BusinessError {
	return NewBusinessError(
		ErrCodeConcurrentUpdate,
		fmt.Sprintf("Member %s was updated by another request. Please refresh and try again.", memberID),
		ErrConcurrentUpdate,
	)
}

// IsValidation reports whether err is caused by invalid user input
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidPaymentAmount) ||
		errors.Is(err, ErrPaymentExceedsBalance) ||
		errors.Is(err, ErrMemberCompleted)
}

// HTTPStatus maps an error to the HTTP status code it should be reported with
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrMemberNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUsernameTaken), errors.Is(err, ErrConcurrentUpdate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the user-facing message for err
func Message(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		if be.Code == ErrCodeDatabaseError {
			return "Something went wrong. Please try again."
		}
		return be.Message
	}
	return "Something went wrong. Please try again."
}

// Code returns the business error code of err, or "" when err is not a BusinessError
func Code(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}
