package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code string, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    "BAD_REQUEST",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     err,
	}
}

func Unauthorized(message string, err error) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     err,
	}
}

func Forbidden(message string, err error) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     err,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Messaging-core taxonomy. Validation errors are raised before any write is
// attempted; storage errors are mapped once at the repository boundary.

func InvalidParticipants(message string, err error) *AppError {
	return &AppError{
		Code:    "INVALID_PARTICIPANTS",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     err,
	}
}

func ProfileNotFound(userID string, err error) *AppError {
	return &AppError{
		Code:    "PROFILE_NOT_FOUND",
		Message: fmt.Sprintf("Profile %s could not be resolved", userID),
		Status:  http.StatusNotFound,
		Err:     err,
	}
}

func ThreadNotFound(threadID string, err error) *AppError {
	return &AppError{
		Code:    "THREAD_NOT_FOUND",
		Message: fmt.Sprintf("Thread %s not found", threadID),
		Status:  http.StatusNotFound,
		Err:     err,
	}
}

func ConversationBlocked(message string) *AppError {
	return &AppError{
		Code:    "CONVERSATION_BLOCKED",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     nil,
	}
}

func EmptyMessage(message string) *AppError {
	return &AppError{
		Code:    "EMPTY_MESSAGE",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     nil,
	}
}

func RateLimited(message string, waitTime time.Duration) *AppError {
	return &AppError{
		Code:    "RATE_LIMITED",
		Message: fmt.Sprintf("%s (retry in %s)", message, waitTime.Round(time.Second)),
		Status:  http.StatusTooManyRequests,
		Err:     nil,
	}
}

func PermissionDenied(message string, err error) *AppError {
	return &AppError{
		Code:    "PERMISSION_DENIED",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     err,
	}
}

func Unexpected(message string, err error) *AppError {
	return &AppError{
		Code:    "UNEXPECTED",
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

func Conflict(message string, err error) *AppError {
	return &AppError{
		Code:    "CONFLICT",
		Message: message,
		Status:  http.StatusConflict,
		Err:     err,
	}
}

// FromFirestore maps a raw Firestore error to the taxonomy. PermissionDenied
// from the store is surfaced verbatim to the caller; anything unrecognized
// becomes UNEXPECTED.
func FromFirestore(op string, err error) *AppError {
	switch status.Code(err) {
	case codes.NotFound:
		return NotFound(op, err)
	case codes.PermissionDenied:
		return PermissionDenied(fmt.Sprintf("Store rejected %s", op), err)
	case codes.AlreadyExists:
		return Conflict(fmt.Sprintf("%s already exists", op), err)
	default:
		return Unexpected(fmt.Sprintf("Failed to %s", op), err)
	}
}

func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
