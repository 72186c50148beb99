package errors

import (
	stderrors "errors"
	"fmt"
	"math"
	"net/http"
	"runtime"
	"strings"
	"time"
)

// ErrorCode классифицирует ошибку и определяет HTTP статус
type ErrorCode string

const (
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeRateLimit    ErrorCode = "RATE_LIMIT_EXCEEDED"
)

// Status maps the code to the HTTP status the API answers with.
func (c ErrorCode) Status() int {
	switch c {
	case ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// AppError is the single error type carried from services to the HTTP layer.
// Only Code, Message and Details are rendered to clients.
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`

	// RetryAfter is set on rate limit errors.
	RetryAfter time.Duration     `json:"-"`
	Context    map[string]string `json:"-"`
	Stack      []string          `json:"-"`
	UserID     string            `json:"-"`
	Cause      error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) Status() int {
	return e.Code.Status()
}

func (e *AppError) IsInternal() bool {
	return e.Code == ErrCodeInternal
}

// IsAccessDenied covers both missing and insufficient credentials.
func (e *AppError) IsAccessDenied() bool {
	return e.Code == ErrCodeUnauthorized || e.Code == ErrCodeForbidden
}

// WithContext adds a log-only key.
func (e *AppError) WithContext(key, value string) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// WithDetail adds a client-visible key.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func (e *AppError) WithRequestID(requestID string) *AppError {
	e.RequestID = requestID
	return e
}

func (e *AppError) WithUserID(userID string) *AppError {
	e.UserID = userID
	return e
}

// New builds an AppError. Internal errors capture the caller stack.
func New(code ErrorCode, message string) *AppError {
	appErr := &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	if code == ErrCodeInternal {
		appErr.Stack = callers()
	}
	return appErr
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

func callers() []string {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var stack []string
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.Function, "internal/common/errors") {
			stack = append(stack, fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function))
		}
		if !more || len(stack) >= 10 {
			break
		}
	}
	return stack
}

func NewValidationError(field, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("Validation failed for field '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

func NewNotFoundError(resource string, id interface{}) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource)).
		WithDetail("resource", resource).
		WithDetail("id", id)
}

func NewUnauthorizedError(reason string) *AppError {
	return New(ErrCodeUnauthorized, fmt.Sprintf("Unauthorized: %s", reason))
}

func NewForbiddenError(reason string) *AppError {
	return New(ErrCodeForbidden, fmt.Sprintf("Forbidden: %s", reason)).
		WithDetail("reason", reason)
}

func NewConflictError(resource, reason string) *AppError {
	return New(ErrCodeConflict, fmt.Sprintf("Conflict with %s: %s", resource, reason)).
		WithDetail("resource", resource).
		WithDetail("reason", reason)
}

// NewRateLimitError reports an exhausted quota for scope. retryAfter is when
// the quota window resets; it is rounded up to whole seconds.
func NewRateLimitError(scope string, retryAfter time.Duration) *AppError {
	seconds := int64(math.Ceil(retryAfter.Seconds()))
	appErr := New(ErrCodeRateLimit, fmt.Sprintf("Rate limit exceeded for %s", scope)).
		WithDetail("scope", scope).
		WithDetail("retry_after_seconds", seconds)
	appErr.RetryAfter = time.Duration(seconds) * time.Second
	return appErr
}

// NewInternalError wraps a storage or infrastructure failure. The client sees
// "Operation failed: <operation>"; the cause stays in the logs.
func NewInternalError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeInternal, fmt.Sprintf("Operation failed: %s", operation)).
		WithContext("operation", operation)
}

// AsAppError finds the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if err == nil {
		return nil, false
	}
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
