package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	apperrors "storyfeed-backend/internal/common/errors"
)

const (
	// Максимальные длины для различных полей
	MaxNameLength    = 100
	MaxEmailLength   = 254
	MaxTitleLength   = 200
	MaxContentLength = 20000
	MaxCommentLength = 2000

	MinPasswordLength = 8
	MaxPasswordLength = 72

	DefaultLimit = 20
	MaxLimit     = 100
)

// ValidateEmail проверяет адрес электронной почты
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperrors.NewValidationError("email", "cannot be empty")
	}
	if len(email) > MaxEmailLength {
		return apperrors.NewValidationError("email", fmt.Sprintf("cannot exceed %d characters", MaxEmailLength))
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apperrors.NewValidationError("email", "invalid address")
	}
	return nil
}

// ValidatePassword проверяет длину пароля; bcrypt игнорирует всё после 72 байт
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return apperrors.NewValidationError("password", fmt.Sprintf("must be at least %d characters long", MinPasswordLength))
	}
	if len(password) > MaxPasswordLength {
		return apperrors.NewValidationError("password", fmt.Sprintf("cannot exceed %d bytes", MaxPasswordLength))
	}
	return nil
}

func ValidateName(name string) error {
	return ValidateText("name", name, MaxNameLength)
}

// ValidateText checks that a trimmed value is present and at most max runes.
func ValidateText(field, value string, max int) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return apperrors.NewValidationError(field, "cannot be empty")
	}
	if utf8.RuneCountInString(value) > max {
		return apperrors.NewValidationError(field, fmt.Sprintf("cannot exceed %d characters", max))
	}
	return nil
}

// ValidateOneOf checks value against a closed set.
func ValidateOneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return apperrors.NewValidationError(field, fmt.Sprintf("must be one of %s", strings.Join(allowed, ", ")))
}

// NormalizePage clamps paging parameters: a non-positive limit becomes the
// default and offsets never go negative.
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
