package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "storyfeed-backend/internal/common/errors"
)

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("reader@example.com"))

	for _, bad := range []string{"", "not-an-email", "Name <reader@example.com>", strings.Repeat("a", 250) + "@x.io"} {
		err := ValidateEmail(bad)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation), bad)
	}
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("correct horse"))
	assert.Error(t, ValidatePassword("short"))
	assert.Error(t, ValidatePassword(strings.Repeat("x", 73)))
}

func TestValidateText(t *testing.T) {
	assert.NoError(t, ValidateText("content", "hello", 5))
	assert.Error(t, ValidateText("content", "   ", 5))
	assert.Error(t, ValidateText("content", "hello!", 5))
	// runes, not bytes
	assert.NoError(t, ValidateText("content", "привет", 6))
}

func TestValidateOneOf(t *testing.T) {
	assert.NoError(t, ValidateOneOf("status", "draft", "draft", "published"))

	err := ValidateOneOf("status", "deleted", "draft", "published")
	appErr, ok := apperrors.AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, "status", appErr.Details["field"])
}

func TestNormalizePage(t *testing.T) {
	limit, offset := NormalizePage(0, -5)
	assert.Equal(t, DefaultLimit, limit)
	assert.Equal(t, 0, offset)

	limit, offset = NormalizePage(500, 40)
	assert.Equal(t, MaxLimit, limit)
	assert.Equal(t, 40, offset)
}
