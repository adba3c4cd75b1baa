package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"kqs-apply/pkg/apperror"

	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	t.Run("Should return the AppError message through wrapping", func(t *testing.T) {
		err := fmt.Errorf("submit: %w", apperror.TooManyRequests("slow down"))
		assert.Equal(t, "slow down", apperror.UserMessage(err, "fallback"))
	})

	t.Run("Should fall back for plain errors", func(t *testing.T) {
		assert.Equal(t, "fallback", apperror.UserMessage(errors.New("boom"), "fallback"))
	})
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := apperror.Unavailable("Service down", cause)

	assert.Equal(t, http.StatusServiceUnavailable, err.Code)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Service down: dial tcp: refused", err.Error())
}
