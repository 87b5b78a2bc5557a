package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCode(t *testing.T) {
	assert.Equal(t, CodeNotFound, ErrorCode(NewNotFoundError("Workshop", 3)))
	assert.Equal(t, CodeConflict, ErrorCode(fmt.Errorf("wrapped: %w", NewConflictError("dup"))))
	assert.Equal(t, CodeInternal, ErrorCode(errors.New("plain")))
	assert.True(t, IsCode(NewTokenInvalidError(TokenReasonUsed, "used"), CodeTokenInvalid))
	assert.False(t, IsCode(errors.New("plain"), CodeValidation))
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("db down")
	err := NewInternalError(cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "db down")
}

func TestRespondWithError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		err    error
		want   ErrorResponse
	}{
		{
			name:   "token invalid carries reason",
			status: fiber.StatusBadRequest,
			err:    NewTokenInvalidError(TokenReasonExpired, "This reset link has expired"),
			want:   ErrorResponse{Error: "This reset link has expired", Code: CodeTokenInvalid, Reason: TokenReasonExpired},
		},
		{
			name:   "internal hides cause",
			status: fiber.StatusInternalServerError,
			err:    NewInternalError(errors.New("secret dsn")),
			want:   ErrorResponse{Error: "Internal server error", Code: CodeInternal},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return RespondWithError(c, tt.status, tt.err)
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			body, _ := io.ReadAll(resp.Body)
			var got ErrorResponse
			require.NoError(t, json.Unmarshal(body, &got))
			assert.Equal(t, tt.want, got)
		})
	}
}
