package errors

import (
	"database/sql"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NotFound("resident", sql.ErrNoRows), http.StatusNotFound},
		{"bad request", BadRequest("invalid id", nil), http.StatusBadRequest},
		{"unauthorized", Unauthorized("", nil), http.StatusUnauthorized},
		{"forbidden", Forbidden(""), http.StatusForbidden},
		{"conflict", Conflict("email already registered", nil), http.StatusConflict},
		{"validation", Validation("verification failed", "allergy"), http.StatusUnprocessableEntity},
		{"too many requests", TooManyRequests("slow down"), http.StatusTooManyRequests},
		{"internal", Internal(fmt.Errorf("boom")), http.StatusInternalServerError},
		{"plain error", fmt.Errorf("boom"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("create: %w", Conflict("dup", nil)), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}

func TestAppErrorMessage(t *testing.T) {
	err := NotFound("task", sql.ErrNoRows)
	assert.Equal(t, "task not found: sql: no rows in result set", err.Error())
	assert.ErrorIs(t, err, sql.ErrNoRows)

	assert.Equal(t, "permission denied", Forbidden("").Error())
	assert.True(t, IsCode(fmt.Errorf("x: %w", err), ErrNotFound))
	assert.False(t, IsCode(err, ErrConflict))
}
