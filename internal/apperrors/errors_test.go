package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", Validation("account_name is required"), http.StatusBadRequest},
		{"conflict", Conflict("account has leads"), http.StatusBadRequest},
		{"not found", NotFound("account %d not found", 7), http.StatusNotFound},
		{"unauthorized", Unauthorized("bad token"), http.StatusUnauthorized},
		{"forbidden", Forbidden("admins only"), http.StatusForbidden},
		{"wrapped", fmt.Errorf("update account: %w", NotFound("gone")), http.StatusNotFound},
		{"plain", errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestMessage(t *testing.T) {
	err := fmt.Errorf("outer: %w", NotFound("account %d not found", 7))
	assert.Equal(t, "account 7 not found", Message(err))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Empty(t, Message(errors.New("boom")))
}
