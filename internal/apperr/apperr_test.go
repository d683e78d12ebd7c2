package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", Validation("bad"), http.StatusBadRequest},
		{"conflict", Conflict("User already exists."), http.StatusBadRequest},
		{"auth", Auth("no"), http.StatusUnauthorized},
		{"forbidden", Forbidden("no"), http.StatusForbidden},
		{"not found", NotFound("gone"), http.StatusNotFound},
		{"upstream", Upstream("media", errors.New("boom")), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("ctx: %w", Forbidden("no")), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestFrom_WrapsUnknown(t *testing.T) {
	cause := errors.New("socket closed")
	e := From(cause)

	assert.Equal(t, KindInternal, e.Kind)
	assert.ErrorIs(t, e, cause)
	assert.Nil(t, From(nil))
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("create: %w", NotFound("User not found."))

	assert.True(t, Is(err, KindNotFound))
	assert.False(t, Is(err, KindAuth))
	assert.False(t, Is(errors.New("x"), KindNotFound))
}
