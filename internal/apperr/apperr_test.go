package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Kind
	}{
		{"not found", NotFound("truck %s not found", "t1"), KindNotFound},
		{"conflict", Conflict("vin already in use"), KindConflict},
		{"bad request", BadRequest("year out of range"), KindBadRequest},
		{"forbidden", Forbidden("carrier mismatch"), KindForbidden},
		{"internal", Internal("store failure"), KindInternal},
		{"plain error", errors.New("boom"), KindInternal},
		{"wrapped taxonomy error", fmt.Errorf("outer: %w", NotFound("gone")), KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, KindOf(tt.err))
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := Wrap(cause, "uploading object")

	assert.Equal(t, KindInternal, KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "uploading object")
}

func TestIs(t *testing.T) {
	err := Conflict("vin V1 already registered")
	assert.True(t, Is(err, KindConflict))
	assert.False(t, Is(err, KindNotFound))
}
