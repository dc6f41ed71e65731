package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	base := New(CodeNotFound, "hospital not found")
	wrapped := fmt.Errorf("schedule donation: %w", base)

	assert.True(t, HasCode(wrapped, CodeNotFound))
	assert.False(t, HasCode(wrapped, CodeConflict))
	assert.False(t, HasCode(errors.New("plain"), CodeInternal))
}

func TestErrorsIsMatchesOnCode(t *testing.T) {
	err := Wrap(errors.New("boom"), CodeInternal, "failed to load donor")
	require.ErrorIs(t, err, New(CodeInternal, "something else"))
	assert.NotErrorIs(t, err, New(CodeNotFound, "failed to load donor"))
}

func TestWithDetailsDoesNotMutateOriginal(t *testing.T) {
	base := New(CodeValidation, "not eligible")
	withReason := base.WithDetails("reason", "has_pending_schedule")

	assert.Nil(t, base.Details)
	assert.Equal(t, "has_pending_schedule", withReason.Details["reason"])
	assert.Equal(t, base.Message, withReason.Message)
}
