package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeNotFound, CodeOf(NotFound("missing")))
	assert.Equal(t, CodeConflict, CodeOf(Conflict("taken")))
	assert.Equal(t, CodeUnknown, CodeOf(fmt.Errorf("plain error")))
	assert.Equal(t, CodeUnknown, CodeOf(nil))
}

func TestCodeOfWrapped(t *testing.T) {
	err := fmt.Errorf("handler: %w", Forbidden("not yours"))
	assert.Equal(t, CodePermissionDenied, CodeOf(err))
	assert.True(t, Is(err, CodePermissionDenied))
	assert.False(t, Is(err, CodeNotFound))
}

func TestInternalKeepsCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Internal("failed to persist message", cause)
	assert.Equal(t, CodeInternal, CodeOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to persist message")
}
