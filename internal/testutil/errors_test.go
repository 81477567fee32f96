package testutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// errMockWrapped is a static error for testing that non-wrapped errors don't match sentinels.
var errMockWrapped = errors.New("wrapped: tool failed")

func TestMockErrors(t *testing.T) {
	assert.Equal(t, "tool failed", ErrMockToolFailed.Error())
	assert.ErrorIs(t, ErrMockToolFailed, ErrMockToolFailed)
	// Non-wrapped errors should not match (standard Go error behavior)
	assert.NotErrorIs(t, errMockWrapped, ErrMockToolFailed)
}
