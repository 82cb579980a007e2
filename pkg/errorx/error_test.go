package errorx

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(BadRequest, "Invalid activity %s", "foo")
	require.Equal(t, "Invalid activity foo", err.Error())
	require.Equal(t, BadRequest, err.Code)
}

func TestIsRetryable(t *testing.T) {
	require.True(t, IsRetryable(New(Unavailable, "db down")))
	require.True(t, IsRetryable(fmt.Errorf("wrapped: %w", New(Conflict, "busy"))))
	require.False(t, IsRetryable(New(BadRequest, "bad")))
	require.False(t, IsRetryable(fmt.Errorf("plain")))
	require.False(t, IsRetryable(Unknown))
}

func TestIs(t *testing.T) {
	require.True(t, Is(New(NotFound, "x"), NotFound))
	require.False(t, Is(New(NotFound, "x"), BadRequest))
	require.False(t, Is(nil, NotFound))
}
