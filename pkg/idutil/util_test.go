package idutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSnowflakeGenerator(t *testing.T) {
	gen, err := NewSnowflakeGenerator(1)
	require.NoError(t, err)

	prev := gen.Next()
	for i := 0; i < 100; i++ {
		id := gen.Next()
		require.Greater(t, id, prev)
		prev = id
	}

	require.InDelta(t, time.Now().UnixMilli(), TimeOf(prev), 5000)

	_, err = NewSnowflakeGenerator(1 << 20)
	require.Error(t, err)
}
