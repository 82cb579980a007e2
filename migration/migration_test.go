package migration

import (
	"errors"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSource_EveryVersionHasUpAndDown(t *testing.T) {
	src, err := Source()
	require.NoError(t, err)
	defer src.Close()

	version, err := src.First()
	require.NoError(t, err)

	for {
		up, _, err := src.ReadUp(version)
		require.NoError(t, err, "version %d", version)
		content, err := io.ReadAll(up)
		require.NoError(t, err)
		require.NotEmpty(t, content)
		up.Close()

		down, _, err := src.ReadDown(version)
		require.NoError(t, err, "version %d", version)
		down.Close()

		version, err = src.Next(version)
		if errors.Is(err, os.ErrNotExist) {
			break
		}
		require.NoError(t, err)
	}
}
