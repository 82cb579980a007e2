package crypto

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandIntn(t *testing.T) {
	for i := 0; i < 1000; i++ {
		n := RandIntn(7)
		require.GreaterOrEqual(t, n, 0)
		require.Less(t, n, 7)
	}

	require.Panics(t, func() { RandIntn(0) })
}

func TestHMAC(t *testing.T) {
	mac := HMAC(sha256.New, []byte("123.payload"), []byte("secret"))
	require.Len(t, mac, 64)
	require.True(t, EqualHMAC(mac, HMAC(sha256.New, []byte("123.payload"), []byte("secret"))))
	require.False(t, EqualHMAC(mac, HMAC(sha256.New, []byte("124.payload"), []byte("secret"))))
}
