package authenticator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testToken struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func TestTokenEngine(t *testing.T) {
	engine := NewTokenEngine[testToken]("secret", time.Minute)

	token, err := engine.Generate("client@example.com", testToken{ID: "client@example.com", Email: "client@example.com"})
	require.NoError(t, err)

	obj, err := engine.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "client@example.com", obj.ID)

	other := NewTokenEngine[testToken]("other-secret", time.Minute)
	_, err = other.Verify(token)
	require.Error(t, err)
}

func TestTokenEngine_Expired(t *testing.T) {
	engine := NewTokenEngine[testToken]("secret", -time.Minute)

	token, err := engine.Generate("sub", testToken{ID: "x"})
	require.NoError(t, err)

	_, err = engine.Verify(token)
	require.Error(t, err)
}
