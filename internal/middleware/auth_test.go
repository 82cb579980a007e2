package middleware

import (
	"context"
	"net/http"
	"testing"

	"github.com/questx-lab/rewards/internal/model"
	"github.com/questx-lab/rewards/pkg/authenticator"
	"github.com/questx-lab/rewards/pkg/errorx"
	"github.com/questx-lab/rewards/pkg/testutil"
	"github.com/questx-lab/rewards/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func requestContext(t *testing.T, prepare func(*http.Request)) context.Context {
	req, err := http.NewRequest(http.MethodGet, "/getProfile", nil)
	require.NoError(t, err)
	prepare(req)

	return xcontext.WithHTTPRequest(xcontext.WithConfigs(context.Background(), testutil.MockConfigs()), req)
}

func generateToken(t *testing.T, userID string) string {
	cfg := testutil.MockConfigs().Auth
	engine := authenticator.NewTokenEngine[model.AccessToken](cfg.TokenSecret, cfg.AccessToken.Expiration)
	token, err := engine.Generate(userID, model.AccessToken{ID: userID})
	require.NoError(t, err)
	return token
}

func TestAuthVerifier_AccessToken(t *testing.T) {
	verify := NewAuthVerifier().WithAccessToken().Middleware()

	ctx, err := verify(requestContext(t, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+generateToken(t, "Alice@Example.com"))
	}))
	require.NoError(t, err)
	require.Equal(t, testutil.User1, xcontext.RequestUserID(ctx))
	require.False(t, xcontext.IsTrustedCaller(ctx))

	ctx, err = verify(requestContext(t, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "access_token", Value: generateToken(t, testutil.User2)})
	}))
	require.NoError(t, err)
	require.Equal(t, testutil.User2, xcontext.RequestUserID(ctx))

	_, err = verify(requestContext(t, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer invalid")
	}))
	require.True(t, errorx.Is(err, errorx.Unauthenticated))

	// An API key is not accepted here.
	_, err = verify(requestContext(t, func(r *http.Request) {
		r.Header.Set("X-Api-Key", "test-api-key")
	}))
	require.True(t, errorx.Is(err, errorx.Unauthenticated))
}

func TestAuthVerifier_APIKey(t *testing.T) {
	verify := NewAuthVerifier().WithAPIKey().Middleware()

	ctx, err := verify(requestContext(t, func(r *http.Request) {
		r.Header.Set("X-Api-Key", "test-api-key")
	}))
	require.NoError(t, err)
	require.True(t, xcontext.IsTrustedCaller(ctx))

	_, err = verify(requestContext(t, func(r *http.Request) {
		r.Header.Set("X-Api-Key", "wrong-key")
	}))
	require.True(t, errorx.Is(err, errorx.Unauthenticated))

	_, err = verify(requestContext(t, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+generateToken(t, testutil.User1))
	}))
	require.True(t, errorx.Is(err, errorx.Unauthenticated))
}
