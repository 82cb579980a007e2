package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/questx-lab/rewards/internal/common"
	"github.com/questx-lab/rewards/internal/model"
	"github.com/questx-lab/rewards/pkg/authenticator"
	"github.com/questx-lab/rewards/pkg/crypto"
	"github.com/questx-lab/rewards/pkg/errorx"
	"github.com/questx-lab/rewards/pkg/router"
	"github.com/questx-lab/rewards/pkg/xcontext"
)

// AuthVerifier accepts a request if any of the enabled methods succeeds.
type AuthVerifier struct {
	useAccessToken bool
	useAPIKey      bool
}

func NewAuthVerifier() *AuthVerifier {
	return &AuthVerifier{}
}

func (a *AuthVerifier) WithAccessToken() *AuthVerifier {
	a.useAccessToken = true
	return a
}

func (a *AuthVerifier) WithAPIKey() *AuthVerifier {
	a.useAPIKey = true
	return a
}

func (a *AuthVerifier) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		req := xcontext.HTTPRequest(ctx)

		if a.useAPIKey {
			if verifyAPIKey(ctx, req) {
				return xcontext.WithTrustedCaller(ctx), nil
			}
		}

		if a.useAccessToken {
			if userID := verifyAccessToken(ctx, req); userID != "" {
				return xcontext.WithRequestUserID(ctx, userID), nil
			}
		}

		return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
	}
}

func verifyAPIKey(ctx context.Context, req *http.Request) bool {
	cfg := xcontext.Configs(ctx).Auth
	key := req.Header.Get(cfg.APIKeyHeader)
	if key == "" {
		return false
	}

	hashed := crypto.SHA256([]byte(key))
	for _, k := range cfg.APIKeys {
		if crypto.EqualHMAC(hashed, crypto.SHA256([]byte(k))) {
			return true
		}
	}

	return false
}

func verifyAccessToken(ctx context.Context, req *http.Request) string {
	token := getAccessToken(ctx, req)
	if token == "" {
		return ""
	}

	cfg := xcontext.Configs(ctx).Auth
	engine := authenticator.NewTokenEngine[model.AccessToken](cfg.TokenSecret, cfg.AccessToken.Expiration)
	info, err := engine.Verify(token)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Invalid access token: %v", err)
		return ""
	}

	return common.NormalizeUserID(info.ID)
}

// getAccessToken reads the bearer token, or the access token cookie.
func getAccessToken(ctx context.Context, req *http.Request) string {
	authorization := req.Header.Get("Authorization")
	auth, token, found := strings.Cut(authorization, " ")
	if found {
		if auth == "Bearer" {
			return token
		}
		return ""
	}

	cookie, err := req.Cookie(xcontext.Configs(ctx).Auth.AccessToken.Name)
	if err != nil {
		return ""
	}

	return cookie.Value
}
