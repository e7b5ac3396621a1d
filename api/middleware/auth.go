package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/angelmondragon/gearshare-backend/api/responses"
	pkgAuth "github.com/angelmondragon/gearshare-backend/pkg/auth"
	"github.com/angelmondragon/gearshare-backend/pkg/auth/session"
	"github.com/angelmondragon/gearshare-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/gearshare-backend/pkg/errors"
	"github.com/angelmondragon/gearshare-backend/pkg/logger"
)

// AccessTokenHeader is the header the web client sends the identity token in.
const AccessTokenHeader = "x-access-token"

// Auth verifies the identity token and seeds the request context with the caller.
// A missing token is 401; a token that fails verification or whose session was revoked is 403.
// An empty signing secret is a configuration error and is rejected here, not per request.
func Auth(cfg config.JWTConfig, sessions session.AccessSessionChecker, logg *logger.Logger) (func(http.Handler) http.Handler, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := tokenFromRequest(r)
			if token == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "access token required"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInvalidToken, err, "invalid access token"))
				return
			}
			if claims.ID == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInvalidToken, "access token missing session id"))
				return
			}

			if sessions != nil {
				live, err := sessions.HasSession(ctx, claims.ID)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking session"))
					return
				}
				if !live {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInvalidToken, "session revoked or expired"))
					return
				}
			}

			identity := claims.Identity()
			ctx = WithIdentity(ctx, identity)
			ctx = withAccessID(ctx, claims.ID)
			if logg != nil {
				ctx = logg.WithUserID(ctx, identity.UserID.String())
				ctx = logg.WithUsername(ctx, identity.Username)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}, nil
}

// tokenFromRequest prefers x-access-token and falls back to a bearer Authorization header.
func tokenFromRequest(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(AccessTokenHeader)); token != "" {
		return token
	}
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return ""
}
