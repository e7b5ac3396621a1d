package middleware

import (
	"context"

	pkgAuth "github.com/angelmondragon/gearshare-backend/pkg/auth"
)

type contextKey string

const (
	ctxIdentity    contextKey = "identity"
	ctxAccessID    contextKey = "access_id"
	ctxRequestInfo contextKey = "request_info"
)

// IdentityFromContext returns the caller set by Auth. ok is false on unauthenticated routes.
func IdentityFromContext(ctx context.Context) (pkgAuth.Identity, bool) {
	if ctx == nil {
		return pkgAuth.Identity{}, false
	}
	id, ok := ctx.Value(ctxIdentity).(pkgAuth.Identity)
	if !ok || id.IsZero() {
		return pkgAuth.Identity{}, false
	}
	return id, true
}

// AccessIDFromContext returns the jti of the presented token.
func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// WithIdentity injects a caller; used by Auth and by handler tests.
func WithIdentity(ctx context.Context, identity pkgAuth.Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxIdentity, identity)
	if info := requestInfoFrom(ctx); info != nil {
		info.userID = identity.UserID.String()
	}
	return ctx
}

func withAccessID(ctx context.Context, accessID string) context.Context {
	return context.WithValue(ctx, ctxAccessID, accessID)
}

// requestInfo lets inner middleware report back to Logging, which owns the outer context.
type requestInfo struct {
	userID string
}

func requestInfoFrom(ctx context.Context) *requestInfo {
	info, _ := ctx.Value(ctxRequestInfo).(*requestInfo)
	return info
}
