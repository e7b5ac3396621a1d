package controllers

import (
	"net/http"

	"github.com/angelmondragon/gearshare-backend/api/middleware"
	"github.com/angelmondragon/gearshare-backend/api/responses"
	pkgAuth "github.com/angelmondragon/gearshare-backend/pkg/auth"
	pkgerrors "github.com/angelmondragon/gearshare-backend/pkg/errors"
	"github.com/angelmondragon/gearshare-backend/pkg/logger"
)

// requireIdentity writes a 401 and returns false when the route was not behind Auth.
func requireIdentity(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (pkgAuth.Identity, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "access token required"))
		return pkgAuth.Identity{}, false
	}
	return identity, true
}

func serviceUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, name+" unavailable"))
}
