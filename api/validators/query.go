package validators

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/gearshare-backend/pkg/errors"
)

// QueryString trims the query value and truncates it to maxLen bytes.
func QueryString(r *http.Request, key string, maxLen int) string {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if maxLen > 0 && len(value) > maxLen {
		return value[:maxLen]
	}
	return value
}

// PathUUID parses a chi URL parameter. Malformed ids cannot match any record, so they are NotFound.
func PathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, param))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, param+" not found")
	}
	return id, nil
}
