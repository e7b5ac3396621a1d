package auth

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity is the authenticated caller passed explicitly into domain services.
type Identity struct {
	UserID   uuid.UUID
	Username string
}

// IsZero reports whether the identity carries no user.
func (i Identity) IsZero() bool {
	return i.UserID == uuid.Nil
}

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	Username string
	JTI      string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID   uuid.UUID `json:"userId"`
	Username string    `json:"username"`
	jwt.RegisteredClaims
}

// Identity projects the claims onto the caller identity.
func (c *AccessTokenClaims) Identity() Identity {
	if c == nil {
		return Identity{}
	}
	return Identity{UserID: c.UserID, Username: strings.TrimSpace(c.Username)}
}
