package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/minhlong-dev/industro-backend/pkg/enums"
)

// Claims carries the identity embedded in an access token.
type Claims struct {
	UserID uuid.UUID      `json:"uid"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Valid claims always carry a user id and a known role.
func (c *Claims) Validate() error {
	if c.UserID == uuid.Nil {
		return ErrInvalidToken
	}
	if !c.Role.IsValid() {
		return ErrInvalidToken
	}
	return nil
}
