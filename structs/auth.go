package structs

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type AuthClaims struct {
	Sub      uuid.UUID `json:"sub"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	Iat      time.Time `json:"iat"`
	Exp      time.Time `json:"exp"`
	Jti      uuid.UUID `json:"jti"`
}

func (c *AuthClaims) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}
