package services

import (
	"bengaliboutique_server/lib"
	"bengaliboutique_server/structs"
	"net/http"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
)

// AuthService verifies access tokens issued by the identity provider. Accounts and
// login live outside this server; it only trusts the signed claims.
type AuthService struct {
	logger *gecho.Logger
	cfg    *structs.Config
}

func NewAuthService(cfg *structs.Config, logger *gecho.Logger) *AuthService {
	return &AuthService{
		logger: logger,
		cfg:    cfg,
	}
}

// Authenticate returns the caller's claims, or lib.ErrUnauthenticated when no token is present.
func (as *AuthService) Authenticate(r *http.Request) (*structs.AuthClaims, error) {
	claims, err := lib.ExtractClaims(r, as.cfg.Auth.AccessTokenSecret)
	if err != nil {
		as.logger.Debug("Request not authenticated", gecho.Field("error", err))
		return nil, err
	}
	return claims, nil
}

// GenerateAccessToken signs a token for the given identity. Used by local tooling to
// mint shopper and admin tokens.
func (as *AuthService) GenerateAccessToken(userID uuid.UUID, username, email, role string) (string, error) {
	if role == "" {
		role = structs.RoleUser
	}
	claims := &structs.AuthClaims{
		Sub:      userID,
		Username: username,
		Email:    email,
		Role:     role,
	}
	return lib.SignToken(claims, as.cfg.Auth.AccessTokenSecret, as.cfg.Auth.AccessTokenExpiry)
}
