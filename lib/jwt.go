package lib

import (
	"bengaliboutique_server/structs"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const AccessCookieName = "access_token"

// ParseToken parses and validates a JWT token string and returns the claims
func ParseToken(tokenStr string, secret string) (*structs.AuthClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenMalformed
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	subStr, ok := claims["sub"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: invalid sub claim", ErrInvalidToken)
	}
	sub, err := uuid.Parse(subStr)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid UUID in sub claim: %v", ErrInvalidToken, err)
	}

	username, _ := claims["username"].(string)
	email, _ := claims["email"].(string)

	role, ok := claims["role"].(string)
	if !ok {
		role = structs.RoleUser
	}

	iat, _ := claims["iat"].(float64)
	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, fmt.Errorf("%w: invalid exp claim", ErrInvalidToken)
	}

	var jti uuid.UUID
	if jtiStr, ok := claims["jti"].(string); ok {
		if jti, err = uuid.Parse(jtiStr); err != nil {
			return nil, fmt.Errorf("%w: invalid UUID in jti claim: %v", ErrInvalidToken, err)
		}
	}

	return &structs.AuthClaims{
		Sub:      sub,
		Username: username,
		Email:    email,
		Role:     role,
		Iat:      time.Unix(int64(iat), 0),
		Exp:      time.Unix(int64(exp), 0),
		Jti:      jti,
	}, nil
}

// SignToken issues an HS256 access token for the given claims.
func SignToken(claims *structs.AuthClaims, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	jti := claims.Jti
	if jti == uuid.Nil {
		jti = uuid.New()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      claims.Sub.String(),
		"username": claims.Username,
		"email":    claims.Email,
		"role":     claims.Role,
		"iat":      now.Unix(),
		"exp":      now.Add(ttl).Unix(),
		"jti":      jti.String(),
	})
	return token.SignedString([]byte(secret))
}

// ExtractClaims reads the access token from the Authorization header or the access cookie.
func ExtractClaims(r *http.Request, secret string) (*structs.AuthClaims, error) {
	accessToken := ""
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		accessToken = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}

	if accessToken == "" {
		cookieVal, err := GetCookieValue(AccessCookieName, r)
		if err != nil {
			return nil, ErrUnauthenticated
		}
		accessToken = cookieVal
	}

	return ParseToken(accessToken, secret)
}
