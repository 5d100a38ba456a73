package utils

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"crewmanager/config"
)

// Claims are the token fields the API relies on: the subject is the caller's
// login id, name and email come from the identity provider's profile.
type Claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// ParseAccessToken validates an Auth0-issued bearer token and returns its
// claims. Signature, issuer and audience are all checked.
func ParseAccessToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if config.AppConfig.Auth0Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.AppConfig.Auth0Issuer))
	}
	if config.AppConfig.Auth0Audience != "" {
		opts = append(opts, jwt.WithAudience(config.AppConfig.Auth0Audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(config.AppConfig.Auth0Secret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
