package models

import "github.com/golang-jwt/jwt/v5"

// RoleAdmin may mutate the record store over HTTP.
const RoleAdmin = "admin"

// AdminClaims represents the JWT payload for admin access tokens.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IssuedToken is a freshly signed access token.
type IssuedToken struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}
