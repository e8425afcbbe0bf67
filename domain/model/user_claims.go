package model

import "github.com/golang-jwt/jwt"

// UserClaims is the JWT payload identifying who issues a mutation
type UserClaims struct {
	UserName string `json:"user_name"`
	jwt.StandardClaims
}

// Requester returns the identity forwarded to the remote authority.
func (c UserClaims) Requester() string {
	if c.UserName != "" {
		return c.UserName
	}
	return c.Subject
}
