package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the access-token claims carried for an authenticated user
type Claims struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}
