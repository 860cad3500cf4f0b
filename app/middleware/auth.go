package appMiddleware

import "github.com/golang-jwt/jwt/v5"

type contextKey string

const UserIDKey contextKey = "userID"
const UserRoleKey contextKey = "userRole"

type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JwtSecretKey is overwritten from configuration at startup.
var JwtSecretKey = []byte("dev-only-secret")

// SetJWTSecret installs the signing secret from configuration. A blank
// secret keeps the development default.
func SetJWTSecret(secret string) {
	if secret != "" {
		JwtSecretKey = []byte(secret)
	}
}
