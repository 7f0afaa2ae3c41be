package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTTL = 7 * 24 * time.Hour

	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
)

// represents JWT claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
