package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims are issued by the account service; this backend only verifies them.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}
