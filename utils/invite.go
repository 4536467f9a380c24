package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"

	"salonbook/config"
)

// InviteClaims carry the invite-only appointment type ids a token unlocks.
type InviteClaims struct {
	TypeIDs []string `json:"typeIds"`
	jwt.StandardClaims
}

func inviteSecret() ([]byte, error) {
	if config.AppConfig.InviteSecret == "" {
		return nil, errors.New("invite secret not configured")
	}
	return []byte(config.AppConfig.InviteSecret), nil
}

// GenerateInviteToken creates a signed token unlocking the given appointment
// types until the expiry.
func GenerateInviteToken(typeIDs []string, ttl time.Duration) (string, error) {
	secret, err := inviteSecret()
	if err != nil {
		return "", err
	}
	claims := InviteClaims{
		TypeIDs: typeIDs,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseInviteToken validates an invite token and returns the type ids it
// unlocks. An empty or invalid token unlocks nothing; that is not an error
// for public listings, so callers treat a nil result as "no extra scope".
func ParseInviteToken(tokenString string) ([]string, error) {
	if tokenString == "" {
		return nil, nil
	}
	secret, err := inviteSecret()
	if err != nil {
		return nil, err
	}
	claims := &InviteClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid invite token: %w", err)
	}
	return claims.TypeIDs, nil
}
