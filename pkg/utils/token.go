package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionClaims is carried by the token handed out on login/register.
// Subject is the user id, ID is the session row it belongs to.
type SessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TicketClaims is what a ticket QR code encodes.
type TicketClaims struct {
	TicketID string `json:"ticketId"`
	jwt.RegisteredClaims
}

func SignSessionToken(cfg JWTConfig, userID, sessionID uuid.UUID, role string, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(cfg.TTL())
	claims := SessionClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID.String(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

func ParseSessionToken(cfg JWTConfig, token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := parseHS256(cfg.Secret, token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func SignTicketToken(cfg JWTConfig, ticketID uuid.UUID, now time.Time) (string, error) {
	claims := TicketClaims{
		TicketID: ticketID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL())),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign ticket token: %w", err)
	}
	return signed, nil
}

// ParseTicketToken verifies signature and expiry and returns the ticket id.
func ParseTicketToken(cfg JWTConfig, token string) (uuid.UUID, error) {
	claims := &TicketClaims{}
	if err := parseHS256(cfg.Secret, token, claims); err != nil {
		return uuid.Nil, err
	}

	id, err := uuid.Parse(claims.TicketID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("ticket token carries invalid id: %w", err)
	}
	return id, nil
}

func parseHS256(secret, token string, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return fmt.Errorf("parse token: %w", err)
	}
	return nil
}
