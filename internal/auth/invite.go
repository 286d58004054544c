package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const inviteTTL = 7 * 24 * time.Hour

// InviteClaims carry a signed invitation to join a family or workplace
// group. The token travels by email or link; accepting it grants the
// member the group referenced here.
type InviteClaims struct {
	GroupID   string `json:"group_id"`
	GroupKind string `json:"group_kind"`
	GroupName string `json:"group_name"`
	Email     string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// SignInvite creates a signed invite token for the given group.
func SignInvite(secret []byte, groupID, groupKind, groupName, email string) (string, error) {
	if len(secret) == 0 {
		return "", fmt.Errorf("invite secret not configured")
	}

	now := time.Now()
	claims := InviteClaims{
		GroupID:   groupID,
		GroupKind: groupKind,
		GroupName: groupName,
		Email:     email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(inviteTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign invite: %w", err)
	}
	return signed, nil
}

// VerifyInvite parses and validates an invite token.
func VerifyInvite(secret []byte, tokenString string) (*InviteClaims, error) {
	claims := &InviteClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse invite: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid invite token")
	}
	if claims.GroupID == "" || claims.GroupKind == "" {
		return nil, fmt.Errorf("invite missing group")
	}
	return claims, nil
}
