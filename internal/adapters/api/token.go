package api

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are the fields the upstream puts in an agent bearer token
type TokenClaims struct {
	Identifier string `json:"identifier"`
	Version    string `json:"version"`
	ResetDate  string `json:"reset_date"`
	jwt.RegisteredClaims
}

// TokenInfo is what can be learned from a token without a network call
type TokenInfo struct {
	AgentSymbol string
	Version     string
	ResetDate   string
	IssuedAt    *time.Time
}

// InspectToken decodes an agent token without verifying its signature. The
// signing key is the server's, so the claims are only a hint: use them to
// name the agent before the first request, never to authorize anything.
func InspectToken(token string) (*TokenInfo, error) {
	if token == "" {
		return nil, fmt.Errorf("token is empty")
	}

	claims := &TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if claims.Identifier == "" {
		return nil, fmt.Errorf("token has no agent identifier")
	}

	info := &TokenInfo{
		AgentSymbol: claims.Identifier,
		Version:     claims.Version,
		ResetDate:   claims.ResetDate,
	}
	if claims.IssuedAt != nil {
		issued := claims.IssuedAt.Time.UTC()
		info.IssuedAt = &issued
	}
	return info, nil
}
