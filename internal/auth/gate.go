// Package auth implements the access gate that runs before any upload
// byte is read.
package auth

import (
	"crypto/subtle"

	"docraster/internal/pkg/errors"
)

// Gate validates request tokens against an optional shared secret.
// With no secret configured every request passes.
type Gate struct {
	secret string
}

func NewGate(secret string) *Gate {
	return &Gate{secret: secret}
}

// Enabled reports whether a secret is configured.
func (g *Gate) Enabled() bool {
	return g.secret != ""
}

// Verify checks the supplied token. Comparison is constant-time so the
// gate leaks nothing about the secret through timing.
func (g *Gate) Verify(token string) error {
	if g.secret == "" {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(g.secret), []byte(token)) != 1 {
		return errors.Unauthorized("missing or invalid token")
	}
	return nil
}
