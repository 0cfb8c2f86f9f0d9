// Package auth implements the capability token model: a signed, stateless
// credential scoped to exactly one group. The token itself is the only
// record of the rights it carries; nothing is persisted server-side.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/divvyhq/divvy/internal/caps"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("authorization token required")
	ErrForbidden    = errors.New("insufficient permissions")
)

// tokenLifetime is deliberately long: tokens double as durable share links
// rather than short-lived sessions, so a conventional short expiry would
// break sharing.
const tokenLifetime = 10 * 365 * 24 * time.Hour

// Claims is the signed payload of a group token: the group it grants access
// to, an expiry, and an optional capability set. A nil capability set means
// the token predates granular permissions and keeps full access.
type Claims struct {
	GroupID      string    `json:"gid"`
	Capabilities *caps.Set `json:"caps,omitempty"`
	jwt.RegisteredClaims
}

// UnmarshalJSON accepts both the compact claim names the encoder emits and
// the long-form names tokens were minted with under the previous schema.
func (c *Claims) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &c.RegisteredClaims); err != nil {
		return err
	}

	var raw struct {
		GroupID      string    `json:"gid"`
		Capabilities *caps.Set `json:"caps"`

		LegacyGroupID      string    `json:"group_id"`
		LegacyCapabilities *caps.Set `json:"capabilities"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.GroupID = raw.GroupID
	if c.GroupID == "" {
		c.GroupID = raw.LegacyGroupID
	}
	c.Capabilities = raw.Capabilities
	if c.Capabilities == nil {
		c.Capabilities = raw.LegacyCapabilities
	}
	return nil
}

// Codec signs and verifies group tokens. It is a pure cryptographic
// transform: no I/O and no state beyond the signing key supplied at
// construction.
type Codec struct {
	secretKey []byte
}

// NewCodec creates a codec with the given signing key.
// secretKey should be a strong random string (e.g., 32 bytes).
func NewCodec(secretKey string) *Codec {
	return &Codec{secretKey: []byte(secretKey)}
}

// Issue mints a signed token for the given group. capSet may be nil, in
// which case the token carries no capability field and resolves to full
// access on verification.
func (c *Codec) Issue(groupID string, capSet *caps.Set) (string, error) {
	now := time.Now()
	claims := &Claims{
		GroupID:      groupID,
		Capabilities: capSet,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning its claims. Malformed,
// tampered and expired tokens all come back as ErrInvalidToken: none of
// those failures can succeed on retry, and callers must never downgrade
// them to permitted.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return c.secretKey, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.GroupID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
