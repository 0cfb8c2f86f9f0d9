package auth

import (
	"fmt"
	"strings"

	"github.com/divvyhq/divvy/internal/caps"
)

// Capability names the single permission a mutating operation declares.
type Capability int

const (
	CapDeleteGroup Capability = iota
	CapManageMembers
	CapUpdatePayment
	CapAddExpenses
	CapEditExpenses
)

func (c Capability) String() string {
	switch c {
	case CapDeleteGroup:
		return "delete_group"
	case CapManageMembers:
		return "manage_members"
	case CapUpdatePayment:
		return "update_payment"
	case CapAddExpenses:
		return "add_expenses"
	case CapEditExpenses:
		return "edit_expenses"
	}
	return "unknown"
}

// Principal is an authenticated caller: the one group its token is scoped
// to, plus the effective capability set resolved from the token's claims.
type Principal struct {
	GroupID string
	Caps    caps.Set
}

// Can reports whether the principal holds the given capability.
func (p *Principal) Can(c Capability) bool {
	switch c {
	case CapDeleteGroup:
		return p.Caps.HasDeleteGroup()
	case CapManageMembers:
		return p.Caps.HasManageMembers()
	case CapUpdatePayment:
		return p.Caps.HasUpdatePayment()
	case CapAddExpenses:
		return p.Caps.HasAddExpenses()
	case CapEditExpenses:
		return p.Caps.HasEditExpenses()
	}
	return false
}

// Require fails with ErrForbidden when the principal lacks the capability.
// Operations call this before performing any mutation.
func (p *Principal) Require(c Capability) error {
	if !p.Can(c) {
		return fmt.Errorf("%w: %s", ErrForbidden, c)
	}
	return nil
}

// Authority turns an inbound credential into an authenticated principal.
type Authority struct {
	codec *Codec
}

// NewAuthority creates an authority backed by the given token codec.
func NewAuthority(codec *Codec) *Authority {
	return &Authority{codec: codec}
}

// Authenticate extracts and verifies the bearer credential from an
// Authorization header value. An absent header is ErrMissingToken; a
// present but unverifiable credential is ErrInvalidToken.
func (a *Authority) Authenticate(authHeader string) (*Principal, error) {
	if authHeader == "" {
		return nil, ErrMissingToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, ErrInvalidToken
	}

	claims, err := a.codec.Verify(parts[1])
	if err != nil {
		return nil, err
	}

	return &Principal{
		GroupID: claims.GroupID,
		Caps:    ResolveCapabilities(claims),
	}, nil
}

// ResolveCapabilities returns the effective capability set for verified
// claims. It is total: claims without a capability set are legacy tokens
// and resolve to full access.
func ResolveCapabilities(claims *Claims) caps.Set {
	if claims == nil || claims.Capabilities == nil {
		return caps.All()
	}
	return *claims.Capabilities
}
