package auth

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Status of a provider session.
type Status int

const (
	Anonymous Status = iota
	Authenticated
	// Resolving means the session exists but its role is not known yet.
	Resolving
)

// Decision is the outcome of a guard check.
type Decision int

const (
	Deny Decision = iota
	Allow
	Pending
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Pending:
		return "pending"
	}
	return "deny"
}

// Credentials are what a request carries to identify itself.
type Credentials struct {
	ClientID string
	Token    string
}

// Principal is an authenticated caller.
type Principal struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
	Provider string `json:"provider"`
}

// Provider resolves credentials into a session.
type Provider interface {
	Name() string
	Policy() Policy
	LoginPath() string
	Current(ctx context.Context, creds Credentials) (Principal, Status, error)
	Clear(ctx context.Context, creds Credentials) error
}

// Guard answers whether a request may proceed.
type Guard struct {
	provider Provider
}

// NewGuard wraps a provider.
func NewGuard(p Provider) *Guard {
	return &Guard{provider: p}
}

// Provider returns the wrapped provider.
func (g *Guard) Provider() Provider { return g.provider }

// LoginPath is where denied requests are sent.
func (g *Guard) LoginPath() string { return g.provider.LoginPath() }

// Check resolves the session and compares its role against roles using the
// provider's policy. A denied session is cleared.
func (g *Guard) Check(ctx context.Context, creds Credentials, roles ...string) (Principal, Decision) {
	principal, status, err := g.provider.Current(ctx, creds)
	if err != nil {
		log.Error().Err(err).Str("provider", g.provider.Name()).Msg("Failed to resolve session")
		return Principal{}, Deny
	}

	switch status {
	case Resolving:
		return principal, Pending
	case Authenticated:
		if g.provider.Policy().AllowsAny(principal.Role, roles...) {
			return principal, Allow
		}
		log.Warn().
			Str("provider", g.provider.Name()).
			Str("role", principal.Role).
			Strs("required", roles).
			Msg("Role not allowed, clearing session")
	}

	if err := g.provider.Clear(ctx, creds); err != nil {
		log.Error().Err(err).Str("provider", g.provider.Name()).Msg("Failed to clear session")
	}
	return Principal{}, Deny
}
