package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"ad-funnel-gate/auth"

	"github.com/rs/zerolog/log"
)

// pendingRetryAfter is the Retry-After, in seconds, sent while a role is resolving.
const pendingRetryAfter = 1

// toucher is implemented by providers that track activity.
type toucher interface {
	Touch(ctx context.Context, clientID string) error
}

// Require gates routes behind an auth.Guard.
type Require struct {
	guard *auth.Guard
}

// NewRequire creates the guard middleware
func NewRequire(guard *auth.Guard) *Require {
	return &Require{guard: guard}
}

// Roles admits requests whose principal satisfies one of roles. With no roles
// any authenticated principal is admitted.
func (rq *Require) Roles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			creds := GetCredentials(r)
			principal, decision := rq.guard.Check(r.Context(), creds, roles...)

			switch decision {
			case auth.Pending:
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", strconv.Itoa(pendingRetryAfter))
				w.WriteHeader(http.StatusAccepted)
				json.NewEncoder(w).Encode(map[string]string{"status": "loading"})
				return
			case auth.Deny:
				log.Debug().
					Str("path", r.URL.Path).
					Str("provider", rq.guard.Provider().Name()).
					Msg("Access denied, redirecting to login")
				http.Redirect(w, r, rq.guard.LoginPath(), http.StatusSeeOther)
				return
			}

			if t, ok := rq.guard.Provider().(toucher); ok && creds.ClientID != "" {
				if err := t.Touch(r.Context(), creds.ClientID); err != nil {
					log.Warn().Err(err).Msg("Failed to refresh session activity")
				}
			}
			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetCredentials collects the client id and access token of a request. The
// token comes from a bearer header or the token cookie.
func GetCredentials(r *http.Request) auth.Credentials {
	creds := auth.Credentials{ClientID: GetClientID(r)}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		creds.Token = strings.TrimPrefix(h, "Bearer ")
	} else if c, err := r.Cookie(TokenCookie); err == nil {
		creds.Token = c.Value
	}
	return creds
}

// GetPrincipal returns the principal admitted by Require.
func GetPrincipal(r *http.Request) (auth.Principal, bool) {
	p, ok := r.Context().Value(principalKey).(auth.Principal)
	return p, ok
}
