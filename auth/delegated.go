package auth

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultRoleWait   = 1500 * time.Millisecond
	roleLookupTimeout = 10 * time.Second
	roleCachePrefix   = "role:"

	// Lookups settled in the background are kept here for the retry that
	// follows a Pending answer, whether or not the shared cache holds them.
	settledRoleTTL  = time.Minute
	fallbackRoleTTL = 5 * time.Second
	maxSettledRoles = 4096
)

// RoleSource reads a user's role from the remote role table.
type RoleSource interface {
	UserRole(ctx context.Context, userID string) (string, error)
}

// RoleCache holds resolved roles between requests.
type RoleCache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, cost int64) bool
	Delete(key string)
	Wait()
}

// Revoker ends a session with the identity service.
type Revoker interface {
	SignOut(ctx context.Context, accessToken string) error
}

// DelegatedProvider trusts access tokens from the identity service and reads
// roles from the remote table. A lookup slower than the wait window leaves
// the session Resolving while it finishes in the background.
type DelegatedProvider struct {
	jwt     *JWTManager
	roles   RoleSource
	cache   RoleCache
	revoker Revoker
	wait    time.Duration
	group   singleflight.Group

	mu      sync.Mutex
	settled map[string]settledRole
	now     func() time.Time
}

type settledRole struct {
	role  string
	until time.Time
}

// NewDelegatedProvider creates the provider. revoker may be nil.
func NewDelegatedProvider(jwt *JWTManager, roles RoleSource, cache RoleCache, revoker Revoker, wait time.Duration) *DelegatedProvider {
	if wait <= 0 {
		wait = DefaultRoleWait
	}
	return &DelegatedProvider{
		jwt:     jwt,
		roles:   roles,
		cache:   cache,
		revoker: revoker,
		wait:    wait,
		settled: make(map[string]settledRole),
		now:     time.Now,
	}
}

func (p *DelegatedProvider) Name() string      { return "identity" }
func (p *DelegatedProvider) Policy() Policy    { return Hierarchical }
func (p *DelegatedProvider) LoginPath() string { return "/user/login" }

// Current verifies the access token and resolves the role.
func (p *DelegatedProvider) Current(ctx context.Context, creds Credentials) (Principal, Status, error) {
	if creds.Token == "" {
		return Principal{}, Anonymous, nil
	}
	claims, err := p.jwt.ValidateToken(creds.Token)
	if err != nil {
		log.Debug().Err(err).Msg("Rejected access token")
		return Principal{}, Anonymous, nil
	}

	principal := Principal{ID: claims.UserID(), Email: claims.Email, Provider: p.Name()}
	role, resolved := p.resolveRole(ctx, principal.ID)
	if !resolved {
		return principal, Resolving, nil
	}
	principal.Role = role
	return principal, Authenticated, nil
}

func (p *DelegatedProvider) resolveRole(ctx context.Context, userID string) (string, bool) {
	if v, ok := p.cache.Get(roleCachePrefix + userID); ok {
		if role, ok := v.(string); ok {
			return role, true
		}
	}
	if role, ok := p.lookupSettled(userID); ok {
		return role, true
	}

	ch := p.group.DoChan(userID, func() (interface{}, error) {
		lookupCtx, cancel := context.WithTimeout(context.Background(), roleLookupTimeout)
		defer cancel()

		role, err := p.roles.UserRole(lookupCtx, userID)
		if err != nil || !ValidRole(role) {
			// The fallback is not shared so a backend blip does not demote
			// a privileged user for the whole cache TTL.
			log.Warn().Err(err).Str("user_id", userID).Str("role", role).Msg("Role lookup failed, defaulting to user")
			p.settle(userID, RoleUser, fallbackRoleTTL)
			return RoleUser, nil
		}
		p.cache.Set(roleCachePrefix+userID, role, 1)
		p.cache.Wait()
		p.settle(userID, role, settledRoleTTL)
		return role, nil
	})

	timer := time.NewTimer(p.wait)
	defer timer.Stop()

	select {
	case res := <-ch:
		return res.Val.(string), true
	case <-timer.C:
		log.Debug().Str("user_id", userID).Msg("Role lookup still in flight")
		return "", false
	case <-ctx.Done():
		return "", false
	}
}

func (p *DelegatedProvider) settle(userID, role string, ttl time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	if len(p.settled) >= maxSettledRoles {
		for id, s := range p.settled {
			if !now.Before(s.until) {
				delete(p.settled, id)
			}
		}
	}
	p.settled[userID] = settledRole{role: role, until: now.Add(ttl)}
}

func (p *DelegatedProvider) lookupSettled(userID string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.settled[userID]
	if !ok {
		return "", false
	}
	if !p.now().Before(s.until) {
		delete(p.settled, userID)
		return "", false
	}
	return s.role, true
}

// Forget drops the cached role of a user so the next request looks it up again.
func (p *DelegatedProvider) Forget(userID string) {
	p.cache.Delete(roleCachePrefix + userID)
	p.mu.Lock()
	delete(p.settled, userID)
	p.mu.Unlock()
}

// Clear signs the token out with the identity service.
func (p *DelegatedProvider) Clear(ctx context.Context, creds Credentials) error {
	if p.revoker == nil || creds.Token == "" {
		return nil
	}
	if _, err := p.jwt.ValidateToken(creds.Token); err != nil {
		return nil
	}
	return p.revoker.SignOut(ctx, creds.Token)
}
