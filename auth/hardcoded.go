package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"ad-funnel-gate/model"
	"ad-funnel-gate/storage"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// AuthUserKey is the local bucket key of the console session record.
const AuthUserKey = "auth_user"

const (
	DefaultSessionTimeout = 24 * time.Hour
	DefaultIdleTimeout    = 4 * time.Hour
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type account struct {
	id       string
	username string
	hash     []byte
	role     string
	created  time.Time
}

// consoleAccounts are the only console logins.
var consoleAccounts = []struct {
	id, username, password, role string
}{
	{"1", "pikachu", "Ad@123", RoleAdmin},
	{"2", "fkingdev", "Fd@123", RoleDeveloper},
}

// HardcodedProvider authenticates the fixed console accounts and keeps their
// session record in the client's local bucket.
type HardcodedProvider struct {
	buckets        *storage.Buckets
	accounts       []account
	sessionTimeout time.Duration
	idleTimeout    time.Duration
	now            func() time.Time
}

// NewHardcodedProvider hashes the console passwords and returns the provider.
func NewHardcodedProvider(buckets *storage.Buckets, sessionTimeout, idleTimeout time.Duration) (*HardcodedProvider, error) {
	if sessionTimeout <= 0 {
		sessionTimeout = DefaultSessionTimeout
	}
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}

	created := time.Now().UTC()
	accounts := make([]account, 0, len(consoleAccounts))
	for _, a := range consoleAccounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash console password: %w", err)
		}
		accounts = append(accounts, account{id: a.id, username: a.username, hash: hash, role: a.role, created: created})
	}

	return &HardcodedProvider{
		buckets:        buckets,
		accounts:       accounts,
		sessionTimeout: sessionTimeout,
		idleTimeout:    idleTimeout,
		now:            time.Now,
	}, nil
}

func (p *HardcodedProvider) Name() string      { return "console" }
func (p *HardcodedProvider) Policy() Policy    { return ExactMatch }
func (p *HardcodedProvider) LoginPath() string { return "/login" }

// Login wipes the client's state, then checks the credentials. On success the
// session record is written and the account is returned.
func (p *HardcodedProvider) Login(ctx context.Context, clientID, username, password string) (*model.ConsoleUser, error) {
	if err := p.clearClient(ctx, clientID); err != nil {
		return nil, err
	}

	acct := p.lookup(username, password)
	if acct == nil {
		log.Warn().Str("username", username).Msg("Console login failed")
		return nil, ErrInvalidCredentials
	}

	now := p.now().UnixMilli()
	record := model.AuthUser{
		Username:     acct.username,
		Role:         acct.role,
		LoggedIn:     true,
		SessionStart: now,
		LastActivity: now,
	}
	local, err := p.buckets.Local(clientID)
	if err != nil {
		return nil, err
	}
	if err := local.SetJSON(ctx, AuthUserKey, record); err != nil {
		return nil, fmt.Errorf("store console session: %w", err)
	}

	log.Info().Str("username", acct.username).Str("role", acct.role).Msg("Console login")
	return &model.ConsoleUser{ID: acct.id, Username: acct.username, Role: acct.role, CreatedAt: acct.created}, nil
}

func (p *HardcodedProvider) lookup(username, password string) *account {
	for i := range p.accounts {
		a := &p.accounts[i]
		if subtle.ConstantTimeCompare([]byte(a.username), []byte(username)) != 1 {
			continue
		}
		if bcrypt.CompareHashAndPassword(a.hash, []byte(password)) == nil {
			return a
		}
	}
	return nil
}

// Logout removes the client's session record and all of its transient state.
func (p *HardcodedProvider) Logout(ctx context.Context, clientID string) error {
	return p.clearClient(ctx, clientID)
}

// Clear implements Provider.
func (p *HardcodedProvider) Clear(ctx context.Context, creds Credentials) error {
	return p.clearClient(ctx, creds.ClientID)
}

func (p *HardcodedProvider) clearClient(ctx context.Context, clientID string) error {
	local, err := p.buckets.Local(clientID)
	if err != nil {
		return err
	}
	session, err := p.buckets.Session(clientID)
	if err != nil {
		return err
	}
	if err := local.Clear(ctx); err != nil {
		return err
	}
	return session.Clear(ctx)
}

// Current returns the session of the client. Expired sessions are cleared and
// reported as Anonymous.
func (p *HardcodedProvider) Current(ctx context.Context, creds Credentials) (Principal, Status, error) {
	record, ok, err := p.record(ctx, creds.ClientID)
	if err != nil || !ok {
		return Principal{}, Anonymous, err
	}
	if !p.valid(record) {
		log.Info().Str("username", record.Username).Msg("Console session expired")
		if err := p.clearClient(ctx, creds.ClientID); err != nil {
			return Principal{}, Anonymous, err
		}
		return Principal{}, Anonymous, nil
	}
	return Principal{Username: record.Username, Role: record.Role, Provider: p.Name()}, Authenticated, nil
}

// IsSessionValid reports whether the client holds a live console session.
func (p *HardcodedProvider) IsSessionValid(ctx context.Context, clientID string) bool {
	record, ok, err := p.record(ctx, clientID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read console session")
		return false
	}
	return ok && p.valid(record)
}

// Touch refreshes the activity timestamp of a logged in client.
func (p *HardcodedProvider) Touch(ctx context.Context, clientID string) error {
	record, ok, err := p.record(ctx, clientID)
	if err != nil || !ok || !record.LoggedIn {
		return err
	}
	record.LastActivity = p.now().UnixMilli()
	local, err := p.buckets.Local(clientID)
	if err != nil {
		return err
	}
	return local.SetJSON(ctx, AuthUserKey, record)
}

func (p *HardcodedProvider) record(ctx context.Context, clientID string) (model.AuthUser, bool, error) {
	var record model.AuthUser
	if clientID == "" {
		return record, false, nil
	}
	local, err := p.buckets.Local(clientID)
	if err != nil {
		return record, false, err
	}
	found, err := local.GetJSON(ctx, AuthUserKey, &record)
	if err != nil {
		// An unreadable record is treated as no session.
		log.Warn().Err(err).Msg("Discarding unreadable console session")
		return model.AuthUser{}, false, nil
	}
	return record, found, nil
}

// valid applies both windows. Missing timestamps count as now.
func (p *HardcodedProvider) valid(record model.AuthUser) bool {
	if !record.LoggedIn {
		return false
	}
	now := p.now().UnixMilli()
	start, last := record.SessionStart, record.LastActivity
	if start == 0 {
		start = now
	}
	if last == 0 {
		last = now
	}
	if now-start >= p.sessionTimeout.Milliseconds() {
		return false
	}
	return now-last < p.idleTimeout.Milliseconds()
}

// Sweep clears every expired console session and reports how many were removed.
func (p *HardcodedProvider) Sweep(ctx context.Context) (int, error) {
	ids, err := p.buckets.ClientsWithLocalKey(ctx, AuthUserKey)
	if err != nil {
		return 0, err
	}
	cleared := 0
	for _, id := range ids {
		if p.IsSessionValid(ctx, id) {
			continue
		}
		if err := p.clearClient(ctx, id); err != nil {
			log.Error().Err(err).Str("client_id", id).Msg("Failed to clear expired session")
			continue
		}
		cleared++
	}
	return cleared, nil
}

// DashboardPath is where a console role lands after login.
func DashboardPath(role string) string {
	if role == RoleDeveloper {
		return "/developer"
	}
	return "/admin"
}
