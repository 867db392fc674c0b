package auth

import (
	"context"
	"testing"
	"time"

	"ad-funnel-gate/model"
	"ad-funnel-gate/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time         { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func setupHardcoded(t *testing.T) (*HardcodedProvider, *storage.Buckets, *miniredis.Miniredis, *testClock) {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })

	buckets := storage.NewBuckets(client, 0)
	p, err := NewHardcodedProvider(buckets, 0, 0)
	require.NoError(t, err)
	clock := &testClock{t: time.UnixMilli(1700000000000)}
	p.now = clock.now
	return p, buckets, s, clock
}

func TestHardcodedLogin(t *testing.T) {
	p, _, _, _ := setupHardcoded(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		role     string
		wantErr  bool
	}{
		{"admin", "pikachu", "Ad@123", RoleAdmin, false},
		{"developer", "fkingdev", "Fd@123", RoleDeveloper, false},
		{"wrong password", "pikachu", "Fd@123", "", true},
		{"unknown user", "ash", "Ad@123", "", true},
		{"case sensitive", "Pikachu", "Ad@123", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := p.Login(ctx, "client-"+tt.name, tt.username, tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCredentials)
				assert.Nil(t, user)
				assert.False(t, p.IsSessionValid(ctx, "client-"+tt.name))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.role, user.Role)
			assert.True(t, p.IsSessionValid(ctx, "client-"+tt.name))
		})
	}
}

func TestFailedLoginPersistsNothing(t *testing.T) {
	p, buckets, s, _ := setupHardcoded(t)
	ctx := context.Background()

	_, err := p.Login(ctx, "c1", "pikachu", "Ad@123")
	require.NoError(t, err)

	_, err = p.Login(ctx, "c1", "pikachu", "nope")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	local, _ := buckets.Local("c1")
	var record model.AuthUser
	found, err := local.GetJSON(ctx, AuthUserKey, &record)
	require.NoError(t, err)
	assert.False(t, found, "failed login must wipe the previous session and write nothing")
	assert.Empty(t, s.Keys())
}

func TestSessionWindows(t *testing.T) {
	p, _, _, clock := setupHardcoded(t)
	ctx := context.Background()

	_, err := p.Login(ctx, "c", "pikachu", "Ad@123")
	require.NoError(t, err)

	clock.advance(3 * time.Hour)
	assert.True(t, p.IsSessionValid(ctx, "c"))

	clock.advance(time.Hour + time.Minute)
	assert.False(t, p.IsSessionValid(ctx, "c"), "idle for more than 4h")
}

func TestSessionWindowActivityRefresh(t *testing.T) {
	p, _, _, clock := setupHardcoded(t)
	ctx := context.Background()

	_, err := p.Login(ctx, "c", "fkingdev", "Fd@123")
	require.NoError(t, err)

	for i := 0; i < 7; i++ {
		clock.advance(3 * time.Hour)
		require.NoError(t, p.Touch(ctx, "c"))
	}
	assert.True(t, p.IsSessionValid(ctx, "c"))

	clock.advance(3 * time.Hour)
	assert.False(t, p.IsSessionValid(ctx, "c"), "older than 24h despite activity")
}

func TestStaleActivityWithRecentStartIsInvalid(t *testing.T) {
	p, buckets, _, clock := setupHardcoded(t)
	ctx := context.Background()

	local, _ := buckets.Local("c")
	now := clock.now().UnixMilli()
	require.NoError(t, local.SetJSON(ctx, AuthUserKey, model.AuthUser{
		Username:     "pikachu",
		Role:         RoleAdmin,
		LoggedIn:     true,
		SessionStart: now - time.Hour.Milliseconds(),
		LastActivity: now - 5*time.Hour.Milliseconds(),
	}))

	assert.False(t, p.IsSessionValid(ctx, "c"))
}

func TestMissingTimestampsCountAsNow(t *testing.T) {
	p, buckets, _, _ := setupHardcoded(t)
	ctx := context.Background()

	local, _ := buckets.Local("c")
	require.NoError(t, local.SetJSON(ctx, AuthUserKey, model.AuthUser{Username: "pikachu", Role: RoleAdmin, LoggedIn: true}))

	assert.True(t, p.IsSessionValid(ctx, "c"))
}

func TestCurrentClearsExpiredSession(t *testing.T) {
	p, buckets, _, clock := setupHardcoded(t)
	ctx := context.Background()

	_, err := p.Login(ctx, "c", "pikachu", "Ad@123")
	require.NoError(t, err)
	session, _ := buckets.Session("c")
	require.NoError(t, session.SetJSON(ctx, "funnel_gate", 1))

	principal, status, err := p.Current(ctx, Credentials{ClientID: "c"})
	require.NoError(t, err)
	assert.Equal(t, Authenticated, status)
	assert.Equal(t, "pikachu", principal.Username)

	clock.advance(25 * time.Hour)
	_, status, err = p.Current(ctx, Credentials{ClientID: "c"})
	require.NoError(t, err)
	assert.Equal(t, Anonymous, status)

	var v int
	found, _ := session.GetJSON(ctx, "funnel_gate", &v)
	assert.False(t, found, "transient state must be wiped with the session")
}

func TestLogout(t *testing.T) {
	p, _, _, _ := setupHardcoded(t)
	ctx := context.Background()

	_, err := p.Login(ctx, "c", "pikachu", "Ad@123")
	require.NoError(t, err)
	require.NoError(t, p.Logout(ctx, "c"))
	assert.False(t, p.IsSessionValid(ctx, "c"))
}

func TestSweep(t *testing.T) {
	p, _, _, clock := setupHardcoded(t)
	ctx := context.Background()

	_, err := p.Login(ctx, "old", "pikachu", "Ad@123")
	require.NoError(t, err)
	clock.advance(5 * time.Hour)
	_, err = p.Login(ctx, "fresh", "fkingdev", "Fd@123")
	require.NoError(t, err)

	cleared, err := p.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cleared)
	assert.True(t, p.IsSessionValid(ctx, "fresh"))
	assert.False(t, p.IsSessionValid(ctx, "old"))
}

func TestGuardWithHardcodedProvider(t *testing.T) {
	p, _, _, _ := setupHardcoded(t)
	ctx := context.Background()
	guard := NewGuard(p)

	_, decision := guard.Check(ctx, Credentials{ClientID: "nobody"}, RoleAdmin)
	assert.Equal(t, Deny, decision)

	_, err := p.Login(ctx, "dev", "fkingdev", "Fd@123")
	require.NoError(t, err)

	principal, decision := guard.Check(ctx, Credentials{ClientID: "dev"}, RoleAdmin, RoleDeveloper)
	assert.Equal(t, Allow, decision)
	assert.Equal(t, RoleDeveloper, principal.Role)

	_, decision = guard.Check(ctx, Credentials{ClientID: "dev"}, RoleAdmin)
	assert.Equal(t, Deny, decision)
	assert.False(t, p.IsSessionValid(ctx, "dev"), "denied session is cleared")
}

func TestDashboardPath(t *testing.T) {
	assert.Equal(t, "/admin", DashboardPath(RoleAdmin))
	assert.Equal(t, "/developer", DashboardPath(RoleDeveloper))
}

type countingSweeper struct{ calls chan struct{} }

func (s *countingSweeper) Sweep(ctx context.Context) (int, error) {
	select {
	case s.calls <- struct{}{}:
	default:
	}
	return 0, nil
}

func TestRunSweeperStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &countingSweeper{calls: make(chan struct{}, 1)}
	done := make(chan struct{})

	go func() {
		RunSweeper(ctx, s, time.Millisecond)
		close(done)
	}()

	select {
	case <-s.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper never ran")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}
