package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ad-funnel-gate/auth"
	"ad-funnel-gate/cache"
	"ad-funnel-gate/config"
	"ad-funnel-gate/funnel"
	"ad-funnel-gate/middleware"
	"ad-funnel-gate/model"
	"ad-funnel-gate/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const testJWTSecret = "test-secret"

type testEnv struct {
	h       *Handler
	srv     http.Handler
	backend *fakeBackend
	store   *funnel.Store
	buckets *storage.Buckets
	jwt     *auth.JWTManager
	mr      *miniredis.Miniredis
}

func testConfig() config.Config {
	return config.Config{
		WebServer: config.WebServerConfig{Scheme: "http", IP: "127.0.0.1", Port: "8080", AllowedOrigin: "*"},
		Redis:     config.RedisConfig{OperationTimeout: 5},
		Auth: config.AuthConfig{
			JWTSecret: testJWTSecret,
			Password:  config.PasswordRulesConfig{MinLength: 6, MaxLength: 72},
		},
		Features: config.FeaturesConfig{
			ShortCodeLength:      6,
			MinCustomCodeLength:  3,
			MaxCustomCodeLength:  32,
			CodeSuggestionsCount: 3,
		},
	}
}

func setupTestHandler(t *testing.T) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	c, err := cache.New(config.CacheConfig{Enabled: true, MaxSizeMB: 1, TTLSeconds: 60, CounterSize: 1000})
	if err != nil {
		t.Fatalf("cache.New() error = %v", err)
	}
	t.Cleanup(c.Close)

	cfg := testConfig()
	buckets := storage.NewBuckets(rdb, time.Hour)
	store := funnel.NewStore(rdb, 0)
	console, err := auth.NewHardcodedProvider(buckets, 0, 0)
	if err != nil {
		t.Fatalf("NewHardcodedProvider() error = %v", err)
	}
	fb := newFakeBackend()
	jwt := auth.NewJWTManager(testJWTSecret)
	identity := auth.NewDelegatedProvider(jwt, fb, c, fb, time.Second)

	h := New(Deps{
		Config:   cfg,
		Redis:    rdb,
		Cache:    c,
		Store:    store,
		Flow:     funnel.NewFlow(store, buckets, true),
		Console:  console,
		Identity: identity,
		Backend:  fb,
	})
	return &testEnv{h: h, srv: h.Router(nil, nil), backend: fb, store: store, buckets: buckets, jwt: jwt, mr: mr}
}

// client is a browser with a fixed client id cookie.
type client struct {
	env   *testEnv
	id    string
	token string
}

func (e *testEnv) newClient() *client {
	return &client{env: e, id: uuid.NewString()}
}

func (c *client) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	r := httptest.NewRequest(method, path, reader)
	c.authorize(r)
	return serve(c.env, r)
}

func (c *client) authorize(r *http.Request) {
	r.AddCookie(&http.Cookie{Name: middleware.ClientCookie, Value: c.id})
	if c.token != "" {
		r.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func newRequest(t *testing.T, c *client, method, path string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(method, path, nil)
	c.authorize(r)
	return r
}

func serve(env *testEnv, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	env.srv.ServeHTTP(w, r)
	return w
}

func (c *client) loginConsole(t *testing.T, username, password string) {
	t.Helper()
	w := c.do(t, http.MethodPost, "/login", model.LoginRequest{Username: username, Password: password})
	if w.Code != http.StatusOK {
		t.Fatalf("Console login as %s: status %d, body %s", username, w.Code, w.Body.String())
	}
}

func (e *testEnv) endUser(t *testing.T, userID, role string) *client {
	t.Helper()
	if role != "" {
		e.backend.roles[userID] = role
	}
	token, err := e.jwt.GenerateToken(userID, userID+"@example.com", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	c := e.newClient()
	c.token = token
	return c
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestHealthCheck(t *testing.T) {
	env := setupTestHandler(t)
	w := env.newClient().do(t, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	env.mr.SetError("LOADING")
	w = env.newClient().do(t, http.MethodGet, "/health", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 with Redis failing, got %d", w.Code)
	}
	env.mr.SetError("")
}

func TestRootRedirectsToFirstPage(t *testing.T) {
	env := setupTestHandler(t)
	w := env.newClient().do(t, http.MethodGet, "/", nil)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/ad/1" {
		t.Errorf("Expected 302 to /ad/1, got %d %s", w.Code, w.Header().Get("Location"))
	}
}

func TestCORSPreflight(t *testing.T) {
	env := setupTestHandler(t)
	r := httptest.NewRequest(http.MethodOptions, "/api/console/ads", nil)
	r.Header.Set("Origin", "https://console.example")
	w := httptest.NewRecorder()
	env.srv.ServeHTTP(w, r)
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected 204 preflight, got %d", w.Code)
	}
}

func TestCacheMetrics(t *testing.T) {
	env := setupTestHandler(t)
	w := env.newClient().do(t, http.MethodGet, "/cache/metrics", nil)
	var snap cache.MetricsSnapshot
	decodeBody(t, w, &snap)
	if !snap.Enabled {
		t.Error("Expected enabled cache metrics")
	}
}
