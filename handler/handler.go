package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ad-funnel-gate/auth"
	"ad-funnel-gate/cache"
	"ad-funnel-gate/config"
	"ad-funnel-gate/funnel"
	"ad-funnel-gate/middleware"
	"ad-funnel-gate/model"
	"ad-funnel-gate/security"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

// Backend is the remote REST and identity API.
type Backend interface {
	ListLinks(ctx context.Context) ([]model.ShortLink, error)
	LinkByCode(ctx context.Context, code string) (model.ShortLink, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	CreateLink(ctx context.Context, code, originalURL, userID string) (model.ShortLink, error)
	DeleteLink(ctx context.Context, id string) (model.ShortLink, error)
	IncrementClicks(ctx context.Context, code string, seen int) (int, error)
	CountLinksByUser(ctx context.Context, userID string) (int, error)

	GetUserData(ctx context.Context, userID string) (model.UserData, error)
	CreateUserData(ctx context.Context, data model.UserData) (model.UserData, error)
	UpdateUserData(ctx context.Context, userID string, patch model.UserDataPatch) error
	DeleteUserData(ctx context.Context, userID string) error
	ListUserData(ctx context.Context) ([]model.UserData, error)

	ListProfiles(ctx context.Context) ([]model.Profile, error)
	UserRole(ctx context.Context, userID string) (string, error)
	SetUserRole(ctx context.Context, userID, role string) error

	SignUp(ctx context.Context, req model.SignUpRequest) (model.IdentitySession, error)
	SignIn(ctx context.Context, req model.SignInRequest) (model.IdentitySession, error)
	SignOut(ctx context.Context, token string) error
}

// Deps are the collaborators of a Handler. Redis, Cache, Scanner and Bots may be nil.
type Deps struct {
	Config   config.Config
	Redis    *redis.Client
	Cache    *cache.Cache
	Store    *funnel.Store
	Flow     *funnel.Flow
	Console  *auth.HardcodedProvider
	Identity *auth.DelegatedProvider
	Backend  Backend
	Scanner  *security.URLScanner
	Bots     *middleware.BotProtection
}

// Handler serves the funnel, the consoles and short links
type Handler struct {
	redis    *redis.Client
	cache    *cache.Cache
	config   config.Config
	baseURL  string
	store    *funnel.Store
	flow     *funnel.Flow
	console  *auth.HardcodedProvider
	identity *auth.DelegatedProvider
	backend  Backend
	scanner  *security.URLScanner
	bots     *middleware.BotProtection

	consoleGuard  *middleware.Require
	identityGuard *middleware.Require

	countdownInterval time.Duration
}

// New creates a new handler
func New(d Deps) *Handler {
	// Use configured base_url if provided, otherwise construct from scheme, IP, and port
	baseURL := d.Config.WebServer.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("%s://%s:%s", d.Config.WebServer.Scheme, d.Config.WebServer.IP, d.Config.WebServer.Port)
	}
	c := d.Cache
	if c == nil {
		c, _ = cache.New(config.CacheConfig{Enabled: false})
	}
	return &Handler{
		redis:         d.Redis,
		cache:         c,
		config:        d.Config,
		baseURL:       baseURL,
		store:         d.Store,
		flow:          d.Flow,
		console:       d.Console,
		identity:      d.Identity,
		backend:       d.Backend,
		scanner:       d.Scanner,
		bots:          d.Bots,
		consoleGuard:  middleware.NewRequire(auth.NewGuard(d.Console)),
		identityGuard: middleware.NewRequire(auth.NewGuard(d.Identity)),

		countdownInterval: time.Second,
	}
}

// opContext bounds a storage or backend call.
func (h *Handler) opContext(r *http.Request) (context.Context, context.CancelFunc) {
	timeout := time.Duration(h.config.Redis.OperationTimeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return context.WithTimeout(r.Context(), timeout)
}

// scan vets a destination URL. Scanner failures never block.
func (h *Handler) scan(ctx context.Context, rawURL string) bool {
	if h.scanner == nil {
		return true
	}
	result, err := h.scanner.ScanURL(ctx, rawURL)
	if err != nil {
		log.Error().Err(err).Str("url", rawURL).Msg("URL scan failed")
		return true
	}
	return result.Safe
}

// HealthCheck handles GET /health
// @Summary Health check
// @Description Reports service and Redis status
// @Tags System
// @Produce json
// @Success 200 {object} model.HealthResponse "Service healthy"
// @Failure 503 {object} model.HealthResponse "Redis unavailable"
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opContext(r)
	defer cancel()

	resp := model.HealthResponse{Status: "healthy", Redis: "connected"}
	if h.redis == nil || h.redis.Ping(ctx).Err() != nil {
		log.Warn().Msg("Health check: Redis unavailable")
		resp.Status = "unhealthy"
		resp.Redis = "disconnected"
		SendJSONSuccess(w, http.StatusServiceUnavailable, resp)
		return
	}
	SendJSONSuccess(w, http.StatusOK, resp)
}

// CacheMetrics handles GET /cache/metrics
// @Summary Cache metrics
// @Description Returns short link cache statistics
// @Tags System
// @Produce json
// @Success 200 {object} cache.MetricsSnapshot "Cache metrics"
// @Router /cache/metrics [get]
func (h *Handler) CacheMetrics(w http.ResponseWriter, r *http.Request) {
	SendJSONSuccess(w, http.StatusOK, h.cache.GetMetricsSnapshot())
}
