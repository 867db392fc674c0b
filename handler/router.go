package handler

import (
	"net/http"

	"ad-funnel-gate/auth"
	"ad-funnel-gate/middleware"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router wires every route. rl and bots may be nil. CORS, logging and rate
// limiting wrap the router so they also see preflights and unmatched paths.
func (h *Handler) Router(rl *middleware.RateLimiter, bots *middleware.BotProtection) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.ClientID(h.config.Auth.CookieSecure))

	protect := func(f http.HandlerFunc) http.Handler {
		if bots == nil {
			return f
		}
		return bots.Protect(f)
	}

	// System
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/cache/metrics", h.CacheMetrics).Methods(http.MethodGet)
	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	// Funnel
	r.HandleFunc("/", h.Root).Methods(http.MethodGet)
	r.HandleFunc("/ad/{pageId:[0-9]+}", h.EnterPage).Methods(http.MethodGet)
	r.HandleFunc("/ad/{pageId:[0-9]+}/countdown", h.Countdown).Methods(http.MethodGet)
	r.Handle("/ad/{pageId:[0-9]+}/next", protect(h.NextPage)).Methods(http.MethodPost)
	r.Handle("/ad/click/{adId}", protect(h.ClickAd)).Methods(http.MethodGet)
	r.HandleFunc("/download", h.DownloadPage).Methods(http.MethodGet)
	r.Handle("/download", protect(h.Download)).Methods(http.MethodPost)

	// Short links
	r.HandleFunc("/s/{shortCode}", h.Redirect).Methods(http.MethodGet)
	r.HandleFunc("/qr/{shortCode}", h.GenerateQR).Methods(http.MethodGet)

	// Console session
	r.HandleFunc("/login", h.ConsoleLogin).Methods(http.MethodPost)
	r.HandleFunc("/logout", h.ConsoleLogout).Methods(http.MethodPost)
	r.HandleFunc("/api/session", h.ConsoleSession).Methods(http.MethodGet)

	console := r.PathPrefix("/api/console").Subrouter()
	console.Use(h.consoleGuard.Roles(auth.RoleAdmin, auth.RoleDeveloper))
	console.HandleFunc("/ads", h.ListAds).Methods(http.MethodGet)
	console.HandleFunc("/ads", h.CreateAd).Methods(http.MethodPost)
	console.HandleFunc("/ads/{adId}", h.UpdateAd).Methods(http.MethodPut)
	console.HandleFunc("/ads/{adId}", h.DeleteAd).Methods(http.MethodDelete)
	console.HandleFunc("/settings", h.GetSettings).Methods(http.MethodGet)
	console.HandleFunc("/settings", h.UpdateSettings).Methods(http.MethodPut)
	console.HandleFunc("/analytics", h.GetAnalytics).Methods(http.MethodGet)
	console.HandleFunc("/analytics/reset", h.ResetAnalytics).Methods(http.MethodPost)
	console.HandleFunc("/config/export", h.ExportConfig).Methods(http.MethodGet)
	console.HandleFunc("/config/import", h.ImportConfig).Methods(http.MethodPost)
	console.HandleFunc("/config/reset", h.ResetConfig).Methods(http.MethodPost)
	console.HandleFunc("/links", h.ListLinks).Methods(http.MethodGet)
	console.HandleFunc("/links", h.CreateLink).Methods(http.MethodPost)
	console.HandleFunc("/links/{id}", h.DeleteLink).Methods(http.MethodDelete)
	console.HandleFunc("/security", h.SecurityStats).Methods(http.MethodGet)

	developer := r.PathPrefix("/api/developer").Subrouter()
	developer.Use(h.consoleGuard.Roles(auth.RoleDeveloper))
	developer.HandleFunc("/users", h.ListUsers).Methods(http.MethodGet)
	developer.HandleFunc("/users/{userId}/role", h.SetUserRole).Methods(http.MethodPut)

	// End users
	r.HandleFunc("/api/user/signup", h.UserSignUp).Methods(http.MethodPost)
	r.HandleFunc("/api/user/login", h.UserLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/user/logout", h.UserLogout).Methods(http.MethodPost)

	userAdmin := r.PathPrefix("/api/user/admin").Subrouter()
	userAdmin.Use(h.identityGuard.Roles(auth.RoleDeveloper))
	userAdmin.HandleFunc("/data", h.ListAllUserData).Methods(http.MethodGet)
	userAdmin.HandleFunc("/data/{userId}", h.PatchUserData).Methods(http.MethodPatch)

	user := r.PathPrefix("/api/user").Subrouter()
	user.Use(h.identityGuard.Roles(auth.RoleUser))
	user.HandleFunc("/data", h.GetUserData).Methods(http.MethodGet)
	user.HandleFunc("/data", h.DeleteUserData).Methods(http.MethodDelete)
	user.HandleFunc("/data/ads", h.ReplaceUserAds).Methods(http.MethodPut)
	user.HandleFunc("/data/countdown", h.SetUserCountdown).Methods(http.MethodPut)
	user.HandleFunc("/data/analytics", h.ReplaceUserAnalytics).Methods(http.MethodPut)
	user.HandleFunc("/links", h.CreateUserLink).Methods(http.MethodPost)

	var root http.Handler = r
	if rl != nil {
		root = rl.Limit(root)
	}
	root = middleware.RequestLogger(root)
	return middleware.CORS(h.config.WebServer.AllowedOrigin)(root)
}
