package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"ad-funnel-gate/model"
)

func TestConsoleLoginSessionLogout(t *testing.T) {
	env := setupTestHandler(t)
	c := env.newClient()

	w := c.do(t, http.MethodPost, "/login", model.LoginRequest{Username: "pikachu", Password: "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 for bad password, got %d", w.Code)
	}

	w = c.do(t, http.MethodPost, "/login", model.LoginRequest{Username: "pikachu", Password: "Ad@123"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var login model.LoginResponse
	decodeBody(t, w, &login)
	if login.Redirect != "/admin" || login.User.Role != "admin" {
		t.Errorf("Unexpected login response %+v", login)
	}

	var session model.SessionResponse
	decodeBody(t, c.do(t, http.MethodGet, "/api/session", nil), &session)
	if !session.Authenticated || session.Username != "pikachu" {
		t.Errorf("Expected live session, got %+v", session)
	}

	c.do(t, http.MethodPost, "/logout", nil)
	session = model.SessionResponse{}
	decodeBody(t, c.do(t, http.MethodGet, "/api/session", nil), &session)
	if session.Authenticated {
		t.Error("Expected session to end on logout")
	}
}

func TestConsoleRoutesRequireLogin(t *testing.T) {
	env := setupTestHandler(t)

	w := env.newClient().do(t, http.MethodGet, "/api/console/ads", nil)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/login" {
		t.Errorf("Expected 303 to /login, got %d %s", w.Code, w.Header().Get("Location"))
	}
}

func TestConsoleRoles(t *testing.T) {
	env := setupTestHandler(t)

	admin := env.newClient()
	admin.loginConsole(t, "pikachu", "Ad@123")
	dev := env.newClient()
	dev.loginConsole(t, "fkingdev", "Fd@123")

	if w := dev.do(t, http.MethodGet, "/api/console/ads", nil); w.Code != http.StatusOK {
		t.Errorf("Developer on console routes: expected 200, got %d", w.Code)
	}
	if w := dev.do(t, http.MethodGet, "/api/developer/users", nil); w.Code != http.StatusOK {
		t.Errorf("Developer on developer routes: expected 200, got %d", w.Code)
	}

	if w := admin.do(t, http.MethodGet, "/api/console/ads", nil); w.Code != http.StatusOK {
		t.Errorf("Admin on console routes: expected 200, got %d", w.Code)
	}
	// Roles match exactly, so admin is not a developer.
	if w := admin.do(t, http.MethodGet, "/api/developer/users", nil); w.Code != http.StatusSeeOther {
		t.Errorf("Admin on developer routes: expected 303, got %d", w.Code)
	}
	// The denied session is cleared.
	if w := admin.do(t, http.MethodGet, "/api/console/ads", nil); w.Code != http.StatusSeeOther {
		t.Errorf("Expected admin session cleared after denial, got %d", w.Code)
	}
}

func TestConsoleAdCRUD(t *testing.T) {
	env := setupTestHandler(t)
	c := env.newClient()
	c.loginConsole(t, "pikachu", "Ad@123")

	w := c.do(t, http.MethodPost, "/api/console/ads", model.AdRequest{
		Title:        "New ad",
		LinkURL:      "https://example.com/new",
		AssignedPage: 2,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var ad model.Ad
	decodeBody(t, w, &ad)
	if ad.ID == "" || ad.AssignedPage != 2 {
		t.Fatalf("Unexpected ad %+v", ad)
	}

	w = c.do(t, http.MethodPost, "/api/console/ads", model.AdRequest{Title: "Bad", LinkURL: "ftp://example.com", AssignedPage: 1})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for non-http link, got %d", w.Code)
	}

	w = c.do(t, http.MethodPut, "/api/console/ads/"+ad.ID, model.AdRequest{Title: "Renamed"})
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 on update, got %d: %s", w.Code, w.Body.String())
	}

	badUpdates := []model.AdRequest{
		{ImageURL: "javascript:alert(1)"},
		{LinkURL: "ftp://example.com"},
		{LinkURL: "https://example.com/ok", ImageURL: "http://127.0.0.1/pixel.png"},
	}
	for _, req := range badUpdates {
		if w := c.do(t, http.MethodPut, "/api/console/ads/"+ad.ID, req); w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 updating with %+v, got %d", req, w.Code)
		}
	}
	cfg := env.store.Load(context.Background())
	stored, _, _ := cfg.FindAd(ad.ID)
	if stored == nil || stored.ImageURL != "" || stored.LinkURL != "https://example.com/new" {
		t.Errorf("Rejected updates changed the ad: %+v", stored)
	}

	w = c.do(t, http.MethodPut, "/api/console/ads/"+ad.ID, model.AdRequest{ImageURL: "https://images.example.com/a.png"})
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 setting an image alone, got %d: %s", w.Code, w.Body.String())
	}

	if w := c.do(t, http.MethodDelete, "/api/console/ads/"+ad.ID, nil); w.Code != http.StatusNoContent {
		t.Errorf("Expected 204 on delete, got %d", w.Code)
	}
	if w := c.do(t, http.MethodDelete, "/api/console/ads/"+ad.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 deleting twice, got %d", w.Code)
	}
}

func TestConsoleSettings(t *testing.T) {
	env := setupTestHandler(t)
	c := env.newClient()
	c.loginConsole(t, "pikachu", "Ad@123")

	w := c.do(t, http.MethodPut, "/api/console/settings", model.SettingsRequest{
		Countdowns:   map[int]int{2: 15},
		SoftwareName: "Tool",
		DownloadURL:  "https://example.com/tool.zip",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var settings model.Settings
	decodeBody(t, c.do(t, http.MethodGet, "/api/console/settings", nil), &settings)
	if settings.Countdowns[2] != 15 || settings.SoftwareName != "Tool" {
		t.Errorf("Unexpected settings %+v", settings)
	}

	w = c.do(t, http.MethodPut, "/api/console/settings", model.SettingsRequest{DownloadURL: "javascript:alert(1)"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad download URL, got %d", w.Code)
	}
}

func TestConfigExportImport(t *testing.T) {
	env := setupTestHandler(t)
	c := env.newClient()
	c.loginConsole(t, "pikachu", "Ad@123")

	w := c.do(t, http.MethodGet, "/api/console/config/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("Expected ETag header")
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "ad-funnel-config-") {
		t.Errorf("Unexpected Content-Disposition %q", cd)
	}
	exported := w.Body.String()

	r := newRequest(t, c, http.MethodGet, "/api/console/config/export")
	r.Header.Set("If-None-Match", etag)
	if w := serve(env, r); w.Code != http.StatusNotModified {
		t.Errorf("Expected 304 for matching ETag, got %d", w.Code)
	}

	if w := c.do(t, http.MethodPost, "/api/console/config/import", "{not json"); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid import, got %d", w.Code)
	}
	if w := c.do(t, http.MethodPost, "/api/console/config/import", exported); w.Code != http.StatusOK {
		t.Errorf("Expected 200 re-importing export, got %d: %s", w.Code, w.Body.String())
	}

	if w := c.do(t, http.MethodPost, "/api/console/config/reset", nil); w.Code != http.StatusOK {
		t.Errorf("Expected 200 on reset, got %d", w.Code)
	}
}

func TestAnalyticsReset(t *testing.T) {
	env := setupTestHandler(t)
	ctx := context.Background()
	c := env.newClient()
	c.loginConsole(t, "pikachu", "Ad@123")

	c.do(t, http.MethodGet, "/ad/1", nil)
	c.do(t, http.MethodGet, "/ad/2", nil)

	var summary model.AnalyticsSummary
	decodeBody(t, c.do(t, http.MethodGet, "/api/console/analytics", nil), &summary)
	if summary.TotalVisits != 2 {
		t.Errorf("Expected 2 visits, got %+v", summary)
	}

	if w := c.do(t, http.MethodPost, "/api/console/analytics/reset", nil); w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	cfg := env.store.Load(ctx)
	if len(cfg.Analytics.PageVisits) != 0 {
		t.Errorf("Expected visits cleared, got %v", cfg.Analytics.PageVisits)
	}
	if len(cfg.Pages) != 4 {
		t.Errorf("Expected pages kept, got %d", len(cfg.Pages))
	}
}

func TestSecurityStats(t *testing.T) {
	env := setupTestHandler(t)
	c := env.newClient()
	c.loginConsole(t, "pikachu", "Ad@123")

	var stats map[string]interface{}
	decodeBody(t, c.do(t, http.MethodGet, "/api/console/security", nil), &stats)
	if stats["enabled"] != false {
		t.Errorf("Expected protection disabled without bots, got %v", stats)
	}
}
