package utils

import "testing"

func TestIsReservedCode(t *testing.T) {
	reserved := []string{"health", "HEALTH", "Download", "admin", "developer", "s", "qr", "ad", "countdown", "swagger"}
	for _, code := range reserved {
		if !IsReservedCode(code) {
			t.Errorf("IsReservedCode(%q) = false, want true", code)
		}
	}

	// Only exact words are reserved.
	free := []string{"my-link", "custom123", "download-now", "ad1", ""}
	for _, code := range free {
		if IsReservedCode(code) {
			t.Errorf("IsReservedCode(%q) = true, want false", code)
		}
	}
}

func TestReservedCodesCoverRoutes(t *testing.T) {
	for _, route := range []string{"ad", "download", "s", "qr", "login", "logout", "api", "health", "cache", "swagger"} {
		if !IsReservedCode(route) {
			t.Errorf("Route prefix %q should be reserved", route)
		}
	}
}
