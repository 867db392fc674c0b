package utils

import "strings"

// ReservedCodes cannot be chosen as custom short codes. They mirror the
// service's own top-level routes and a few words likely to confuse visitors.
var ReservedCodes = []string{
	// Funnel
	"ad",
	"ads",
	"download",
	"s",
	"qr",
	"next",
	"countdown",

	// System routes
	"health",
	"metrics",
	"cache",
	"api",
	"v1",
	"v2",

	// Consoles
	"admin",
	"developer",
	"console",
	"dashboard",
	"settings",
	"config",
	"status",

	// Analytics
	"stats",
	"analytics",
	"reports",

	// Documentation
	"docs",
	"swagger",
	"openapi",
	"help",

	// Authentication
	"login",
	"logout",
	"register",
	"signup",
	"signin",
	"auth",
	"user",
	"account",
	"profile",
	"session",

	// Common words to avoid confusion
	"home",
	"index",
	"root",
}

var reservedSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(ReservedCodes))
	for _, code := range ReservedCodes {
		set[code] = struct{}{}
	}
	return set
}()

// IsReservedCode reports whether code, in any case, is reserved.
func IsReservedCode(code string) bool {
	_, ok := reservedSet[strings.ToLower(code)]
	return ok
}
