package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const (
	// ClientCookie names the browser's server-side local and session buckets.
	ClientCookie = "funnel_client"
	// TokenCookie carries the identity access token of end users.
	TokenCookie = "funnel_token"

	clientCookieMaxAge = 365 * 24 * 60 * 60
)

type contextKey int

const (
	clientIDKey contextKey = iota
	principalKey
)

// ClientID makes sure every request carries a client id cookie.
func ClientID(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(ClientCookie); err == nil {
				if _, perr := uuid.Parse(c.Value); perr == nil {
					id = c.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     ClientCookie,
					Value:    id,
					Path:     "/",
					MaxAge:   clientCookieMaxAge,
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientIDKey, id)))
		})
	}
}

// GetClientID returns the client id set by ClientID.
func GetClientID(r *http.Request) string {
	id, _ := r.Context().Value(clientIDKey).(string)
	return id
}
