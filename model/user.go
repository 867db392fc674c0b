package model

import "time"

// AuthUser is the hardcoded-scheme session record.
type AuthUser struct {
	Username     string `json:"username"`
	Role         string `json:"role"`
	LoggedIn     bool   `json:"loggedIn"`
	SessionStart int64  `json:"sessionStart,omitempty"` // unix millis
	LastActivity int64  `json:"lastActivity,omitempty"` // unix millis
}

// ConsoleUser is a hardcoded console account without its password.
type ConsoleUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile is a row of the remote profiles table.
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// RoleAssignment is a row of the remote user_roles table.
type RoleAssignment struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// ManagedUser is a profile joined with its role and link count.
type ManagedUser struct {
	Profile
	Role      string `json:"role"`
	LinkCount int    `json:"linkCount"`
}

// UserAd is an ad owned by an end user.
type UserAd struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	ImageURL  string `json:"imageUrl"`
	TargetURL string `json:"targetUrl"`
	IsActive  bool   `json:"isActive"`
	CreatedAt string `json:"createdAt"`
}

// UserLink is a short link as recorded in a user's bundle.
type UserLink struct {
	ID          string `json:"id"`
	OriginalURL string `json:"originalUrl"`
	ShortCode   string `json:"shortCode"`
	ClickCount  int    `json:"clickCount"`
	CreatedAt   string `json:"createdAt"`
}

// UserData is a row of the remote users_data table.
type UserData struct {
	ID         string        `json:"id,omitempty"`
	UserID     string        `json:"user_id"`
	Ads        []UserAd      `json:"ads"`
	Countdown  int           `json:"countdown"`
	ShortLinks []UserLink    `json:"short_links"`
	Analytics  UserAnalytics `json:"analytics"`
	CreatedAt  time.Time     `json:"created_at,omitempty"`
	UpdatedAt  time.Time     `json:"updated_at,omitempty"`
}

// UserDataPatch carries the columns to change on a bundle. Nil means untouched.
type UserDataPatch struct {
	Ads        *[]UserAd      `json:"ads,omitempty"`
	Countdown  *int           `json:"countdown,omitempty"`
	ShortLinks *[]UserLink    `json:"short_links,omitempty"`
	Analytics  *UserAnalytics `json:"analytics,omitempty"`
}

// NewUserData returns the bundle created on first access.
func NewUserData(userID string) UserData {
	return UserData{
		UserID:     userID,
		Ads:        []UserAd{},
		Countdown:  30,
		ShortLinks: []UserLink{},
		Analytics: UserAnalytics{
			PopularLinks:  []PopularLink{},
			AdPerformance: []AdPerformance{},
		},
	}
}
