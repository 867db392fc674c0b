package model

import "time"

// ShortLink is a row of the remote short_links table.
type ShortLink struct {
	ID          string    `json:"id,omitempty"`
	ShortCode   string    `json:"short_code"`
	OriginalURL string    `json:"original_url"`
	ClickCount  int       `json:"click_count"`
	UserID      string    `json:"user_id,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// CreateLinkRequest creates a short link.
type CreateLinkRequest struct {
	OriginalURL string `json:"originalURL" example:"https://example.com"`
	ShortCode   string `json:"shortCode,omitempty" example:"my-link"`
}
