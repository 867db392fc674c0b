package model

// HealthResponse represents the health check response
// @Description Health check response showing service status
type HealthResponse struct {
	Status string `json:"status" example:"healthy"`
	Redis  string `json:"redis" example:"connected"`
}

// ErrorResponse represents an error response
// @Description Standard error response
type ErrorResponse struct {
	Error   string `json:"error" example:"short link not found"`
	Message string `json:"message,omitempty"`
}

// MessageResponse represents a generic success response
// @Description Generic success message response
type MessageResponse struct {
	Message string `json:"message" example:"Operation completed successfully"`
}

// LockedResponse is returned when "next" is requested before the countdown ends
// @Description Countdown gate still closed
type LockedResponse struct {
	Error     string `json:"error" example:"countdown not finished"`
	Remaining int    `json:"remaining" example:"4"`
}

// PendingResponse is returned while the remote session is still resolving
// @Description Session resolution in progress
type PendingResponse struct {
	Status string `json:"status" example:"loading"`
}

// CodeConflictResponse represents response when a short code is taken
// @Description Response when requested short code is already in use
type CodeConflictResponse struct {
	Error       string   `json:"error" example:"short code already taken"`
	Suggestions []string `json:"suggestions"`
}
