package model

// LoginRequest represents console login credentials
type LoginRequest struct {
	Username string `json:"username" example:"pikachu"`
	Password string `json:"password" example:"Ad@123"`
}

// LoginResponse is returned after a console login
type LoginResponse struct {
	User     ConsoleUser `json:"user"`
	Redirect string      `json:"redirect" example:"/admin"`
}

// SessionResponse describes the current console session
type SessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
	Role          string `json:"role,omitempty"`
}

// SignUpRequest registers an end user with the identity service
type SignUpRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"SecurePassword123"`
	Username string `json:"username,omitempty" example:"user"`
}

// SignInRequest signs an end user in with the identity service
type SignInRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"SecurePassword123"`
}

// IdentityUser is the user object returned by the identity service
type IdentityUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// IdentitySession is a token pair issued by the identity service
type IdentitySession struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"`
	User         IdentityUser `json:"user"`
}

// RoleUpdateRequest changes a user's role
type RoleUpdateRequest struct {
	Role string `json:"role" example:"developer"`
}
