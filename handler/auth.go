package handler

import (
	"errors"
	"net/http"
	"strings"

	"ad-funnel-gate/auth"
	"ad-funnel-gate/backend"
	"ad-funnel-gate/middleware"
	"ad-funnel-gate/model"
	"ad-funnel-gate/utils"

	"github.com/rs/zerolog/log"
)

var errInvalidEmail = errors.New("invalid email address")

// sendBackendError maps a backend failure onto a response status.
func sendBackendError(w http.ResponseWriter, err error, message string) {
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, backend.ErrNotFound):
		SendJSONError(w, http.StatusNotFound, err, message)
	case errors.Is(err, backend.ErrConflict):
		SendJSONError(w, http.StatusConflict, err, message)
	case errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500:
		SendJSONError(w, apiErr.Status, err, message)
	default:
		log.Error().Err(err).Msg(message)
		SendJSONError(w, http.StatusBadGateway, err, message)
	}
}

// ConsoleLogin handles POST /login
// @Summary Console login
// @Description Logs in with one of the fixed console accounts and returns the dashboard to open
// @Tags Console
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Credentials"
// @Success 200 {object} model.LoginResponse "Logged in"
// @Failure 401 {object} model.ErrorResponse "Invalid credentials"
// @Router /login [post]
func (h *Handler) ConsoleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opContext(r)
	defer cancel()

	var req model.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.console.Login(ctx, middleware.GetClientID(r), req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		SendJSONError(w, http.StatusUnauthorized, err, "Check your username and password")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Console login failed")
		SendJSONError(w, http.StatusInternalServerError, err, "Login failed")
		return
	}
	SendJSONSuccess(w, http.StatusOK, model.LoginResponse{User: *user, Redirect: auth.DashboardPath(user.Role)})
}

// ConsoleLogout handles POST /logout
// @Summary Console logout
// @Description Clears the client's console session and cached state
// @Tags Console
// @Produce json
// @Success 200 {object} model.MessageResponse "Logged out"
// @Router /logout [post]
func (h *Handler) ConsoleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opContext(r)
	defer cancel()

	if err := h.console.Logout(ctx, middleware.GetClientID(r)); err != nil {
		log.Error().Err(err).Msg("Console logout failed")
		SendJSONError(w, http.StatusInternalServerError, err, "Logout failed")
		return
	}
	SendJSONSuccess(w, http.StatusOK, model.MessageResponse{Message: "Logged out"})
}

// ConsoleSession handles GET /api/session
// @Summary Console session
// @Description Reports whether the client holds a live console session
// @Tags Console
// @Produce json
// @Success 200 {object} model.SessionResponse "Session state"
// @Router /api/session [get]
func (h *Handler) ConsoleSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opContext(r)
	defer cancel()

	principal, status, err := h.console.Current(ctx, middleware.GetCredentials(r))
	if err != nil {
		log.Error().Err(err).Msg("Failed to read console session")
	}
	resp := model.SessionResponse{Authenticated: err == nil && status == auth.Authenticated}
	if resp.Authenticated {
		resp.Username = principal.Username
		resp.Role = principal.Role
	}
	SendJSONSuccess(w, http.StatusOK, resp)
}

func (h *Handler) setTokenCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.config.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// UserSignUp handles POST /api/user/signup
// @Summary Register an end user
// @Description Registers with the identity service. The username defaults to the email local part.
// @Tags Users
// @Accept json
// @Produce json
// @Param request body model.SignUpRequest true "Registration data"
// @Success 201 {object} model.IdentitySession "Registered"
// @Failure 400 {object} model.ErrorResponse "Invalid email or weak password"
// @Failure 409 {object} model.ErrorResponse "Email already registered"
// @Router /api/user/signup [post]
func (h *Handler) UserSignUp(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opContext(r)
	defer cancel()

	var req model.SignUpRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if at := strings.Index(req.Email, "@"); at <= 0 || at == len(req.Email)-1 {
		SendJSONError(w, http.StatusBadRequest, errInvalidEmail, "Provide a valid email address")
		return
	}
	if err := utils.ValidatePassword(req.Password, h.config.Auth.Password); err != nil {
		SendJSONError(w, http.StatusBadRequest, err, utils.GetPasswordRequirements(h.config.Auth.Password))
		return
	}

	session, err := h.backend.SignUp(ctx, req)
	if err != nil {
		sendBackendError(w, err, "Registration failed")
		return
	}
	if session.AccessToken != "" {
		h.setTokenCookie(w, session.AccessToken, session.ExpiresIn)
	}
	log.Info().Str("user_id", session.User.ID).Msg("End user registered")
	SendJSONSuccess(w, http.StatusCreated, session)
}

// UserLogin handles POST /api/user/login
// @Summary End user login
// @Description Signs in with the identity service and sets the access token cookie
// @Tags Users
// @Accept json
// @Produce json
// @Param request body model.SignInRequest true "Credentials"
// @Success 200 {object} model.IdentitySession "Signed in"
// @Failure 400 {object} model.ErrorResponse "Invalid credentials"
// @Router /api/user/login [post]
func (h *Handler) UserLogin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opContext(r)
	defer cancel()

	var req model.SignInRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.backend.SignIn(ctx, req)
	if err != nil {
		sendBackendError(w, err, "Sign in failed")
		return
	}
	h.setTokenCookie(w, session.AccessToken, session.ExpiresIn)
	SendJSONSuccess(w, http.StatusOK, session)
}

// UserLogout handles POST /api/user/logout
// @Summary End user logout
// @Description Revokes the session with the identity service and clears the cookie
// @Tags Users
// @Produce json
// @Success 200 {object} model.MessageResponse "Signed out"
// @Router /api/user/logout [post]
func (h *Handler) UserLogout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opContext(r)
	defer cancel()

	creds := middleware.GetCredentials(r)
	if err := h.identity.Clear(ctx, creds); err != nil {
		log.Warn().Err(err).Msg("Identity sign out failed")
	}
	h.setTokenCookie(w, "", -1)
	SendJSONSuccess(w, http.StatusOK, model.MessageResponse{Message: "Signed out"})
}
