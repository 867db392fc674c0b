package handler

import (
	"errors"
	"net/http"

	"ad-funnel-gate/auth"
	"ad-funnel-gate/model"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

var errInvalidRole = errors.New("role must be admin, developer or user")

// ListUsers handles GET /api/developer/users
// @Summary List end users
// @Description Profiles with their role (default user) and short link count
// @Tags Developer
// @Security ConsoleSession
// @Produce json
// @Success 200 {array} model.ManagedUser "Users"
// @Router /api/developer/users [get]
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opContext(r)
	defer cancel()

	profiles, err := h.backend.ListProfiles(ctx)
	if err != nil {
		sendBackendError(w, err, "Failed to list users")
		return
	}

	users := make([]model.ManagedUser, 0, len(profiles))
	for _, p := range profiles {
		role, err := h.backend.UserRole(ctx, p.ID)
		if err != nil || !auth.ValidRole(role) {
			role = auth.RoleUser
		}
		count, err := h.backend.CountLinksByUser(ctx, p.ID)
		if err != nil {
			log.Warn().Err(err).Str("user_id", p.ID).Msg("Failed to count user links")
		}
		users = append(users, model.ManagedUser{Profile: p, Role: role, LinkCount: count})
	}
	SendJSONSuccess(w, http.StatusOK, users)
}

// SetUserRole handles PUT /api/developer/users/{userId}/role
// @Summary Change a user's role
// @Tags Developer
// @Security ConsoleSession
// @Accept json
// @Produce json
// @Param userId path string true "User id"
// @Param request body model.RoleUpdateRequest true "New role"
// @Success 200 {object} model.RoleAssignment "Updated"
// @Failure 400 {object} model.ErrorResponse "Unknown role"
// @Router /api/developer/users/{userId}/role [put]
func (h *Handler) SetUserRole(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opContext(r)
	defer cancel()

	var req model.RoleUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !auth.ValidRole(req.Role) {
		SendJSONError(w, http.StatusBadRequest, errInvalidRole, "Unknown role")
		return
	}

	userID := mux.Vars(r)["userId"]
	if err := h.backend.SetUserRole(ctx, userID, req.Role); err != nil {
		sendBackendError(w, err, "Failed to change role")
		return
	}
	h.identity.Forget(userID)

	log.Info().Str("user_id", userID).Str("role", req.Role).Msg("User role changed")
	SendJSONSuccess(w, http.StatusOK, model.RoleAssignment{UserID: userID, Role: req.Role})
}
