package handler

import (
	"context"
	"errors"
	"net/http"

	"ad-funnel-gate/auth"
	"ad-funnel-gate/backend"
	"ad-funnel-gate/middleware"
	"ad-funnel-gate/model"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

var errInvalidCountdown = errors.New("countdown must be positive")

// userContext carries the caller's access token to the backend.
func (h *Handler) userContext(r *http.Request) (context.Context, context.CancelFunc, auth.Principal) {
	ctx, cancel := h.opContext(r)
	principal, _ := middleware.GetPrincipal(r)
	return backend.WithAccessToken(ctx, middleware.GetCredentials(r).Token), cancel, principal
}

// userBundle returns the user's data bundle, creating it on first access.
func (h *Handler) userBundle(ctx context.Context, userID string) (model.UserData, error) {
	data, err := h.backend.GetUserData(ctx, userID)
	if !errors.Is(err, backend.ErrNotFound) {
		return data, err
	}

	data, err = h.backend.CreateUserData(ctx, model.NewUserData(userID))
	if errors.Is(err, backend.ErrConflict) {
		// Created concurrently by another request.
		return h.backend.GetUserData(ctx, userID)
	}
	if err == nil {
		log.Info().Str("user_id", userID).Msg("Created user data")
	}
	return data, err
}

// GetUserData handles GET /api/user/data
// @Summary Get the caller's data
// @Description Returns the caller's ads, countdown, links and analytics, creating them on first access
// @Tags Users
// @Security IdentityToken
// @Produce json
// @Success 200 {object} model.UserData "User data"
// @Success 202 {object} model.PendingResponse "Role still resolving"
// @Router /api/user/data [get]
func (h *Handler) GetUserData(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, principal := h.userContext(r)
	defer cancel()

	data, err := h.userBundle(ctx, principal.ID)
	if err != nil {
		sendBackendError(w, err, "Failed to load user data")
		return
	}
	SendJSONSuccess(w, http.StatusOK, data)
}

// patchOwnData applies a patch to the caller's bundle and returns the result.
func (h *Handler) patchOwnData(w http.ResponseWriter, r *http.Request, patch model.UserDataPatch) {
	ctx, cancel, principal := h.userContext(r)
	defer cancel()

	if _, err := h.userBundle(ctx, principal.ID); err != nil {
		sendBackendError(w, err, "Failed to load user data")
		return
	}
	if err := h.backend.UpdateUserData(ctx, principal.ID, patch); err != nil {
		sendBackendError(w, err, "Failed to save user data")
		return
	}
	data, err := h.backend.GetUserData(ctx, principal.ID)
	if err != nil {
		sendBackendError(w, err, "Failed to load user data")
		return
	}
	SendJSONSuccess(w, http.StatusOK, data)
}

// ReplaceUserAds handles PUT /api/user/data/ads
// @Summary Replace the caller's ads
// @Tags Users
// @Security IdentityToken
// @Accept json
// @Produce json
// @Param request body []model.UserAd true "Ads"
// @Success 200 {object} model.UserData "Updated"
// @Router /api/user/data/ads [put]
func (h *Handler) ReplaceUserAds(w http.ResponseWriter, r *http.Request) {
	var ads []model.UserAd
	if !decodeJSON(w, r, &ads) {
		return
	}
	if ads == nil {
		ads = []model.UserAd{}
	}
	h.patchOwnData(w, r, model.UserDataPatch{Ads: &ads})
}

// SetUserCountdown handles PUT /api/user/data/countdown
// @Summary Set the caller's countdown
// @Tags Users
// @Security IdentityToken
// @Accept json
// @Produce json
// @Param request body map[string]int true "{\"countdown\": 30}"
// @Success 200 {object} model.UserData "Updated"
// @Failure 400 {object} model.ErrorResponse "Not positive"
// @Router /api/user/data/countdown [put]
func (h *Handler) SetUserCountdown(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Countdown int `json:"countdown"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Countdown <= 0 {
		SendJSONError(w, http.StatusBadRequest, errInvalidCountdown, "Countdown must be at least one second")
		return
	}
	h.patchOwnData(w, r, model.UserDataPatch{Countdown: &req.Countdown})
}

// ReplaceUserAnalytics handles PUT /api/user/data/analytics
// @Summary Replace the caller's analytics
// @Tags Users
// @Security IdentityToken
// @Accept json
// @Produce json
// @Param request body model.UserAnalytics true "Analytics"
// @Success 200 {object} model.UserData "Updated"
// @Router /api/user/data/analytics [put]
func (h *Handler) ReplaceUserAnalytics(w http.ResponseWriter, r *http.Request) {
	var analytics model.UserAnalytics
	if !decodeJSON(w, r, &analytics) {
		return
	}
	if analytics.PopularLinks == nil {
		analytics.PopularLinks = []model.PopularLink{}
	}
	if analytics.AdPerformance == nil {
		analytics.AdPerformance = []model.AdPerformance{}
	}
	h.patchOwnData(w, r, model.UserDataPatch{Analytics: &analytics})
}

// DeleteUserData handles DELETE /api/user/data
// @Summary Delete the caller's data
// @Tags Users
// @Security IdentityToken
// @Success 204 "Deleted"
// @Router /api/user/data [delete]
func (h *Handler) DeleteUserData(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, principal := h.userContext(r)
	defer cancel()

	if err := h.backend.DeleteUserData(ctx, principal.ID); err != nil {
		sendBackendError(w, err, "Failed to delete user data")
		return
	}
	log.Info().Str("user_id", principal.ID).Msg("Deleted user data")
	w.WriteHeader(http.StatusNoContent)
}

// ListAllUserData handles GET /api/user/admin/data
// @Summary List every user's data
// @Description Newest first. Requires developer or admin.
// @Tags Users
// @Security IdentityToken
// @Produce json
// @Success 200 {array} model.UserData "All bundles"
// @Router /api/user/admin/data [get]
func (h *Handler) ListAllUserData(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, _ := h.userContext(r)
	defer cancel()

	all, err := h.backend.ListUserData(ctx)
	if err != nil {
		sendBackendError(w, err, "Failed to list user data")
		return
	}
	SendJSONSuccess(w, http.StatusOK, all)
}

// PatchUserData handles PATCH /api/user/admin/data/{userId}
// @Summary Update another user's data
// @Description Requires developer or admin
// @Tags Users
// @Security IdentityToken
// @Accept json
// @Param userId path string true "User id"
// @Param request body model.UserDataPatch true "Fields to replace"
// @Success 204 "Updated"
// @Failure 404 {object} model.ErrorResponse "No such bundle"
// @Router /api/user/admin/data/{userId} [patch]
func (h *Handler) PatchUserData(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, principal := h.userContext(r)
	defer cancel()

	var patch model.UserDataPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if patch.Countdown != nil && *patch.Countdown <= 0 {
		SendJSONError(w, http.StatusBadRequest, errInvalidCountdown, "Countdown must be at least one second")
		return
	}
	userID := mux.Vars(r)["userId"]
	if err := h.backend.UpdateUserData(ctx, userID, patch); err != nil {
		sendBackendError(w, err, "Failed to update user data")
		return
	}
	log.Info().Str("user_id", userID).Str("by", principal.ID).Msg("User data updated")
	w.WriteHeader(http.StatusNoContent)
}
