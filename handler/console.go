package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"ad-funnel-gate/funnel"
	"ad-funnel-gate/model"
	"ad-funnel-gate/utils"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

var (
	errUnsafeURL     = errors.New("URL flagged as unsafe")
	errImportInvalid = errors.New("invalid funnel configuration")
)

// sendFunnelError maps a funnel store failure onto a response status.
func sendFunnelError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, funnel.ErrAdNotFound), errors.Is(err, funnel.ErrPageNotFound):
		SendJSONError(w, http.StatusNotFound, err, message)
	case errors.Is(err, funnel.ErrInvalidConfig):
		SendJSONError(w, http.StatusBadRequest, err, message)
	case errors.Is(err, funnel.ErrConflict):
		SendJSONError(w, http.StatusConflict, err, message)
	default:
		log.Error().Err(err).Msg(message)
		SendJSONError(w, http.StatusInternalServerError, err, message)
	}
}

// validateAd checks the destination and image of an ad. A partial request,
// as sent on update, only checks the fields it carries.
func (h *Handler) validateAd(w http.ResponseWriter, r *http.Request, req model.AdRequest, partial bool) bool {
	if partial && req.LinkURL == "" {
		return h.validateImage(w, req.ImageURL)
	}
	if err := utils.ValidateURL(req.LinkURL); err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "Ad link must be an http(s) URL")
		return false
	}
	if !h.validateImage(w, req.ImageURL) {
		return false
	}
	if !h.scan(r.Context(), req.LinkURL) {
		SendJSONError(w, http.StatusBadRequest, errUnsafeURL, "Ad link is blocklisted")
		return false
	}
	return true
}

func (h *Handler) validateImage(w http.ResponseWriter, imageURL string) bool {
	if imageURL == "" {
		return true
	}
	if err := utils.ValidateURL(imageURL); err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "Ad image must be an http(s) URL")
		return false
	}
	return true
}

// ListAds handles GET /api/console/ads
// @Summary List ads
// @Tags Console
// @Security ConsoleSession
// @Produce json
// @Success 200 {array} model.Ad "All ads across pages"
// @Router /api/console/ads [get]
func (h *Handler) ListAds(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opContext(r)
	defer cancel()
	cfg := h.store.Load(ctx)
	SendJSONSuccess(w, http.StatusOK, cfg.AllAds())
}

// CreateAd handles POST /api/console/ads
// @Summary Create an ad
// @Tags Console
// @Security ConsoleSession
// @Accept json
// @Produce json
// @Param request body model.AdRequest true "Ad"
// @Success 201 {object} model.Ad "Created"
// @Failure 400 {object} model.ErrorResponse "Invalid ad"
// @Failure 404 {object} model.ErrorResponse "Unknown page"
// @Router /api/console/ads [post]
func (h *Handler) CreateAd(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opContext(r)
	defer cancel()

	var req model.AdRequest
	if !decodeJSON(w, r, &req) || !h.validateAd(w, r, req, false) {
		return
	}
	ad, err := h.store.CreateAd(ctx, req)
	if err != nil {
		sendFunnelError(w, err, "Failed to create ad")
		return
	}
	SendJSONSuccess(w, http.StatusCreated, ad)
}

// UpdateAd handles PUT /api/console/ads/{adId}
// @Summary Update an ad
// @Description Merges the given fields and moves the ad when its page changes
// @Tags Console
// @Security ConsoleSession
// @Accept json
// @Produce json
// @Param adId path string true "Ad id"
// @Param request body model.AdRequest true "Fields to change"
// @Success 200 {object} model.Ad "Updated"
// @Failure 404 {object} model.ErrorResponse "Unknown ad or page"
// @Router /api/console/ads/{adId} [put]
func (h *Handler) UpdateAd(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opContext(r)
	defer cancel()

	var req model.AdRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !h.validateAd(w, r, req, true) {
		return
	}
	ad, err := h.store.UpdateAd(ctx, mux.Vars(r)["adId"], req)
	if err != nil {
		sendFunnelError(w, err, "Failed to update ad")
		return
	}
	SendJSONSuccess(w, http.StatusOK, ad)
}

// DeleteAd handles DELETE /api/console/ads/{adId}
// @Summary Delete an ad
// @Tags Console
// @Security ConsoleSession
// @Param adId path string true "Ad id"
// @Success 204 "Deleted"
// @Failure 404 {object} model.ErrorResponse "Unknown ad"
// @Router /api/console/ads/{adId} [delete]
func (h *Handler) DeleteAd(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opContext(r)
	defer cancel()

	if err := h.store.DeleteAd(ctx, mux.Vars(r)["adId"]); err != nil {
		sendFunnelError(w, err, "Failed to delete ad")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSettings handles GET /api/console/settings
// @Summary Funnel settings
// @Tags Console
// @Security ConsoleSession
// @Produce json
// @Success 200 {object} model.Settings "Settings"
// @Router /api/console/settings [get]
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opContext(r)
	defer cancel()
	SendJSONSuccess(w, http.StatusOK, h.store.Settings(ctx))
}

// UpdateSettings handles PUT /api/console/settings
// @Summary Update funnel settings
// @Description Non-positive countdowns and empty fields keep their current values
// @Tags Console
// @Security ConsoleSession
// @Accept json
// @Produce json
// @Param request body model.SettingsRequest true "Settings"
// @Success 200 {object} model.Settings "Updated"
// @Failure 400 {object} model.ErrorResponse "Invalid download URL"
// @Failure 404 {object} model.ErrorResponse "Unknown page"
// @Router /api/console/settings [put]
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opContext(r)
	defer cancel()

	var req model.SettingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.DownloadURL != "" {
		if err := utils.ValidateURL(req.DownloadURL); err != nil {
			SendJSONError(w, http.StatusBadRequest, err, "Download URL must be an http(s) URL")
			return
		}
	}
	settings, err := h.store.UpdateSettings(ctx, req)
	if err != nil {
		sendFunnelError(w, err, "Failed to update settings")
		return
	}
	SendJSONSuccess(w, http.StatusOK, settings)
}

// GetAnalytics handles GET /api/console/analytics
// @Summary Funnel analytics
// @Tags Console
// @Security ConsoleSession
// @Produce json
// @Success 200 {object} model.AnalyticsSummary "Summary"
// @Router /api/console/analytics [get]
func (h *Handler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opContext(r)
	defer cancel()
	cfg := h.store.Load(ctx)
	SendJSONSuccess(w, http.StatusOK, funnel.Summary(cfg.Analytics))
}

// ResetAnalytics handles POST /api/console/analytics/reset
// @Summary Reset analytics
// @Tags Console
// @Security ConsoleSession
// @Produce json
// @Success 200 {object} model.MessageResponse "Reset"
// @Router /api/console/analytics/reset [post]
func (h *Handler) ResetAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opContext(r)
	defer cancel()

	if err := h.store.ResetAnalytics(ctx); err != nil {
		sendFunnelError(w, err, "Failed to reset analytics")
		return
	}
	SendJSONSuccess(w, http.StatusOK, model.MessageResponse{Message: "Analytics reset"})
}

// ExportConfig handles GET /api/console/config/export
// @Summary Export configuration
// @Description Downloads the configuration as indented JSON. Honours If-None-Match.
// @Tags Console
// @Security ConsoleSession
// @Produce json
// @Success 200 {object} model.FunnelConfig "Configuration file"
// @Success 304 "Unchanged"
// @Router /api/console/config/export [get]
func (h *Handler) ExportConfig(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opContext(r)
	defer cancel()

	text, err := h.store.Export(ctx)
	if err != nil {
		sendFunnelError(w, err, "Failed to export configuration")
		return
	}

	etag := utils.ETag([]byte(text))
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	filename := fmt.Sprintf("ad-funnel-config-%d.json", time.Now().UnixMilli())
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, text)
}

// ImportConfig handles POST /api/console/config/import
// @Summary Import configuration
// @Description Replaces the configuration. Malformed or invalid input leaves the stored configuration untouched.
// @Tags Console
// @Security ConsoleSession
// @Accept json
// @Produce json
// @Param request body model.FunnelConfig true "Configuration"
// @Success 200 {object} model.MessageResponse "Imported"
// @Failure 400 {object} model.ErrorResponse "Invalid configuration"
// @Router /api/console/config/import [post]
func (h *Handler) ImportConfig(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opContext(r)
	defer cancel()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		SendJSONError(w, http.StatusBadRequest, errBadBody, err.Error())
		return
	}
	if !h.store.Import(ctx, string(body)) {
		SendJSONError(w, http.StatusBadRequest, errImportInvalid, "The file is not a valid funnel configuration")
		return
	}
	SendJSONSuccess(w, http.StatusOK, model.MessageResponse{Message: "Configuration imported"})
}

// ResetConfig handles POST /api/console/config/reset
// @Summary Reset configuration
// @Description Restores the default pages, ads, settings and analytics
// @Tags Console
// @Security ConsoleSession
// @Produce json
// @Success 200 {object} model.MessageResponse "Reset"
// @Router /api/console/config/reset [post]
func (h *Handler) ResetConfig(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opContext(r)
	defer cancel()

	if err := h.store.Reset(ctx); err != nil {
		sendFunnelError(w, err, "Failed to reset configuration")
		return
	}
	SendJSONSuccess(w, http.StatusOK, model.MessageResponse{Message: "Configuration reset"})
}

// SecurityStats handles GET /api/console/security
// @Summary Bot protection statistics
// @Tags Console
// @Security ConsoleSession
// @Produce json
// @Success 200 {object} map[string]interface{} "Statistics"
// @Router /api/console/security [get]
func (h *Handler) SecurityStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opContext(r)
	defer cancel()

	stats := map[string]interface{}{"enabled": false}
	if h.bots != nil {
		stats = h.bots.Stats(ctx)
	}
	if h.scanner != nil {
		stats["blocklist_patterns"] = len(h.scanner.Blocklist())
	}
	SendJSONSuccess(w, http.StatusOK, stats)
}
