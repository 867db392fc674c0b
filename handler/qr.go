package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"ad-funnel-gate/backend"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
)

// GenerateQR handles GET /qr/{shortCode}
// @Summary QR code for a short link
// @Tags Links
// @Produce png
// @Param shortCode path string true "Short code"
// @Param size query int false "Image size in pixels (128-1024)" default(256)
// @Param level query string false "Error correction: low, medium, high, highest" default(medium)
// @Success 200 {file} binary "PNG image"
// @Failure 400 {object} model.ErrorResponse "Invalid parameters"
// @Failure 404 {object} model.ErrorResponse "Unknown code"
// @Router /qr/{shortCode} [get]
func (h *Handler) GenerateQR(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opContext(r)
	defer cancel()

	code := mux.Vars(r)["shortCode"]
	if _, err := h.resolveLink(ctx, code); err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			SendJSONError(w, http.StatusNotFound, errLinkNotFound, "Short link does not exist")
			return
		}
		sendBackendError(w, err, "Failed to verify short link")
		return
	}

	query := r.URL.Query()

	// Get size parameter (default: 256, min: 128, max: 1024)
	size := 256
	if sizeStr := query.Get("size"); sizeStr != "" {
		parsedSize, err := strconv.Atoi(sizeStr)
		if err != nil {
			SendJSONError(w, http.StatusBadRequest, errors.New("invalid size parameter"), "Size must be a number")
			return
		}
		if parsedSize < 128 || parsedSize > 1024 {
			SendJSONError(w, http.StatusBadRequest, errors.New("size out of range"), "Size must be between 128 and 1024")
			return
		}
		size = parsedSize
	}

	level := qrcode.Medium
	if name := query.Get("level"); name != "" {
		parsed, ok := qrLevels[name]
		if !ok {
			SendJSONError(w, http.StatusBadRequest, errors.New("invalid level parameter"), "Level must be: low, medium, high, or highest")
			return
		}
		level = parsed
	}

	fullURL := fmt.Sprintf("%s/s/%s", h.baseURL, code)
	png, err := qrcode.Encode(fullURL, level, size)
	if err != nil {
		log.Error().Err(err).Str("url", fullURL).Msg("Failed to generate QR code")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	if _, err := w.Write(png); err != nil {
		log.Error().Err(err).Msg("Failed to write QR code response")
		return
	}

	log.Debug().
		Str("short_code", code).
		Int("size", size).
		Msg("QR code generated")
}

var qrLevels = map[string]qrcode.RecoveryLevel{
	"low":     qrcode.Low,
	"medium":  qrcode.Medium,
	"high":    qrcode.High,
	"highest": qrcode.Highest,
}
