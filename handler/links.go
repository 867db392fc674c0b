package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ad-funnel-gate/backend"
	"ad-funnel-gate/model"
	"ad-funnel-gate/utils"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

var (
	errLinkNotFound = errors.New("short link not found")
	errCodeTaken    = errors.New("short code already taken")
)

func (h *Handler) codeLength() int {
	if n := h.config.Features.ShortCodeLength; n > 0 {
		return n
	}
	return 6
}

// validateDestination checks a short link target.
func (h *Handler) validateDestination(ctx context.Context, w http.ResponseWriter, rawURL string) bool {
	if err := utils.ValidateURL(rawURL); err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "Destination must be an http(s) URL")
		return false
	}
	if !h.scan(ctx, rawURL) {
		SendJSONError(w, http.StatusBadRequest, errUnsafeURL, "Destination URL is blocklisted")
		return false
	}
	return true
}

// ListLinks handles GET /api/console/links
// @Summary List short links
// @Description All short links, newest first
// @Tags Links
// @Security ConsoleSession
// @Produce json
// @Success 200 {array} model.ShortLink "Short links"
// @Failure 502 {object} model.ErrorResponse "Backend unavailable"
// @Router /api/console/links [get]
func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opContext(r)
	defer cancel()

	links, err := h.backend.ListLinks(ctx)
	if err != nil {
		sendBackendError(w, err, "Failed to list short links")
		return
	}
	SendJSONSuccess(w, http.StatusOK, links)
}

// CreateLink handles POST /api/console/links
// @Summary Create a short link
// @Description Creates a link with a random alphanumeric code
// @Tags Links
// @Security ConsoleSession
// @Accept json
// @Produce json
// @Param request body model.CreateLinkRequest true "Destination"
// @Success 201 {object} model.ShortLink "Created"
// @Failure 400 {object} model.ErrorResponse "Invalid or unsafe URL"
// @Router /api/console/links [post]
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opContext(r)
	defer cancel()

	var req model.CreateLinkRequest
	if !decodeJSON(w, r, &req) || !h.validateDestination(ctx, w, req.OriginalURL) {
		return
	}

	code, err := utils.UniqueCode(ctx, h.backend, utils.AlphaNumeric, h.codeLength())
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate short code")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to generate short code")
		return
	}
	link, err := h.backend.CreateLink(ctx, code, req.OriginalURL, "")
	if err != nil {
		sendBackendError(w, err, "Failed to create short link")
		return
	}
	log.Info().Str("short_code", link.ShortCode).Str("original_url", link.OriginalURL).Msg("Short link created")
	SendJSONSuccess(w, http.StatusCreated, link)
}

// DeleteLink handles DELETE /api/console/links/{id}
// @Summary Delete a short link
// @Tags Links
// @Security ConsoleSession
// @Param id path string true "Link id"
// @Success 204 "Deleted"
// @Failure 404 {object} model.ErrorResponse "Not found"
// @Router /api/console/links/{id} [delete]
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opContext(r)
	defer cancel()

	link, err := h.backend.DeleteLink(ctx, mux.Vars(r)["id"])
	if err != nil {
		sendBackendError(w, err, "Failed to delete short link")
		return
	}
	h.cache.DeleteLink(link.ShortCode)
	log.Info().Str("short_code", link.ShortCode).Msg("Short link deleted")
	w.WriteHeader(http.StatusNoContent)
}

// resolveLink finds a link by code, cache first.
func (h *Handler) resolveLink(ctx context.Context, code string) (model.ShortLink, error) {
	if link, ok := h.cache.GetLink(code); ok {
		log.Debug().Str("short_code", code).Msg("Cache hit")
		return link, nil
	}
	link, err := h.backend.LinkByCode(ctx, code)
	if err != nil {
		return model.ShortLink{}, err
	}
	h.cache.SetLink(link)
	return link, nil
}

// Redirect handles GET /s/{shortCode}
// @Summary Follow a short link
// @Description Counts the click and redirects to the destination
// @Tags Links
// @Param shortCode path string true "Short code"
// @Success 302 "Redirect to the destination"
// @Failure 404 {object} map[string]string "Unknown code"
// @Router /s/{shortCode} [get]
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opContext(r)
	defer cancel()

	code := mux.Vars(r)["shortCode"]
	link, err := h.resolveLink(ctx, code)
	if errors.Is(err, backend.ErrNotFound) {
		SendJSONSuccess(w, http.StatusNotFound, map[string]string{
			"error":    errLinkNotFound.Error(),
			"redirect": "/",
		})
		return
	}
	if err != nil {
		sendBackendError(w, err, "Failed to resolve short link")
		return
	}

	count, err := h.backend.IncrementClicks(ctx, code, link.ClickCount)
	if err != nil {
		log.Error().Err(err).Str("short_code", code).Msg("Failed to count click")
	} else {
		link.ClickCount = count
		h.cache.SetLink(link)
	}

	log.Info().
		Str("short_code", code).
		Int("click_count", link.ClickCount).
		Msg("Redirecting short link")
	http.Redirect(w, r, link.OriginalURL, http.StatusFound)
}

// CreateUserLink handles POST /api/user/links
// @Summary Create an end user short link
// @Description Uses the custom code when given (letters, digits and hyphens, lowercased), otherwise a random base36 code
// @Tags Users
// @Security IdentityToken
// @Accept json
// @Produce json
// @Param request body model.CreateLinkRequest true "Destination and optional code"
// @Success 201 {object} model.UserLink "Created"
// @Failure 400 {object} model.ErrorResponse "Invalid URL or code"
// @Failure 409 {object} model.CodeConflictResponse "Code taken, with suggestions"
// @Router /api/user/links [post]
func (h *Handler) CreateUserLink(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, principal := h.userContext(r)
	defer cancel()

	var req model.CreateLinkRequest
	if !decodeJSON(w, r, &req) || !h.validateDestination(ctx, w, req.OriginalURL) {
		return
	}

	code := ""
	if req.ShortCode != "" {
		normalized, err := utils.NormalizeShortCode(req.ShortCode, h.config.Features.MinCustomCodeLength, h.config.Features.MaxCustomCodeLength)
		if err != nil {
			SendJSONError(w, http.StatusBadRequest, err, "Choose another short code")
			return
		}
		taken, err := h.backend.CodeExists(ctx, normalized)
		if err != nil {
			sendBackendError(w, err, "Failed to check short code")
			return
		}
		if taken {
			suggestions := utils.GenerateCodeSuggestions(ctx, h.backend, normalized, h.config.Features.CodeSuggestionsCount)
			SendJSONErrorWithSuggestions(w, http.StatusConflict, errCodeTaken, suggestions)
			return
		}
		code = normalized
	} else {
		generated, err := utils.UniqueCode(ctx, h.backend, utils.Base36, h.codeLength())
		if err != nil {
			log.Error().Err(err).Msg("Failed to generate short code")
			SendJSONError(w, http.StatusInternalServerError, err, "Failed to generate short code")
			return
		}
		code = generated
	}

	link, err := h.backend.CreateLink(ctx, code, req.OriginalURL, principal.ID)
	if errors.Is(err, backend.ErrConflict) {
		suggestions := utils.GenerateCodeSuggestions(ctx, h.backend, code, h.config.Features.CodeSuggestionsCount)
		SendJSONErrorWithSuggestions(w, http.StatusConflict, errCodeTaken, suggestions)
		return
	}
	if err != nil {
		sendBackendError(w, err, "Failed to create short link")
		return
	}

	created := link.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	userLink := model.UserLink{
		ID:          link.ID,
		OriginalURL: link.OriginalURL,
		ShortCode:   link.ShortCode,
		ClickCount:  link.ClickCount,
		CreatedAt:   created.Format(time.RFC3339),
	}

	data, err := h.userBundle(ctx, principal.ID)
	if err != nil {
		sendBackendError(w, err, "Failed to load user data")
		return
	}
	links := append(data.ShortLinks, userLink)
	if err := h.backend.UpdateUserData(ctx, principal.ID, model.UserDataPatch{ShortLinks: &links}); err != nil {
		sendBackendError(w, err, "Failed to save short link")
		return
	}
	SendJSONSuccess(w, http.StatusCreated, userLink)
}
