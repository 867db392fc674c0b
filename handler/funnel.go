package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"ad-funnel-gate/countdown"
	"ad-funnel-gate/funnel"
	"ad-funnel-gate/middleware"
	"ad-funnel-gate/model"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var errInvalidPage = errors.New("invalid page id")

type countdownMessage struct {
	Remaining *int `json:"remaining,omitempty"`
	Complete  bool `json:"complete,omitempty"`
}

func pageIDVar(r *http.Request) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)["pageId"])
	if err != nil || id <= 0 {
		return 0, errInvalidPage
	}
	return id, nil
}

// Root handles GET / by sending visitors to the first ad page
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, funnel.FirstPagePath, http.StatusFound)
}

// EnterPage handles GET /ad/{pageId}
// @Summary Enter a funnel page
// @Description Records a visit, starts the client's countdown gate and returns the page ads. Unknown pages redirect to /ad/1.
// @Tags Funnel
// @Produce json
// @Param pageId path int true "Page id"
// @Success 200 {object} model.PageView "Page view"
// @Success 302 "Unknown page, redirect to the first page"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /ad/{pageId} [get]
func (h *Handler) EnterPage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opContext(r)
	defer cancel()

	pageID, err := pageIDVar(r)
	if err != nil {
		http.Redirect(w, r, funnel.FirstPagePath, http.StatusFound)
		return
	}

	view, err := h.flow.Enter(ctx, middleware.GetClientID(r), pageID)
	if errors.Is(err, funnel.ErrPageNotFound) {
		if pageID == 1 {
			SendJSONError(w, http.StatusNotFound, err, "The funnel has no pages")
			return
		}
		http.Redirect(w, r, funnel.FirstPagePath, http.StatusFound)
		return
	}
	if err != nil {
		log.Error().Err(err).Int("page", pageID).Msg("Failed to enter page")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to load page")
		return
	}
	SendJSONSuccess(w, http.StatusOK, view)
}

// NextPage handles POST /ad/{pageId}/next
// @Summary Continue to the next page
// @Description Advances once the page countdown has elapsed since entry. The last page continues to /download.
// @Tags Funnel
// @Produce json
// @Param pageId path int true "Page id"
// @Success 303 "Redirect to the next page"
// @Failure 425 {object} model.LockedResponse "Countdown not finished"
// @Router /ad/{pageId}/next [post]
func (h *Handler) NextPage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opContext(r)
	defer cancel()

	pageID, err := pageIDVar(r)
	if err != nil {
		http.Redirect(w, r, funnel.FirstPagePath, http.StatusSeeOther)
		return
	}

	next, err := h.flow.Next(ctx, middleware.GetClientID(r), pageID)
	var gateErr *funnel.GateError
	switch {
	case errors.As(err, &gateErr):
		w.Header().Set("Retry-After", strconv.Itoa(gateErr.Remaining))
		SendJSONSuccess(w, http.StatusTooEarly, model.LockedResponse{
			Error:     funnel.ErrGateClosed.Error(),
			Remaining: gateErr.Remaining,
		})
	case errors.Is(err, funnel.ErrPageNotFound):
		http.Redirect(w, r, funnel.FirstPagePath, http.StatusSeeOther)
	case err != nil:
		log.Error().Err(err).Int("page", pageID).Msg("Failed to advance funnel")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to continue")
	default:
		http.Redirect(w, r, next, http.StatusSeeOther)
	}
}

// ClickAd handles GET /ad/click/{adId}
// @Summary Click an ad
// @Description Records a click and redirects to the ad destination. The countdown gate is not affected.
// @Tags Funnel
// @Param adId path string true "Ad id"
// @Success 302 "Redirect to the ad link"
// @Failure 404 {object} model.ErrorResponse "Ad not found"
// @Router /ad/click/{adId} [get]
func (h *Handler) ClickAd(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opContext(r)
	defer cancel()

	adID := mux.Vars(r)["adId"]
	link, err := h.flow.Click(ctx, adID)
	if errors.Is(err, funnel.ErrAdNotFound) {
		SendJSONError(w, http.StatusNotFound, err, "Ad not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("ad_id", adID).Msg("Failed to record ad click")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to open ad")
		return
	}
	http.Redirect(w, r, link, http.StatusFound)
}

// DownloadPage handles GET /download
// @Summary Download page
// @Description Records a download page visit and returns the software name
// @Tags Funnel
// @Produce json
// @Success 200 {object} model.DownloadView "Download page"
// @Router /download [get]
func (h *Handler) DownloadPage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opContext(r)
	defer cancel()
	SendJSONSuccess(w, http.StatusOK, h.flow.EnterDownload(ctx))
}

// Download handles POST /download
// @Summary Download the software
// @Description Counts a download and redirects to the download URL
// @Tags Funnel
// @Success 303 "Redirect to the download URL"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /download [post]
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opContext(r)
	defer cancel()

	target, err := h.flow.Download(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to record download")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to start download")
		return
	}
	log.Info().Str("target", target).Msg("Download started")
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	allowed := h.config.WebServer.AllowedOrigin
	origin := r.Header.Get("Origin")
	return allowed == "" || allowed == "*" || origin == "" || strings.EqualFold(origin, allowed)
}

// Countdown handles GET /ad/{pageId}/countdown
// @Summary Countdown stream
// @Description WebSocket sending {"remaining":n} every second, then {"complete":true}
// @Tags Funnel
// @Param pageId path int true "Page id"
// @Success 101 "Switching protocols"
// @Failure 404 {object} model.ErrorResponse "Page not found"
// @Router /ad/{pageId}/countdown [get]
func (h *Handler) Countdown(w http.ResponseWriter, r *http.Request) {
	pageID, err := pageIDVar(r)
	if err != nil {
		SendJSONError(w, http.StatusNotFound, err, "Page not found")
		return
	}
	opCtx, opCancel := h.opContext(r)
	seconds, err := h.flow.Countdown(opCtx, pageID)
	opCancel()
	if err != nil {
		SendJSONError(w, http.StatusNotFound, err, "Page not found")
		return
	}

	upgrader := websocket.Upgrader{CheckOrigin: h.checkOrigin}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Countdown websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The client never sends anything; a read error means it went away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	finished := make(chan struct{})
	timer := countdown.New(seconds,
		countdown.WithInterval(h.countdownInterval),
		countdown.OnTick(func(remaining int) {
			if err := conn.WriteJSON(countdownMessage{Remaining: &remaining}); err != nil {
				cancel()
			}
		}),
		countdown.OnComplete(func() {
			conn.WriteJSON(countdownMessage{Complete: true})
			close(finished)
		}),
	)

	if err := conn.WriteJSON(countdownMessage{Remaining: &seconds}); err != nil {
		return
	}
	timer.Start(ctx)
	defer timer.Stop()

	select {
	case <-finished:
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "complete"))
		log.Debug().Int("page", pageID).Msg("Countdown complete")
	case <-ctx.Done():
		log.Debug().Int("page", pageID).Int("remaining", timer.Remaining()).Msg("Countdown client left")
	}
}
