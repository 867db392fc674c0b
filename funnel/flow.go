package funnel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ad-funnel-gate/model"
	"ad-funnel-gate/storage"

	"github.com/rs/zerolog/log"
)

// GateKey is the session bucket key recording which page a client entered and when.
const GateKey = "funnel_gate"

const (
	DownloadPath  = "/download"
	FirstPagePath = "/ad/1"
)

// ErrGateClosed is matched by GateError when "next" is requested too early.
var ErrGateClosed = errors.New("countdown not finished")

// GateError reports how many seconds are left before a page can be left.
type GateError struct {
	PageID    int
	Remaining int
}

func (e *GateError) Error() string {
	return fmt.Sprintf("%s on page %d: %ds remaining", ErrGateClosed, e.PageID, e.Remaining)
}

func (e *GateError) Is(target error) bool { return target == ErrGateClosed }

// Flow sequences visitors through the ad pages to the download page.
type Flow struct {
	store   *Store
	buckets *storage.Buckets
	enforce bool
	now     func() time.Time
}

// NewFlow creates a page flow. When enforce is false the countdown gate is
// advisory and "next" always succeeds.
func NewFlow(store *Store, buckets *storage.Buckets, enforce bool) *Flow {
	return &Flow{store: store, buckets: buckets, enforce: enforce, now: time.Now}
}

// Enter records a visit to a page and (re)starts the client's gate on it.
func (f *Flow) Enter(ctx context.Context, clientID string, pageID int) (model.PageView, error) {
	cfg := f.store.Load(ctx)
	page, ok := cfg.Page(pageID)
	if !ok {
		return model.PageView{}, fmt.Errorf("%w: %d", ErrPageNotFound, pageID)
	}

	if err := f.store.UpdatePageVisit(ctx, pageID); err != nil {
		log.Error().Err(err).Int("page", pageID).Msg("Failed to record page visit")
	}

	session, err := f.buckets.Session(clientID)
	if err != nil {
		return model.PageView{}, err
	}
	gate := model.GateState{PageID: pageID, EnteredAt: f.now().UnixMilli()}
	if err := session.SetJSON(ctx, GateKey, gate); err != nil {
		return model.PageView{}, fmt.Errorf("set gate: %w", err)
	}

	next, last := nextPath(&cfg, pageID)
	return model.PageView{
		Step:        stepOf(&cfg, pageID),
		TotalSteps:  len(cfg.Pages),
		Countdown:   page.Countdown,
		Ads:         page.Ads,
		NextPath:    next,
		IsLast:      last,
		CountdownWS: fmt.Sprintf("/ad/%d/countdown", pageID),
	}, nil
}

// Next returns where the client goes after pageID. A *GateError is returned
// while the page countdown has not elapsed since the client entered it.
func (f *Flow) Next(ctx context.Context, clientID string, pageID int) (string, error) {
	cfg := f.store.Load(ctx)
	page, ok := cfg.Page(pageID)
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrPageNotFound, pageID)
	}

	if f.enforce {
		remaining, err := f.remaining(ctx, clientID, page)
		if err != nil {
			return "", err
		}
		if remaining > 0 {
			return "", &GateError{PageID: pageID, Remaining: remaining}
		}
	}

	next, _ := nextPath(&cfg, pageID)
	return next, nil
}

// remaining is the whole seconds left on the gate, rounded up. A client that
// never entered the page owes the full countdown.
func (f *Flow) remaining(ctx context.Context, clientID string, page *model.PageConfig) (int, error) {
	session, err := f.buckets.Session(clientID)
	if err != nil {
		return 0, err
	}
	var gate model.GateState
	found, err := session.GetJSON(ctx, GateKey, &gate)
	if err != nil {
		return 0, fmt.Errorf("get gate: %w", err)
	}
	if !found || gate.PageID != page.ID {
		return page.Countdown, nil
	}

	elapsed := f.now().Sub(time.UnixMilli(gate.EnteredAt))
	left := time.Duration(page.Countdown)*time.Second - elapsed
	if left <= 0 {
		return 0, nil
	}
	return int((left + time.Second - 1) / time.Second), nil
}

// Click records a click on an ad and returns its destination.
func (f *Flow) Click(ctx context.Context, adID string) (string, error) {
	cfg := f.store.Load(ctx)
	ad, _, ok := cfg.FindAd(adID)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrAdNotFound, adID)
	}
	if err := f.store.UpdateAdClick(ctx, adID); err != nil {
		log.Error().Err(err).Str("ad_id", adID).Msg("Failed to record ad click")
	}
	return ad.LinkURL, nil
}

// EnterDownload records a visit to the download page.
func (f *Flow) EnterDownload(ctx context.Context) model.DownloadView {
	if err := f.store.UpdatePageVisit(ctx, DownloadPageID); err != nil {
		log.Error().Err(err).Msg("Failed to record download page visit")
	}
	cfg := f.store.Load(ctx)
	return model.DownloadView{SoftwareName: cfg.SoftwareName, DownloadPath: DownloadPath}
}

// Download records a download and returns the file URL.
func (f *Flow) Download(ctx context.Context) (string, error) {
	cfg, err := f.store.Update(ctx, func(cfg *model.FunnelConfig) error {
		cfg.Analytics.TotalDownloads++
		return nil
	})
	if err != nil {
		return "", err
	}
	return cfg.DownloadURL, nil
}

// Countdown returns the configured countdown of a page.
func (f *Flow) Countdown(ctx context.Context, pageID int) (int, error) {
	cfg := f.store.Load(ctx)
	page, ok := cfg.Page(pageID)
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrPageNotFound, pageID)
	}
	return page.Countdown, nil
}

func nextPath(cfg *model.FunnelConfig, pageID int) (string, bool) {
	if _, ok := cfg.Page(pageID + 1); ok {
		return fmt.Sprintf("/ad/%d", pageID+1), false
	}
	return DownloadPath, true
}

func stepOf(cfg *model.FunnelConfig, pageID int) int {
	for i, p := range cfg.Pages {
		if p.ID == pageID {
			return i + 1
		}
	}
	return 0
}
