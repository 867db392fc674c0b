// Package funnel owns the ad funnel configuration blob and the page flow over it.
package funnel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"ad-funnel-gate/model"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

// ConfigKey is the Redis key holding the whole funnel configuration.
const ConfigKey = "adFunnelConfig"

const defaultUpdateRetries = 10

// ErrConflict is returned when an update kept losing the optimistic race.
var ErrConflict = errors.New("funnel config update conflicted too many times")

// Store persists the funnel configuration as a single JSON document.
type Store struct {
	rdb     *redis.Client
	retries int
	now     func() time.Time
}

// NewStore creates a store. retries bounds the optimistic transaction attempts.
func NewStore(rdb *redis.Client, retries int) *Store {
	if retries <= 0 {
		retries = defaultUpdateRetries
	}
	return &Store{rdb: rdb, retries: retries, now: time.Now}
}

// Load reads the configuration, falling back to the defaults when it is
// missing, corrupt or unreadable.
func (s *Store) Load(ctx context.Context) model.FunnelConfig {
	data, err := s.rdb.Get(ctx, ConfigKey).Bytes()
	if err == redis.Nil {
		return DefaultConfig()
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to load funnel config")
		return DefaultConfig()
	}

	var cfg model.FunnelConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		log.Error().Err(err).Msg("Stored funnel config is corrupt, using defaults")
		return DefaultConfig()
	}
	normalize(&cfg)
	return cfg
}

// Save overwrites the stored configuration.
func (s *Store) Save(ctx context.Context, cfg model.FunnelConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode funnel config: %w", err)
	}
	if err := s.rdb.Set(ctx, ConfigKey, data, 0).Err(); err != nil {
		log.Error().Err(err).Msg("Failed to save funnel config")
		return fmt.Errorf("save funnel config: %w", err)
	}
	return nil
}

// Update applies fn to the current configuration inside a WATCH/MULTI/EXEC
// transaction and retries when another writer got there first. If fn returns
// an error nothing is written.
func (s *Store) Update(ctx context.Context, fn func(cfg *model.FunnelConfig) error) (model.FunnelConfig, error) {
	var result model.FunnelConfig

	txf := func(tx *redis.Tx) error {
		cfg, err := readTx(ctx, tx)
		if err != nil {
			return err
		}
		if err := fn(&cfg); err != nil {
			return err
		}
		data, err := json.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encode funnel config: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, ConfigKey, data, 0)
			return nil
		})
		if err == nil {
			result = cfg
		}
		return err
	}

	for attempt := 0; attempt < s.retries; attempt++ {
		err := s.rdb.Watch(ctx, txf, ConfigKey)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			log.Debug().Int("attempt", attempt+1).Msg("Funnel config changed concurrently, retrying")
			continue
		}
		return model.FunnelConfig{}, err
	}
	return model.FunnelConfig{}, ErrConflict
}

func readTx(ctx context.Context, tx *redis.Tx) (model.FunnelConfig, error) {
	data, err := tx.Get(ctx, ConfigKey).Bytes()
	if err == redis.Nil {
		return DefaultConfig(), nil
	}
	if err != nil {
		return model.FunnelConfig{}, fmt.Errorf("read funnel config: %w", err)
	}
	var cfg model.FunnelConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		log.Warn().Err(err).Msg("Replacing corrupt funnel config with defaults")
		return DefaultConfig(), nil
	}
	normalize(&cfg)
	return cfg, nil
}

// UpdatePageVisit records one visit to a page. An unknown id counts 1 after
// its first visit.
func (s *Store) UpdatePageVisit(ctx context.Context, pageID int) error {
	_, err := s.Update(ctx, func(cfg *model.FunnelConfig) error {
		cfg.Analytics.PageVisits[pageID]++
		return nil
	})
	return err
}

// UpdateAdClick records one click on an ad.
func (s *Store) UpdateAdClick(ctx context.Context, adID string) error {
	_, err := s.Update(ctx, func(cfg *model.FunnelConfig) error {
		cfg.Analytics.AdClicks[adID]++
		return nil
	})
	return err
}

// UpdateDownloadCount records one download.
func (s *Store) UpdateDownloadCount(ctx context.Context) error {
	_, err := s.Update(ctx, func(cfg *model.FunnelConfig) error {
		cfg.Analytics.TotalDownloads++
		return nil
	})
	return err
}

// Export returns the configuration as indented JSON.
func (s *Store) Export(ctx context.Context) (string, error) {
	cfg := s.Load(ctx)
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode funnel config: %w", err)
	}
	return string(data), nil
}

// Import replaces the configuration with text. It reports false, leaving the
// stored state untouched, when text is not a valid configuration.
func (s *Store) Import(ctx context.Context, text string) bool {
	var cfg model.FunnelConfig
	if err := json.Unmarshal([]byte(text), &cfg); err != nil {
		log.Warn().Err(err).Msg("Rejected funnel config import: malformed JSON")
		return false
	}
	normalize(&cfg)
	if err := Validate(&cfg); err != nil {
		log.Warn().Err(err).Msg("Rejected funnel config import")
		return false
	}
	if err := s.Save(ctx, cfg); err != nil {
		return false
	}
	log.Info().Int("pages", len(cfg.Pages)).Msg("Funnel config imported")
	return true
}

// Reset restores the default configuration, analytics included.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.Save(ctx, DefaultConfig()); err != nil {
		return err
	}
	log.Info().Msg("Funnel config reset to defaults")
	return nil
}

// ResetAnalytics zeroes visit, click and download counters and keeps pages and settings.
func (s *Store) ResetAnalytics(ctx context.Context) error {
	_, err := s.Update(ctx, func(cfg *model.FunnelConfig) error {
		cfg.Analytics = model.Analytics{PageVisits: map[int]int{}, AdClicks: map[string]int{}}
		return nil
	})
	if err == nil {
		log.Info().Msg("Funnel analytics reset")
	}
	return err
}

// CreateAd adds an ad to the page it is assigned to.
func (s *Store) CreateAd(ctx context.Context, req model.AdRequest) (model.Ad, error) {
	var created model.Ad
	_, err := s.Update(ctx, func(cfg *model.FunnelConfig) error {
		page, ok := cfg.Page(req.AssignedPage)
		if !ok {
			return fmt.Errorf("%w: %d", ErrPageNotFound, req.AssignedPage)
		}
		created = model.Ad{
			ID:           fmt.Sprintf("ad%d", s.now().UnixMilli()),
			Title:        req.Title,
			ImageURL:     req.ImageURL,
			LinkURL:      req.LinkURL,
			AssignedPage: req.AssignedPage,
		}
		for {
			if _, _, taken := cfg.FindAd(created.ID); !taken {
				break
			}
			created.ID += "x"
		}
		page.Ads = append(page.Ads, created)
		return nil
	})
	return created, err
}

// UpdateAd merges the non-empty fields of req into an ad and moves it to its
// assigned page.
func (s *Store) UpdateAd(ctx context.Context, adID string, req model.AdRequest) (model.Ad, error) {
	var updated model.Ad
	_, err := s.Update(ctx, func(cfg *model.FunnelConfig) error {
		ad, _, ok := cfg.FindAd(adID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrAdNotFound, adID)
		}
		merged := *ad
		if req.Title != "" {
			merged.Title = req.Title
		}
		if req.ImageURL != "" {
			merged.ImageURL = req.ImageURL
		}
		if req.LinkURL != "" {
			merged.LinkURL = req.LinkURL
		}
		if req.AssignedPage != 0 {
			merged.AssignedPage = req.AssignedPage
		}

		target, ok := cfg.Page(merged.AssignedPage)
		if !ok {
			return fmt.Errorf("%w: %d", ErrPageNotFound, merged.AssignedPage)
		}
		removeAd(cfg, adID)
		target.Ads = append(target.Ads, merged)
		updated = merged
		return nil
	})
	return updated, err
}

// DeleteAd removes an ad from every page.
func (s *Store) DeleteAd(ctx context.Context, adID string) error {
	_, err := s.Update(ctx, func(cfg *model.FunnelConfig) error {
		if !removeAd(cfg, adID) {
			return fmt.Errorf("%w: %s", ErrAdNotFound, adID)
		}
		return nil
	})
	return err
}

func removeAd(cfg *model.FunnelConfig, adID string) bool {
	removed := false
	for i := range cfg.Pages {
		kept := cfg.Pages[i].Ads[:0]
		for _, ad := range cfg.Pages[i].Ads {
			if ad.ID == adID {
				removed = true
				continue
			}
			kept = append(kept, ad)
		}
		cfg.Pages[i].Ads = kept
	}
	return removed
}

// Settings returns the per-page countdowns and download details.
func (s *Store) Settings(ctx context.Context) model.Settings {
	return settingsOf(s.Load(ctx))
}

// UpdateSettings applies the countdowns and download details. Non-positive
// countdowns and empty strings keep the current values.
func (s *Store) UpdateSettings(ctx context.Context, req model.SettingsRequest) (model.Settings, error) {
	cfg, err := s.Update(ctx, func(cfg *model.FunnelConfig) error {
		for id, seconds := range req.Countdowns {
			page, ok := cfg.Page(id)
			if !ok {
				return fmt.Errorf("%w: %d", ErrPageNotFound, id)
			}
			if seconds > 0 {
				page.Countdown = seconds
			}
		}
		if req.SoftwareName != "" {
			cfg.SoftwareName = req.SoftwareName
		}
		if req.DownloadURL != "" {
			cfg.DownloadURL = req.DownloadURL
		}
		return nil
	})
	if err != nil {
		return model.Settings{}, err
	}
	return settingsOf(cfg), nil
}

func settingsOf(cfg model.FunnelConfig) model.Settings {
	countdowns := make(map[int]int, len(cfg.Pages))
	for _, p := range cfg.Pages {
		countdowns[p.ID] = p.Countdown
	}
	return model.Settings{
		Countdowns:   countdowns,
		SoftwareName: cfg.SoftwareName,
		DownloadURL:  cfg.DownloadURL,
	}
}

// Summary aggregates the analytics counters for the console.
func Summary(a model.Analytics) model.AnalyticsSummary {
	sum := model.AnalyticsSummary{
		TotalDownloads: a.TotalDownloads,
		ConversionRate: "0.00",
		PageVisits:     make([]model.NamedCount, 0, len(a.PageVisits)),
		AdClicks:       make([]model.NamedCount, 0, len(a.AdClicks)),
	}

	pages := make([]int, 0, len(a.PageVisits))
	for id, n := range a.PageVisits {
		pages = append(pages, id)
		sum.TotalVisits += n
	}
	sort.Ints(pages)
	for _, id := range pages {
		sum.PageVisits = append(sum.PageVisits, model.NamedCount{Name: pageLabel(id), Count: a.PageVisits[id]})
	}

	ads := make([]string, 0, len(a.AdClicks))
	for id, n := range a.AdClicks {
		ads = append(ads, id)
		sum.TotalClicks += n
	}
	sort.Strings(ads)
	for _, id := range ads {
		sum.AdClicks = append(sum.AdClicks, model.NamedCount{Name: id, Count: a.AdClicks[id]})
	}

	if sum.TotalVisits > 0 {
		rate := float64(a.TotalDownloads) / float64(sum.TotalVisits) * 100
		sum.ConversionRate = fmt.Sprintf("%.2f", rate)
	}
	return sum
}

func pageLabel(id int) string {
	if id == DownloadPageID {
		return "Download"
	}
	return fmt.Sprintf("Ad Page %d", id)
}
