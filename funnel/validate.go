package funnel

import (
	"errors"
	"fmt"

	"ad-funnel-gate/model"
	"ad-funnel-gate/utils"
)

var (
	ErrPageNotFound  = errors.New("page not found")
	ErrAdNotFound    = errors.New("ad not found")
	ErrInvalidConfig = errors.New("invalid funnel configuration")
)

// Validate checks the structural invariants of a configuration.
func Validate(cfg *model.FunnelConfig) error {
	if len(cfg.Pages) == 0 {
		return fmt.Errorf("%w: no pages", ErrInvalidConfig)
	}

	pages := make(map[int]bool, len(cfg.Pages))
	for _, p := range cfg.Pages {
		if pages[p.ID] {
			return fmt.Errorf("%w: duplicate page id %d", ErrInvalidConfig, p.ID)
		}
		if p.Countdown <= 0 {
			return fmt.Errorf("%w: page %d countdown must be positive", ErrInvalidConfig, p.ID)
		}
		pages[p.ID] = true
	}
	if cfg.DownloadURL != "" {
		if err := utils.ValidateURL(cfg.DownloadURL); err != nil {
			return fmt.Errorf("%w: download url: %v", ErrInvalidConfig, err)
		}
	}

	ads := make(map[string]bool)
	for _, p := range cfg.Pages {
		for _, ad := range p.Ads {
			if ad.ID == "" {
				return fmt.Errorf("%w: ad without id on page %d", ErrInvalidConfig, p.ID)
			}
			if ads[ad.ID] {
				return fmt.Errorf("%w: duplicate ad id %s", ErrInvalidConfig, ad.ID)
			}
			if ad.AssignedPage != p.ID {
				return fmt.Errorf("%w: ad %s assigned to page %d but held by page %d",
					ErrInvalidConfig, ad.ID, ad.AssignedPage, p.ID)
			}
			if err := utils.ValidateURL(ad.LinkURL); err != nil {
				return fmt.Errorf("%w: ad %s link: %v", ErrInvalidConfig, ad.ID, err)
			}
			if ad.ImageURL != "" {
				if err := utils.ValidateURL(ad.ImageURL); err != nil {
					return fmt.Errorf("%w: ad %s image: %v", ErrInvalidConfig, ad.ID, err)
				}
			}
			ads[ad.ID] = true
		}
	}
	return nil
}

// normalize fills nil analytics maps so counters can be incremented in place.
func normalize(cfg *model.FunnelConfig) {
	if cfg.Analytics.PageVisits == nil {
		cfg.Analytics.PageVisits = map[int]int{}
	}
	if cfg.Analytics.AdClicks == nil {
		cfg.Analytics.AdClicks = map[string]int{}
	}
	for i := range cfg.Pages {
		if cfg.Pages[i].Ads == nil {
			cfg.Pages[i].Ads = []model.Ad{}
		}
	}
}
