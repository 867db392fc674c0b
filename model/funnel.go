package model

// Ad is one advertisement shown on a funnel page.
type Ad struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ImageURL     string `json:"imageURL"`
	LinkURL      string `json:"linkURL"`
	AssignedPage int    `json:"assignedPage"`
}

// PageConfig is one step of the funnel.
type PageConfig struct {
	ID        int  `json:"id"`
	Countdown int  `json:"countdown"` // seconds, > 0
	Ads       []Ad `json:"ads"`
}

// Analytics holds the funnel counters.
type Analytics struct {
	PageVisits     map[int]int    `json:"pageVisits"`
	AdClicks       map[string]int `json:"adClicks"`
	TotalDownloads int            `json:"totalDownloads"`
}

// FunnelConfig is the whole configuration blob, persisted wholesale.
type FunnelConfig struct {
	Pages        []PageConfig `json:"pages"`
	Analytics    Analytics    `json:"analytics"`
	DownloadURL  string       `json:"downloadURL"`
	SoftwareName string       `json:"softwareName"`
}

// Page returns the page with the given id.
func (c *FunnelConfig) Page(id int) (*PageConfig, bool) {
	for i := range c.Pages {
		if c.Pages[i].ID == id {
			return &c.Pages[i], true
		}
	}
	return nil, false
}

// FindAd returns the ad with the given id together with the page holding it.
func (c *FunnelConfig) FindAd(id string) (*Ad, *PageConfig, bool) {
	for i := range c.Pages {
		for j := range c.Pages[i].Ads {
			if c.Pages[i].Ads[j].ID == id {
				return &c.Pages[i].Ads[j], &c.Pages[i], true
			}
		}
	}
	return nil, nil, false
}

// AllAds flattens the ads of every page in page order.
func (c *FunnelConfig) AllAds() []Ad {
	ads := make([]Ad, 0)
	for _, page := range c.Pages {
		ads = append(ads, page.Ads...)
	}
	return ads
}

// GateState records when a client entered a funnel page.
type GateState struct {
	PageID    int   `json:"pageId"`
	EnteredAt int64 `json:"enteredAt"` // unix millis
}

// PageView is the response for a funnel page.
type PageView struct {
	Step        int    `json:"step"`
	TotalSteps  int    `json:"totalSteps"`
	Countdown   int    `json:"countdown"`
	Ads         []Ad   `json:"ads"`
	NextPath    string `json:"nextPath"`
	IsLast      bool   `json:"isLast"`
	CountdownWS string `json:"countdownWS"`
}

// DownloadView is the response for the download landing page.
type DownloadView struct {
	SoftwareName string `json:"softwareName"`
	DownloadPath string `json:"downloadPath"`
}

// SettingsRequest updates countdowns and download details.
type SettingsRequest struct {
	Countdowns   map[int]int `json:"countdowns"`
	SoftwareName string      `json:"softwareName"`
	DownloadURL  string      `json:"downloadURL"`
}

// Settings is the current countdown/download settings.
type Settings struct {
	Countdowns   map[int]int `json:"countdowns"`
	SoftwareName string      `json:"softwareName"`
	DownloadURL  string      `json:"downloadURL"`
}

// AdRequest creates or updates an ad. Empty fields are left unchanged on update.
type AdRequest struct {
	Title        string `json:"title"`
	ImageURL     string `json:"imageURL"`
	LinkURL      string `json:"linkURL"`
	AssignedPage int    `json:"assignedPage"`
}
