package funnel

import "ad-funnel-gate/model"

// DownloadPageID is the analytics id of the download page that follows the ads.
const DownloadPageID = 5

// DefaultConfig returns a fresh copy of the configuration used when nothing is stored.
func DefaultConfig() model.FunnelConfig {
	return model.FunnelConfig{
		Pages: []model.PageConfig{
			{
				ID:        1,
				Countdown: 10,
				Ads: []model.Ad{
					{
						ID:           "ad1",
						Title:        "Premium VPN Service",
						ImageURL:     "https://images.unsplash.com/photo-1614064641938-3bbee52942c7?w=400&h=300&fit=crop",
						LinkURL:      "https://example.com/vpn",
						AssignedPage: 1,
					},
					{
						ID:           "ad2",
						Title:        "Cloud Storage Solution",
						ImageURL:     "https://images.unsplash.com/photo-1544197150-b99a580bb7a8?w=400&h=300&fit=crop",
						LinkURL:      "https://example.com/storage",
						AssignedPage: 1,
					},
				},
			},
			{
				ID:        2,
				Countdown: 8,
				Ads: []model.Ad{{
					ID:           "ad3",
					Title:        "Antivirus Protection",
					ImageURL:     "https://images.unsplash.com/photo-1563013544-824ae1b704d3?w=400&h=300&fit=crop",
					LinkURL:      "https://example.com/antivirus",
					AssignedPage: 2,
				}},
			},
			{
				ID:        3,
				Countdown: 10,
				Ads: []model.Ad{{
					ID:           "ad4",
					Title:        "System Optimizer",
					ImageURL:     "https://images.unsplash.com/photo-1551288049-bebda4e38f71?w=400&h=300&fit=crop",
					LinkURL:      "https://example.com/optimizer",
					AssignedPage: 3,
				}},
			},
			{
				ID:        4,
				Countdown: 12,
				Ads: []model.Ad{{
					ID:           "ad5",
					Title:        "Password Manager",
					ImageURL:     "https://images.unsplash.com/photo-1555949963-ff9fe0c870eb?w=400&h=300&fit=crop",
					LinkURL:      "https://example.com/password",
					AssignedPage: 4,
				}},
			},
		},
		Analytics: model.Analytics{
			PageVisits:     map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
			AdClicks:       map[string]int{},
			TotalDownloads: 0,
		},
		DownloadURL:  "https://example.com/download/software.exe",
		SoftwareName: "Premium Software Suite v2.0",
	}
}
