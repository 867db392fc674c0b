package model

// AnalyticsSummary is the console view over Analytics.
type AnalyticsSummary struct {
	TotalVisits    int          `json:"totalVisits"`
	TotalClicks    int          `json:"totalClicks"`
	TotalDownloads int          `json:"totalDownloads"`
	ConversionRate string       `json:"conversionRate"` // percent, two decimals
	PageVisits     []NamedCount `json:"pageVisits"`
	AdClicks       []NamedCount `json:"adClicks"`
}

// NamedCount is one bar of a chart.
type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// UserAnalytics is the analytics object stored in a user's bundle.
type UserAnalytics struct {
	TotalClicks   int             `json:"totalClicks"`
	TotalViews    int             `json:"totalViews"`
	PopularLinks  []PopularLink   `json:"popularLinks"`
	AdPerformance []AdPerformance `json:"adPerformance"`
}

type PopularLink struct {
	URL    string `json:"url"`
	Clicks int    `json:"clicks"`
}

type AdPerformance struct {
	AdID   string  `json:"adId"`
	Views  int     `json:"views"`
	Clicks int     `json:"clicks"`
	CTR    float64 `json:"ctr"`
}
