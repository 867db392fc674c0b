package security

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"ad-funnel-gate/config"

	"github.com/rs/zerolog/log"
)

// ThreatType represents the type of security threat detected
type ThreatType string

const (
	ThreatMalware     ThreatType = "MALWARE"
	ThreatPhishing    ThreatType = "PHISHING"
	ThreatUnwanted    ThreatType = "UNWANTED_SOFTWARE"
	ThreatBlocklisted ThreatType = "BLOCKLISTED"
)

const safeBrowsingEndpoint = "https://safebrowsing.googleapis.com/v4/threatMatches:find"

// safeBrowsingThreats maps Safe Browsing threat names to ours and doubles as
// the list of types requested.
var safeBrowsingThreats = map[string]ThreatType{
	"MALWARE":            ThreatMalware,
	"SOCIAL_ENGINEERING": ThreatPhishing,
	"UNWANTED_SOFTWARE":  ThreatUnwanted,
}

// ScanResult is the verdict on an ad link or short-link destination
type ScanResult struct {
	Safe       bool         `json:"safe"`
	Threats    []ThreatType `json:"threats,omitempty"`
	Source     string       `json:"source"` // "blocklist", "safe_browsing", "disabled"
	ScannedAt  time.Time    `json:"scanned_at"`
	CheckedURL string       `json:"checked_url"`
}

// URLScanner vets destinations before they are stored
type URLScanner struct {
	enabled      bool
	apiKey       string
	endpoint     string
	useBlocklist bool
	mu           sync.RWMutex
	blocklist    []string
	httpClient   *http.Client
}

// NewURLScanner creates a scanner from the security config
func NewURLScanner(cfg config.SecurityConfig) *URLScanner {
	return &URLScanner{
		enabled:      cfg.URLScanningEnabled,
		apiKey:       cfg.SafeBrowsingAPIKey,
		endpoint:     safeBrowsingEndpoint,
		useBlocklist: cfg.BlocklistEnabled,
		blocklist:    defaultBlocklist(),
		httpClient:   &http.Client{Timeout: 5 * time.Second},
	}
}

// ScanURL checks the local blocklist and, when an API key is set, Safe
// Browsing. A Safe Browsing failure does not block the URL.
func (s *URLScanner) ScanURL(ctx context.Context, urlStr string) (*ScanResult, error) {
	result := &ScanResult{
		Safe:       true,
		Threats:    []ThreatType{},
		Source:     "disabled",
		ScannedAt:  time.Now(),
		CheckedURL: urlStr,
	}
	if !s.enabled {
		return result, nil
	}

	if s.useBlocklist {
		result.Source = "blocklist"
		if pattern := s.matchBlocklist(urlStr); pattern != "" {
			result.Safe = false
			result.Threats = append(result.Threats, ThreatBlocklisted)
			log.Warn().Str("url", urlStr).Str("pattern", pattern).Msg("URL blocked by local blocklist")
			return result, nil
		}
	}

	if s.apiKey == "" {
		return result, nil
	}

	threats, err := s.checkSafeBrowsing(ctx, urlStr)
	if err != nil {
		log.Error().Err(err).Msg("Safe Browsing API check failed")
		return result, nil
	}
	result.Source = "safe_browsing"
	if len(threats) > 0 {
		result.Safe = false
		result.Threats = threats
		log.Warn().Str("url", urlStr).Interface("threats", threats).Msg("URL flagged by Safe Browsing API")
	}
	return result, nil
}

func (s *URLScanner) matchBlocklist(urlStr string) string {
	lower := strings.ToLower(urlStr)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, pattern := range s.blocklist {
		if strings.Contains(lower, pattern) {
			return pattern
		}
	}
	return ""
}

type threatEntry struct {
	URL string `json:"url"`
}

// safeBrowsingRequest is a Safe Browsing v4 threatMatches:find body
type safeBrowsingRequest struct {
	Client struct {
		ClientID      string `json:"clientId"`
		ClientVersion string `json:"clientVersion"`
	} `json:"client"`
	ThreatInfo struct {
		ThreatTypes      []string      `json:"threatTypes"`
		PlatformTypes    []string      `json:"platformTypes"`
		ThreatEntryTypes []string      `json:"threatEntryTypes"`
		ThreatEntries    []threatEntry `json:"threatEntries"`
	} `json:"threatInfo"`
}

type safeBrowsingResponse struct {
	Matches []struct {
		ThreatType string      `json:"threatType"`
		Threat     threatEntry `json:"threat"`
	} `json:"matches"`
}

func (s *URLScanner) checkSafeBrowsing(ctx context.Context, urlStr string) ([]ThreatType, error) {
	var body safeBrowsingRequest
	body.Client.ClientID = "ad-funnel-gate"
	body.Client.ClientVersion = "1.0.0"
	for name := range safeBrowsingThreats {
		body.ThreatInfo.ThreatTypes = append(body.ThreatInfo.ThreatTypes, name)
	}
	sort.Strings(body.ThreatInfo.ThreatTypes)
	body.ThreatInfo.PlatformTypes = []string{"ANY_PLATFORM"}
	body.ThreatInfo.ThreatEntryTypes = []string{"URL"}
	body.ThreatInfo.ThreatEntries = []threatEntry{{URL: urlStr}}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"?key="+s.apiKey, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("safe browsing API returned %s", resp.Status)
	}

	var sbResp safeBrowsingResponse
	if err := json.NewDecoder(resp.Body).Decode(&sbResp); err != nil {
		return nil, err
	}

	threats := make([]ThreatType, 0, len(sbResp.Matches))
	for _, match := range sbResp.Matches {
		if t, ok := safeBrowsingThreats[match.ThreatType]; ok {
			threats = append(threats, t)
		}
	}
	return threats, nil
}

// blocklistGroups lists substring patterns per abuse category. Patterns are
// matched against the lowercased URL.
var blocklistGroups = map[string][]string{
	"phishing": {
		"account-verify", "confirm-account", "secure-login", "verify-identity",
		"suspended-account", "unusual-activity", "billing-problem",
	},
	"payload": {".scr?", ".bat?", ".cmd?", ".vbs?", ".apk?install"},
	"free_tld": {".tk/", ".ml/", ".ga/", ".cf/", ".gq/"},
	"ad_fraud": {
		"free-money", "free-bitcoin", "prize-winner", "click-here-now",
		"you-have-won", "claim-reward",
	},
}

func defaultBlocklist() []string {
	var patterns []string
	for _, group := range blocklistGroups {
		patterns = append(patterns, group...)
	}
	sort.Strings(patterns)
	return patterns
}

// AddToBlocklist adds a pattern to the blocklist
func (s *URLScanner) AddToBlocklist(pattern string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocklist = append(s.blocklist, strings.ToLower(pattern))
}

// Blocklist returns a copy of the current blocklist
func (s *URLScanner) Blocklist() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.blocklist...)
}
