package security

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ad-funnel-gate/config"
)

const browserUA = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

func TestBotDetectorInspect(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		isBot     bool
		reason    string
	}{
		{"browser", browserUA, false, ""},
		{"preview bot", "Slackbot-LinkExpanding 1.0 (+https://api.slack.com/robots)", false, ""},
		{"curl", "curl/8.4.0", true, ReasonKnownBot},
		{"headless", "Mozilla/5.0 HeadlessChrome/120.0", true, ReasonKnownBot},
		{"empty", "", true, ReasonSuspiciousUA},
		{"no browser marker", "MyCustomDownloader/2.1", true, ReasonSuspiciousUA},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bd := NewBotDetector(config.SecurityConfig{BotMaxRequestsPerMinute: 10})
			r := httptest.NewRequest(http.MethodGet, "/ad/click/ad1", nil)
			r.Header.Set("User-Agent", tt.userAgent)

			isBot, reason := bd.Inspect(r)
			if isBot != tt.isBot || reason != tt.reason {
				t.Errorf("Inspect() = (%v, %q), want (%v, %q)", isBot, reason, tt.isBot, tt.reason)
			}
		})
	}
}

func TestBotDetectorRate(t *testing.T) {
	bd := NewBotDetector(config.SecurityConfig{BotMaxRequestsPerMinute: 3})
	clock := time.Unix(1700000000, 0)
	bd.now = func() time.Time { return clock }

	r := httptest.NewRequest(http.MethodGet, "/download", nil)
	r.Header.Set("User-Agent", browserUA)
	r.RemoteAddr = "203.0.113.7:5555"

	for i := 0; i < 3; i++ {
		if isBot, _ := bd.Inspect(r); isBot {
			t.Fatalf("Request %d flagged too early", i+1)
		}
	}
	if _, reason := bd.Inspect(r); reason != ReasonExcessiveRate {
		t.Errorf("Expected %s, got %q", ReasonExcessiveRate, reason)
	}

	clock = clock.Add(2 * time.Minute)
	if isBot, _ := bd.Inspect(r); isBot {
		t.Error("Window should have slid past the burst")
	}

	clock = clock.Add(time.Hour)
	if n := bd.prune(); n != 0 {
		t.Errorf("Expected idle entries to be pruned, %d left", n)
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "198.51.100.1:1234"
	if got := ClientIP(r); got != "198.51.100.1" {
		t.Errorf("ClientIP() = %s", got)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := ClientIP(r); got != "203.0.113.9" {
		t.Errorf("ClientIP() = %s, want first forwarded address", got)
	}
}

func TestScannerBlocklist(t *testing.T) {
	s := NewURLScanner(config.SecurityConfig{URLScanningEnabled: true, BlocklistEnabled: true})
	ctx := context.Background()

	res, err := s.ScanURL(ctx, "https://example.com/vpn")
	if err != nil || !res.Safe {
		t.Fatalf("Expected safe URL, got %+v err=%v", res, err)
	}

	res, _ = s.ScanURL(ctx, "https://example.com/secure-login?next=1")
	if res.Safe || res.Threats[0] != ThreatBlocklisted {
		t.Errorf("Expected blocklisted URL, got %+v", res)
	}

	s.AddToBlocklist("Evil.example")
	if res, _ := s.ScanURL(ctx, "https://evil.example/get"); res.Safe {
		t.Error("Expected added pattern to block")
	}
}

func TestScannerDisabled(t *testing.T) {
	s := NewURLScanner(config.SecurityConfig{URLScanningEnabled: false, BlocklistEnabled: true})
	res, _ := s.ScanURL(context.Background(), "https://free-bitcoin.tk/")
	if !res.Safe || res.Source != "disabled" {
		t.Errorf("Expected disabled scanner to pass everything, got %+v", res)
	}
}

func TestScannerSafeBrowsing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "k" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		var body safeBrowsingRequest
		json.NewDecoder(r.Body).Decode(&body)
		if body.ThreatInfo.ThreatEntries[0].URL == "https://malware.example/" {
			w.Write([]byte(`{"matches":[{"threatType":"MALWARE","threat":{"url":"https://malware.example/"}}]}`))
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	s := NewURLScanner(config.SecurityConfig{URLScanningEnabled: true, SafeBrowsingAPIKey: "k"})
	s.endpoint = srv.URL

	res, err := s.ScanURL(context.Background(), "https://malware.example/")
	if err != nil {
		t.Fatalf("ScanURL() error = %v", err)
	}
	if res.Safe || res.Source != "safe_browsing" || res.Threats[0] != ThreatMalware {
		t.Errorf("Expected malware verdict, got %+v", res)
	}

	res, _ = s.ScanURL(context.Background(), "https://fine.example/")
	if !res.Safe {
		t.Errorf("Expected safe verdict, got %+v", res)
	}

	s.apiKey = "wrong"
	res, _ = s.ScanURL(context.Background(), "https://malware.example/")
	if !res.Safe {
		t.Error("API failure should not block the URL")
	}
}

func TestDefaultBlocklistCoversGroups(t *testing.T) {
	s := NewURLScanner(config.SecurityConfig{URLScanningEnabled: true, BlocklistEnabled: true})
	for group, patterns := range blocklistGroups {
		for _, p := range patterns {
			res, _ := s.ScanURL(context.Background(), "https://ads.example/"+p+"x")
			if res.Safe {
				t.Errorf("Expected %s pattern %q to block", group, p)
			}
		}
	}
}
