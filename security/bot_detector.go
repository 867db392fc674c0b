package security

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"ad-funnel-gate/config"

	"github.com/rs/zerolog/log"
)

// Reasons reported by BotDetector.Inspect
const (
	ReasonKnownBot      = "known_bot_user_agent"
	ReasonSuspiciousUA  = "suspicious_user_agent"
	ReasonExcessiveRate = "excessive_request_rate"
)

// Link preview fetchers are allowed through so shared funnel links unfurl.
var previewBots = []string{
	"googlebot",
	"bingbot",
	"slackbot",
	"twitterbot",
	"facebookexternalhit",
	"linkedinbot",
	"whatsapp",
	"telegrambot",
	"discordbot",
}

var automatedClients = []string{
	"bot",
	"crawler",
	"spider",
	"scraper",
	"curl",
	"wget",
	"python-requests",
	"go-http-client",
	"java/",
	"headless",
	"phantomjs",
	"node-fetch",
	"axios",
}

var browserMarkers = []string{"Mozilla", "Chrome", "Safari", "Firefox", "Edge", "Opera"}

// BotDetector keeps automated traffic from inflating funnel clicks, visits
// and downloads.
type BotDetector struct {
	mu      sync.Mutex
	seen    map[string]*requestHistory
	perMin  int
	idleTTL time.Duration
	now     func() time.Time
}

type requestHistory struct {
	requests []time.Time
	lastSeen time.Time
}

// NewBotDetector creates a detector from the security config. Call Run to
// start pruning idle entries.
func NewBotDetector(cfg config.SecurityConfig) *BotDetector {
	perMin := cfg.BotMaxRequestsPerMinute
	if perMin <= 0 {
		perMin = 60
	}
	return &BotDetector{
		seen:    make(map[string]*requestHistory),
		perMin:  perMin,
		idleTTL: 10 * time.Minute,
		now:     time.Now,
	}
}

// Inspect reports whether a request looks automated and why.
func (bd *BotDetector) Inspect(r *http.Request) (bool, string) {
	ua := r.UserAgent()
	lower := strings.ToLower(ua)

	if containsAny(lower, previewBots) {
		log.Debug().Str("user_agent", ua).Msg("Link preview bot allowed")
		return false, ""
	}
	if containsAny(lower, automatedClients) {
		return true, ReasonKnownBot
	}
	if len(ua) < 10 || !containsAny(ua, browserMarkers) {
		return true, ReasonSuspiciousUA
	}
	if bd.overRate(ClientIP(r)) {
		return true, ReasonExcessiveRate
	}
	return false, ""
}

func (bd *BotDetector) overRate(ip string) bool {
	bd.mu.Lock()
	defer bd.mu.Unlock()

	now := bd.now()
	cutoff := now.Add(-time.Minute)

	h, ok := bd.seen[ip]
	if !ok {
		h = &requestHistory{}
		bd.seen[ip] = h
	}
	recent := h.requests[:0]
	for _, t := range h.requests {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	h.requests = append(recent, now)
	h.lastSeen = now

	if len(h.requests) > bd.perMin {
		log.Warn().
			Str("ip", ip).
			Int("requests", len(h.requests)).
			Msg("Request rate exceeded, treating as bot")
		return true
	}
	return false
}

// Run prunes idle entries every interval until ctx is done.
func (bd *BotDetector) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := bd.prune()
			log.Debug().Int("tracked_ips", n).Msg("Pruned bot detection tracker")
		}
	}
}

func (bd *BotDetector) prune() int {
	bd.mu.Lock()
	defer bd.mu.Unlock()
	cutoff := bd.now().Add(-bd.idleTTL)
	for ip, h := range bd.seen {
		if h.lastSeen.Before(cutoff) {
			delete(bd.seen, ip)
		}
	}
	return len(bd.seen)
}

// Stats returns detector statistics
func (bd *BotDetector) Stats() map[string]interface{} {
	bd.mu.Lock()
	defer bd.mu.Unlock()
	return map[string]interface{}{
		"tracked_ips":             len(bd.seen),
		"max_requests_per_minute": bd.perMin,
	}
}

// ClientIP extracts the caller's IP, honouring proxy headers.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
