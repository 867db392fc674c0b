package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"ad-funnel-gate/security"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

// Redis keys for bot detection counters
const (
	BotDetectionsKey  = "security:bot_detections"
	BotTimelineKey    = "security:bot_detections_timeline"
	BlockedIPsKey     = "security:blocked_ips"
	BlockReasonsKey   = "security:block_reasons"
	botTimelineWindow = 24 * time.Hour
)

// BotProtection blocks suspected bots from the funnel counters
type BotProtection struct {
	detector *security.BotDetector
	enabled  bool
	redis    *redis.Client
}

// NewBotProtection creates a new bot protection middleware. rdb may be nil.
func NewBotProtection(detector *security.BotDetector, enabled bool, rdb *redis.Client) *BotProtection {
	return &BotProtection{
		detector: detector,
		enabled:  enabled,
		redis:    rdb,
	}
}

// Protect returns a middleware function that blocks bots
func (bp *BotProtection) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !bp.enabled {
			next.ServeHTTP(w, r)
			return
		}

		isBot, reason := bp.detector.Inspect(r)
		if !isBot {
			next.ServeHTTP(w, r)
			return
		}

		ip := security.ClientIP(r)
		log.Warn().
			Str("ip", ip).
			Str("user_agent", r.UserAgent()).
			Str("reason", reason).
			Str("path", r.URL.Path).
			Msg("Bot detected - request blocked")
		bp.track(ip, reason)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{
			"error":   "Bot detected",
			"message": "This request appears to be automated. If you believe this is an error, please contact support.",
			"reason":  reason,
		})
	})
}

func (bp *BotProtection) track(ip, reason string) {
	if bp.redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	now := time.Now()
	_, err := bp.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, BotDetectionsKey)
		pipe.ZAdd(ctx, BotTimelineKey, &redis.Z{Score: float64(now.Unix()), Member: ip + ":" + reason})
		pipe.ZRemRangeByScore(ctx, BotTimelineKey, "-inf", formatScore(now.Add(-botTimelineWindow)))
		pipe.ZIncrBy(ctx, BlockedIPsKey, 1, ip)
		pipe.ZIncrBy(ctx, BlockReasonsKey, 1, reason)
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to record bot detection")
	}
}

// Stats returns bot detection statistics, including the Redis counters when available
func (bp *BotProtection) Stats(ctx context.Context) map[string]interface{} {
	stats := bp.detector.Stats()
	stats["enabled"] = bp.enabled
	if bp.redis == nil {
		return stats
	}

	total, err := bp.redis.Get(ctx, BotDetectionsKey).Int64()
	if err != nil && err != redis.Nil {
		log.Error().Err(err).Msg("Failed to read bot detection counter")
		return stats
	}
	stats["total_detections"] = total

	since := formatScore(time.Now().Add(-botTimelineWindow))
	if n, err := bp.redis.ZCount(ctx, BotTimelineKey, since, "+inf").Result(); err == nil {
		stats["detections_24h"] = n
	}
	if reasons, err := bp.redis.ZRevRangeWithScores(ctx, BlockReasonsKey, 0, 9).Result(); err == nil {
		byReason := make(map[string]int64, len(reasons))
		for _, z := range reasons {
			byReason[z.Member.(string)] = int64(z.Score)
		}
		stats["reasons"] = byReason
	}
	return stats
}

func formatScore(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}
