package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type WebServerConfig struct {
	Port            string `mapstructure:"port"`
	IP              string `mapstructure:"ip"`
	Scheme          string `mapstructure:"scheme"`
	BaseURL         string `mapstructure:"base_url"`
	ReadTimeout     int    `mapstructure:"read_timeout"`
	WriteTimeout    int    `mapstructure:"write_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
	AllowedOrigin   string `mapstructure:"allowed_origin"`
}

type RedisConfig struct {
	Address          string `mapstructure:"address"`
	Password         string `mapstructure:"password"`
	DB               int    `mapstructure:"db"`
	PoolSize         int    `mapstructure:"pool_size"`
	MinIdleConns     int    `mapstructure:"min_idle_conns"`
	OperationTimeout int    `mapstructure:"operation_timeout"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type CacheConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	MaxSizeMB   int  `mapstructure:"max_size_mb"`
	TTLSeconds  int  `mapstructure:"ttl_seconds"`
	CounterSize int  `mapstructure:"counter_size"`
}

type SecurityConfig struct {
	BotDetectionEnabled     bool   `mapstructure:"bot_detection_enabled"`
	BotMaxRequestsPerMinute int    `mapstructure:"bot_max_requests_per_minute"`
	URLScanningEnabled      bool   `mapstructure:"url_scanning_enabled"`
	BlocklistEnabled        bool   `mapstructure:"blocklist_enabled"`
	SafeBrowsingAPIKey      string `mapstructure:"safe_browsing_api_key"`
}

// BackendConfig points at the managed backend (REST + identity API).
type BackendConfig struct {
	URL            string `mapstructure:"url"`
	AnonKey        string `mapstructure:"anon_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"`
	SessionTimeoutHours  int    `mapstructure:"session_timeout_hours"`
	IdleTimeoutHours     int    `mapstructure:"idle_timeout_hours"`
	SweepIntervalSeconds int    `mapstructure:"sweep_interval_seconds"`
	RoleResolveWaitMS    int    `mapstructure:"role_resolve_wait_ms"`
	CookieSecure         bool   `mapstructure:"cookie_secure"`

	Password PasswordRulesConfig `mapstructure:"password"`
}

// PasswordRulesConfig is enforced on end user sign-up.
type PasswordRulesConfig struct {
	MinLength        int  `mapstructure:"min_length"`
	MaxLength        int  `mapstructure:"max_length"`
	RequireUppercase bool `mapstructure:"require_uppercase"`
	RequireLowercase bool `mapstructure:"require_lowercase"`
	RequireDigit     bool `mapstructure:"require_digit"`
	RequireSpecial   bool `mapstructure:"require_special"`
}

type FunnelConfig struct {
	UpdateRetries int  `mapstructure:"update_retries"`
	EnforceGate   bool `mapstructure:"enforce_gate"`
	GateTTLHours  int  `mapstructure:"gate_ttl_hours"`
}

type FeaturesConfig struct {
	ShortCodeLength      int `mapstructure:"short_code_length"`
	MinCustomCodeLength  int `mapstructure:"min_custom_code_length"`
	MaxCustomCodeLength  int `mapstructure:"max_custom_code_length"`
	CodeSuggestionsCount int `mapstructure:"code_suggestions_count"`
}

type Config struct {
	LogLevel  string          `mapstructure:"log_level"`
	LogFormat string          `mapstructure:"log_format"`
	WebServer WebServerConfig `mapstructure:"webserver"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Security  SecurityConfig  `mapstructure:"security"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Funnel    FunnelConfig    `mapstructure:"funnel"`
	Features  FeaturesConfig  `mapstructure:"features"`
}

// LoadConfig reads config.yaml from the working directory. A missing file is
// not an error: defaults and ADFUNNEL_* environment variables still apply.
func LoadConfig() (Config, error) {
	var config Config

	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// ADFUNNEL_REDIS_ADDRESS overrides redis.address
	v.SetEnvPrefix("ADFUNNEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Error reading config file: %v", err)
			return config, err
		}
		log.Println("No config file found, using defaults and environment")
	}

	if err := v.Unmarshal(&config); err != nil {
		log.Printf("Unable to decode into struct: %v", err)
		return config, err
	}

	return config, nil
}

func MustLoadConfig() Config {
	config, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	return config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	// WebServer defaults
	v.SetDefault("webserver.port", "8080")
	v.SetDefault("webserver.ip", "127.0.0.1")
	v.SetDefault("webserver.scheme", "http")
	v.SetDefault("webserver.base_url", "")
	v.SetDefault("webserver.read_timeout", 15)
	v.SetDefault("webserver.write_timeout", 15)
	v.SetDefault("webserver.shutdown_timeout", 30)
	v.SetDefault("webserver.allowed_origin", "*")

	// Redis defaults
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 5)
	v.SetDefault("redis.operation_timeout", 5)

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_size_mb", 32)
	v.SetDefault("cache.ttl_seconds", 60)
	v.SetDefault("cache.counter_size", 100000)

	// RateLimit defaults
	v.SetDefault("ratelimit.requests_per_second", 10.0)
	v.SetDefault("ratelimit.burst", 20)

	// Security defaults
	v.SetDefault("security.bot_detection_enabled", true)
	v.SetDefault("security.bot_max_requests_per_minute", 60)
	v.SetDefault("security.url_scanning_enabled", true)
	v.SetDefault("security.blocklist_enabled", true)
	v.SetDefault("security.safe_browsing_api_key", "")

	// Backend defaults
	v.SetDefault("backend.url", "http://localhost:54321")
	v.SetDefault("backend.anon_key", "")
	v.SetDefault("backend.timeout_seconds", 10)

	// Auth defaults
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.session_timeout_hours", 24)
	v.SetDefault("auth.idle_timeout_hours", 4)
	v.SetDefault("auth.sweep_interval_seconds", 30)
	v.SetDefault("auth.role_resolve_wait_ms", 1500)
	v.SetDefault("auth.cookie_secure", false)
	v.SetDefault("auth.password.min_length", 6)
	v.SetDefault("auth.password.max_length", 72)
	v.SetDefault("auth.password.require_uppercase", false)
	v.SetDefault("auth.password.require_lowercase", false)
	v.SetDefault("auth.password.require_digit", false)
	v.SetDefault("auth.password.require_special", false)

	// Funnel defaults
	v.SetDefault("funnel.update_retries", 10)
	v.SetDefault("funnel.enforce_gate", true)
	v.SetDefault("funnel.gate_ttl_hours", 24)

	// Features defaults
	v.SetDefault("features.short_code_length", 6)
	v.SetDefault("features.min_custom_code_length", 3)
	v.SetDefault("features.max_custom_code_length", 32)
	v.SetDefault("features.code_suggestions_count", 3)
}
