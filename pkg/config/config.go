package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DatabaseURL string
	Port        string

	// Database performance settings
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime int // minutes
	DBConnMaxIdleTime int // minutes
	DBReadTimeout     time.Duration
	DBWriteTimeout    time.Duration

	// Authentication
	APIKeyHeader    string
	RequireAPIKey   bool
	StaticAPIKeys   []string // keys accepted without a database row
	APIKeysFile     string   // optional YAML file mapping key -> client name
	RateLimitPerMin int
	EnableRateLimit bool

	// Name matching knobs. Defaults follow the resolver's documented
	// behavior: 0.6/0.4 edit/sequence blend, 0.6 score cutoff, top 5.
	MatchThreshold     float64
	MatchEditWeight    float64
	MatchSeqWeight     float64
	MatchTokenVariants bool
	MaxFuzzyCandidates int
	MatchStrategy      string // "levenshtein" (default) or "ratio"

	// Optional OpenAI-assisted disambiguation
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAITimeout time.Duration

	// Logging
	LogLevel  string
	LogFormat string // "json" or "text"

	Env string // development, staging, production
}

func Load() *Config {
	dbMaxOpenConns, _ := strconv.Atoi(getEnv("DB_MAX_OPEN_CONNS", "25"))
	dbMaxIdleConns, _ := strconv.Atoi(getEnv("DB_MAX_IDLE_CONNS", "10"))
	dbConnMaxLifetime, _ := strconv.Atoi(getEnv("DB_CONN_MAX_LIFETIME_MINUTES", "10"))
	dbConnMaxIdleTime, _ := strconv.Atoi(getEnv("DB_CONN_MAX_IDLE_TIME_MINUTES", "5"))
	dbReadTO, _ := time.ParseDuration(getEnv("DB_READ_TIMEOUT", "8s"))
	dbWriteTO, _ := time.ParseDuration(getEnv("DB_WRITE_TIMEOUT", "6s"))

	requireAPIKey, _ := strconv.ParseBool(getEnv("REQUIRE_API_KEY", "true"))
	enableRateLimit, _ := strconv.ParseBool(getEnv("ENABLE_RATE_LIMIT", "true"))
	rateLimit, _ := strconv.Atoi(getEnv("RATE_LIMIT", "100"))

	threshold, _ := strconv.ParseFloat(getEnv("MATCH_THRESHOLD", "0.6"), 64)
	editWeight, _ := strconv.ParseFloat(getEnv("MATCH_EDIT_WEIGHT", "0.6"), 64)
	seqWeight, _ := strconv.ParseFloat(getEnv("MATCH_SEQUENCE_WEIGHT", "0.4"), 64)
	tokenVariants, _ := strconv.ParseBool(getEnv("MATCH_TOKEN_VARIANTS", "true"))
	maxFuzzy, _ := strconv.Atoi(getEnv("MAX_FUZZY_CANDIDATES", "5"))

	openAITimeout, _ := time.ParseDuration(getEnv("OPENAI_TIMEOUT", "30s"))

	cfg := &Config{
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		Port:              getEnv("PORT", "8080"),
		DBMaxOpenConns:    dbMaxOpenConns,
		DBMaxIdleConns:    dbMaxIdleConns,
		DBConnMaxLifetime: dbConnMaxLifetime,
		DBConnMaxIdleTime: dbConnMaxIdleTime,
		DBReadTimeout:     dbReadTO,
		DBWriteTimeout:    dbWriteTO,

		APIKeyHeader:    getEnv("API_KEY_HEADER", "x-api-key"),
		RequireAPIKey:   requireAPIKey,
		StaticAPIKeys:   splitKeys(getEnv("MCP_API_KEYS", "")),
		APIKeysFile:     getEnv("API_KEYS_FILE", ""),
		RateLimitPerMin: rateLimit,
		EnableRateLimit: enableRateLimit,

		MatchThreshold:     threshold,
		MatchEditWeight:    editWeight,
		MatchSeqWeight:     seqWeight,
		MatchTokenVariants: tokenVariants,
		MaxFuzzyCandidates: maxFuzzy,
		MatchStrategy:      strings.ToLower(getEnv("MATCH_STRATEGY", "levenshtein")),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAITimeout: openAITimeout,

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		Env:       strings.ToLower(getEnv("ENV", "development")),
	}

	cfg.warnOnSuspiciousValues()
	return cfg
}

// AssistEnabled reports whether the OpenAI disambiguation assist should run.
func (c *Config) AssistEnabled() bool { return c.OpenAIAPIKey != "" }

// warnOnSuspiciousValues logs (but does not fail on) configuration that is
// almost certainly a mistake. Startup should still proceed so operators can
// diagnose via /health.
func (c *Config) warnOnSuspiciousValues() {
	if c.DatabaseURL == "" {
		log.Printf("[Warning] DATABASE_URL is empty; database-backed features will fail")
	}
	if c.MatchThreshold < 0 || c.MatchThreshold > 1 {
		log.Printf("[Warning] MATCH_THRESHOLD %v outside [0,1], using 0.6", c.MatchThreshold)
		c.MatchThreshold = 0.6
	}
	if w := c.MatchEditWeight + c.MatchSeqWeight; w < 0.99 || w > 1.01 {
		log.Printf("[Warning] match weights sum to %v, expected 1.0; using defaults 0.6/0.4", w)
		c.MatchEditWeight, c.MatchSeqWeight = 0.6, 0.4
	}
	if c.MaxFuzzyCandidates <= 0 {
		log.Printf("[Warning] MAX_FUZZY_CANDIDATES must be positive, using 5")
		c.MaxFuzzyCandidates = 5
	}
	if c.MatchStrategy != "levenshtein" && c.MatchStrategy != "ratio" {
		log.Printf("[Warning] MATCH_STRATEGY %q unknown, using levenshtein", c.MatchStrategy)
		c.MatchStrategy = "levenshtein"
	}
	if c.RequireAPIKey && len(c.StaticAPIKeys) == 0 && c.APIKeysFile == "" {
		log.Printf("[Warning] API key auth required but no static keys configured; only database keys will be accepted")
	}
}

func splitKeys(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if k := strings.TrimSpace(p); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
