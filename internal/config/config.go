package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Scorer HTTP API
	APIHost string
	APIPort int

	// Fanout WebSocket feed for scoreboard displays
	FanoutPort int

	// Match rules file
	MatchRulesPath string

	// Commentary generator
	CommentaryURL     string
	CommentaryAPIKey  string
	CommentaryModel   string
	CommentaryTimeout time.Duration
	CommentaryRPS     float64

	// Optional event journal (empty path disables)
	JournalPath string

	// Optional Redis stream publisher (empty addr disables)
	RedisAddr   string
	RedisStream string

	// Telemetry
	LogLevel string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		APIHost: envStr("SCORER_API_HOST", "127.0.0.1"),
		APIPort: envInt("SCORER_API_PORT", 8090),

		FanoutPort: envInt("SCORER_FANOUT_PORT", 8091),

		MatchRulesPath: envStr("MATCH_RULES_PATH", "internal/config/match_rules.yaml"),

		CommentaryURL:    envStr("COMMENTARY_URL", "https://api.openai.com/v1/responses"),
		CommentaryAPIKey: envStr("COMMENTARY_API_KEY", ""),
		CommentaryModel:  envStr("COMMENTARY_MODEL", "gpt-4o-mini"),
		// Commentary is flavor, not scoring: a short deadline keeps a slow
		// provider from backing up the serialized request queue.
		CommentaryTimeout: time.Duration(envInt("COMMENTARY_TIMEOUT_SEC", 15)) * time.Second,
		CommentaryRPS:     envFloat("COMMENTARY_RPS", 1.0),

		JournalPath: envStr("EVENT_JOURNAL_PATH", ""),

		RedisAddr:   envStr("REDIS_ADDR", ""),
		RedisStream: envStr("REDIS_STREAM", "kabaddi.match.updates"),

		LogLevel: envStr("LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
