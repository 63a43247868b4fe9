package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"tictac_arena/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	DatabaseURL   string // optional, accounts and stats are off without it
	JWTSecret     string
	AllowedOrigin string

	LogLevel string
	LogJSON  bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	NATSURL            string
	NATSOutcomeSubject string

	// WebSocket
	WSAuthRequired  bool
	WSSendBuffer    int
	SessionLinger   time.Duration
	CleanupInterval time.Duration

	// Rate limits
	APIRateLimit     int
	APIRateWindow    time.Duration
	AuthRateLimit    int
	AuthRateWindow   time.Duration
	LeaderboardLimit int
}

var ErrMissing = errors.New("required setting is not set")

// Load reads .env (if any) and the environment. Missing mandatory settings
// are fatal.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := FromEnv(os.Getenv)
	if err != nil {
		logger.Fatal("config", "error", err)
	}
	return cfg
}

// FromEnv builds the config from a lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	jwtSecret := getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET: %w", ErrMissing)
	}

	cfg := &Config{
		AppPort:            strDefault(getenv("APP_PORT"), "8080"),
		DatabaseURL:        getenv("DATABASE_URL"),
		JWTSecret:          jwtSecret,
		AllowedOrigin:      getenv("ALLOWED_ORIGIN"),
		LogLevel:           strDefault(getenv("LOG_LEVEL"), "info"),
		LogJSON:            boolDefault(getenv("LOG_JSON"), false),
		RedisAddr:          getenv("REDIS_ADDR"),
		RedisPassword:      getenv("REDIS_PASSWORD"),
		RedisDB:            intDefault(getenv("REDIS_DB"), 0),
		NATSURL:            getenv("NATS_URL"),
		NATSOutcomeSubject: strDefault(getenv("NATS_OUTCOME_SUBJECT"), "tictac.outcomes"),
		WSAuthRequired:     boolDefault(getenv("WS_AUTH_REQUIRED"), true),
		WSSendBuffer:       positiveInt(getenv("WS_SEND_BUFFER"), 64),
		SessionLinger:      durationDefault(getenv("SESSION_LINGER"), 2*time.Minute),
		CleanupInterval:    durationDefault(getenv("CLEANUP_INTERVAL"), 30*time.Second),
		APIRateLimit:       positiveInt(getenv("API_RATE_LIMIT"), 120),
		APIRateWindow:      time.Duration(positiveInt(getenv("API_RATE_WINDOW_SECONDS"), 60)) * time.Second,
		AuthRateLimit:      positiveInt(getenv("AUTH_RATE_LIMIT"), 10),
		AuthRateWindow:     time.Duration(positiveInt(getenv("AUTH_RATE_WINDOW_SECONDS"), 60)) * time.Second,
		LeaderboardLimit:   positiveInt(getenv("LEADERBOARD_LIMIT"), 10),
	}

	if cfg.CleanupInterval <= 0 {
		return nil, fmt.Errorf("CLEANUP_INTERVAL must be positive, got %s", cfg.CleanupInterval)
	}
	return cfg, nil
}

func strDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func boolDefault(v string, def bool) bool {
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}

func intDefault(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

func positiveInt(v string, def int) int {
	if n := intDefault(v, def); n > 0 {
		return n
	}
	return def
}

func durationDefault(v string, def time.Duration) time.Duration {
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return d
}
