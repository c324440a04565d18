package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT (bearer identity tokens minted by the client platform)
	JWTSecret string

	// Toxicity scoring (external service; empty key means fail-open heuristics)
	ToxicityAPIKey  string
	ToxicityAPIURL  string
	ToxicityTimeout time.Duration
	FlagThreshold   float64
	BlockThreshold  float64

	// Push delivery gateway
	PushGatewayKey   string
	PushGatewayURL   string
	PushTimeout      time.Duration
	InboxCap         int
	InboxPruneTarget int

	// Rate-limit windows per action class
	PostWindow   time.Duration
	ReplyWindow  time.Duration
	ReportWindow time.Duration

	// Background jobs
	RecheckInterval time.Duration
	RecheckPageSize int
	SweepInterval   time.Duration

	// Event ingestion webhook
	EventsSecret string

	// Admin
	AdminEmails  string
	AdminUserIDs string
	AdminToken   string

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "moderation_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		ToxicityAPIKey:  getEnv("TOXICITY_API_KEY", ""),
		ToxicityAPIURL:  getEnv("TOXICITY_API_URL", "https://commentanalyzer.googleapis.com/v1alpha1/comments:analyze"),
		ToxicityTimeout: parseDuration(getEnv("TOXICITY_TIMEOUT", "5s"), 5*time.Second),
		FlagThreshold:   parseFloat(getEnv("FLAG_THRESHOLD", "0.6"), 0.6),
		BlockThreshold:  parseFloat(getEnv("BLOCK_THRESHOLD", "0.8"), 0.8),

		PushGatewayKey:   getEnv("PUSH_GATEWAY_KEY", ""),
		PushGatewayURL:   getEnv("PUSH_GATEWAY_URL", "https://fcm.googleapis.com/fcm/send"),
		PushTimeout:      parseDuration(getEnv("PUSH_TIMEOUT", "10s"), 10*time.Second),
		InboxCap:         parseInt(getEnv("INBOX_CAP", "300"), 300),
		InboxPruneTarget: parseInt(getEnv("INBOX_PRUNE_TARGET", "240"), 240),

		PostWindow:   parseDuration(getEnv("POST_WINDOW", "10s"), 10*time.Second),
		ReplyWindow:  parseDuration(getEnv("REPLY_WINDOW", "8s"), 8*time.Second),
		ReportWindow: parseDuration(getEnv("REPORT_WINDOW", "10s"), 10*time.Second),

		RecheckInterval: parseDuration(getEnv("RECHECK_INTERVAL", "1h"), time.Hour),
		RecheckPageSize: parseInt(getEnv("RECHECK_PAGE_SIZE", "100"), 100),
		SweepInterval:   parseDuration(getEnv("SWEEP_INTERVAL", "15m"), 15*time.Minute),

		EventsSecret: getEnv("EVENTS_SECRET", ""),

		AdminEmails:  getEnv("ADMIN_EMAILS", ""),
		AdminUserIDs: getEnv("ADMIN_USER_IDS", ""),
		AdminToken:   getEnv("ADMIN_TOKEN", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// Window returns the rate-limit window for an action class.
func (c *Config) Window(actionClass string) time.Duration {
	switch actionClass {
	case "reply":
		return c.ReplyWindow
	case "report":
		return c.ReportWindow
	default:
		return c.PostWindow
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func parseFloat(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return f
}
