package config

import (
	"log"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is built once at startup and read-only afterwards.
type Config struct {
	ServerHost         string
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	RequestTimeout     time.Duration

	PlayBaseURL  string
	PlayLang     string
	PlayCountry  string
	PlayFetcher  string
	ChromeBin    string
	FetchTimeout time.Duration
	MaxRetries   int

	SimilarLimit   int
	SearchFallback bool

	MaxConcurrency int
	RateLimitMs    int

	CSVOutputPath string

	AuditDBEnabled   bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		ServerHost:         getEnv("SERVER_HOST", "0.0.0.0"),
		ServerPort:         getEnv("SERVER_PORT", "8000"),
		ServerReadTimeout:  getEnvMs("SERVER_READ_TIMEOUT_MS", 30000),
		ServerWriteTimeout: getEnvMs("SERVER_WRITE_TIMEOUT_MS", 60000),
		RequestTimeout:     getEnvMs("REQUEST_TIMEOUT_MS", 60000),

		PlayBaseURL:  getEnv("PLAY_BASE_URL", "https://play.google.com"),
		PlayLang:     getEnv("PLAY_LANG", "en"),
		PlayCountry:  getEnv("PLAY_COUNTRY", "us"),
		PlayFetcher:  getEnv("PLAY_FETCHER", "http"),
		ChromeBin:    getEnv("CHROME_BIN", ""),
		FetchTimeout: getEnvMs("FETCH_TIMEOUT_MS", 15000),
		MaxRetries:   getEnvInt("MAX_RETRIES", 2),

		SimilarLimit:   getEnvInt("SIMILAR_LIMIT", 10),
		SearchFallback: getEnvBool("PLAY_SEARCH_FALLBACK", true),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 4),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 250),

		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", ""),

		AuditDBEnabled:   getEnvBool("AUDIT_DB_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "collector"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "collector123"),
		PostgresDB:       getEnv("POSTGRES_DB", "apps_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// StoreHost returns the hostname of the configured storefront, used to reject
// request URLs pointing anywhere else.
func (c *Config) StoreHost() string {
	u, err := url.Parse(c.PlayBaseURL)
	if err != nil || u.Host == "" {
		return "play.google.com"
	}
	return u.Host
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

func getEnvMs(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Millisecond
}
