package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Strava   StravaConfig
	Sync     SyncConfig
	Import   ImportConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string // empty disables event publishing
	OtelEnabled        bool
}

type DatabaseConfig struct {
	Driver     string // "postgres" or "sqlite"
	Connection string
}

type StravaConfig struct {
	ClientID       string
	ClientSecret   string
	APIBaseURL     string
	OAuthURL       string
	TokenStorePath string
	RequestTimeout time.Duration
}

type SyncConfig struct {
	PerPage             int
	MaxIncrementalPages int
	MaxBackfillPages    int
	RetryMaxAttempts    int
	RetryInitial        time.Duration
	RetryMaxInterval    time.Duration
}

type ImportConfig struct {
	FitDir       string
	ReportsDir   string
	OutcomeTopic string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/training-os.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", ""),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "sqlite"),
			Connection: getEnv("DB_CONNECTION_STRING", "data/training_os.db"),
		},
		Strava: StravaConfig{
			ClientID:       getEnv("STRAVA_CLIENT_ID", ""),
			ClientSecret:   getEnv("STRAVA_CLIENT_SECRET", ""),
			APIBaseURL:     getEnv("STRAVA_API_BASE_URL", "https://www.strava.com/api/v3"),
			OAuthURL:       getEnv("STRAVA_OAUTH_URL", "https://www.strava.com/oauth/token"),
			TokenStorePath: getEnv("STRAVA_TOKEN_STORE_PATH", "data/strava_tokens.json"),
			RequestTimeout: getEnvAsDuration("STRAVA_REQUEST_TIMEOUT", 20*time.Second),
		},
		Sync: SyncConfig{
			PerPage:             getEnvAsInt("SYNC_PER_PAGE", 50),
			MaxIncrementalPages: getEnvAsInt("SYNC_MAX_INCREMENTAL_PAGES", 20),
			MaxBackfillPages:    getEnvAsInt("SYNC_MAX_BACKFILL_PAGES", 50),
			RetryMaxAttempts:    getEnvAsInt("SYNC_RETRY_MAX_ATTEMPTS", 5),
			RetryInitial:        getEnvAsDuration("SYNC_RETRY_INITIAL", 2*time.Second),
			RetryMaxInterval:    getEnvAsDuration("SYNC_RETRY_MAX_INTERVAL", 60*time.Second),
		},
		Import: ImportConfig{
			FitDir:       getEnv("FIT_IMPORT_DIR", "data/fit_exports"),
			ReportsDir:   getEnv("REPORTS_DIR", "data/reports"),
			OutcomeTopic: getEnv("IMPORT_OUTCOME_TOPIC", "IMPORT_OUTCOME"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
