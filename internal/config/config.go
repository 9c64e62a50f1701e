package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Exa       ExaConfig
	Atlassian AtlassianConfig
	SMTP      SMTPConfig
	Auth      AuthConfig
	Research  ResearchConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type ExaConfig struct {
	APIKey string
}

type AtlassianConfig struct {
	BaseURL  string // site root, e.g. https://your-site.atlassian.net
	Email    string
	APIToken string
	// Fallback targets used when the stored settings leave them empty.
	SpaceKey   string
	ProjectKey string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
	// NotifyEmail receives research-completed notifications; empty
	// disables them.
	NotifyEmail string
}

type AuthConfig struct {
	JWTSecret     string
	AdminPassword string
}

// ResearchConfig tunes the poll loop of the research client.
type ResearchConfig struct {
	PollBaseDelayMS  int
	PollMultiplier   float64
	PollMaxDelayMS   int
	PollMaxAttempts  int
	SyncPollAttempts int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Exa: ExaConfig{
			APIKey: getEnv("EXA_API_KEY", ""),
		},
		Atlassian: AtlassianConfig{
			BaseURL:    getEnv("ATLASSIAN_BASE_URL", ""),
			Email:      getEnv("ATLASSIAN_EMAIL", ""),
			APIToken:   getEnv("ATLASSIAN_API_TOKEN", ""),
			SpaceKey:   getEnv("CONFLUENCE_SPACE_KEY", ""),
			ProjectKey: getEnv("JIRA_PROJECT_KEY", ""),
		},
		SMTP: SMTPConfig{
			Host:        getEnv("SMTP_HOST", ""),
			Port:        getEnvAsInt("SMTP_PORT", 587),
			Email:       getEnv("SMTP_EMAIL", ""),
			Password:    getEnv("SMTP_PASSWORD", ""),
			SenderName:  getEnv("SMTP_SENDER_NAME", "LeadScout"),
			NotifyEmail: getEnv("RESEARCH_NOTIFY_EMAIL", ""),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", ""),
			AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		},
		Research: ResearchConfig{
			PollBaseDelayMS:  getEnvAsInt("RESEARCH_POLL_BASE_DELAY_MS", 2000),
			PollMultiplier:   getEnvAsFloat("RESEARCH_POLL_MULTIPLIER", 2.0),
			PollMaxDelayMS:   getEnvAsInt("RESEARCH_POLL_MAX_DELAY_MS", 30000),
			PollMaxAttempts:  getEnvAsInt("RESEARCH_POLL_MAX_ATTEMPTS", 40),
			SyncPollAttempts: getEnvAsInt("RESEARCH_SYNC_POLL_ATTEMPTS", 4),
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
