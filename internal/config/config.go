package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Campaign data sources.
const (
	SourcePostgres = "postgres"
	SourceREST     = "rest"
	SourceNone     = "none"
)

type Config struct {
	Port    string
	GinMode string

	// Local portal state (settings, chat sessions, chat history).
	DBDriver    string
	DBPath      string
	DatabaseURL string

	// Externally owned campaign data.
	CampaignSource      string
	CampaignDatabaseURL string
	SupabaseURL         string
	SupabaseKey         string
	PollInterval        time.Duration
	// InstallTriggers creates the NOTIFY triggers on the campaign database at
	// startup (CAMPAIGN_SOURCE=postgres only).
	InstallTriggers bool

	// Defaults for the webhook settings; values saved from the Settings page win.
	ChatWebhookURL      string
	CSVUploadWebhookURL string
	ChatTimeout         time.Duration
	UploadTimeout       time.Duration

	LogLevel  string
	LogFormat string

	CookieSecure bool

	Branding Branding
}

// Branding holds the customizable product naming shown on every page.
type Branding struct {
	AppName        string
	CompanyName    string
	AppDescription string
	SupportEmail   string
}

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Error loading .env file")
	}

	return &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "release"),

		DBDriver:    getEnv("DB_DRIVER", "sqlite"),
		DBPath:      getEnv("DB_PATH", "./autolynx.db"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		CampaignSource:      getEnv("CAMPAIGN_SOURCE", SourceREST),
		CampaignDatabaseURL: getEnv("CAMPAIGN_DATABASE_URL", ""),
		SupabaseURL:         strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseKey:         getEnv("SUPABASE_KEY", ""),
		PollInterval:        getEnvDuration("POLL_INTERVAL", 15*time.Second),
		InstallTriggers:     getEnvBool("INSTALL_CHANGE_TRIGGERS", false),

		ChatWebhookURL:      getEnv("CHAT_WEBHOOK_URL", ""),
		CSVUploadWebhookURL: getEnv("CSV_UPLOAD_WEBHOOK_URL", ""),
		ChatTimeout:         getEnvDuration("CHAT_TIMEOUT", 60*time.Second),
		UploadTimeout:       getEnvDuration("UPLOAD_TIMEOUT", 120*time.Second),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		CookieSecure: getEnvBool("COOKIE_SECURE", false),

		Branding: Branding{
			AppName:        getEnv("APP_NAME", "AutoLynx AI Caller Portal"),
			CompanyName:    getEnv("COMPANY_NAME", "AutoLynx"),
			AppDescription: getEnv("APP_DESCRIPTION", "Professional AI-Powered Cold Calling Campaign Management"),
			SupportEmail:   getEnv("SUPPORT_EMAIL", "support@autolynx.ai"),
		},
	}
}

// Validate checks the combinations LoadConfig cannot default away.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	switch c.DBDriver {
	case "sqlite":
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH cannot be empty when DB_DRIVER=sqlite")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q (want sqlite or postgres)", c.DBDriver)
	}

	switch c.CampaignSource {
	case SourcePostgres:
		if c.CampaignDatabaseURL == "" {
			return fmt.Errorf("CAMPAIGN_DATABASE_URL is required when CAMPAIGN_SOURCE=postgres")
		}
	case SourceREST:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_KEY are required when CAMPAIGN_SOURCE=rest")
		}
		if _, err := url.ParseRequestURI(c.SupabaseURL); err != nil {
			return fmt.Errorf("invalid SUPABASE_URL: %w", err)
		}
	case SourceNone:
	default:
		return fmt.Errorf("unknown CAMPAIGN_SOURCE %q", c.CampaignSource)
	}

	if c.ChatTimeout <= 0 || c.UploadTimeout <= 0 {
		return fmt.Errorf("CHAT_TIMEOUT and UPLOAD_TIMEOUT must be positive")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvDuration accepts Go durations ("90s") or plain seconds ("90").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return b
}
