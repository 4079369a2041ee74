package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config represents application configuration
type Config struct {
	NewsAPI  NewsAPIConfig  `envconfig:"NEWSAPI"`
	AI       AIConfig       `envconfig:"AI"`
	Cache    CacheConfig    `envconfig:"CACHE"`
	Database DatabaseConfig `envconfig:"DATABASE"`
	Telegram TelegramConfig `envconfig:"TELEGRAM"`
	Workers  WorkersConfig  `envconfig:"WORKERS"`
	Logging  LoggingConfig  `envconfig:"LOGGING"`
}

// NewsAPIConfig represents upstream article API configuration
type NewsAPIConfig struct {
	APIKey          string `envconfig:"NEWSAPI_KEY" required:"false"`
	BaseURL         string `envconfig:"NEWSAPI_BASE_URL" default:"https://api.newscatcherapi.com/v3"`
	PageSize        int    `envconfig:"NEWSAPI_PAGE_SIZE" default:"100"`
	MaxPages        int    `envconfig:"NEWSAPI_MAX_PAGES" default:"10"`
	MinArticles     int    `envconfig:"NEWSAPI_MIN_ARTICLES" default:"3"`
	RelatedLookups  int    `envconfig:"NEWSAPI_RELATED_LOOKUPS" default:"2"`
	RelatedPageSize int    `envconfig:"NEWSAPI_RELATED_PAGE_SIZE" default:"10"`
}

// AIConfig represents AI collaborator configuration
type AIConfig struct {
	ReportAPIKey    string `envconfig:"AI_REPORT_API_KEY" required:"false"`
	ReportModel     string `envconfig:"AI_REPORT_MODEL" default:"claude-3-5-sonnet-20241022"`
	ReportMaxTokens int    `envconfig:"AI_REPORT_MAX_TOKENS" default:"2000"`
	EntityAPIKey    string `envconfig:"AI_ENTITY_API_KEY" required:"false"`
	EntityModel     string `envconfig:"AI_ENTITY_MODEL" default:"gpt-4o-mini"`
	EntityMaxItems  int    `envconfig:"AI_ENTITY_MAX_ITEMS" default:"20"`
}

// CacheConfig represents TTL classes for cached results
type CacheConfig struct {
	ShortTTL time.Duration `envconfig:"CACHE_SHORT_TTL" default:"30m"`
	LongTTL  time.Duration `envconfig:"CACHE_LONG_TTL" default:"24h"`
}

// DatabaseConfig represents the optional article archive connection
type DatabaseConfig struct {
	Enabled        bool   `envconfig:"DB_ENABLED" default:"false"`
	Host           string `envconfig:"DB_HOST" default:"localhost"`
	Port           int    `envconfig:"DB_PORT" default:"5432"`
	Name           string `envconfig:"DB_NAME" default:"newspulse"`
	User           string `envconfig:"DB_USER" required:"false"`
	Password       string `envconfig:"DB_PASSWORD" required:"false"`
	SSLMode        string `envconfig:"DB_SSLMODE" default:"disable"`
	MigrationsPath string `envconfig:"DB_MIGRATIONS_PATH" default:"migrations"`
}

// TelegramConfig represents report delivery configuration
type TelegramConfig struct {
	Enabled  bool   `envconfig:"TELEGRAM_ENABLED" default:"false"`
	BotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"false"`
	ChatID   int64  `envconfig:"TELEGRAM_CHAT_ID" required:"false"`
}

// WorkersConfig represents background refresh configuration
type WorkersConfig struct {
	RefreshEnabled  bool          `envconfig:"WORKERS_REFRESH_ENABLED" default:"false"`
	RefreshInterval time.Duration `envconfig:"WORKERS_REFRESH_INTERVAL" default:"1h"`
	TrackedTopics   []string      `envconfig:"WORKERS_TRACKED_TOPICS" default:""`
	Language        string        `envconfig:"WORKERS_LANGUAGE" default:"en"`
	WindowDays      int           `envconfig:"WORKERS_WINDOW_DAYS" default:"7"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	File  string `envconfig:"LOG_FILE" default:""`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if configuration is valid. Credential problems surface here,
// before any network attempt.
func (c *Config) Validate() error {
	if c.NewsAPI.APIKey == "" {
		return fmt.Errorf("news API key is required (NEWSAPI_KEY)")
	}
	if c.NewsAPI.PageSize < 1 {
		return fmt.Errorf("page_size must be at least 1")
	}
	if c.NewsAPI.MaxPages < 1 {
		return fmt.Errorf("max_pages must be at least 1")
	}

	if c.Cache.ShortTTL <= 0 || c.Cache.LongTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}

	if c.Database.Enabled && c.Database.User == "" {
		return fmt.Errorf("database user is required when archive is enabled")
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram bot token is required when delivery is enabled")
		}
		if c.Telegram.ChatID == 0 {
			return fmt.Errorf("telegram chat_id is required when delivery is enabled")
		}
	}

	if c.Workers.RefreshEnabled && len(c.Workers.TrackedTopics) == 0 {
		return fmt.Errorf("tracked topics are required when refresh worker is enabled")
	}

	return nil
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}
