package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends accepted by STORE_BACKEND.
const (
	BackendMongoDB = "mongodb"
	BackendRedis   = "redis"
	BackendMemory  = "memory"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Inventory InventoryConfig
	UI        UIConfig
	Reporting ReportingConfig
	Sheets    SheetsConfig
	WhatsApp  WhatsAppConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// StoreConfig selects the item store implementation.
type StoreConfig struct {
	Backend    string
	Collection string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// RedisConfig holds settings for the Redis backend.
type RedisConfig struct {
	Addr string
}

// InventoryConfig tunes the inventory controller.
type InventoryConfig struct {
	// AtomicCounters switches add/remove from read-then-write to the
	// store's atomic increment/decrement.
	AtomicCounters bool
}

// UIConfig holds terminal UI settings.
type UIConfig struct {
	Theme     string
	LogFile   string
	ServerURL string
}

// ReportingConfig holds scheduler-related settings. An empty schedule
// disables the scheduler.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
}

// SheetsConfig contains configuration required to export reports to Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// WhatsAppConfig contains credentials and options for the Meta WhatsApp Cloud API.
type WhatsAppConfig struct {
	AccessToken     string
	PhoneNumberID   string
	VerifyToken     string
	BaseURL         string
	APIVersion      string
	ReportRecipient string
}

// Enabled reports whether the chat view can be served.
func (c WhatsAppConfig) Enabled() bool {
	return c.AccessToken != "" && c.PhoneNumberID != ""
}

// Enabled reports whether reports are exported to a spreadsheet.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// A missing .env is fine when the environment carries everything.
		_ = godotenv.Load()
	}

	atomic, err := getenvBool("INVENTORY_ATOMIC_COUNTERS", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Store: StoreConfig{
			Backend:    strings.ToLower(getenvWithDefault("STORE_BACKEND", BackendMongoDB)),
			Collection: getenvWithDefault("INVENTORY_COLLECTION", "inventory"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "pantry"),
		},
		Redis: RedisConfig{
			Addr: getenvWithDefault("REDIS_ADDR", "localhost:6379"),
		},
		Inventory: InventoryConfig{
			AtomicCounters: atomic,
		},
		UI: UIConfig{
			Theme:     getenvWithDefault("PANTRY_THEME", "pantry"),
			LogFile:   getenvWithDefault("PANTRY_LOG_FILE", "pantry.log"),
			ServerURL: os.Getenv("PANTRY_SERVER_URL"),
		},
		Reporting: ReportingConfig{
			CronSchedule: os.Getenv("REPORT_CRON_SCHEDULE"),
			Timezone:     getenvWithDefault("TIMEZONE", "UTC"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:     os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID:   os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			VerifyToken:     os.Getenv("META_VERIFY_TOKEN"),
			BaseURL:         getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:      getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			ReportRecipient: os.Getenv("WHATSAPP_REPORT_RECIPIENT"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Store.Collection == "" {
		return errors.New("INVENTORY_COLLECTION must not be empty")
	}

	switch c.Store.Backend {
	case BackendMongoDB:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided")
		}
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must be provided")
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return errors.New("REDIS_ADDR must be provided")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("STORE_BACKEND %q is not one of mongodb, redis, memory", c.Store.Backend)
	}

	if c.Reporting.CronSchedule != "" {
		if _, err := time.LoadLocation(c.Reporting.Timezone); err != nil {
			return fmt.Errorf("TIMEZONE %q: %w", c.Reporting.Timezone, err)
		}
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be provided together")
	}

	if c.WhatsApp.Enabled() {
		switch {
		case c.WhatsApp.VerifyToken == "":
			return errors.New("META_VERIFY_TOKEN must be provided")
		case c.WhatsApp.BaseURL == "":
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		case c.WhatsApp.APIVersion == "":
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return parsed, nil
}
