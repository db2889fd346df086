package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
)

type Config struct {
	// HTTP Server
	Port string

	// Backend selection
	DataBackend string
	DataDir     string

	// Database
	SQLiteDBPath string

	// AMQP (optional; alerts are not published when empty)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Query engine
	Timezone        string
	CollationLocale string
	QueryCacheSize  int
	QueryCacheTTL   time.Duration

	// Google Sheets (optional alert notifier and report export)
	GoogleSpreadsheetID string
	GoogleAlertsSheet   string
	GoogleReportSheet   string

	// Worker: how often the budget report is exported (0 disables)
	ReportInterval time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8081"),

		DataBackend: getEnv("DATA_BACKEND", "memory"),
		DataDir:     getEnv("DATA_DIR", "data"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/spendlens.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "spendlens"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "budget_alerts"),

		Timezone:        getEnv("TIMEZONE", "Local"),
		CollationLocale: getEnv("COLLATION_LOCALE", "en"),
		QueryCacheSize:  getEnvInt("QUERY_CACHE_SIZE", 128),
		QueryCacheTTL:   getEnvDuration("QUERY_CACHE_TTL", time.Minute),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleAlertsSheet:   getEnv("GOOGLE_ALERTS_SHEET", "Alerts"),
		GoogleReportSheet:   getEnv("GOOGLE_REPORT_SHEET", "Budget Report"),

		ReportInterval: getEnvDuration("REPORT_INTERVAL", 24*time.Hour),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	return cfg
}

// Location resolves Timezone. Invalid names fall back to time.Local;
// Validate reports them.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Collation resolves CollationLocale, defaulting to English.
func (c *Config) Collation() language.Tag {
	tag, err := language.Parse(c.CollationLocale)
	if err != nil {
		return language.English
	}
	return tag
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.Timezone != "" && c.Timezone != "Local" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
		}
	}
	if c.CollationLocale != "" {
		if _, err := language.Parse(c.CollationLocale); err != nil {
			errors = append(errors, fmt.Sprintf("invalid collation locale '%s': %v", c.CollationLocale, err))
		}
	}

	// Validate query cache configuration
	if c.QueryCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid query cache size %d: must be at least 1", c.QueryCacheSize))
	} else if c.QueryCacheSize > 100000 {
		errors = append(errors, fmt.Sprintf("invalid query cache size %d: must be at most 100000", c.QueryCacheSize))
	}
	if c.QueryCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid query cache TTL %v: must be at least 1 second", c.QueryCacheTTL))
	} else if c.QueryCacheTTL > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid query cache TTL %v: must be at most 24 hours", c.QueryCacheTTL))
	}

	// Google Sheets is optional, but a configured spreadsheet needs both tabs
	if c.GoogleSpreadsheetID != "" {
		if c.GoogleAlertsSheet == "" {
			errors = append(errors, "Google alerts sheet name is required when GOOGLE_SPREADSHEET_ID is set")
		}
		if c.GoogleReportSheet == "" {
			errors = append(errors, "Google report sheet name is required when GOOGLE_SPREADSHEET_ID is set")
		}
	}

	if c.ReportInterval != 0 && c.ReportInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid report interval %v: must be 0 or at least 1 minute", c.ReportInterval))
	}

	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
