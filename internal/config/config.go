package config

import (
	"os"
	"strconv"
	"strings"

	"statement-reader/internal/domain"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort         string
	MaxFileSize        int64
	LogLevel           string
	LogFormat          string
	TableColumns       []string
	SnapTolerance      float64
	PageErrorPolicy    domain.PageErrorPolicy
	Currency           string
	AllowedOrigins     []string
	RateLimitPerSecond float64
	RateLimitBurst     int
	MetricsEnabled     bool
	AppTitle           string
	AppDescription     string
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:         getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		MaxFileSize:        getEnvInt64OrDefault("MAX_FILE_SIZE", 50*1024*1024), // 50MB default
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          getEnvOrDefault("LOG_FORMAT", "text"),
		TableColumns:       getEnvListOrDefault("TABLE_COLUMNS", domain.DefaultColumns),
		SnapTolerance:      getEnvFloatOrDefault("SNAP_TOLERANCE", 3),
		PageErrorPolicy:    domain.ParsePageErrorPolicy(getEnvOrDefault("PAGE_ERROR_POLICY", string(domain.PageErrorFail))),
		Currency:           strings.ToUpper(getEnvOrDefault("CURRENCY", "INR")),
		AllowedOrigins:     getEnvListOrDefault("ALLOWED_ORIGINS", []string{"http://localhost:8080"}),
		RateLimitPerSecond: getEnvFloatOrDefault("RATE_LIMIT_PER_SECOND", 5),
		RateLimitBurst:     int(getEnvInt64OrDefault("RATE_LIMIT_BURST", 10)),
		MetricsEnabled:     getEnvBoolOrDefault("METRICS_ENABLED", true),
		AppTitle:           getEnvOrDefault("APP_TITLE", "PhonePe Transaction Insights"),
		AppDescription: getEnvOrDefault("APP_DESCRIPTION",
			"This tool extracts the transaction table from your PhonePe_Transaction_Statement PDF and shows it as a table."),
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetMaxFileSize returns the maximum allowed upload size
func (c *AppConfig) GetMaxFileSize() int64 {
	return c.MaxFileSize
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetLogFormat returns the log output format
func (c *AppConfig) GetLogFormat() string {
	return c.LogFormat
}

// GetTableColumns returns the fixed header set rows are mapped onto
func (c *AppConfig) GetTableColumns() []string {
	return c.TableColumns
}

// GetSnapTolerance returns the table finder snap tolerance in layout units
func (c *AppConfig) GetSnapTolerance() float64 {
	return c.SnapTolerance
}

// GetPageErrorPolicy returns what a failing page does to the extraction
func (c *AppConfig) GetPageErrorPolicy() domain.PageErrorPolicy {
	return c.PageErrorPolicy
}

// GetCurrency returns the ISO-4217 code used for summary totals
func (c *AppConfig) GetCurrency() string {
	return c.Currency
}

// GetAllowedOrigins returns the CORS origins
func (c *AppConfig) GetAllowedOrigins() []string {
	return c.AllowedOrigins
}

// GetRateLimitPerSecond returns the sustained upload rate
func (c *AppConfig) GetRateLimitPerSecond() float64 {
	return c.RateLimitPerSecond
}

// GetRateLimitBurst returns the upload burst size
func (c *AppConfig) GetRateLimitBurst() int {
	return c.RateLimitBurst
}

// GetMetricsEnabled reports whether /metrics is served
func (c *AppConfig) GetMetricsEnabled() bool {
	return c.MetricsEnabled
}

// GetAppTitle returns the page title
func (c *AppConfig) GetAppTitle() string {
	return c.AppTitle
}

// GetAppDescription returns the page description
func (c *AppConfig) GetAppDescription() string {
	return c.AppDescription
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
			return f
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvListOrDefault splits a comma separated value, dropping blank entries.
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return append([]string(nil), defaultValue...)
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), defaultValue...)
	}
	return out
}
