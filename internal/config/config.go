package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/v0xg/streamchapters/internal/logging"
)

// AppConfig holds process-wide configuration.
// Per-run chapter settings come from flags or the HTTP request, not from here.
type AppConfig struct {
	HTTPAddr    string
	HTTPLogPath string
	Store       StoreConfig
	Browser     BrowserConfig
	Timing      TimingConfig
	Logging     *logging.Config

	SnapshotDir     string
	DefaultProvider string
}

type StoreConfig struct {
	Path          string
	BusyTimeoutMs int
}

type BrowserConfig struct {
	ControlURL  string
	ProfileDir  string
	Headless    bool
	TargetHosts []string
}

// TimingConfig holds the fixed waits that were tuned against the Stream UI
type TimingConfig struct {
	InterJobDelay time.Duration
	FocusSettle   time.Duration
	WriteSettle   time.Duration
}

// DefaultTargetHosts are the hosts that serve the Stream player
var DefaultTargetHosts = []string{"sharepoint.com", "microsoftstream.com"}

// LoadAppConfigFromEnv loads configuration from environment variables.
func LoadAppConfigFromEnv() *AppConfig {
	return &AppConfig{
		HTTPAddr:    getEnvWithDefault("HTTP_ADDR", "127.0.0.1:8787"),
		HTTPLogPath: getEnvWithDefault("HTTP_LOG_PATH", ""),
		Store: StoreConfig{
			Path:          getEnvWithDefault("DB_PATH", "./streamchapters.db"),
			BusyTimeoutMs: getEnvIntWithDefault("DB_BUSY_TIMEOUT_MS", 5000),
		},
		Browser: BrowserConfig{
			ControlURL:  getEnvWithDefault("STREAMCHAPTERS_CONTROL_URL", ""),
			ProfileDir:  getEnvWithDefault("STREAMCHAPTERS_PROFILE", ""),
			Headless:    getEnvBoolWithDefault("STREAMCHAPTERS_HEADLESS", false),
			TargetHosts: getEnvListWithDefault("STREAMCHAPTERS_TARGET_HOSTS", DefaultTargetHosts),
		},
		Timing: TimingConfig{
			InterJobDelay: getEnvMillisWithDefault("STREAMCHAPTERS_INTER_JOB_DELAY_MS", 500*time.Millisecond),
			FocusSettle:   getEnvMillisWithDefault("STREAMCHAPTERS_FOCUS_SETTLE_MS", 50*time.Millisecond),
			WriteSettle:   getEnvMillisWithDefault("STREAMCHAPTERS_WRITE_SETTLE_MS", 300*time.Millisecond),
		},
		Logging: &logging.Config{
			Level:  getEnvWithDefault("LOG_LEVEL", "info"),
			Format: getEnvWithDefault("LOG_FORMAT", "text"),
			Output: getEnvWithDefault("LOG_OUTPUT", "stderr"),
		},
		SnapshotDir:     getEnvWithDefault("STREAMCHAPTERS_SNAPSHOT_DIR", ""),
		DefaultProvider: getEnvWithDefault("STREAMCHAPTERS_DEFAULT_PROVIDER", "claude"),
	}
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvMillisWithDefault reads a non-negative millisecond count
func getEnvMillisWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n >= 0 {
			return time.Duration(n) * time.Millisecond
		}
	}
	return defaultValue
}

func getEnvListWithDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return append([]string(nil), defaultValue...)
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), defaultValue...)
	}
	return out
}
