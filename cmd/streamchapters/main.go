package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/v0xg/streamchapters/internal/config"
	"github.com/v0xg/streamchapters/internal/executor"
	"github.com/v0xg/streamchapters/internal/logging"
	"github.com/v0xg/streamchapters/internal/store"
)

var (
	verbose       bool
	dbPath        string
	controlURL    string
	profile       string
	headless      bool
	selectorsPath string
)

func main() {
	// Load .env file if present (silently ignore if not found)
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "streamchapters",
		Short: "Add chapter markers to Microsoft Stream videos",
		Long: `streamchapters drives the chapter editor of a Microsoft Stream video page
in Chrome/Chromium and adds one chapter per entry of a JSON list:

  [{"time": "00:00", "title": "Intro"}, {"time": "05:30", "title": "Topic"}]

Example:
  streamchapters run chapters.json --control-url http://127.0.0.1:9222`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed progress")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "State database path (default: DB_PATH or ./streamchapters.db)")

	rootCmd.AddCommand(
		newRunCmd(),
		newServeCmd(),
		newValidateCmd(),
		newClearCmd(),
		newStatusCmd(),
		newSampleCmd(),
		newDraftCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addBrowserFlags registers the flags shared by commands that drive a browser
func addBrowserFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&controlURL, "control-url", "", "DevTools URL of a running browser (default: launch one)")
	cmd.Flags().StringVar(&profile, "profile", "", "Chrome/Chromium profile directory for authenticated sessions (close browser first)")
	cmd.Flags().BoolVar(&headless, "headless", false, "Launch the browser headless")
	cmd.Flags().StringVar(&selectorsPath, "selectors", "", "JSON file overriding the built-in element selectors")
}

// loadConfig reads the environment and applies the shared flags
func loadConfig(cmd *cobra.Command) (*config.AppConfig, *logging.Logger) {
	cfg := config.LoadAppConfigFromEnv()
	if dbPath != "" {
		cfg.Store.Path = dbPath
	}
	if f := cmd.Flags().Lookup("control-url"); f != nil && f.Changed {
		cfg.Browser.ControlURL = controlURL
	}
	if f := cmd.Flags().Lookup("profile"); f != nil && f.Changed {
		cfg.Browser.ProfileDir = profile
	}
	if f := cmd.Flags().Lookup("headless"); f != nil && f.Changed {
		cfg.Browser.Headless = headless
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	logger := logging.NewLogger(cfg.Logging)
	logging.SetDefault(logger)
	return cfg, logger
}

func openRunStore(cfg *config.AppConfig, logger *logging.Logger) (*store.RunStore, func(), error) {
	db, err := store.OpenSQLite(store.Config{
		Path:          cfg.Store.Path,
		BusyTimeoutMs: cfg.Store.BusyTimeoutMs,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open state database: %w", err)
	}
	closeFn := func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close state database", "error", err)
		}
	}
	return store.NewRunStore(db), closeFn, nil
}

func newExecutor(cfg *config.AppConfig, logger *logging.Logger) (*executor.Executor, error) {
	sel := executor.DefaultSelectors()
	if selectorsPath != "" {
		data, err := os.ReadFile(selectorsPath)
		if err != nil {
			return nil, fmt.Errorf("read selectors: %w", err)
		}
		// fields missing from the file keep their defaults
		if err := json.Unmarshal(data, &sel); err != nil {
			return nil, fmt.Errorf("parse selectors %s: %w", selectorsPath, err)
		}
		logVerbose("  Selectors: %s", selectorsPath)
	}
	return executor.New(executor.Options{
		Locators: executor.NewLocators(sel),
		Timing: &executor.Timing{
			FocusSettle: cfg.Timing.FocusSettle,
			WriteSettle: cfg.Timing.WriteSettle,
		},
		Logger: logger,
	}), nil
}

func logVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Printf(format+"\n", args...)
	}
}
