package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/v0xg/streamchapters/internal/browser"
	"github.com/v0xg/streamchapters/internal/chapter"
	"github.com/v0xg/streamchapters/internal/config"
	"github.com/v0xg/streamchapters/internal/console"
	"github.com/v0xg/streamchapters/internal/controller"
	"github.com/v0xg/streamchapters/internal/events"
	"github.com/v0xg/streamchapters/internal/logging"
	"github.com/v0xg/streamchapters/internal/snapshot"
)

var (
	preset       string
	videoSeekMs  int
	clickMs      int
	saveMs       int
	targetMatch  string
	openURL      string
	snapshotsDir string
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <jobs.json>",
		Short: "Add every chapter of a job list to the open Stream video",
		Long: `run finds the Stream video page in the browser (or opens --open), then adds
the chapters one at a time: seek, click "New chapter", type the title, save.

Press Ctrl-C once to stop after the current chapter, twice to abort.`,
		Args: cobra.ExactArgs(1),
		RunE: runChapters,
	}

	cmd.Flags().StringVar(&preset, "preset", chapter.DefaultPreset, "Speed preset: fast, normal, slow")
	cmd.Flags().IntVar(&videoSeekMs, "video-seek", 0, "Wait after seeking the video (ms, overrides preset)")
	cmd.Flags().IntVar(&clickMs, "button-click", 0, "Wait after clicking New chapter (ms, overrides preset)")
	cmd.Flags().IntVar(&saveMs, "save", 0, "Wait after saving (ms, overrides preset)")
	cmd.Flags().StringVar(&targetMatch, "url", "", "Substring of the target page URL (default: any Stream page)")
	cmd.Flags().StringVar(&openURL, "open", "", "Open this URL in a new tab instead of using an open one")
	cmd.Flags().StringVar(&snapshotsDir, "snapshots", "", "Save a screenshot here for every failed chapter")
	addBrowserFlags(cmd)
	return cmd
}

// settingsFromFlags starts from the preset and applies explicit delays
func settingsFromFlags(cmd *cobra.Command) (chapter.Settings, error) {
	settings, err := chapter.Preset(preset)
	if err != nil {
		return chapter.Settings{}, err
	}
	if cmd.Flags().Changed("video-seek") {
		settings.VideoSeekDelayMs = videoSeekMs
	}
	if cmd.Flags().Changed("button-click") {
		settings.ButtonClickDelayMs = clickMs
	}
	if cmd.Flags().Changed("save") {
		settings.SaveDelayMs = saveMs
	}
	return settings, settings.Validate()
}

func runChapters(cmd *cobra.Command, args []string) error {
	cfg, logger := loadConfig(cmd)

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read job list: %w", err)
	}
	jobs, err := chapter.ParseJobs(data)
	if err != nil {
		fmt.Printf("✗ %v\n", err)
		return err
	}
	settings, err := settingsFromFlags(cmd)
	if err != nil {
		return err
	}

	logVerbose("Starting streamchapters")
	logVerbose("  Jobs: %d from %s", len(jobs), args[0])
	logVerbose("  Delays: seek %dms, click %dms, save %dms", settings.VideoSeekDelayMs, settings.ButtonClickDelayMs, settings.SaveDelayMs)

	runs, closeStore, err := openRunStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cleared, err := runs.RecoverStale(ctx); err != nil {
		logger.Warn("Failed to check for a stale run", "error", err)
	} else if cleared {
		logVerbose("  Cleared a run left over from a previous process")
	}
	if err := runs.SaveInput(ctx, string(data), settings); err != nil {
		logger.Warn("Failed to remember run input", "error", err)
	}

	// Step 1: Reach the browser
	fmt.Printf("→ Connecting to browser... ")
	b, err := connectBrowser(ctx, cfg, logger)
	if err != nil {
		fmt.Println("failed")
		return err
	}
	defer b.Close()
	fmt.Println("done")

	// Step 2: Find the video page
	var target *browser.Target
	if openURL != "" {
		fmt.Printf("→ Opening %s... ", openURL)
		target, err = b.Open(ctx, openURL)
	} else {
		fmt.Printf("→ Finding Stream page... ")
		target, err = b.FindTarget(targetMatch)
	}
	if err != nil {
		fmt.Println("failed")
		return err
	}
	fmt.Printf("done (%s)\n", target.URL())

	// Step 3: Run
	bus := events.NewBus(logger)
	sub := bus.Subscribe(events.DefaultBuffer)
	defer sub.Close()

	ctrl := controller.New(bus, runs, controller.Options{
		InterJobDelay: cfg.Timing.InterJobDelay,
		Logger:        logger,
	})

	stopSignals := handleInterrupts(ctrl, cancel)
	defer stopSignals()

	fmt.Printf("→ Adding %d chapters...\n", len(jobs))
	if err := ctrl.Start(ctx, jobs, settings, target); err != nil {
		return err
	}

	summary := console.New(os.Stdout).Follow(context.Background(), sub)
	ctrl.Wait()

	if summary.Dropped > 0 {
		logger.Warn("Terminal missed events", "dropped", summary.Dropped)
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d chapters failed", summary.Failed, len(jobs))
	}
	if summary.Stopped {
		fmt.Println("⚠ Stopped before the end of the list")
		return nil
	}
	fmt.Printf("✓ %d chapters added\n", summary.Added)
	return nil
}

func connectBrowser(ctx context.Context, cfg *config.AppConfig, logger *logging.Logger) (*browser.Browser, error) {
	exec, err := newExecutor(cfg, logger)
	if err != nil {
		return nil, err
	}

	dir := cfg.SnapshotDir
	if snapshotsDir != "" {
		dir = snapshotsDir
	}
	var snaps *snapshot.Writer
	if dir != "" {
		snaps = snapshot.New(dir, 0)
		logVerbose("  Snapshots: %s", dir)
	}

	return browser.Connect(ctx, browser.Options{
		ControlURL: cfg.Browser.ControlURL,
		ProfileDir: cfg.Browser.ProfileDir,
		Headless:   cfg.Browser.Headless,
		Hosts:      cfg.Browser.TargetHosts,
		Executor:   exec,
		Snapshots:  snaps,
		Logger:     logger,
	})
}

// handleInterrupts stops the run on the first signal and cancels it on the
// second
func handleInterrupts(ctrl *controller.Controller, cancel context.CancelFunc) func() {
	sig := make(chan os.Signal, 2)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		select {
		case <-sig:
			fmt.Println("\n⚠ Stopping after the current chapter (Ctrl-C again to abort)")
			ctrl.Stop()
		case <-done:
			return
		}
		select {
		case <-sig:
			fmt.Println("\n⚠ Aborting")
			cancel()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sig)
		close(done)
	}
}
