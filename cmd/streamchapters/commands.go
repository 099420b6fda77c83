package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/v0xg/streamchapters/internal/ai"
	"github.com/v0xg/streamchapters/internal/chapter"
	"github.com/v0xg/streamchapters/internal/console"
	"github.com/v0xg/streamchapters/internal/store"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <jobs.json>",
		Short: "Check a job list without touching the browser",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read job list: %w", err)
			}
			jobs, err := chapter.ParseJobs(data)
			if err != nil {
				fmt.Printf("✗ %v\n", err)
				return err
			}
			fmt.Printf("✓ %d chapters validated\n", len(jobs))
			for i, job := range jobs {
				logVerbose("  [%d] %s → %s", i+1, job.Time, job.Title)
			}
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the persisted state of the last run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := loadConfig(cmd)
			runs, closeStore, err := openRunStore(cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			snap, err := runs.Snapshot(cmd.Context())
			if err != nil {
				return fmt.Errorf("read state: %w", err)
			}
			console.New(os.Stdout).Snapshot(snap)
			return nil
		},
	}
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget the remembered job list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := loadConfig(cmd)
			runs, closeStore, err := openRunStore(cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()
			return clearJobData(cmd.Context(), runs, os.Stdout)
		},
	}
}

func clearJobData(ctx context.Context, runs *store.RunStore, w io.Writer) error {
	if err := runs.ClearJobData(ctx); err != nil {
		return fmt.Errorf("clear job data: %w", err)
	}
	fmt.Fprintln(w, "✓ Job data cleared")
	return nil
}

func newSampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sample",
		Short: "Print an example job list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(os.Stdout)
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(chapter.SampleJobs())
		},
	}
}

var (
	provider    string
	model       string
	language    string
	maxChapters int
	output      string
)

func newDraftCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft <transcript>",
		Short: "Draft a job list from a video transcript using AI",
		Long: `draft sends a transcript (WebVTT or text with timestamps) to Claude or OpenAI
and writes the proposed chapters as a job list ready for "run".

Review the result before running it.`,
		Args: cobra.ExactArgs(1),
		RunE: draft,
	}
	cmd.Flags().StringVar(&provider, "provider", "", "AI provider: claude, openai (default: from env or claude)")
	cmd.Flags().StringVar(&model, "model", "", "Specific model override")
	cmd.Flags().StringVar(&language, "language", "", "Language of the chapter titles")
	cmd.Flags().IntVar(&maxChapters, "max", 0, "Maximum number of chapters")
	cmd.Flags().StringVarP(&output, "output", "o", "chapters.json", `Output filename ("-" for stdout)`)
	return cmd
}

func draft(cmd *cobra.Command, args []string) error {
	cfg, _ := loadConfig(cmd)

	transcript, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}

	selectedProvider := provider
	if selectedProvider == "" {
		selectedProvider = cfg.DefaultProvider
	}

	// progress goes to stderr so "-o -" output stays clean
	fmt.Fprintf(os.Stderr, "→ Drafting chapters via %s... ", selectedProvider)
	drafter, err := ai.NewDrafter(selectedProvider, model)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed")
		return fmt.Errorf("AI provider init failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	jobs, err := drafter.DraftChapters(ctx, string(transcript), ai.DraftOptions{
		Language:    language,
		MaxChapters: maxChapters,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed")
		return err
	}
	fmt.Fprintf(os.Stderr, "done (%d chapters)\n", len(jobs))

	data, err := encodeDraft(jobs)
	if err != nil {
		return err
	}

	if output == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	fmt.Fprintf(os.Stderr, "✓ Saved to %s\n", output)
	return nil
}

// encodeDraft re-checks what the provider returned before it is written
func encodeDraft(jobs []chapter.Job) ([]byte, error) {
	if err := chapter.ValidateJobs(jobs); err != nil {
		return nil, fmt.Errorf("drafted chapters are not usable: %w", err)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jobs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
