package console

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/v0xg/streamchapters/internal/events"
	"github.com/v0xg/streamchapters/internal/store"
)

// Renderer prints run events as terminal lines
type Renderer struct {
	w io.Writer

	title   lipgloss.Style
	muted   lipgloss.Style
	ok      lipgloss.Style
	warn    lipgloss.Style
	failure lipgloss.Style
}

// New creates a renderer. Colors are only emitted when w is a terminal.
func New(w io.Writer) *Renderer {
	lr := lipgloss.NewRenderer(w)
	return &Renderer{
		w:       w,
		title:   lr.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		muted:   lr.NewStyle().Foreground(lipgloss.Color("245")),
		ok:      lr.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		warn:    lr.NewStyle().Foreground(lipgloss.Color("214")),
		failure: lr.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
	}
}

// Summary counts what a followed run did
type Summary struct {
	Added   int
	Failed  int
	Stopped bool
	Dropped int64
}

// Follow renders events from sub until the run completes, the subscription
// closes or ctx is done.
func (r *Renderer) Follow(ctx context.Context, sub *events.Subscription) (s Summary) {
	defer func() { s.Dropped = sub.Dropped() }()
	for {
		select {
		case <-ctx.Done():
			return s
		case e, ok := <-sub.C:
			if !ok {
				return s
			}
			r.Render(e)
			if e.Type == events.TypeLog {
				switch e.Log.Level {
				case events.LevelSuccess:
					s.Added++
				case events.LevelError:
					s.Failed++
				case events.LevelWarning:
					s.Stopped = true
				}
			}
			if e.Type == events.TypeComplete {
				r.printf("%s\n", r.title.Render(fmt.Sprintf("Done: %d added, %d failed", s.Added, s.Failed)))
				return s
			}
		}
	}
}

// Render prints a single event
func (r *Renderer) Render(e events.Event) {
	switch e.Type {
	case events.TypeProgress:
		if e.Progress != nil {
			r.printf("%s %s\n", r.muted.Render("["+e.Progress.String()+"]"), e.Progress.CurrentTitle)
		}
	case events.TypeLog:
		if e.Log != nil {
			r.printf("  %s\n", r.logLine(e.Log))
		}
	case events.TypeError:
		r.printf("%s %s\n", r.failure.Render("✗"), e.Message)
	}
}

func (r *Renderer) logLine(l *events.LogEntry) string {
	switch l.Level {
	case events.LevelSuccess:
		return r.ok.Render("✓ " + l.Text)
	case events.LevelWarning:
		return r.warn.Render("! " + l.Text)
	case events.LevelError:
		return r.failure.Render("✗ " + l.Text)
	default:
		return r.muted.Render("· " + l.Text)
	}
}

// Snapshot prints persisted run state
func (r *Renderer) Snapshot(s store.Snapshot) {
	status := r.muted.Render("idle")
	if s.IsRunning {
		status = r.ok.Render("running")
	}
	r.printf("%s %s\n", r.title.Render("Status:"), status)
	if s.RunID != "" {
		r.printf("  run:      %s\n", s.RunID)
	}
	r.printf("  progress: %s", s.Progress.String())
	if s.Progress.CurrentTitle != "" {
		r.printf(" (%s)", s.Progress.CurrentTitle)
	}
	r.printf("\n")
	if s.Settings != nil {
		r.printf("  delays:   seek %dms, click %dms, save %dms\n",
			s.Settings.VideoSeekDelayMs, s.Settings.ButtonClickDelayMs, s.Settings.SaveDelayMs)
	}
	if s.JobData != "" {
		lines := strings.Count(strings.TrimSpace(s.JobData), "\n") + 1
		r.printf("  job data: %d bytes, %d lines saved\n", len(s.JobData), lines)
	}
}

func (r *Renderer) printf(format string, args ...any) {
	fmt.Fprintf(r.w, format, args...)
}
