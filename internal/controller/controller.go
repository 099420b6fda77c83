package controller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/v0xg/streamchapters/internal/chapter"
	"github.com/v0xg/streamchapters/internal/events"
	"github.com/v0xg/streamchapters/internal/logging"
)

// DefaultInterJobDelay is the pause after every job
const DefaultInterJobDelay = 500 * time.Millisecond

// Invoker runs one job inside the execution target. A returned error means
// the call itself failed (the target is gone); a job that ran and failed is
// reported through the Outcome.
type Invoker interface {
	Invoke(ctx context.Context, job chapter.Job, settings chapter.Settings) (chapter.Outcome, error)
}

// Publisher delivers events to whoever is listening, if anyone
type Publisher interface {
	Publish(events.Event)
}

// StateStore mirrors run state for observers that attach later
type StateStore interface {
	SaveRunning(ctx context.Context, running bool) error
	SaveProgress(ctx context.Context, p chapter.Progress) error
	SaveRunID(ctx context.Context, runID string) error
}

// RunState is the controller's view of the current or last run
type RunState struct {
	RunID      string           `json:"runId,omitempty"`
	IsRunning  bool             `json:"isRunning"`
	ShouldStop bool             `json:"shouldStop"`
	Progress   chapter.Progress `json:"progress"`
}

// Options configures a Controller
type Options struct {
	InterJobDelay time.Duration
	Logger        *logging.Logger
}

// Controller sequences jobs against a target one at a time
type Controller struct {
	pub   Publisher
	store StateStore
	delay time.Duration

	logger *logging.Logger

	mu     sync.Mutex
	state  RunState
	active bool
	done   chan struct{}
}

// New creates a controller. A negative InterJobDelay means none.
func New(pub Publisher, store StateStore, opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.InterJobDelay < 0 {
		opts.InterJobDelay = 0
	}
	done := make(chan struct{})
	close(done)
	return &Controller{
		pub:    pub,
		store:  store,
		delay:  opts.InterJobDelay,
		logger: opts.Logger.WithComponent("controller"),
		done:   done,
	}
}

// Start begins a run in the background. It fails when jobs is empty, the
// target is missing, settings are invalid, or the previous run's loop has
// not exited yet.
func (c *Controller) Start(ctx context.Context, jobs []chapter.Job, settings chapter.Settings, target Invoker) error {
	if len(jobs) == 0 {
		return chapter.Errorf(chapter.KindNoJobs, "no jobs to run")
	}
	if target == nil {
		return chapter.Errorf(chapter.KindNoTarget, "no execution target")
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return chapter.Errorf(chapter.KindAlreadyRunning, "a run is already in progress")
	}
	runID := uuid.NewString()
	progress := chapter.Progress{Current: 0, Total: len(jobs)}
	c.state = RunState{RunID: runID, IsRunning: true, Progress: progress}
	c.active = true
	done := make(chan struct{})
	c.done = done
	c.mu.Unlock()

	c.persist(ctx, "run id", func(ctx context.Context) error { return c.store.SaveRunID(ctx, runID) })
	c.persist(ctx, "running flag", func(ctx context.Context) error { return c.store.SaveRunning(ctx, true) })
	c.persist(ctx, "progress", func(ctx context.Context) error { return c.store.SaveProgress(ctx, progress) })

	c.logger.Info("Run started", "run_id", runID, "jobs", len(jobs))

	// The loop owns a private copy so callers can reuse their slice
	queue := append([]chapter.Job(nil), jobs...)
	go c.run(ctx, runID, queue, settings, target, done)
	return nil
}

// Stop asks the active run to end before its next job. The job in flight
// is not interrupted.
func (c *Controller) Stop() {
	c.mu.Lock()
	c.state.ShouldStop = true
	c.state.IsRunning = false
	runID := c.state.RunID
	c.mu.Unlock()

	c.logger.Info("Stop requested", "run_id", runID)
	c.persist(context.Background(), "running flag", func(ctx context.Context) error { return c.store.SaveRunning(ctx, false) })
}

// State returns a copy of the current run state
func (c *Controller) State() RunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Done is closed when the current loop exits
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Wait blocks until the current loop exits
func (c *Controller) Wait() {
	<-c.Done()
}

func (c *Controller) run(ctx context.Context, runID string, jobs []chapter.Job, settings chapter.Settings, target Invoker, done chan struct{}) {
	logger := c.logger.WithRun(runID)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Run loop panicked", "panic", r)
			c.publish(events.NewError(runID, fmt.Sprintf("internal error: %v", r)))
		}
		c.finish(runID)
		logger.Performance("run", time.Since(start), "jobs", len(jobs))

		c.mu.Lock()
		c.active = false
		c.mu.Unlock()
		close(done)
	}()

	total := len(jobs)
	for i, job := range jobs {
		if c.stopRequested() {
			c.logf(runID, events.LevelWarning, "stopped by user")
			break
		}
		if ctx.Err() != nil {
			c.logf(runID, events.LevelWarning, "run cancelled")
			break
		}

		progress := chapter.Progress{Current: i + 1, Total: total, CurrentTitle: job.Title}
		c.setProgress(ctx, progress)
		c.publish(events.NewProgress(runID, progress))
		c.logf(runID, events.LevelInfo, "[%d/%d] processing: %s", i+1, total, job.Title)

		outcome, err := c.invoke(ctx, target, job, settings)
		switch {
		case err != nil:
			logger.Warn("Target call failed", "title", job.Title, "kind", chapter.KindOf(err), "error", err)
			c.logf(runID, events.LevelError, "script error: %s", err.Error())
		case outcome.Success:
			c.logf(runID, events.LevelSuccess, "added: %s", job.Title)
		default:
			reason := outcome.Error
			if reason == "" {
				reason = "unknown"
			}
			logger.Info("Job failed", "title", job.Title, "kind", outcome.Kind, "error", reason)
			c.logf(runID, events.LevelError, "error: %s", reason)
		}

		sleep(ctx, c.delay)
	}
}

// invoke calls the target and turns a panic or an unclassified error into a
// boundary failure
func (c *Controller) invoke(ctx context.Context, target Invoker, job chapter.Job, settings chapter.Settings) (out chapter.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = chapter.Errorf(chapter.KindBoundaryUnavailable, "%v", r)
		}
	}()
	out, err = target.Invoke(ctx, job, settings)
	if err != nil && chapter.KindOf(err) == chapter.KindUnknown {
		err = chapter.Wrap(chapter.KindBoundaryUnavailable, err, "")
	}
	return out, err
}

func (c *Controller) finish(runID string) {
	c.mu.Lock()
	c.state.IsRunning = false
	c.mu.Unlock()

	c.persist(context.Background(), "running flag", func(ctx context.Context) error { return c.store.SaveRunning(ctx, false) })
	c.publish(events.NewComplete(runID))
	c.logger.Info("Run complete", "run_id", runID)
}

func (c *Controller) stopRequested() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.ShouldStop
}

func (c *Controller) setProgress(ctx context.Context, p chapter.Progress) {
	c.mu.Lock()
	c.state.Progress = p
	c.mu.Unlock()
	c.persist(ctx, "progress", func(ctx context.Context) error { return c.store.SaveProgress(ctx, p) })
}

func (c *Controller) logf(runID string, level events.Level, format string, args ...any) {
	c.publish(events.NewLog(runID, level, fmt.Sprintf(format, args...)))
}

func (c *Controller) publish(e events.Event) {
	if c.pub == nil {
		return
	}
	c.pub.Publish(e)
}

// persist writes through to the store. Failures are logged, never fatal.
func (c *Controller) persist(ctx context.Context, what string, write func(context.Context) error) {
	if c.store == nil {
		return
	}
	if ctx.Err() != nil {
		ctx = context.Background()
	}
	if err := write(ctx); err != nil {
		c.logger.Error("Failed to persist run state", "what", what, "error", err)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
