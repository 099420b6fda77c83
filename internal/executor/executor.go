package executor

import (
	"context"
	"time"

	"github.com/v0xg/streamchapters/internal/chapter"
	"github.com/v0xg/streamchapters/internal/logging"
)

// Timing holds the fixed waits inside the title write sequence
type Timing struct {
	FocusSettle time.Duration // between focus/click and the value write
	WriteSettle time.Duration // after the value write, before looking for save
}

func DefaultTiming() Timing {
	return Timing{
		FocusSettle: 50 * time.Millisecond,
		WriteSettle: 300 * time.Millisecond,
	}
}

// Options configures an Executor
type Options struct {
	Locators Locators
	Timing   *Timing // nil means DefaultTiming
	Logger   *logging.Logger
}

// Executor adds a single chapter through the Stream chapter editor
type Executor struct {
	locators Locators
	timing   Timing
	logger   *logging.Logger
}

// New creates an executor. Zero Locators and a nil Timing fall back to the defaults.
func New(opts Options) *Executor {
	if len(opts.Locators.Video) == 0 && len(opts.Locators.AddChapter) == 0 &&
		len(opts.Locators.TitleBox) == 0 && len(opts.Locators.Save) == 0 {
		opts.Locators = NewLocators(DefaultSelectors())
	}
	timing := DefaultTiming()
	if opts.Timing != nil {
		timing = *opts.Timing
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	return &Executor{
		locators: opts.Locators,
		timing:   timing,
		logger:   opts.Logger.WithComponent("executor"),
	}
}

// Execute seeks, opens a new chapter, writes its title and saves it.
// It always returns an Outcome; page errors and panics become failures.
func (e *Executor) Execute(ctx context.Context, doc Document, job chapter.Job, settings chapter.Settings) (out chapter.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Page script panicked", "title", job.Title, "panic", r)
			out = chapter.Failed(chapter.Errorf(chapter.KindPageScript, "%v", r))
		}
	}()

	start := time.Now()
	if err := e.addChapter(ctx, doc, job, settings); err != nil {
		e.logger.Debug("Chapter failed", "title", job.Title, "kind", chapter.KindOf(err), "error", err)
		return chapter.Failed(err)
	}
	e.logger.Performance("add_chapter", time.Since(start), "title", job.Title)
	return chapter.Succeeded()
}

func (e *Executor) addChapter(ctx context.Context, doc Document, job chapter.Job, settings chapter.Settings) error {
	if err := chapter.ValidateTime(job.Time); err != nil {
		return err
	}

	video, err := e.find(doc, nil, e.locators.Video, chapter.KindPlayerNotFound, "player not found")
	if err != nil {
		return err
	}
	if err := video.Seek(float64(chapter.TimeToSeconds(job.Time))); err != nil {
		return pageError(err)
	}
	if err := sleep(ctx, settings.VideoSeekDelay()); err != nil {
		return err
	}

	add, err := e.find(doc, nil, e.locators.AddChapter, chapter.KindAddButtonNotFound, "add-chapter button not found")
	if err != nil {
		return err
	}
	if err := add.Click(); err != nil {
		return pageError(err)
	}
	if err := sleep(ctx, settings.ButtonClickDelay()); err != nil {
		return err
	}

	titleBox, err := e.find(doc, nil, e.locators.TitleBox, chapter.KindTitleBoxNotFound, "title box not found")
	if err != nil {
		return err
	}
	if err := e.writeTitle(ctx, titleBox, job.Title); err != nil {
		return err
	}
	if err := sleep(ctx, e.timing.WriteSettle); err != nil {
		return err
	}

	save, err := e.find(doc, titleBox, e.locators.Save, chapter.KindSaveButtonNotFound, "save button not found")
	if err != nil {
		return err
	}
	if err := save.Click(); err != nil {
		return pageError(err)
	}
	return sleep(ctx, settings.SaveDelay())
}

// writeTitle goes through focus, click and the native setter so that the
// editor's framework sees the change
func (e *Executor) writeTitle(ctx context.Context, box Node, title string) error {
	if err := box.Focus(); err != nil {
		return pageError(err)
	}
	if err := sleep(ctx, e.timing.FocusSettle); err != nil {
		return err
	}
	if err := box.WriteValue(title); err != nil {
		return pageError(err)
	}
	return nil
}

func (e *Executor) find(doc Document, anchor Node, chain Chain, kind chapter.ErrorKind, notFound string) (Node, error) {
	n, strategy, err := chain.Find(doc, anchor)
	if err != nil {
		return nil, pageError(err)
	}
	if n == nil {
		return nil, chapter.Errorf(kind, "%s", notFound)
	}
	e.logger.Debug("Located element", "strategy", strategy)
	return n, nil
}

func pageError(err error) error {
	if chapter.KindOf(err) != chapter.KindUnknown {
		return err
	}
	return chapter.Wrap(chapter.KindPageScript, err, "")
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		if err := ctx.Err(); err != nil {
			return chapter.Wrap(chapter.KindCancelled, err, "cancelled")
		}
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return chapter.Wrap(chapter.KindCancelled, ctx.Err(), "cancelled")
	}
}
