package browser

import (
	"context"
	"time"

	"github.com/go-rod/rod"

	"github.com/v0xg/streamchapters/internal/chapter"
	"github.com/v0xg/streamchapters/internal/executor"
	"github.com/v0xg/streamchapters/internal/logging"
	"github.com/v0xg/streamchapters/internal/snapshot"
)

// Target is the Stream page jobs are executed in
type Target struct {
	page   *rod.Page
	url    string
	exec   *executor.Executor
	snaps  *snapshot.Writer
	logger *logging.Logger
}

func (b *Browser) target(page *rod.Page, url string) *Target {
	return &Target{
		page:   page,
		url:    url,
		exec:   b.exec,
		snaps:  b.snaps,
		logger: &logging.Logger{Logger: b.logger.With("target", url)},
	}
}

// URL is the page address at the time the target was found
func (t *Target) URL() string {
	return t.url
}

// Invoke runs one job inside the page. The error is non-nil only when the
// page itself can no longer be reached; job failures are in the Outcome.
func (t *Target) Invoke(ctx context.Context, job chapter.Job, settings chapter.Settings) (chapter.Outcome, error) {
	if _, err := t.page.Info(); err != nil {
		return chapter.Outcome{}, chapter.Wrap(chapter.KindBoundaryUnavailable, err, "target page is gone")
	}

	page := t.page.Context(ctx)
	out := t.exec.Execute(ctx, NewDocument(page), job, settings)
	if !out.Success {
		t.snapshot(page, job, out)
	}
	return out, nil
}

func (t *Target) snapshot(page *rod.Page, job chapter.Job, out chapter.Outcome) {
	if t.snaps == nil {
		return
	}
	switch out.Kind {
	case chapter.KindInvalidTime, chapter.KindCancelled:
		// nothing on the page to look at
		return
	}

	start := time.Now()
	data, err := page.Screenshot(false, nil)
	if err != nil {
		t.logger.Warn("Failed to capture snapshot", "title", job.Title, "error", err)
		return
	}
	path, err := t.snaps.Save(data, job.Title)
	if err != nil {
		t.logger.Warn("Failed to save snapshot", "title", job.Title, "error", err)
		return
	}
	t.logger.Info("Saved failure snapshot", "title", job.Title, "kind", out.Kind, "path", path)
	t.logger.Performance("snapshot", time.Since(start))
}
