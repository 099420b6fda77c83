package console

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v0xg/streamchapters/internal/chapter"
	"github.com/v0xg/streamchapters/internal/events"
	"github.com/v0xg/streamchapters/internal/logging"
	"github.com/v0xg/streamchapters/internal/store"
)

func TestFollow_RendersUntilComplete(t *testing.T) {
	// Arrange
	bus := events.NewBus(logging.Discard())
	sub := bus.Subscribe(64)
	defer sub.Close()

	bus.Publish(events.NewProgress("r1", chapter.Progress{Current: 1, Total: 2, CurrentTitle: "Intro"}))
	bus.Publish(events.NewLog("r1", events.LevelInfo, "[1/2] processing: Intro"))
	bus.Publish(events.NewLog("r1", events.LevelSuccess, "added: Intro"))
	bus.Publish(events.NewProgress("r1", chapter.Progress{Current: 2, Total: 2, CurrentTitle: "Topic"}))
	bus.Publish(events.NewLog("r1", events.LevelError, "error: save button not found"))
	bus.Publish(events.NewComplete("r1"))
	bus.Publish(events.NewLog("r1", events.LevelInfo, "after complete"))

	var out bytes.Buffer

	// Act
	sum := New(&out).Follow(context.Background(), sub)

	// Assert
	assert.Equal(t, Summary{Added: 1, Failed: 1}, sum)
	text := out.String()
	assert.Contains(t, text, "[1/2] Intro")
	assert.Contains(t, text, "✓ added: Intro")
	assert.Contains(t, text, "✗ error: save button not found")
	assert.Contains(t, text, "Done: 1 added, 1 failed")
	assert.NotContains(t, text, "after complete")
}

func TestFollow_MarksStoppedRuns(t *testing.T) {
	bus := events.NewBus(logging.Discard())
	sub := bus.Subscribe(8)
	defer sub.Close()
	bus.Publish(events.NewLog("r1", events.LevelWarning, "stopped by user"))
	bus.Publish(events.NewComplete("r1"))

	var out bytes.Buffer
	sum := New(&out).Follow(context.Background(), sub)

	assert.True(t, sum.Stopped)
	assert.Contains(t, out.String(), "! stopped by user")
}

func TestFollow_ReturnsOnContextDone(t *testing.T) {
	bus := events.NewBus(logging.Discard())
	sub := bus.Subscribe(8)
	defer sub.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	done := make(chan Summary, 1)
	go func() { done <- New(&bytes.Buffer{}).Follow(ctx, sub) }()

	select {
	case s := <-done:
		assert.Zero(t, s.Added)
	case <-time.After(2 * time.Second):
		t.Fatal("Follow did not return")
	}
}

func TestRender_ErrorEvent(t *testing.T) {
	var out bytes.Buffer
	New(&out).Render(events.NewError("", "a run is already in progress"))
	assert.Equal(t, "✗ a run is already in progress\n", out.String())
}

func TestSnapshot(t *testing.T) {
	var out bytes.Buffer
	s := store.Snapshot{
		IsRunning: true,
		RunID:     "abc",
		Progress:  chapter.Progress{Current: 3, Total: 5, CurrentTitle: "Q&A"},
		JobData:   "[\n{}\n]",
		Settings:  &chapter.Settings{VideoSeekDelayMs: 2500, ButtonClickDelayMs: 1500, SaveDelayMs: 2000},
	}

	New(&out).Snapshot(s)

	text := out.String()
	require.Contains(t, text, "Status: running")
	assert.Contains(t, text, "run:      abc")
	assert.Contains(t, text, "progress: 3/5 (Q&A)")
	assert.Contains(t, text, "seek 2500ms, click 1500ms, save 2000ms")
	assert.Contains(t, text, "3 lines saved")
}
