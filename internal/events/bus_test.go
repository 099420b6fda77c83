package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v0xg/streamchapters/internal/chapter"
	"github.com/v0xg/streamchapters/internal/logging"
)

func TestBus_DeliversInOrder(t *testing.T) {
	bus := NewBus(logging.Discard())
	sub := bus.Subscribe(8)
	defer sub.Close()

	bus.Publish(NewProgress("r1", chapter.Progress{Current: 1, Total: 2, CurrentTitle: "Intro"}))
	bus.Publish(NewLog("r1", LevelSuccess, "added: Intro"))
	bus.Publish(NewComplete("r1"))

	first := <-sub.C
	require.Equal(t, TypeProgress, first.Type)
	assert.Equal(t, 1, first.Progress.Current)
	assert.Equal(t, "Intro", first.Progress.CurrentTitle)

	second := <-sub.C
	require.Equal(t, TypeLog, second.Type)
	assert.Equal(t, LevelSuccess, second.Log.Level)

	third := <-sub.C
	assert.Equal(t, TypeComplete, third.Type)
	assert.Equal(t, "r1", third.RunID)
}

func TestBus_PublishWithoutSubscribers(t *testing.T) {
	bus := NewBus(logging.Discard())
	assert.NotPanics(t, func() {
		bus.Publish(NewError("", "nobody listens"))
	})
	assert.Equal(t, 0, bus.Subscribers())
}

func TestBus_FullSubscriberDropsInsteadOfBlocking(t *testing.T) {
	bus := NewBus(logging.Discard())
	sub := bus.Subscribe(1)
	defer sub.Close()

	bus.Publish(NewLog("", LevelInfo, "one"))
	bus.Publish(NewLog("", LevelInfo, "two"))
	bus.Publish(NewLog("", LevelInfo, "three"))

	got := <-sub.C
	assert.Equal(t, "one", got.Log.Text)
	assert.Equal(t, int64(2), sub.Dropped())
}

func TestSubscription_CloseIsIdempotent(t *testing.T) {
	bus := NewBus(logging.Discard())
	sub := bus.Subscribe(0)
	assert.Equal(t, 1, bus.Subscribers())

	sub.Close()
	sub.Close()

	_, open := <-sub.C
	assert.False(t, open)
	assert.Equal(t, 0, bus.Subscribers())
}
