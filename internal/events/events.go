package events

import (
	"time"

	"github.com/v0xg/streamchapters/internal/chapter"
)

// Type tags an Event
type Type string

const (
	TypeProgress Type = "progress"
	TypeLog      Type = "log"
	TypeComplete Type = "complete"
	TypeError    Type = "error"
)

// Level is the severity of a log event
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// LogEntry is the payload of a log event
type LogEntry struct {
	Text  string `json:"text"`
	Level Level  `json:"level"`
}

// Event is one controller notification. Exactly one payload is set for
// progress and log events; error events carry Message.
type Event struct {
	Type     Type              `json:"type"`
	RunID    string            `json:"runId,omitempty"`
	Progress *chapter.Progress `json:"progress,omitempty"`
	Log      *LogEntry         `json:"log,omitempty"`
	Message  string            `json:"message,omitempty"`
	Time     time.Time         `json:"time"`
}

func NewProgress(runID string, p chapter.Progress) Event {
	return Event{Type: TypeProgress, RunID: runID, Progress: &p, Time: time.Now()}
}

func NewLog(runID string, level Level, text string) Event {
	return Event{Type: TypeLog, RunID: runID, Log: &LogEntry{Text: text, Level: level}, Time: time.Now()}
}

func NewComplete(runID string) Event {
	return Event{Type: TypeComplete, RunID: runID, Time: time.Now()}
}

func NewError(runID, message string) Event {
	return Event{Type: TypeError, RunID: runID, Message: message, Time: time.Now()}
}
