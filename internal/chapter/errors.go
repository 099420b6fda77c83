package chapter

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure the tool can report
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInvalidInput
	KindInvalidTime
	KindPlayerNotFound
	KindAddButtonNotFound
	KindTitleBoxNotFound
	KindSaveButtonNotFound
	KindPageScript
	KindBoundaryUnavailable
	KindAlreadyRunning
	KindNoJobs
	KindNoTarget
	KindCancelled
)

var kindNames = map[ErrorKind]string{
	KindUnknown:             "unknown",
	KindInvalidInput:        "invalid_input",
	KindInvalidTime:         "invalid_time",
	KindPlayerNotFound:      "player_not_found",
	KindAddButtonNotFound:   "add_button_not_found",
	KindTitleBoxNotFound:    "title_box_not_found",
	KindSaveButtonNotFound:  "save_button_not_found",
	KindPageScript:          "page_script",
	KindBoundaryUnavailable: "boundary_unavailable",
	KindAlreadyRunning:      "already_running",
	KindNoJobs:              "no_jobs",
	KindNoTarget:            "no_target",
	KindCancelled:           "cancelled",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a classified failure with human-readable text
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		if e.Msg == "" {
			return e.Err.Error()
		}
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds a classified error
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies err, keeping it in the chain
func Wrap(kind ErrorKind, err error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
