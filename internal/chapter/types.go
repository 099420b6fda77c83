package chapter

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Job is one chapter marker to insert
type Job struct {
	Time  string `json:"time"`
	Title string `json:"title"`
}

// Settings holds the per-run UI settle delays in milliseconds
type Settings struct {
	VideoSeekDelayMs   int `json:"videoSeekDelayMs"`
	ButtonClickDelayMs int `json:"buttonClickDelayMs"`
	SaveDelayMs        int `json:"saveDelayMs"`
}

// Validate rejects negative delays
func (s Settings) Validate() error {
	switch {
	case s.VideoSeekDelayMs < 0:
		return Errorf(KindInvalidInput, "video seek delay must not be negative")
	case s.ButtonClickDelayMs < 0:
		return Errorf(KindInvalidInput, "button click delay must not be negative")
	case s.SaveDelayMs < 0:
		return Errorf(KindInvalidInput, "save delay must not be negative")
	}
	return nil
}

func (s Settings) VideoSeekDelay() time.Duration {
	return time.Duration(s.VideoSeekDelayMs) * time.Millisecond
}

func (s Settings) ButtonClickDelay() time.Duration {
	return time.Duration(s.ButtonClickDelayMs) * time.Millisecond
}

func (s Settings) SaveDelay() time.Duration {
	return time.Duration(s.SaveDelayMs) * time.Millisecond
}

// DefaultPreset is used when no preset or explicit delays are given
const DefaultPreset = "normal"

var presets = map[string]Settings{
	"fast":   {VideoSeekDelayMs: 1500, ButtonClickDelayMs: 1000, SaveDelayMs: 1500},
	"normal": {VideoSeekDelayMs: 2500, ButtonClickDelayMs: 1500, SaveDelayMs: 2000},
	"slow":   {VideoSeekDelayMs: 4000, ButtonClickDelayMs: 2500, SaveDelayMs: 3000},
}

// Preset returns the named speed preset
func Preset(name string) (Settings, error) {
	s, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Settings{}, Errorf(KindInvalidInput, "unknown preset: %s (supported: %s)", name, strings.Join(PresetNames(), ", "))
	}
	return s, nil
}

// Presets returns a copy of all speed presets
func Presets() map[string]Settings {
	out := make(map[string]Settings, len(presets))
	for k, v := range presets {
		out[k] = v
	}
	return out
}

func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for k := range presets {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Progress is the position of a run within its job list
type Progress struct {
	Current      int    `json:"current"`
	Total        int    `json:"total"`
	CurrentTitle string `json:"currentTitle,omitempty"`
}

func (p Progress) String() string {
	return fmt.Sprintf("%d/%d", p.Current, p.Total)
}

// Outcome is the result of one executor invocation
type Outcome struct {
	Success bool      `json:"success"`
	Error   string    `json:"error,omitempty"`
	Kind    ErrorKind `json:"-"`
}

// Succeeded is the outcome of a job that went through every step
func Succeeded() Outcome {
	return Outcome{Success: true}
}

// Failed converts err into a failed outcome
func Failed(err error) Outcome {
	if err == nil {
		return Outcome{Kind: KindUnknown}
	}
	return Outcome{Error: err.Error(), Kind: KindOf(err)}
}
