package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/v0xg/streamchapters/internal/chapter"
)

// Drafter proposes a chapter list for a video from its transcript
type Drafter interface {
	DraftChapters(ctx context.Context, transcript string, opts DraftOptions) ([]chapter.Job, error)
}

// DraftOptions tunes the generated list
type DraftOptions struct {
	Language    string // title language, e.g. "Turkish"; empty keeps the transcript's
	MaxChapters int
}

// NewDrafter creates a drafter for the named provider
func NewDrafter(name, model string) (Drafter, error) {
	switch strings.ToLower(name) {
	case "claude", "anthropic":
		return NewClaudeDrafter(model)
	case "openai", "gpt":
		return NewOpenAIDrafter(model)
	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: claude, openai)", name)
	}
}

func apiKey(vars ...string) (string, error) {
	for _, v := range vars {
		if key := os.Getenv(v); key != "" {
			return key, nil
		}
	}
	return "", fmt.Errorf("%s environment variable required", strings.Join(vars, " or "))
}

// parseJobsJSON extracts the first JSON array from a response that may
// contain surrounding text or code fences and validates it as a job list
func parseJobsJSON(response string) ([]chapter.Job, error) {
	if jobs, err := chapter.ParseJobs([]byte(response)); err == nil {
		return jobs, nil
	}

	for start := strings.Index(response, "["); start >= 0; {
		var raw json.RawMessage
		dec := json.NewDecoder(strings.NewReader(response[start:]))
		if err := dec.Decode(&raw); err == nil {
			return chapter.ParseJobs(raw)
		}
		next := strings.Index(response[start+1:], "[")
		if next < 0 {
			break
		}
		start += next + 1
	}
	return nil, fmt.Errorf("no JSON array found in response")
}
