package ai

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/v0xg/streamchapters/internal/chapter"
)

// ClaudeDrafter implements Drafter using Anthropic's Claude
type ClaudeDrafter struct {
	client *anthropic.Client
	model  string
}

// NewClaudeDrafter creates a Claude drafter from the environment
func NewClaudeDrafter(model string) (*ClaudeDrafter, error) {
	key, err := apiKey("STREAMCHAPTERS_ANTHROPIC_KEY", "ANTHROPIC_API_KEY")
	if err != nil {
		return nil, err
	}
	return newClaudeDrafter(model, option.WithAPIKey(key)), nil
}

func newClaudeDrafter(model string, opts ...option.RequestOption) *ClaudeDrafter {
	client := anthropic.NewClient(opts...)
	if model == "" {
		model = string(anthropic.ModelClaudeSonnet4_20250514)
	}
	return &ClaudeDrafter{client: &client, model: model}
}

// DraftChapters asks Claude for a chapter list
func (p *ClaudeDrafter) DraftChapters(ctx context.Context, transcript string, opts DraftOptions) ([]chapter.Job, error) {
	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: 2048,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildUserPrompt(transcript, opts))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("Claude API error: %w", err)
	}

	var responseText string
	for _, block := range resp.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}
	if responseText == "" {
		return nil, fmt.Errorf("empty response from Claude")
	}

	jobs, err := parseJobsJSON(responseText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Claude response: %w\nResponse: %s", err, responseText)
	}
	return jobs, nil
}
