package ai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/v0xg/streamchapters/internal/chapter"
)

// OpenAIDrafter implements Drafter using OpenAI
type OpenAIDrafter struct {
	client *openai.Client
	model  string
}

// NewOpenAIDrafter creates an OpenAI drafter from the environment
func NewOpenAIDrafter(model string) (*OpenAIDrafter, error) {
	key, err := apiKey("STREAMCHAPTERS_OPENAI_KEY", "OPENAI_API_KEY")
	if err != nil {
		return nil, err
	}
	return newOpenAIDrafter(openai.DefaultConfig(key), model), nil
}

func newOpenAIDrafter(cfg openai.ClientConfig, model string) *OpenAIDrafter {
	if model == "" {
		model = "gpt-4o"
	}
	return &OpenAIDrafter{client: openai.NewClientWithConfig(cfg), model: model}
}

// DraftChapters asks the chat completion API for a chapter list
func (p *OpenAIDrafter) DraftChapters(ctx context.Context, transcript string, opts DraftOptions) ([]chapter.Job, error) {
	resp, err := p.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: p.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: buildUserPrompt(transcript, opts),
				},
			},
			MaxTokens: 2048,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}
	responseText := resp.Choices[0].Message.Content

	jobs, err := parseJobsJSON(responseText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAI response: %w\nResponse: %s", err, responseText)
	}
	return jobs, nil
}
