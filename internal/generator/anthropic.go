package generator

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// recordRecipeTool is the single tool the model is forced to call; its input
// schema is the recipe schema, so the tool input is the structured answer.
const recordRecipeTool = "record_recipe"

const defaultMaxTokens = 2048

// errAPIKeyRequired is returned when no API key is configured.
var errAPIKeyRequired = errors.New("API key required")

// AnthropicBackend talks to the Anthropic Messages API.
type AnthropicBackend struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropicBackend creates a backend for model. When apiKey is empty the
// ANTHROPIC_API_KEY environment variable is used. SDK retries are disabled;
// extra options (base URL in tests) are applied after that default.
func NewAnthropicBackend(apiKey, model string, maxTokens int64, opts ...option.RequestOption) (*AnthropicBackend, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set ANTHROPIC_API_KEY or generator.api_key", errAPIKeyRequired)
	}
	if model == "" {
		return nil, errors.New("generator model is not set")
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	clientOpts := append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
	return &AnthropicBackend{
		client:    anthropic.NewClient(clientOpts...),
		model:     anthropic.Model(model),
		maxTokens: maxTokens,
	}, nil
}

// Complete sends one message and returns the forced tool call's input as JSON.
// If the model answers with plain text instead, that text is returned as is.
func (b *AnthropicBackend) Complete(ctx context.Context, req Request) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     b.model,
		MaxTokens: b.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
		Tools: []anthropic.ToolUnionParam{{
			OfTool: &anthropic.ToolParam{
				Name:        recordRecipeTool,
				Description: anthropic.String("Record the generated recipe."),
				InputSchema: inputSchema(req.Schema),
			},
		}},
		ToolChoice: anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{Name: recordRecipeTool},
		},
	}

	message, err := b.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("anthropic API returned status %d: %w", apiErr.StatusCode, err)
		}
		return "", err
	}

	var text string
	for _, block := range message.Content {
		switch block.Type {
		case "tool_use":
			if block.Name == recordRecipeTool {
				return string(block.Input), nil
			}
		case "text":
			if text == "" {
				text = block.Text
			}
		}
	}
	return text, nil
}

func inputSchema(s Schema) anthropic.ToolInputSchemaParam {
	p := anthropic.ToolInputSchemaParam{
		Properties: s.Properties,
		Required:   s.Required,
	}
	if s.Closed {
		p.ExtraFields = map[string]any{"additionalProperties": false}
	}
	return p
}
