// Package anthropic provides an InsightClient implementation using Anthropic.
package anthropic

import (
	"context"
	"errors"
	"fmt"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/ersonp/compliance-core/internal/domain/entities"
	"github.com/ersonp/compliance-core/internal/domain/ports"
	"github.com/ersonp/compliance-core/internal/infrastructure/config"
	"github.com/ersonp/compliance-core/internal/infrastructure/llm"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "claude-sonnet-4-5-20250929"

	maxTokens = 2000
)

// Client implements ports.InsightClient using the Anthropic messages API.
type Client struct {
	client *anthropic.Client
	model  string
}

// NewClient creates a new Anthropic client.
func NewClient(cfg config.InsightsConfig) (*Client, error) {
	if cfg.AnthropicAPIKey == "" {
		return nil, errors.New("Anthropic API key is required (set ANTHROPIC_API_KEY)")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	var opts []anthropic.ClientOption
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		client: anthropic.NewClient(cfg.AnthropicAPIKey, opts...),
		model:  model,
	}, nil
}

// Model returns the model name used for messages.
func (c *Client) Model() string {
	return c.model
}

// GenerateInsights sends the snapshot to Anthropic and parses the insight list.
func (c *Client) GenerateInsights(ctx context.Context, snapshot ports.Snapshot) ([]entities.Insight, error) {
	prompt, err := llm.BuildPrompt(snapshot)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxTokens,
		System:    llm.SystemPrompt,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				{Type: "text", Text: &prompt},
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("calling Anthropic: %w", err)
	}

	return llm.ParseInsights(textOf(resp))
}

// textOf returns the first text block of a response.
func textOf(resp anthropic.MessagesResponse) string {
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			return *block.Text
		}
	}
	return ""
}
