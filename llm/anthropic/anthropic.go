// Package anthropic provides a core.Generator implementation backed by the
// Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hupe1980/conceptmesh/core"
)

// Options configure the Anthropic generator adapter (model id, max tokens,
// API key). Extend via functional options to preserve stability.
type Options struct {
	Model     anthropic.Model
	MaxTokens int64
	APIKey    string
}

// Generator wraps the Anthropic Messages API behind the core.Generator interface.
type Generator struct {
	client *anthropic.Client
	opts   Options
}

// NewGenerator creates a new Anthropic generator using the official client.
func NewGenerator(optFns ...func(o *Options)) *Generator {
	opts := Options{
		Model:     anthropic.ModelClaude3_5Sonnet20241022,
		MaxTokens: 2048,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Generator{client: &client, opts: opts}
}

// NewGeneratorFromClient creates a new Anthropic generator from an existing client.
func NewGeneratorFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Generator {
	opts := Options{
		Model:     anthropic.ModelClaude3_5Sonnet20241022,
		MaxTokens: 2048,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Generator{client: client, opts: opts}
}

// Generate implements core.Generator.
func (g *Generator) Generate(ctx context.Context, prompt string, opts core.GenerateOptions) (string, error) {
	maxTokens := g.opts.MaxTokens
	if opts.MaxTokens > 0 {
		maxTokens = int64(opts.MaxTokens)
	}

	params := anthropic.MessageNewParams{
		Model:     g.opts.Model,
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if opts.Temperature > 0 {
		params.Temperature = anthropic.Float(opts.Temperature)
	}
	if opts.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: opts.System}}
	}

	resp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic api error: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.AsText().Text
		}
	}
	if text == "" {
		return "", fmt.Errorf("anthropic response contained no text content")
	}
	return text, nil
}
