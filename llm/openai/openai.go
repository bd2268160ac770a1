// Package openai provides a core.Generator implementation backed by the
// OpenAI Chat Completions API.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/hupe1980/conceptmesh/core"
)

// Options configure the OpenAI generator adapter. Fields mirror a subset of
// Chat Completion parameters intentionally kept minimal; extend via
// functional options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Generator wraps the OpenAI Chat Completions API behind the core.Generator interface.
type Generator struct {
	client *openai.Client
	opts   Options
}

// NewGenerator creates a new OpenAI generator using the official client.
func NewGenerator(optFns ...func(o *Options)) *Generator {
	client := openai.NewClient()
	return NewGeneratorFromClient(&client, optFns...)
}

// NewGeneratorFromClient creates a new OpenAI generator from an existing client.
func NewGeneratorFromClient(client *openai.Client, optFns ...func(o *Options)) *Generator {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 2048,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Generator{client: client, opts: opts}
}

// Generate implements core.Generator.
func (g *Generator) Generate(ctx context.Context, prompt string, opts core.GenerateOptions) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if opts.System != "" {
		messages = append(messages, openai.SystemMessage(opts.System))
	}
	messages = append(messages, openai.UserMessage(prompt))

	temperature := g.opts.Temperature
	if opts.Temperature > 0 {
		temperature = opts.Temperature
	}
	maxTokens := g.opts.MaxCompletionTokens
	if opts.MaxTokens > 0 {
		maxTokens = int64(opts.MaxTokens)
	}

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               g.opts.Model,
		Temperature:         openai.Float(temperature),
		MaxCompletionTokens: openai.Int(maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai response contained no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
