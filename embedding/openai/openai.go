// Package openai provides an implementation of core.Embedder using the OpenAI
// Embeddings API. It adapts plain text into the SDK's request format and
// returns the raw vector.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
)

// Options configure the OpenAI embedder adapter.
type Options struct {
	Model string
}

// Embedder wraps the OpenAI Embeddings API behind the core.Embedder interface.
type Embedder struct {
	client *openai.Client
	opts   Options
}

// NewEmbedder creates a new OpenAI embedder using the official client.
func NewEmbedder(optFns ...func(o *Options)) *Embedder {
	client := openai.NewClient()
	return NewEmbedderFromClient(&client, optFns...)
}

// NewEmbedderFromClient creates a new OpenAI embedder from an existing client.
func NewEmbedderFromClient(client *openai.Client, optFns ...func(o *Options)) *Embedder {
	opts := Options{
		Model: openai.EmbeddingModelTextEmbedding3Small,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Embedder{client: client, opts: opts}
}

// Encode implements core.Embedder.
func (e *Embedder) Encode(ctx context.Context, text string) ([]float64, error) {
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: e.opts.Model,
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings call failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai embeddings returned no data")
	}
	return resp.Data[0].Embedding, nil
}
