// Package gemini implements embedding generation using the Google Gemini API.
package gemini

import (
	"context"

	"github.com/fwojciec/corpus"
	"google.golang.org/genai"
)

// DefaultModel is the embedding model used when none is configured.
const DefaultModel = "gemini-embedding-001"

// batchSize is the maximum number of texts sent per EmbedContent call.
const batchSize = 100

// Ensure Embedder implements corpus.Embedder at compile time.
var _ corpus.Embedder = (*Embedder)(nil)

// Embedder attaches vector embeddings to chunks using Google Gemini.
type Embedder struct {
	client *genai.Client
	model  string
}

// Option configures an Embedder.
type Option func(*Embedder)

// WithModel sets the embedding model. Defaults to DefaultModel.
func WithModel(model string) Option {
	return func(e *Embedder) {
		e.model = model
	}
}

// NewEmbedder creates a new Embedder.
func NewEmbedder(client *genai.Client, opts ...Option) *Embedder {
	e := &Embedder{
		client: client,
		model:  DefaultModel,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EmbedChunks computes embeddings for all chunks in place, batching
// requests to the API.
func (e *Embedder) EmbedChunks(ctx context.Context, chunks []*corpus.Chunk) error {
	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		batch := chunks[start:end]
		contents := make([]*genai.Content, len(batch))
		for i, chunk := range batch {
			contents[i] = genai.NewContentFromText(chunk.Text, "user")
		}

		result, err := e.client.Models.EmbedContent(ctx, e.model, contents, nil)
		if err != nil {
			return err
		}
		if result == nil || len(result.Embeddings) != len(batch) {
			return corpus.Errorf(corpus.EINTERNAL, "gemini returned %d embeddings for %d chunks",
				embeddingCount(result), len(batch))
		}

		for i, emb := range result.Embeddings {
			batch[i].Embedding = emb.Values
		}
	}

	return nil
}

func embeddingCount(result *genai.EmbedContentResponse) int {
	if result == nil {
		return 0
	}
	return len(result.Embeddings)
}
