package corpus

import "context"

// Chunk represents a token-bounded segment of a document.
type Chunk struct {
	ID            string            `json:"chunk_id"`
	DocumentURL   string            `json:"document_url"`
	DocumentTitle string            `json:"document_title"`
	Text          string            `json:"text"`
	TokenCount    int               `json:"token_count"`
	Index         int               `json:"chunk_index"`
	TotalChunks   int               `json:"total_chunks"`
	ContentHash   string            `json:"content_hash"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Embedding     []float32         `json:"embedding,omitempty"`
}

// Validate returns an error if the chunk contains invalid fields.
func (c *Chunk) Validate() error {
	if c.DocumentURL == "" {
		return Errorf(EINVALID, "chunk document URL required")
	}
	if c.Text == "" {
		return Errorf(EINVALID, "chunk text required")
	}
	return nil
}

// ChunkWriter persists chunks.
type ChunkWriter interface {
	// CreateChunks creates multiple chunks in a batch.
	CreateChunks(ctx context.Context, chunks []*Chunk) error
}

// Exporter writes the final chunk set to an output location.
type Exporter interface {
	// Export writes all chunks and returns the output path.
	Export(ctx context.Context, chunks []*Chunk) (string, error)
}

// Embedder attaches vector embeddings to chunks.
type Embedder interface {
	EmbedChunks(ctx context.Context, chunks []*Chunk) error
}
