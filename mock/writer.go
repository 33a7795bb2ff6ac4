package mock

import (
	"context"

	"github.com/fwojciec/corpus"
)

var _ corpus.DocumentWriter = (*DocumentWriter)(nil)

// DocumentWriter is a mock implementation of corpus.DocumentWriter.
type DocumentWriter struct {
	CreateDocumentFn func(ctx context.Context, doc *corpus.Document) error
}

func (w *DocumentWriter) CreateDocument(ctx context.Context, doc *corpus.Document) error {
	return w.CreateDocumentFn(ctx, doc)
}

var _ corpus.ChunkWriter = (*ChunkWriter)(nil)

// ChunkWriter is a mock implementation of corpus.ChunkWriter.
type ChunkWriter struct {
	CreateChunksFn func(ctx context.Context, chunks []*corpus.Chunk) error
}

func (w *ChunkWriter) CreateChunks(ctx context.Context, chunks []*corpus.Chunk) error {
	return w.CreateChunksFn(ctx, chunks)
}

var _ corpus.Exporter = (*Exporter)(nil)

// Exporter is a mock implementation of corpus.Exporter.
type Exporter struct {
	ExportFn func(ctx context.Context, chunks []*corpus.Chunk) (string, error)
}

func (e *Exporter) Export(ctx context.Context, chunks []*corpus.Chunk) (string, error) {
	return e.ExportFn(ctx, chunks)
}

var _ corpus.Embedder = (*Embedder)(nil)

// Embedder is a mock implementation of corpus.Embedder.
type Embedder struct {
	EmbedChunksFn func(ctx context.Context, chunks []*corpus.Chunk) error
}

func (e *Embedder) EmbedChunks(ctx context.Context, chunks []*corpus.Chunk) error {
	return e.EmbedChunksFn(ctx, chunks)
}
