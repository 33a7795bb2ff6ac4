package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/fwojciec/corpus"
)

// Compile-time interface verification.
var _ corpus.ChunkWriter = (*ChunkService)(nil)

// ChunkService persists document chunks using SQLite.
type ChunkService struct {
	db *DB
}

// NewChunkService creates a new ChunkService.
func NewChunkService(db *DB) *ChunkService {
	return &ChunkService{db: db}
}

// CreateChunks inserts chunks in a single transaction. Existing chunks
// with the same ID are replaced so re-runs stay idempotent.
func (s *ChunkService) CreateChunks(ctx context.Context, chunks []*corpus.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO chunks (id, document_url, document_title, text, token_count, chunk_index, total_chunks, content_hash, metadata, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		if err := chunk.Validate(); err != nil {
			return err
		}

		metadata, err := encodeMetadata(chunk.Metadata)
		if err != nil {
			return err
		}

		var embedding sql.NullString
		if chunk.Embedding != nil {
			data, err := json.Marshal(chunk.Embedding)
			if err != nil {
				return corpus.Errorf(corpus.EINTERNAL, "encoding embedding: %v", err)
			}
			embedding = sql.NullString{String: string(data), Valid: true}
		}

		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocumentURL, chunk.DocumentTitle,
			chunk.Text, chunk.TokenCount, chunk.Index, chunk.TotalChunks, chunk.ContentHash,
			metadata, embedding); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// FindChunksByDocument retrieves all chunks for a document URL ordered by
// chunk index.
func (s *ChunkService) FindChunksByDocument(ctx context.Context, documentURL string) ([]*corpus.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_url, document_title, text, token_count, chunk_index, total_chunks, content_hash, metadata, embedding
		FROM chunks
		WHERE document_url = ?
		ORDER BY chunk_index ASC
	`, documentURL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*corpus.Chunk
	for rows.Next() {
		var chunk corpus.Chunk
		var metadata string
		var embedding sql.NullString

		if err := rows.Scan(&chunk.ID, &chunk.DocumentURL, &chunk.DocumentTitle, &chunk.Text,
			&chunk.TokenCount, &chunk.Index, &chunk.TotalChunks, &chunk.ContentHash,
			&metadata, &embedding); err != nil {
			return nil, err
		}

		chunk.Metadata, err = decodeMetadata(metadata)
		if err != nil {
			return nil, err
		}
		if embedding.Valid {
			if err := json.Unmarshal([]byte(embedding.String), &chunk.Embedding); err != nil {
				return nil, corpus.Errorf(corpus.EINTERNAL, "decoding embedding: %v", err)
			}
		}

		chunks = append(chunks, &chunk)
	}

	return chunks, rows.Err()
}

// CountChunks returns the number of stored chunks.
func (s *ChunkService) CountChunks(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n)
	return n, err
}
