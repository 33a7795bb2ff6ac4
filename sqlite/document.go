package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/fwojciec/corpus"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ corpus.DocumentWriter = (*DocumentService)(nil)

// DocumentService persists crawled documents using SQLite.
type DocumentService struct {
	db *DB
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(db *DB) *DocumentService {
	return &DocumentService{db: db}
}

// CreateDocument inserts a document. Re-crawling a URL replaces the
// previous record.
func (s *DocumentService) CreateDocument(ctx context.Context, doc *corpus.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	crawledAt := doc.CrawledAt
	if crawledAt.IsZero() {
		crawledAt = time.Now().UTC()
	}

	metadata, err := encodeMetadata(doc.Metadata)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (id, url, title, text, language, language_confidence, content_hash, word_count, metadata, crawled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title = excluded.title,
			text = excluded.text,
			language = excluded.language,
			language_confidence = excluded.language_confidence,
			content_hash = excluded.content_hash,
			word_count = excluded.word_count,
			metadata = excluded.metadata,
			crawled_at = excluded.crawled_at
	`, uuid.New().String(), doc.URL, doc.Title, doc.Text, doc.Language, doc.LanguageConfidence,
		doc.ContentHash, doc.WordCount, metadata, crawledAt.Format(time.RFC3339))

	return err
}

// FindDocumentByURL retrieves a document by its normalized URL.
func (s *DocumentService) FindDocumentByURL(ctx context.Context, url string) (*corpus.Document, error) {
	var doc corpus.Document
	var metadata, crawledAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT url, title, text, language, language_confidence, content_hash, word_count, metadata, crawled_at
		FROM documents
		WHERE url = ?
	`, url).Scan(&doc.URL, &doc.Title, &doc.Text, &doc.Language, &doc.LanguageConfidence,
		&doc.ContentHash, &doc.WordCount, &metadata, &crawledAt)

	if err == sql.ErrNoRows {
		return nil, corpus.Errorf(corpus.ENOTFOUND, "document not found")
	}
	if err != nil {
		return nil, err
	}

	doc.Metadata, err = decodeMetadata(metadata)
	if err != nil {
		return nil, err
	}
	doc.CrawledAt, err = parseRFC3339(crawledAt, "crawled_at")
	if err != nil {
		return nil, err
	}

	return &doc, nil
}

// CountDocuments returns the number of stored documents.
func (s *DocumentService) CountDocuments(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&n)
	return n, err
}
