package corpus

import (
	"context"
	"time"
)

// Document represents a cleaned page ready for filtering and chunking.
// Immutable after creation.
type Document struct {
	URL                string            `json:"url"`
	Title              string            `json:"title"`
	Text               string            `json:"text"`
	Language           string            `json:"language"`
	LanguageConfidence float64           `json:"languageConfidence"`
	ContentHash        string            `json:"contentHash"`
	WordCount          int               `json:"wordCount"`
	Metadata           map[string]string `json:"metadata,omitempty"`
	CrawledAt          time.Time         `json:"crawledAt"`
}

// Validate returns an error if the document contains invalid fields.
func (d *Document) Validate() error {
	if d.URL == "" {
		return Errorf(EINVALID, "document URL required")
	}
	if d.Text == "" {
		return Errorf(EINVALID, "document text required")
	}
	return nil
}

// ExtractResult holds the extracted content from an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content as clean HTML.
	// Boilerplate (nav, footer, sidebar, ads) has been removed.
	ContentHTML string

	// Metadata holds extra page metadata (description, author) when the
	// extractor can recover it.
	Metadata map[string]string
}

// Extractor extracts main content from HTML pages, removing boilerplate.
type Extractor interface {
	// Extract processes raw HTML and returns the main content.
	Extract(html string) (*ExtractResult, error)
}

// Converter transforms extracted HTML content into plain text or markdown.
type Converter interface {
	Convert(html string) (string, error)
}

// Rejection names the filter step that rejected a document. Empty means
// the document was accepted.
type Rejection string

// Rejection reasons, in the order the filter steps run.
const (
	RejectedNone           Rejection = ""
	RejectedTooShort       Rejection = "too_short"
	RejectedLanguage       Rejection = "language"
	RejectedExactDuplicate Rejection = "exact_duplicate"
	RejectedNearDuplicate  Rejection = "near_duplicate"
)

// Processor filters documents: whitespace normalization, length and
// language checks, exact and near-duplicate detection. Implementations are
// stateful and must see every document of a run in arrival order.
type Processor interface {
	// Process returns the (possibly normalized) document and RejectedNone,
	// or nil and the reason the document was rejected.
	Process(doc *Document) (*Document, Rejection)
}

// DocumentWriter persists accepted documents.
type DocumentWriter interface {
	CreateDocument(ctx context.Context, doc *Document) error
}
