// Package trafilatura wraps go-trafilatura to extract main page content
// with boilerplate removed.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/corpus"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements corpus.Extractor at compile time.
var _ corpus.Extractor = (*Extractor)(nil)

// Extractor extracts main content from HTML using trafilatura.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content with page
// metadata. Returns an EINVALID error for empty input and passes through
// trafilatura failures so callers can fall back to a simpler heuristic.
func (e *Extractor) Extract(rawHTML string) (*corpus.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, corpus.Errorf(corpus.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		ExcludeComments: true,
		IncludeImages:   false,
		IncludeLinks:    false,
		Focus:           trafilatura.FavorPrecision,
		Deduplicate:     true,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, err
	}

	var contentHTML string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, err
		}
	}

	metadata := make(map[string]string)
	if result.Metadata.Description != "" {
		metadata["description"] = result.Metadata.Description
	}
	if result.Metadata.Author != "" {
		metadata["author"] = result.Metadata.Author
	}
	if result.Metadata.Sitename != "" {
		metadata["site_name"] = result.Metadata.Sitename
	}

	return &corpus.ExtractResult{
		Title:       result.Metadata.Title,
		ContentHTML: contentHTML,
		Metadata:    metadata,
	}, nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
