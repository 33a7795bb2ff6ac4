// Package goquery provides goquery-based HTML helpers: a fallback content
// extractor for pages the primary extractor cannot handle, and outgoing
// link extraction for crawling.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/corpus"
)

// noiseSelector matches elements removed before content selection.
const noiseSelector = "script, style, nav, header, footer, aside, iframe, noscript"

// contentSelectors are tried in order; the first non-empty match wins.
var contentSelectors = []string{
	"main",
	"article",
	"[role=main]",
	"body",
}

// Ensure Extractor implements corpus.Extractor at compile time.
var _ corpus.Extractor = (*Extractor)(nil)

// Extractor is a heuristic fallback extractor. It strips noise elements
// and returns the first of main, article, [role=main], or body.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content region.
func (e *Extractor) Extract(rawHTML string) (*corpus.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, corpus.Errorf(corpus.EINVALID, "empty HTML input")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, corpus.Errorf(corpus.EINVALID, "failed to parse HTML: %v", err)
	}

	doc.Find(noiseSelector).Remove()

	var contentHTML string
	for _, selector := range contentSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		inner, err := sel.Html()
		if err != nil {
			continue
		}
		if strings.TrimSpace(sel.Text()) != "" {
			contentHTML = inner
			break
		}
	}

	return &corpus.ExtractResult{
		Title:       extractTitle(doc),
		ContentHTML: contentHTML,
	}, nil
}

// extractTitle prefers og:title, then <title>, then the first h1.
func extractTitle(doc *goquery.Document) string {
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		if title := strings.TrimSpace(og); title != "" {
			return title
		}
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}
