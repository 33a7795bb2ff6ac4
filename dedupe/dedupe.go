// Package dedupe filters cleaned documents: whitespace normalization,
// minimum-length and language checks, and exact plus near-duplicate
// rejection over an incremental SimHash index.
package dedupe

import (
	"regexp"
	"strings"

	"github.com/fwojciec/corpus"
)

// Defaults for processor configuration.
const (
	DefaultMinTextLength         = 50
	DefaultMinLanguageConfidence = 0.8
	DefaultDedupThreshold        = 0.95
)

// languageSampleSize is the number of leading characters fed to the
// language detector.
const languageSampleSize = 2000

// Config holds processor settings for one run.
type Config struct {
	// TargetLanguages keeps only documents in these ISO 639-1 languages.
	// Empty keeps all languages.
	TargetLanguages []string

	// MinLanguageConfidence is the detection confidence at or above which
	// an off-target language causes rejection. Detections below it never
	// reject, which favors recall on short or noisy text.
	MinLanguageConfidence float64

	// DedupEnabled turns on exact and near-duplicate rejection.
	DedupEnabled bool

	// DedupThreshold is the SimHash similarity at or above which a
	// document is a near-duplicate of a prior one.
	DedupThreshold float64

	// Lowercase converts document text to lowercase.
	Lowercase bool

	// CollapseWhitespace collapses runs of spaces and blank lines.
	CollapseWhitespace bool

	// MinTextLength rejects documents with fewer characters after
	// cleaning. Zero means DefaultMinTextLength.
	MinTextLength int
}

var (
	crlfRe    = regexp.MustCompile(`\r\n`)
	tabRe     = regexp.MustCompile(`\t`)
	spacesRe  = regexp.MustCompile(` {2,}`)
	newlineRe = regexp.MustCompile(`\n{3,}`)
)

// fingerprintEntry pairs a SimHash with the URL that produced it, for
// logging near-duplicate matches.
type fingerprintEntry struct {
	fp  Fingerprint
	url string
}

// Compile-time interface verification.
var _ corpus.Processor = (*Processor)(nil)

// Processor filters documents in arrival order. State accumulates across
// calls for the lifetime of one run; use one instance per run and do not
// share it between goroutines without external synchronization.
type Processor struct {
	cfg      Config
	detector corpus.LanguageDetector

	exactHashes map[string]struct{}
	index       []fingerprintEntry
}

// New creates a Processor. The detector may be nil when TargetLanguages is
// empty and language tagging is not needed.
func New(cfg Config, detector corpus.LanguageDetector) *Processor {
	if cfg.MinTextLength == 0 {
		cfg.MinTextLength = DefaultMinTextLength
	}
	return &Processor{
		cfg:         cfg,
		detector:    detector,
		exactHashes: make(map[string]struct{}),
	}
}

// Process runs the filter steps in order: whitespace normalization,
// minimum length, language, exact duplicate, near duplicate. A document
// rejected at step k never reaches the later steps; in particular it is
// never fingerprinted or added to the index. A near-duplicate-rejected
// document's fingerprint still enters the index so later documents are
// compared against it.
func (p *Processor) Process(doc *corpus.Document) (*corpus.Document, corpus.Rejection) {
	text := doc.Text

	if p.cfg.CollapseWhitespace {
		text = normalizeWhitespace(text)
	}
	if p.cfg.Lowercase {
		text = strings.ToLower(text)
	}

	if len(strings.TrimSpace(text)) < p.cfg.MinTextLength {
		return nil, corpus.RejectedTooShort
	}

	language := doc.Language
	confidence := doc.LanguageConfidence
	if p.detector != nil {
		language, confidence = p.detector.Detect(sample(text, languageSampleSize))
	}
	if len(p.cfg.TargetLanguages) > 0 && !contains(p.cfg.TargetLanguages, language) {
		// Reject only confidently off-target documents. A low-confidence
		// detection of a wrong language passes through.
		if confidence >= p.cfg.MinLanguageConfidence {
			return nil, corpus.RejectedLanguage
		}
	}

	if p.cfg.DedupEnabled {
		if _, ok := p.exactHashes[doc.ContentHash]; ok {
			return nil, corpus.RejectedExactDuplicate
		}
	}
	p.exactHashes[doc.ContentHash] = struct{}{}

	if p.cfg.DedupEnabled {
		fp := Simhash(text)
		duplicate := false
		for _, entry := range p.index {
			if Similarity(fp, entry.fp) >= p.cfg.DedupThreshold {
				duplicate = true
				break
			}
		}
		p.index = append(p.index, fingerprintEntry{fp: fp, url: doc.URL})
		if duplicate {
			return nil, corpus.RejectedNearDuplicate
		}
	}

	accepted := *doc
	accepted.Text = text
	accepted.Language = language
	accepted.LanguageConfidence = confidence
	accepted.WordCount = len(strings.Fields(text))
	return &accepted, corpus.RejectedNone
}

// IndexSize returns the number of fingerprints accumulated this run.
func (p *Processor) IndexSize() int {
	return len(p.index)
}

// UniqueDocuments returns the number of distinct content hashes seen.
func (p *Processor) UniqueDocuments() int {
	return len(p.exactHashes)
}

// normalizeWhitespace collapses repeated spaces and blank lines and
// converts tabs and CRLF line endings.
func normalizeWhitespace(text string) string {
	text = crlfRe.ReplaceAllString(text, "\n")
	text = tabRe.ReplaceAllString(text, " ")
	text = spacesRe.ReplaceAllString(text, " ")
	text = newlineRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// sample returns the first n runes of text.
func sample(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
