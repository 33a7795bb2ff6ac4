// Package pipeline wires the crawl, extraction, filtering, chunking and
// export stages into one run.
package pipeline

import (
	"context"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/corpus"
	"github.com/fwojciec/corpus/crawl"
)

// DefaultMinContentLength drops pages whose extracted content has fewer
// characters.
const DefaultMinContentLength = 50

// Crawler runs one breadth-first crawl and emits fetched pages.
type Crawler interface {
	Crawl(ctx context.Context, seeds []string, emit crawl.PageFunc) (crawl.Stats, error)
}

// Chunker splits a document into token-bounded chunks.
type Chunker interface {
	ChunkDocument(doc *corpus.Document) []*corpus.Chunk
}

// StatsWriter writes a run statistics sidecar. Exporters may optionally
// implement it.
type StatsWriter interface {
	WriteStats(stats any) (string, error)
}

// RunStats summarises one pipeline run. Serialised as the stats sidecar
// next to the export file.
type RunStats struct {
	URLsDiscovered     int       `json:"urls_discovered"`
	PagesCrawled       int       `json:"pages_crawled"`
	PagesFailed        int       `json:"pages_failed"`
	PagesSkippedRobots int       `json:"pages_skipped_robots"`
	PagesExtracted     int       `json:"pages_extracted"`
	PagesTooShort      int       `json:"pages_too_short"`
	PagesWrongLanguage int       `json:"pages_wrong_language"`
	ExactDuplicates    int       `json:"exact_duplicates"`
	NearDuplicates     int       `json:"near_duplicates"`
	DocumentsKept      int       `json:"documents_kept"`
	TotalChunks        int       `json:"total_chunks"`
	TotalTokens        int       `json:"total_tokens"`
	EmbeddingsCreated  int       `json:"embeddings_created,omitempty"`
	OutputPath         string    `json:"output_path"`
	StartedAt          time.Time `json:"started_at"`
	FinishedAt         time.Time `json:"finished_at"`
	DurationSeconds    float64   `json:"duration_seconds"`
}

// Pipeline runs the end-to-end corpus build. Extractor is tried first;
// Fallback (optional) runs when the primary fails or returns nothing.
// Documents, Chunks, Embedder and Logger are optional.
type Pipeline struct {
	Crawler   Crawler
	Extractor corpus.Extractor
	Fallback  corpus.Extractor
	Converter corpus.Converter
	Processor corpus.Processor
	Chunker   Chunker
	Exporter  corpus.Exporter
	Embedder  corpus.Embedder
	Documents corpus.DocumentWriter
	Chunks    corpus.ChunkWriter
	Logger    *slog.Logger

	// MinContentLength drops extracted pages shorter than this many
	// characters. Zero means DefaultMinContentLength.
	MinContentLength int
}

// Run executes the full pipeline from the given seed URLs and returns
// run statistics. Individual page failures are counted, not returned;
// the error covers stage-level failures only.
func (p *Pipeline) Run(ctx context.Context, seeds []string) (*RunStats, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	stats := &RunStats{StartedAt: time.Now().UTC()}

	var pages []*corpus.Page
	crawlStats, err := p.Crawler.Crawl(ctx, seeds, func(page *corpus.Page) {
		pages = append(pages, page)
	})
	if err != nil {
		return nil, err
	}
	stats.URLsDiscovered = crawlStats.Discovered
	stats.PagesCrawled = crawlStats.Crawled
	stats.PagesFailed = crawlStats.Failed
	stats.PagesSkippedRobots = crawlStats.SkippedRobots
	logger.Info("crawl complete",
		"crawled", crawlStats.Crawled,
		"failed", crawlStats.Failed,
		"skipped_robots", crawlStats.SkippedRobots,
	)

	docs := p.extractAll(pages, stats, logger)
	logger.Info("extraction complete", "documents", len(docs))

	kept := p.filterAll(ctx, docs, stats, logger)
	logger.Info("filtering complete", "kept", len(kept))

	chunks, err := p.chunkAll(ctx, kept, stats)
	if err != nil {
		return nil, err
	}
	logger.Info("chunking complete", "chunks", len(chunks), "tokens", stats.TotalTokens)

	if p.Embedder != nil && len(chunks) > 0 {
		if err := p.Embedder.EmbedChunks(ctx, chunks); err != nil {
			return nil, err
		}
		stats.EmbeddingsCreated = len(chunks)
		logger.Info("embedding complete", "embeddings", len(chunks))
	}

	path, err := p.Exporter.Export(ctx, chunks)
	if err != nil {
		return nil, err
	}
	stats.OutputPath = path
	stats.FinishedAt = time.Now().UTC()
	stats.DurationSeconds = stats.FinishedAt.Sub(stats.StartedAt).Seconds()

	if sw, ok := p.Exporter.(StatsWriter); ok {
		if _, err := sw.WriteStats(stats); err != nil {
			logger.Warn("failed to write stats sidecar", "error", err)
		}
	}

	logger.Info("pipeline complete",
		"output", path,
		"chunks", len(chunks),
		"duration", stats.FinishedAt.Sub(stats.StartedAt),
	)
	return stats, nil
}

// extractAll turns fetched pages into documents, skipping pages whose
// extracted content is too short.
func (p *Pipeline) extractAll(pages []*corpus.Page, stats *RunStats, logger *slog.Logger) []*corpus.Document {
	minLen := p.MinContentLength
	if minLen == 0 {
		minLen = DefaultMinContentLength
	}

	var docs []*corpus.Document
	for _, page := range pages {
		doc, err := p.extract(page)
		if err != nil {
			logger.Debug("extraction failed", "url", page.URL, "error", err)
			continue
		}
		if len(doc.Text) < minLen {
			stats.PagesTooShort++
			continue
		}
		stats.PagesExtracted++
		docs = append(docs, doc)
	}
	return docs
}

// extract runs the primary extractor with the fallback behind it, then
// converts the content to markdown text.
func (p *Pipeline) extract(page *corpus.Page) (*corpus.Document, error) {
	result, err := p.Extractor.Extract(page.HTML)
	if (err != nil || result == nil || strings.TrimSpace(result.ContentHTML) == "") && p.Fallback != nil {
		result, err = p.Fallback.Extract(page.HTML)
	}
	if err != nil {
		return nil, err
	}
	if result == nil || strings.TrimSpace(result.ContentHTML) == "" {
		return nil, corpus.Errorf(corpus.EINVALID, "no content extracted from %s", page.URL)
	}

	text, err := p.Converter.Convert(result.ContentHTML)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)

	return &corpus.Document{
		URL:         page.URL,
		Title:       result.Title,
		Text:        text,
		ContentHash: hashText(text),
		WordCount:   len(strings.Fields(text)),
		Metadata:    result.Metadata,
		CrawledAt:   page.FetchedAt,
	}, nil
}

// filterAll runs the processor over extracted documents and persists the
// survivors when a document writer is configured.
func (p *Pipeline) filterAll(ctx context.Context, docs []*corpus.Document, stats *RunStats, logger *slog.Logger) []*corpus.Document {
	var kept []*corpus.Document
	for _, doc := range docs {
		out, rejection := p.Processor.Process(doc)
		switch rejection {
		case corpus.RejectedNone:
		case corpus.RejectedTooShort:
			stats.PagesTooShort++
			continue
		case corpus.RejectedLanguage:
			stats.PagesWrongLanguage++
			continue
		case corpus.RejectedExactDuplicate:
			stats.ExactDuplicates++
			continue
		case corpus.RejectedNearDuplicate:
			stats.NearDuplicates++
			continue
		default:
			continue
		}

		if p.Documents != nil {
			if err := p.Documents.CreateDocument(ctx, out); err != nil {
				logger.Warn("failed to persist document", "url", out.URL, "error", err)
			}
		}
		kept = append(kept, out)
	}
	stats.DocumentsKept = len(kept)
	return kept
}

// chunkAll splits kept documents into chunks and persists them when a
// chunk writer is configured.
func (p *Pipeline) chunkAll(ctx context.Context, docs []*corpus.Document, stats *RunStats) ([]*corpus.Chunk, error) {
	var all []*corpus.Chunk
	for _, doc := range docs {
		chunks := p.Chunker.ChunkDocument(doc)
		for _, chunk := range chunks {
			stats.TotalTokens += chunk.TokenCount
		}
		all = append(all, chunks...)
	}
	stats.TotalChunks = len(all)

	if p.Chunks != nil && len(all) > 0 {
		if err := p.Chunks.CreateChunks(ctx, all); err != nil {
			return nil, err
		}
	}
	return all, nil
}

// hashText computes the xxHash of text as a hex string.
func hashText(text string) string {
	h := xxhash.Sum64String(text)
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(h >> (56 - 8*i))
	}
	return hex.EncodeToString(b)
}
