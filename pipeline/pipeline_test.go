package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	stdslog "log/slog"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/corpus"
	"github.com/fwojciec/corpus/crawl"
	"github.com/fwojciec/corpus/mock"
	"github.com/fwojciec/corpus/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCrawler emits canned pages and reports matching stats.
type mockCrawler struct {
	pages []*corpus.Page
	stats crawl.Stats
	err   error
}

func (c *mockCrawler) Crawl(ctx context.Context, seeds []string, emit crawl.PageFunc) (crawl.Stats, error) {
	if c.err != nil {
		return crawl.Stats{}, c.err
	}
	for _, page := range c.pages {
		emit(page)
	}
	return c.stats, nil
}

// mockChunker splits a document into fixed-size word chunks.
type mockChunker struct {
	wordsPerChunk int
}

func (c *mockChunker) ChunkDocument(doc *corpus.Document) []*corpus.Chunk {
	words := strings.Fields(doc.Text)
	var chunks []*corpus.Chunk
	for i := 0; i < len(words); i += c.wordsPerChunk {
		end := i + c.wordsPerChunk
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, &corpus.Chunk{
			ID:          fmt.Sprintf("%s#%d", doc.URL, len(chunks)),
			DocumentURL: doc.URL,
			Text:        strings.Join(words[i:end], " "),
			TokenCount:  end - i,
			Index:       len(chunks),
		})
	}
	for _, chunk := range chunks {
		chunk.TotalChunks = len(chunks)
	}
	return chunks
}

func testPage(url, text string) *corpus.Page {
	return &corpus.Page{
		URL:       url,
		HTML:      "<html><body><article>" + text + "</article></body></html>",
		FetchedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

// passthroughExtractor returns the page HTML unchanged as content.
func passthroughExtractor() *mock.Extractor {
	return &mock.Extractor{
		ExtractFn: func(html string) (*corpus.ExtractResult, error) {
			return &corpus.ExtractResult{Title: "Test Page", ContentHTML: html}, nil
		},
	}
}

// stripTagsConverter removes the wrapping markup used by testPage.
func stripTagsConverter() *mock.Converter {
	replacer := strings.NewReplacer(
		"<html><body><article>", "",
		"</article></body></html>", "",
	)
	return &mock.Converter{
		ConvertFn: func(html string) (string, error) {
			return replacer.Replace(html), nil
		},
	}
}

func acceptAllProcessor() *mock.Processor {
	return &mock.Processor{
		ProcessFn: func(doc *corpus.Document) (*corpus.Document, corpus.Rejection) {
			return doc, corpus.RejectedNone
		},
	}
}

func quietLogger() *stdslog.Logger {
	return stdslog.New(stdslog.NewTextHandler(io.Discard, nil))
}

func longText(topic string) string {
	return strings.TrimSpace(strings.Repeat("The "+topic+" guide explains every step of the installation in detail. ", 5))
}

func TestPipeline_Run(t *testing.T) {
	t.Parallel()

	t.Run("end to end counters", func(t *testing.T) {
		t.Parallel()

		var exported []*corpus.Chunk
		p := &pipeline.Pipeline{
			Crawler: &mockCrawler{
				pages: []*corpus.Page{
					testPage("https://example.com/a", longText("setup")),
					testPage("https://example.com/b", longText("configuration")),
				},
				stats: crawl.Stats{Discovered: 7, Crawled: 2, Failed: 1, SkippedRobots: 1},
			},
			Extractor: passthroughExtractor(),
			Converter: stripTagsConverter(),
			Processor: acceptAllProcessor(),
			Chunker:   &mockChunker{wordsPerChunk: 20},
			Exporter: &mock.Exporter{
				ExportFn: func(ctx context.Context, chunks []*corpus.Chunk) (string, error) {
					exported = chunks
					return "/tmp/out/corpus.jsonl", nil
				},
			},
			Logger: quietLogger(),
		}

		stats, err := p.Run(context.Background(), []string{"https://example.com"})
		require.NoError(t, err)

		assert.Equal(t, 7, stats.URLsDiscovered)
		assert.Equal(t, 2, stats.PagesCrawled)
		assert.Equal(t, 1, stats.PagesFailed)
		assert.Equal(t, 1, stats.PagesSkippedRobots)
		assert.Equal(t, 2, stats.PagesExtracted)
		assert.Equal(t, 2, stats.DocumentsKept)
		assert.Equal(t, len(exported), stats.TotalChunks)
		assert.Greater(t, stats.TotalChunks, 2)
		assert.Greater(t, stats.TotalTokens, 0)
		assert.Equal(t, "/tmp/out/corpus.jsonl", stats.OutputPath)
		assert.False(t, stats.StartedAt.IsZero())
		assert.False(t, stats.FinishedAt.IsZero())
	})

	t.Run("documents carry page and extraction metadata", func(t *testing.T) {
		t.Parallel()

		var created []*corpus.Document
		p := &pipeline.Pipeline{
			Crawler: &mockCrawler{
				pages: []*corpus.Page{testPage("https://example.com/a", longText("setup"))},
				stats: crawl.Stats{Crawled: 1},
			},
			Extractor: passthroughExtractor(),
			Converter: stripTagsConverter(),
			Processor: acceptAllProcessor(),
			Chunker:   &mockChunker{wordsPerChunk: 100},
			Exporter: &mock.Exporter{
				ExportFn: func(ctx context.Context, chunks []*corpus.Chunk) (string, error) {
					return "out.jsonl", nil
				},
			},
			Documents: &mock.DocumentWriter{
				CreateDocumentFn: func(ctx context.Context, doc *corpus.Document) error {
					created = append(created, doc)
					return nil
				},
			},
			Logger: quietLogger(),
		}

		_, err := p.Run(context.Background(), []string{"https://example.com"})
		require.NoError(t, err)

		require.Len(t, created, 1)
		doc := created[0]
		assert.Equal(t, "https://example.com/a", doc.URL)
		assert.Equal(t, "Test Page", doc.Title)
		assert.Equal(t, longText("setup"), doc.Text)
		assert.Len(t, doc.ContentHash, 16)
		assert.Equal(t, len(strings.Fields(doc.Text)), doc.WordCount)
		assert.Equal(t, time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC), doc.CrawledAt)
	})

	t.Run("fallback extractor used when primary returns nothing", func(t *testing.T) {
		t.Parallel()

		primary := &mock.Extractor{
			ExtractFn: func(html string) (*corpus.ExtractResult, error) {
				return &corpus.ExtractResult{ContentHTML: ""}, nil
			},
		}
		var fallbackCalls int
		fallback := &mock.Extractor{
			ExtractFn: func(html string) (*corpus.ExtractResult, error) {
				fallbackCalls++
				return &corpus.ExtractResult{Title: "Fallback", ContentHTML: html}, nil
			},
		}

		p := &pipeline.Pipeline{
			Crawler: &mockCrawler{
				pages: []*corpus.Page{testPage("https://example.com/a", longText("setup"))},
				stats: crawl.Stats{Crawled: 1},
			},
			Extractor: primary,
			Fallback:  fallback,
			Converter: stripTagsConverter(),
			Processor: acceptAllProcessor(),
			Chunker:   &mockChunker{wordsPerChunk: 100},
			Exporter: &mock.Exporter{
				ExportFn: func(ctx context.Context, chunks []*corpus.Chunk) (string, error) {
					return "out.jsonl", nil
				},
			},
			Logger: quietLogger(),
		}

		stats, err := p.Run(context.Background(), []string{"https://example.com"})
		require.NoError(t, err)
		assert.Equal(t, 1, fallbackCalls)
		assert.Equal(t, 1, stats.PagesExtracted)
	})

	t.Run("fallback extractor used when primary errors", func(t *testing.T) {
		t.Parallel()

		primary := &mock.Extractor{
			ExtractFn: func(html string) (*corpus.ExtractResult, error) {
				return nil, errors.New("parse failure")
			},
		}
		fallback := passthroughExtractor()

		p := &pipeline.Pipeline{
			Crawler: &mockCrawler{
				pages: []*corpus.Page{testPage("https://example.com/a", longText("setup"))},
				stats: crawl.Stats{Crawled: 1},
			},
			Extractor: primary,
			Fallback:  fallback,
			Converter: stripTagsConverter(),
			Processor: acceptAllProcessor(),
			Chunker:   &mockChunker{wordsPerChunk: 100},
			Exporter: &mock.Exporter{
				ExportFn: func(ctx context.Context, chunks []*corpus.Chunk) (string, error) {
					return "out.jsonl", nil
				},
			},
			Logger: quietLogger(),
		}

		stats, err := p.Run(context.Background(), []string{"https://example.com"})
		require.NoError(t, err)
		assert.Equal(t, 1, stats.PagesExtracted)
	})

	t.Run("short pages are dropped before filtering", func(t *testing.T) {
		t.Parallel()

		p := &pipeline.Pipeline{
			Crawler: &mockCrawler{
				pages: []*corpus.Page{
					testPage("https://example.com/short", "tiny"),
					testPage("https://example.com/long", longText("setup")),
				},
				stats: crawl.Stats{Crawled: 2},
			},
			Extractor: passthroughExtractor(),
			Converter: stripTagsConverter(),
			Processor: acceptAllProcessor(),
			Chunker:   &mockChunker{wordsPerChunk: 100},
			Exporter: &mock.Exporter{
				ExportFn: func(ctx context.Context, chunks []*corpus.Chunk) (string, error) {
					return "out.jsonl", nil
				},
			},
			Logger: quietLogger(),
		}

		stats, err := p.Run(context.Background(), []string{"https://example.com"})
		require.NoError(t, err)
		assert.Equal(t, 1, stats.PagesTooShort)
		assert.Equal(t, 1, stats.PagesExtracted)
		assert.Equal(t, 1, stats.DocumentsKept)
	})

	t.Run("rejections routed to matching counters", func(t *testing.T) {
		t.Parallel()

		rejections := map[string]corpus.Rejection{
			"https://example.com/keep":  corpus.RejectedNone,
			"https://example.com/lang":  corpus.RejectedLanguage,
			"https://example.com/exact": corpus.RejectedExactDuplicate,
			"https://example.com/near":  corpus.RejectedNearDuplicate,
			"https://example.com/short": corpus.RejectedTooShort,
		}

		var pages []*corpus.Page
		for url := range rejections {
			pages = append(pages, testPage(url, longText("setup")))
		}

		p := &pipeline.Pipeline{
			Crawler:   &mockCrawler{pages: pages, stats: crawl.Stats{Crawled: len(pages)}},
			Extractor: passthroughExtractor(),
			Converter: stripTagsConverter(),
			Processor: &mock.Processor{
				ProcessFn: func(doc *corpus.Document) (*corpus.Document, corpus.Rejection) {
					if r := rejections[doc.URL]; r != corpus.RejectedNone {
						return nil, r
					}
					return doc, corpus.RejectedNone
				},
			},
			Chunker: &mockChunker{wordsPerChunk: 100},
			Exporter: &mock.Exporter{
				ExportFn: func(ctx context.Context, chunks []*corpus.Chunk) (string, error) {
					return "out.jsonl", nil
				},
			},
			Logger: quietLogger(),
		}

		stats, err := p.Run(context.Background(), []string{"https://example.com"})
		require.NoError(t, err)
		assert.Equal(t, 1, stats.PagesWrongLanguage)
		assert.Equal(t, 1, stats.ExactDuplicates)
		assert.Equal(t, 1, stats.NearDuplicates)
		assert.Equal(t, 1, stats.PagesTooShort)
		assert.Equal(t, 1, stats.DocumentsKept)
	})

	t.Run("chunks persisted when writer configured", func(t *testing.T) {
		t.Parallel()

		var persisted []*corpus.Chunk
		p := &pipeline.Pipeline{
			Crawler: &mockCrawler{
				pages: []*corpus.Page{testPage("https://example.com/a", longText("setup"))},
				stats: crawl.Stats{Crawled: 1},
			},
			Extractor: passthroughExtractor(),
			Converter: stripTagsConverter(),
			Processor: acceptAllProcessor(),
			Chunker:   &mockChunker{wordsPerChunk: 20},
			Chunks: &mock.ChunkWriter{
				CreateChunksFn: func(ctx context.Context, chunks []*corpus.Chunk) error {
					persisted = chunks
					return nil
				},
			},
			Exporter: &mock.Exporter{
				ExportFn: func(ctx context.Context, chunks []*corpus.Chunk) (string, error) {
					return "out.jsonl", nil
				},
			},
			Logger: quietLogger(),
		}

		stats, err := p.Run(context.Background(), []string{"https://example.com"})
		require.NoError(t, err)
		assert.Equal(t, stats.TotalChunks, len(persisted))
		assert.Greater(t, len(persisted), 0)
	})

	t.Run("embedder runs over all chunks", func(t *testing.T) {
		t.Parallel()

		p := &pipeline.Pipeline{
			Crawler: &mockCrawler{
				pages: []*corpus.Page{testPage("https://example.com/a", longText("setup"))},
				stats: crawl.Stats{Crawled: 1},
			},
			Extractor: passthroughExtractor(),
			Converter: stripTagsConverter(),
			Processor: acceptAllProcessor(),
			Chunker:   &mockChunker{wordsPerChunk: 20},
			Embedder: &mock.Embedder{
				EmbedChunksFn: func(ctx context.Context, chunks []*corpus.Chunk) error {
					for _, chunk := range chunks {
						chunk.Embedding = []float32{1, 2, 3}
					}
					return nil
				},
			},
			Exporter: &mock.Exporter{
				ExportFn: func(ctx context.Context, chunks []*corpus.Chunk) (string, error) {
					for _, chunk := range chunks {
						if chunk.Embedding == nil {
							return "", errors.New("chunk exported without embedding")
						}
					}
					return "out.jsonl", nil
				},
			},
			Logger: quietLogger(),
		}

		stats, err := p.Run(context.Background(), []string{"https://example.com"})
		require.NoError(t, err)
		assert.Equal(t, stats.TotalChunks, stats.EmbeddingsCreated)
		assert.Greater(t, stats.EmbeddingsCreated, 0)
	})

	t.Run("crawl error aborts the run", func(t *testing.T) {
		t.Parallel()

		wantErr := errors.New("network down")
		p := &pipeline.Pipeline{
			Crawler:   &mockCrawler{err: wantErr},
			Extractor: passthroughExtractor(),
			Converter: stripTagsConverter(),
			Processor: acceptAllProcessor(),
			Chunker:   &mockChunker{wordsPerChunk: 20},
			Exporter:  &mock.Exporter{},
			Logger:    quietLogger(),
		}

		_, err := p.Run(context.Background(), []string{"https://example.com"})
		require.ErrorIs(t, err, wantErr)
	})

	t.Run("export error aborts the run", func(t *testing.T) {
		t.Parallel()

		wantErr := errors.New("disk full")
		p := &pipeline.Pipeline{
			Crawler: &mockCrawler{
				pages: []*corpus.Page{testPage("https://example.com/a", longText("setup"))},
				stats: crawl.Stats{Crawled: 1},
			},
			Extractor: passthroughExtractor(),
			Converter: stripTagsConverter(),
			Processor: acceptAllProcessor(),
			Chunker:   &mockChunker{wordsPerChunk: 20},
			Exporter: &mock.Exporter{
				ExportFn: func(ctx context.Context, chunks []*corpus.Chunk) (string, error) {
					return "", wantErr
				},
			},
			Logger: quietLogger(),
		}

		_, err := p.Run(context.Background(), []string{"https://example.com"})
		require.ErrorIs(t, err, wantErr)
	})

	t.Run("document persistence failure does not abort the run", func(t *testing.T) {
		t.Parallel()

		p := &pipeline.Pipeline{
			Crawler: &mockCrawler{
				pages: []*corpus.Page{testPage("https://example.com/a", longText("setup"))},
				stats: crawl.Stats{Crawled: 1},
			},
			Extractor: passthroughExtractor(),
			Converter: stripTagsConverter(),
			Processor: acceptAllProcessor(),
			Chunker:   &mockChunker{wordsPerChunk: 20},
			Documents: &mock.DocumentWriter{
				CreateDocumentFn: func(ctx context.Context, doc *corpus.Document) error {
					return errors.New("db locked")
				},
			},
			Exporter: &mock.Exporter{
				ExportFn: func(ctx context.Context, chunks []*corpus.Chunk) (string, error) {
					return "out.jsonl", nil
				},
			},
			Logger: quietLogger(),
		}

		stats, err := p.Run(context.Background(), []string{"https://example.com"})
		require.NoError(t, err)
		assert.Equal(t, 1, stats.DocumentsKept)
	})

	t.Run("no pages produces empty export", func(t *testing.T) {
		t.Parallel()

		var exported []*corpus.Chunk
		exportCalled := false
		p := &pipeline.Pipeline{
			Crawler:   &mockCrawler{stats: crawl.Stats{}},
			Extractor: passthroughExtractor(),
			Converter: stripTagsConverter(),
			Processor: acceptAllProcessor(),
			Chunker:   &mockChunker{wordsPerChunk: 20},
			Exporter: &mock.Exporter{
				ExportFn: func(ctx context.Context, chunks []*corpus.Chunk) (string, error) {
					exportCalled = true
					exported = chunks
					return "out.jsonl", nil
				},
			},
			Logger: quietLogger(),
		}

		stats, err := p.Run(context.Background(), []string{"https://example.com"})
		require.NoError(t, err)
		assert.True(t, exportCalled)
		assert.Empty(t, exported)
		assert.Equal(t, 0, stats.TotalChunks)
	})
}
