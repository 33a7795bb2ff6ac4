// Package fs exports processed chunks to files on disk.
package fs

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/fwojciec/corpus"
)

// DefaultFilenamePrefix is the default base name for export files.
const DefaultFilenamePrefix = "corpus"

// Ensure Exporter implements corpus.Exporter at compile time.
var _ corpus.Exporter = (*Exporter)(nil)

// Exporter writes chunks as JSON Lines to a directory, one chunk per
// line, optionally gzip-compressed.
type Exporter struct {
	outputDir         string
	prefix            string
	compress          bool
	includeEmbeddings bool
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithPrefix sets the base name for export files.
// Defaults to DefaultFilenamePrefix.
func WithPrefix(prefix string) Option {
	return func(e *Exporter) {
		e.prefix = prefix
	}
}

// WithCompression enables gzip compression of the JSONL output.
func WithCompression(compress bool) Option {
	return func(e *Exporter) {
		e.compress = compress
	}
}

// WithEmbeddings includes chunk embeddings in the output when present.
func WithEmbeddings(include bool) Option {
	return func(e *Exporter) {
		e.includeEmbeddings = include
	}
}

// NewExporter creates an Exporter writing to outputDir.
func NewExporter(outputDir string, opts ...Option) *Exporter {
	e := &Exporter{
		outputDir: outputDir,
		prefix:    DefaultFilenamePrefix,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export writes chunks to <outputDir>/<prefix>.jsonl (or .jsonl.gz when
// compression is enabled) and returns the output path. An empty chunk
// slice still produces an empty file.
func (e *Exporter) Export(ctx context.Context, chunks []*corpus.Chunk) (string, error) {
	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return "", corpus.Errorf(corpus.EINTERNAL, "creating output directory: %v", err)
	}

	suffix := ".jsonl"
	if e.compress {
		suffix = ".jsonl.gz"
	}
	path := filepath.Join(e.outputDir, e.prefix+suffix)

	f, err := os.Create(path)
	if err != nil {
		return "", corpus.Errorf(corpus.EINTERNAL, "creating output file: %v", err)
	}
	defer f.Close()

	var w io.Writer = f
	var gz *gzip.Writer
	if e.compress {
		gz = gzip.NewWriter(f)
		w = gz
	}

	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)

	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		out := *chunk
		if !e.includeEmbeddings {
			out.Embedding = nil
		}
		if err := enc.Encode(&out); err != nil {
			return "", corpus.Errorf(corpus.EINTERNAL, "encoding chunk %s: %v", chunk.ID, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return "", corpus.Errorf(corpus.EINTERNAL, "flushing output: %v", err)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return "", corpus.Errorf(corpus.EINTERNAL, "closing gzip writer: %v", err)
		}
	}
	if err := f.Close(); err != nil {
		return "", corpus.Errorf(corpus.EINTERNAL, "closing output file: %v", err)
	}

	return path, nil
}

// WriteStats writes a <prefix>_stats.json sidecar next to the export
// file. The stats value must be JSON-serialisable.
func (e *Exporter) WriteStats(stats any) (string, error) {
	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return "", corpus.Errorf(corpus.EINTERNAL, "creating output directory: %v", err)
	}

	path := filepath.Join(e.outputDir, e.prefix+"_stats.json")
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return "", corpus.Errorf(corpus.EINTERNAL, "encoding stats: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", corpus.Errorf(corpus.EINTERNAL, "writing stats: %v", err)
	}
	return path, nil
}
