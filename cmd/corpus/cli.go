package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/corpus"
	"github.com/fwojciec/corpus/pipeline"
	"github.com/fwojciec/corpus/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	DB        *sqlite.DB
	Documents *sqlite.DocumentService
	Chunks    *sqlite.ChunkService
	Seeds     corpus.SeedSource
	Pipeline  *pipeline.Pipeline
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Build    BuildCmd    `cmd:"" help:"Crawl sites and build a chunked corpus"`
	Discover DiscoverCmd `cmd:"" help:"List URLs discovered from a site's sitemap"`
	Stats    StatsCmd    `cmd:"" help:"Show counts for a corpus database"`

	Verbose bool `short:"v" help:"Enable debug logging"`
}

// BuildCmd is the "build" subcommand.
type BuildCmd struct {
	Seeds []string `arg:"" help:"Seed URLs to crawl from"`

	// Crawl flags.
	MaxPages       int               `default:"100" help:"Maximum pages to fetch"`
	MaxDepth       int               `default:"3" help:"Maximum link depth from the seeds"`
	Concurrency    int               `short:"c" default:"5" help:"Concurrent fetch limit"`
	Delay          time.Duration     `default:"1s" help:"Minimum delay between requests to one origin"`
	Timeout        time.Duration     `default:"30s" help:"Per-request timeout"`
	UserAgent      string            `default:"corpus-builder/1.0" help:"User-Agent header"`
	Header         map[string]string `help:"Extra request headers (key=value, repeatable)"`
	NoRobots       bool              `help:"Ignore robots.txt"`
	AllowedDomains []string          `help:"Domains to stay within (defaults to seed domains)"`
	Exclude        []string          `help:"URL patterns to skip (repeatable, regex)"`
	Sitemap        bool              `help:"Seed the crawl from the site's sitemap"`

	// Chunking flags.
	Strategy     string `default:"recursive" enum:"recursive,sliding_window,sentence,semantic" help:"Chunking strategy"`
	ChunkSize    int    `default:"512" help:"Target chunk size in tokens"`
	ChunkOverlap int    `default:"64" help:"Token overlap between consecutive chunks"`
	Encoding     string `default:"cl100k_base" help:"Tokenizer encoding"`

	// Filtering flags.
	Languages         []string `default:"en" help:"Target languages (ISO 639-1)"`
	MinLangConfidence float64  `default:"0.8" help:"Minimum language detection confidence"`
	MinLength         int      `default:"50" help:"Drop documents shorter than this many characters"`
	Lowercase         bool     `help:"Lowercase all text"`
	NoDedup           bool     `help:"Disable duplicate detection"`
	DedupThreshold    float64  `default:"0.95" help:"Near-duplicate similarity threshold"`

	// Output flags.
	Output    string `short:"o" default:"./corpus_output" help:"Output directory"`
	Prefix    string `default:"corpus" help:"Output filename prefix"`
	Compress  bool   `help:"Gzip the JSONL output"`
	DB        string `name:"db" help:"SQLite database path for persisting documents and chunks"`
	Embed     bool   `help:"Generate embeddings (requires GEMINI_API_KEY)"`
	EmbedModel string `default:"gemini-embedding-001" help:"Embedding model"`
}

// DiscoverCmd is the "discover" subcommand.
type DiscoverCmd struct {
	URL string `arg:"" help:"Site URL to discover from"`
}

// StatsCmd is the "stats" subcommand.
type StatsCmd struct {
	DB string `arg:"" help:"SQLite database path"`
}
