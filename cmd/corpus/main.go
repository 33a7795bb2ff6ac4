package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/corpus/chunk"
	"github.com/fwojciec/corpus/crawl"
	"github.com/fwojciec/corpus/dedupe"
	"github.com/fwojciec/corpus/fs"
	"github.com/fwojciec/corpus/gemini"
	"github.com/fwojciec/corpus/goquery"
	"github.com/fwojciec/corpus/htmltomarkdown"
	corpushttp "github.com/fwojciec/corpus/http"
	"github.com/fwojciec/corpus/pipeline"
	"github.com/fwojciec/corpus/robotstxt"
	corpusslog "github.com/fwojciec/corpus/slog"
	"github.com/fwojciec/corpus/sqlite"
	"github.com/fwojciec/corpus/tiktoken"
	"github.com/fwojciec/corpus/trafilatura"
	"github.com/fwojciec/corpus/whatlanggo"
	"google.golang.org/genai"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// SQLite database, opened only when a command asks for one.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("corpus"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'corpus --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	defer m.Close()

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	deps.Seeds = corpushttp.NewSitemapSource(nil)

	if cmd == "stats" {
		m.DB = sqlite.NewDB(cli.Stats.DB)
		if err := m.DB.Open(); err != nil {
			return fmt.Errorf("failed to open database at %q: %w", cli.Stats.DB, err)
		}
		deps.DB = m.DB
		deps.Documents = sqlite.NewDocumentService(m.DB)
		deps.Chunks = sqlite.NewChunkService(m.DB)
	}

	if cmd == "build" {
		p, err := m.buildPipeline(ctx, cli, deps)
		if err != nil {
			return err
		}
		deps.Pipeline = p
	}

	return kongCtx.Run(deps)
}

// buildPipeline wires the full pipeline from build command flags.
func (m *Main) buildPipeline(ctx context.Context, cli *CLI, deps *Dependencies) (*pipeline.Pipeline, error) {
	b := &cli.Build

	fetcher := corpushttp.NewFetcher(
		corpushttp.WithTimeout(b.Timeout),
		corpushttp.WithUserAgent(b.UserAgent),
		corpushttp.WithHeaders(b.Header),
	)

	crawler := &crawl.Crawler{
		Fetcher: corpusslog.NewLoggingFetcher(fetcher, deps.Logger),
		Robots:  robotstxt.NewCache(b.UserAgent),
		Limiter: crawl.NewDomainLimiter(b.Delay),
		Links:   goquery.NewLinkExtractor(),
		Logger:  deps.Logger,
		Config: crawl.Config{
			MaxPages:         b.MaxPages,
			MaxDepth:         b.MaxDepth,
			Concurrency:      b.Concurrency,
			PerDomainDelay:   b.Delay,
			RespectRobots:    !b.NoRobots,
			AllowedDomains:   b.AllowedDomains,
			ExcludedPatterns: append(crawl.DefaultExcludedPatterns(), b.Exclude...),
		},
	}

	strategy, err := chunk.ParseStrategy(b.Strategy)
	if err != nil {
		return nil, err
	}
	tokenizer, err := tiktoken.NewTokenizer(b.Encoding)
	if err != nil {
		return nil, err
	}
	chunker, err := chunk.New(chunk.Config{
		Strategy:     strategy,
		ChunkSize:    b.ChunkSize,
		ChunkOverlap: b.ChunkOverlap,
	}, tokenizer)
	if err != nil {
		return nil, err
	}

	processor := dedupe.New(dedupe.Config{
		TargetLanguages:       b.Languages,
		MinLanguageConfidence: b.MinLangConfidence,
		DedupEnabled:          !b.NoDedup,
		DedupThreshold:        b.DedupThreshold,
		Lowercase:             b.Lowercase,
		CollapseWhitespace:    true,
		MinTextLength:         b.MinLength,
	}, whatlanggo.NewDetector())

	p := &pipeline.Pipeline{
		Crawler:   crawler,
		Extractor: trafilatura.NewExtractor(),
		Fallback:  goquery.NewExtractor(),
		Converter: htmltomarkdown.NewConverter(),
		Processor: corpusslog.NewLoggingProcessor(processor, deps.Logger),
		Chunker:   chunker,
		Exporter: fs.NewExporter(b.Output,
			fs.WithPrefix(b.Prefix),
			fs.WithCompression(b.Compress),
			fs.WithEmbeddings(b.Embed),
		),
		Logger:           deps.Logger,
		MinContentLength: b.MinLength,
	}

	if b.DB != "" {
		m.DB = sqlite.NewDB(b.DB)
		if err := m.DB.Open(); err != nil {
			return nil, fmt.Errorf("failed to open database at %q: %w", b.DB, err)
		}
		p.Documents = sqlite.NewDocumentService(m.DB)
		p.Chunks = sqlite.NewChunkService(m.DB)
	}

	if b.Embed {
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY not set. Get a key at https://aistudio.google.com/apikey")
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
		}
		p.Embedder = gemini.NewEmbedder(client, gemini.WithModel(b.EmbedModel))
	}

	return p, nil
}
