// Package chunk splits cleaned documents into token-bounded, optionally
// overlapping text segments using one of four interchangeable strategies.
package chunk

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/fwojciec/corpus"
)

// Strategy selects a splitting algorithm.
type Strategy string

// Available chunking strategies.
const (
	StrategyRecursive     Strategy = "recursive"
	StrategySlidingWindow Strategy = "sliding_window"
	StrategySentence      Strategy = "sentence"
	StrategySemantic      Strategy = "semantic"
)

// ParseStrategy converts a strategy name to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(name) {
	case StrategyRecursive, StrategySlidingWindow, StrategySentence, StrategySemantic:
		return Strategy(name), nil
	default:
		return "", corpus.Errorf(corpus.EINVALID, "unsupported chunking strategy %q", name)
	}
}

// Chunk size bounds in tokens.
const (
	MinChunkSize    = 64
	MaxChunkSize    = 8192
	MaxChunkOverlap = 2048
)

// separators is the ordered list the recursive strategy walks, coarsest
// first. When none remain, the oversized remainder is force-split at raw
// token boundaries.
var separators = []string{"\n\n", "\n", ". ", "! ", "? ", "; ", ", ", " "}

// paragraphRe splits on two or more consecutive newlines.
var paragraphRe = regexp.MustCompile(`\n{2,}`)

// Config holds chunker settings.
type Config struct {
	Strategy Strategy

	// ChunkSize is the target segment size in tokens.
	ChunkSize int

	// ChunkOverlap is the number of trailing tokens of a chunk duplicated
	// into the next chunk. Must be less than ChunkSize.
	ChunkOverlap int
}

// Validate returns an EINVALID error if the configuration is unusable.
func (c Config) Validate() error {
	if _, err := ParseStrategy(string(c.Strategy)); err != nil {
		return err
	}
	if c.ChunkSize < MinChunkSize || c.ChunkSize > MaxChunkSize {
		return corpus.Errorf(corpus.EINVALID, "chunk size %d out of range [%d, %d]", c.ChunkSize, MinChunkSize, MaxChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap > MaxChunkOverlap {
		return corpus.Errorf(corpus.EINVALID, "chunk overlap %d out of range [0, %d]", c.ChunkOverlap, MaxChunkOverlap)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return corpus.Errorf(corpus.EINVALID, "chunk overlap %d must be less than chunk size %d", c.ChunkOverlap, c.ChunkSize)
	}
	return nil
}

// Chunker splits documents into chunks. It holds no cross-call state, so
// independent documents may be chunked in parallel by the caller.
type Chunker struct {
	cfg   Config
	tok   corpus.Tokenizer
	split func(text string) []string
}

// New creates a Chunker. The strategy is dispatched once here, not
// re-decided per call. Configuration errors are fatal and returned
// immediately.
func New(cfg Config, tok corpus.Tokenizer) (*Chunker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, corpus.Errorf(corpus.EINVALID, "tokenizer required")
	}

	c := &Chunker{cfg: cfg, tok: tok}
	switch cfg.Strategy {
	case StrategyRecursive:
		c.split = c.recursiveChunk
	case StrategySlidingWindow:
		c.split = c.slidingWindowChunk
	case StrategySentence:
		c.split = c.sentenceChunk
	case StrategySemantic:
		c.split = c.semanticChunk
	}
	return c, nil
}

// ChunkDocument splits a document into chunks. Empty or whitespace-only
// text yields zero chunks; text that fits within the chunk size yields
// exactly one chunk equal to the trimmed input.
//
// The overlap post-step duplicates trailing tokens of the previous chunk
// into the next chunk's text after size decisions were made, so a chunk's
// final token count may exceed ChunkSize by up to ChunkOverlap tokens.
func (c *Chunker) ChunkDocument(doc *corpus.Document) []*corpus.Chunk {
	text := strings.TrimSpace(doc.Text)
	if text == "" {
		return nil
	}

	texts := c.split(text)

	// Sliding-window overlap is a property of window placement, not
	// injected text. The other strategies share one overlap post-step.
	if c.cfg.Strategy != StrategySlidingWindow && c.cfg.ChunkOverlap > 0 && len(texts) > 1 {
		texts = c.applyOverlap(texts)
	}

	total := len(texts)
	chunks := make([]*corpus.Chunk, 0, total)
	for i, chunkText := range texts {
		metadata := make(map[string]string, len(doc.Metadata)+2)
		for k, v := range doc.Metadata {
			metadata[k] = v
		}
		if doc.Language != "" {
			metadata["language"] = doc.Language
		}
		metadata["source_word_count"] = fmt.Sprintf("%d", doc.WordCount)

		sum := sha256.Sum256([]byte(chunkText))
		chunks = append(chunks, &corpus.Chunk{
			ID:            ChunkID(doc.URL, i, chunkText),
			DocumentURL:   doc.URL,
			DocumentTitle: doc.Title,
			Text:          chunkText,
			TokenCount:    c.tok.Count(chunkText),
			Index:         i,
			TotalChunks:   total,
			ContentHash:   hex.EncodeToString(sum[:]),
			Metadata:      metadata,
		})
	}
	return chunks
}

// ChunkID derives a stable, collision-resistant chunk identifier from the
// document URL, chunk index, and the chunk's first 100 characters, so
// re-running the pipeline on unchanged input reproduces identical IDs.
func ChunkID(documentURL string, index int, text string) string {
	prefix := text
	if runes := []rune(text); len(runes) > 100 {
		prefix = string(runes[:100])
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s::%d::%s", documentURL, index, prefix)))
	return hex.EncodeToString(sum[:])[:16]
}

// recursiveChunk splits by decreasing separator granularity.
func (c *Chunker) recursiveChunk(text string) []string {
	return c.recursiveSplit(text, 0)
}

func (c *Chunker) recursiveSplit(text string, depth int) []string {
	if c.tok.Count(text) <= c.cfg.ChunkSize {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []string{trimmed}
	}

	if depth >= len(separators) {
		return c.forceSplit(text)
	}

	sep := separators[depth]
	parts := strings.Split(text, sep)

	var chunks []string
	current := ""

	// Flush the running buffer, recursing one separator finer on a piece
	// that still exceeds the budget on its own.
	flush := func() {
		if strings.TrimSpace(current) == "" {
			return
		}
		if c.tok.Count(current) <= c.cfg.ChunkSize {
			chunks = append(chunks, strings.TrimSpace(current))
		} else {
			chunks = append(chunks, c.recursiveSplit(current, depth+1)...)
		}
	}

	for _, part := range parts {
		candidate := part
		if current != "" {
			candidate = current + sep + part
		}
		if c.tok.Count(candidate) <= c.cfg.ChunkSize {
			current = candidate
		} else {
			flush()
			current = part
		}
	}
	flush()

	return chunks
}

// slidingWindowChunk emits fixed-size token windows advancing by
// ChunkSize - ChunkOverlap tokens. The final window is clipped.
func (c *Chunker) slidingWindowChunk(text string) []string {
	tokens := c.tok.Encode(text)
	step := c.cfg.ChunkSize - c.cfg.ChunkOverlap
	if step < 1 {
		step = 1
	}

	var chunks []string
	for i := 0; i < len(tokens); i += step {
		end := i + c.cfg.ChunkSize
		if end > len(tokens) {
			end = len(tokens)
		}
		chunkText := strings.TrimSpace(c.tok.Decode(tokens[i:end]))
		if chunkText != "" {
			chunks = append(chunks, chunkText)
		}
		if i+c.cfg.ChunkSize >= len(tokens) {
			break
		}
	}
	return chunks
}

// sentenceChunk greedily accumulates sentences. A single sentence that
// alone exceeds the budget is force-split at token boundaries and the
// accumulation buffer is reset.
func (c *Chunker) sentenceChunk(text string) []string {
	sentences := splitSentences(text)

	var chunks []string
	current := ""
	for _, sentence := range sentences {
		candidate := sentence
		if current != "" {
			candidate = current + " " + sentence
		}
		if c.tok.Count(candidate) <= c.cfg.ChunkSize {
			current = candidate
			continue
		}
		if strings.TrimSpace(current) != "" {
			chunks = append(chunks, strings.TrimSpace(current))
		}
		if c.tok.Count(sentence) > c.cfg.ChunkSize {
			chunks = append(chunks, c.forceSplit(sentence)...)
			current = ""
		} else {
			current = sentence
		}
	}
	if strings.TrimSpace(current) != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}
	return chunks
}

// semanticChunk accumulates paragraphs split on blank lines. An oversized
// single paragraph is re-chunked with the recursive strategy rather than
// force-split.
func (c *Chunker) semanticChunk(text string) []string {
	paragraphs := paragraphRe.Split(text, -1)

	var chunks []string
	current := ""
	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		candidate := para
		if current != "" {
			candidate = current + "\n\n" + para
		}
		if c.tok.Count(candidate) <= c.cfg.ChunkSize {
			current = candidate
			continue
		}
		if strings.TrimSpace(current) != "" {
			chunks = append(chunks, strings.TrimSpace(current))
		}
		if c.tok.Count(para) > c.cfg.ChunkSize {
			chunks = append(chunks, c.recursiveChunk(para)...)
			current = ""
		} else {
			current = para
		}
	}
	if strings.TrimSpace(current) != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}
	return chunks
}

// forceSplit cuts text at raw token boundaries into ChunkSize-token
// pieces, used only when no separator can satisfy the budget.
func (c *Chunker) forceSplit(text string) []string {
	tokens := c.tok.Encode(text)

	var chunks []string
	for i := 0; i < len(tokens); i += c.cfg.ChunkSize {
		end := i + c.cfg.ChunkSize
		if end > len(tokens) {
			end = len(tokens)
		}
		decoded := strings.TrimSpace(c.tok.Decode(tokens[i:end]))
		if decoded != "" {
			chunks = append(chunks, decoded)
		}
	}
	return chunks
}

// applyOverlap prepends the trailing ChunkOverlap tokens of chunk i-1 to
// chunk i. Chunk 0 is never modified.
func (c *Chunker) applyOverlap(chunks []string) []string {
	result := make([]string, 0, len(chunks))
	result = append(result, chunks[0])

	for i := 1; i < len(chunks); i++ {
		prevTokens := c.tok.Encode(chunks[i-1])
		var overlapText string
		if len(prevTokens) > c.cfg.ChunkOverlap {
			overlapText = c.tok.Decode(prevTokens[len(prevTokens)-c.cfg.ChunkOverlap:])
		} else {
			overlapText = chunks[i-1]
		}
		result = append(result, strings.TrimSpace(overlapText+" "+chunks[i]))
	}
	return result
}

// splitSentences splits text at sentence boundaries: a '.', '!', or '?'
// followed by whitespace ends a sentence.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes)-1; i++ {
		r := runes[i]
		if (r == '.' || r == '!' || r == '?') && unicode.IsSpace(runes[i+1]) {
			sentences = append(sentences, string(runes[start:i+1]))
			// Skip the whitespace run between sentences.
			j := i + 1
			for j < len(runes) && unicode.IsSpace(runes[j]) {
				j++
			}
			start = j
			i = j - 1
		}
	}
	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}
	return sentences
}
