package chunk_test

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/fwojciec/corpus"
	"github.com/fwojciec/corpus/chunk"
	"github.com/fwojciec/corpus/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wordTokenizer treats every whitespace-separated word as one token, which
// makes token arithmetic exact in tests.
func wordTokenizer() *mock.Tokenizer {
	var mu sync.Mutex
	vocab := map[string]int{}
	var words []string

	return &mock.Tokenizer{
		CountFn: func(text string) int {
			return len(strings.Fields(text))
		},
		EncodeFn: func(text string) []int {
			mu.Lock()
			defer mu.Unlock()
			fields := strings.Fields(text)
			ids := make([]int, len(fields))
			for i, w := range fields {
				id, ok := vocab[w]
				if !ok {
					id = len(words)
					vocab[w] = id
					words = append(words, w)
				}
				ids[i] = id
			}
			return ids
		},
		DecodeFn: func(tokens []int) string {
			mu.Lock()
			defer mu.Unlock()
			parts := make([]string, len(tokens))
			for i, id := range tokens {
				parts[i] = words[id]
			}
			return strings.Join(parts, " ")
		},
	}
}

// nWords returns "w0 w1 ... w(n-1)" offset by base.
func nWords(base, n int) string {
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = fmt.Sprintf("w%d", base+i)
	}
	return strings.Join(parts, " ")
}

func doc(text string) *corpus.Document {
	return &corpus.Document{
		URL:       "https://example.com/docs/page",
		Title:     "Page",
		Text:      text,
		Language:  "en",
		WordCount: len(strings.Fields(text)),
	}
}

func newChunker(t *testing.T, strategy chunk.Strategy, size, overlap int) *chunk.Chunker {
	t.Helper()
	c, err := chunk.New(chunk.Config{
		Strategy:     strategy,
		ChunkSize:    size,
		ChunkOverlap: overlap,
	}, wordTokenizer())
	require.NoError(t, err)
	return c
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     chunk.Config
		wantErr bool
	}{
		{"valid", chunk.Config{Strategy: chunk.StrategyRecursive, ChunkSize: 512, ChunkOverlap: 64}, false},
		{"zero overlap", chunk.Config{Strategy: chunk.StrategySentence, ChunkSize: 64, ChunkOverlap: 0}, false},
		{"unknown strategy", chunk.Config{Strategy: "markov", ChunkSize: 512}, true},
		{"size below minimum", chunk.Config{Strategy: chunk.StrategyRecursive, ChunkSize: 32}, true},
		{"size above maximum", chunk.Config{Strategy: chunk.StrategyRecursive, ChunkSize: 10000}, true},
		{"negative overlap", chunk.Config{Strategy: chunk.StrategyRecursive, ChunkSize: 512, ChunkOverlap: -1}, true},
		{"overlap above maximum", chunk.Config{Strategy: chunk.StrategyRecursive, ChunkSize: 4096, ChunkOverlap: 4000}, true},
		{"overlap equals size", chunk.Config{Strategy: chunk.StrategyRecursive, ChunkSize: 64, ChunkOverlap: 64}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, corpus.EINVALID, corpus.ErrorCode(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseStrategy(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"recursive", "sliding_window", "sentence", "semantic"} {
		s, err := chunk.ParseStrategy(name)
		require.NoError(t, err)
		assert.Equal(t, chunk.Strategy(name), s)
	}

	_, err := chunk.ParseStrategy("fixed")
	require.Error(t, err)
	assert.Equal(t, corpus.EINVALID, corpus.ErrorCode(err))
}

func TestChunkDocument_empty_text_yields_no_chunks(t *testing.T) {
	t.Parallel()

	c := newChunker(t, chunk.StrategyRecursive, 64, 0)

	assert.Empty(t, c.ChunkDocument(doc("")))
	assert.Empty(t, c.ChunkDocument(doc("   \n\t  ")))
}

func TestChunkDocument_text_within_budget_yields_one_chunk(t *testing.T) {
	t.Parallel()

	c := newChunker(t, chunk.StrategyRecursive, 64, 16)
	text := nWords(0, 40)

	chunks := c.ChunkDocument(doc("  " + text + "  "))
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 1, chunks[0].TotalChunks)
	assert.Equal(t, 40, chunks[0].TokenCount)
}

func TestChunkDocument_recursive_respects_token_budget(t *testing.T) {
	t.Parallel()

	c := newChunker(t, chunk.StrategyRecursive, 64, 0)

	var paras []string
	for i := 0; i < 8; i++ {
		paras = append(paras, nWords(i*40, 40))
	}
	chunks := c.ChunkDocument(doc(strings.Join(paras, "\n\n")))
	require.NotEmpty(t, chunks)

	for _, ch := range chunks {
		assert.LessOrEqual(t, ch.TokenCount, 64, "chunk %d exceeds budget", ch.Index)
	}
}

func TestChunkDocument_recursive_preserves_content_without_overlap(t *testing.T) {
	t.Parallel()

	c := newChunker(t, chunk.StrategyRecursive, 64, 0)

	var paras []string
	for i := 0; i < 8; i++ {
		paras = append(paras, nWords(i*40, 40))
	}
	original := strings.Join(paras, "\n\n")

	chunks := c.ChunkDocument(doc(original))
	var got []string
	for _, ch := range chunks {
		got = append(got, strings.Fields(ch.Text)...)
	}
	assert.Equal(t, strings.Fields(original), got, "every word survives in order")
}

func TestChunkDocument_overlap_duplicates_trailing_tokens(t *testing.T) {
	t.Parallel()

	c := newChunker(t, chunk.StrategyRecursive, 64, 16)

	var paras []string
	for i := 0; i < 4; i++ {
		paras = append(paras, nWords(i*40, 40))
	}
	chunks := c.ChunkDocument(doc(strings.Join(paras, "\n\n")))
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prevWords := strings.Fields(chunks[i-1].Text)
		tail := prevWords[len(prevWords)-16:]
		assert.True(t, strings.HasPrefix(chunks[i].Text, strings.Join(tail, " ")),
			"chunk %d should start with the previous chunk's tail", i)
	}
}

func TestChunkDocument_sliding_window_advances_by_step(t *testing.T) {
	t.Parallel()

	c := newChunker(t, chunk.StrategySlidingWindow, 100, 20)
	text := nWords(0, 300)

	chunks := c.ChunkDocument(doc(text))
	require.Len(t, chunks, 4, "300 tokens, window 100, step 80")

	// Window i starts at token i*80.
	assert.Equal(t, "w0", strings.Fields(chunks[0].Text)[0])
	assert.Equal(t, "w80", strings.Fields(chunks[1].Text)[0])
	assert.Equal(t, "w160", strings.Fields(chunks[2].Text)[0])
	assert.Equal(t, "w240", strings.Fields(chunks[3].Text)[0])

	// The final window is clipped to the remaining tokens.
	assert.Equal(t, 60, chunks[3].TokenCount)
}

func TestChunkDocument_sentence_strategy_keeps_sentences_whole(t *testing.T) {
	t.Parallel()

	c := newChunker(t, chunk.StrategySentence, 64, 0)

	var sentences []string
	for i := 0; i < 10; i++ {
		sentences = append(sentences, nWords(i*30, 30)+".")
	}
	chunks := c.ChunkDocument(doc(strings.Join(sentences, " ")))
	require.NotEmpty(t, chunks)

	// 30-word sentences pack two per 64-token chunk.
	for _, ch := range chunks {
		assert.LessOrEqual(t, ch.TokenCount, 64)
	}
	assert.Len(t, chunks, 5)
}

func TestChunkDocument_sentence_strategy_force_splits_oversized_sentence(t *testing.T) {
	t.Parallel()

	c := newChunker(t, chunk.StrategySentence, 64, 0)

	// One 200-word sentence with no internal boundaries.
	text := nWords(0, 200) + "."
	chunks := c.ChunkDocument(doc(text))
	require.NotEmpty(t, chunks)

	for _, ch := range chunks {
		assert.LessOrEqual(t, ch.TokenCount, 64)
	}
	assert.GreaterOrEqual(t, len(chunks), 3)
}

func TestChunkDocument_semantic_strategy_groups_paragraphs(t *testing.T) {
	t.Parallel()

	c := newChunker(t, chunk.StrategySemantic, 64, 0)

	paras := []string{nWords(0, 20), nWords(20, 20), nWords(40, 20), nWords(60, 50)}
	chunks := c.ChunkDocument(doc(strings.Join(paras, "\n\n")))
	require.Len(t, chunks, 2)

	// The first three paragraphs fit one budget together.
	assert.Equal(t, 60, chunks[0].TokenCount)
	assert.Equal(t, 50, chunks[1].TokenCount)
}

func TestChunkDocument_is_deterministic(t *testing.T) {
	t.Parallel()

	c := newChunker(t, chunk.StrategyRecursive, 64, 16)
	d := doc(nWords(0, 500))

	first := c.ChunkDocument(d)
	second := c.ChunkDocument(d)
	require.Equal(t, len(first), len(second))

	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Text, second[i].Text)
		assert.Equal(t, first[i].ContentHash, second[i].ContentHash)
	}
}

func TestChunkDocument_IDs_are_unique_within_a_document(t *testing.T) {
	t.Parallel()

	c := newChunker(t, chunk.StrategyRecursive, 64, 0)
	chunks := c.ChunkDocument(doc(nWords(0, 500)))
	require.Greater(t, len(chunks), 1)

	seen := map[string]bool{}
	for _, ch := range chunks {
		assert.False(t, seen[ch.ID], "duplicate chunk ID %s", ch.ID)
		seen[ch.ID] = true
	}
}

func TestChunkDocument_stamps_metadata(t *testing.T) {
	t.Parallel()

	c := newChunker(t, chunk.StrategyRecursive, 64, 0)
	d := doc(nWords(0, 40))
	d.Metadata = map[string]string{"description": "test page"}

	chunks := c.ChunkDocument(d)
	require.Len(t, chunks, 1)

	assert.Equal(t, "test page", chunks[0].Metadata["description"])
	assert.Equal(t, "en", chunks[0].Metadata["language"])
	assert.Equal(t, "40", chunks[0].Metadata["source_word_count"])
	assert.Equal(t, "https://example.com/docs/page", chunks[0].DocumentURL)
	assert.Equal(t, "Page", chunks[0].DocumentTitle)
	assert.Len(t, chunks[0].ContentHash, 64, "sha256 hex")
}

func TestChunkID_uses_URL_index_and_text_prefix(t *testing.T) {
	t.Parallel()

	a := chunk.ChunkID("https://example.com/a", 0, "some text")
	assert.Len(t, a, 16)

	assert.NotEqual(t, a, chunk.ChunkID("https://example.com/b", 0, "some text"))
	assert.NotEqual(t, a, chunk.ChunkID("https://example.com/a", 1, "some text"))
	assert.NotEqual(t, a, chunk.ChunkID("https://example.com/a", 0, "other text"))

	// Only the first 100 characters of text participate.
	long := strings.Repeat("x", 100)
	assert.Equal(t,
		chunk.ChunkID("https://example.com/a", 0, long+"tail one"),
		chunk.ChunkID("https://example.com/a", 0, long+"tail two"),
	)
}

func TestNew_requires_a_tokenizer(t *testing.T) {
	t.Parallel()

	_, err := chunk.New(chunk.Config{Strategy: chunk.StrategyRecursive, ChunkSize: 512}, nil)
	require.Error(t, err)
	assert.Equal(t, corpus.EINVALID, corpus.ErrorCode(err))
}
