// Package tiktoken implements corpus.Tokenizer using the tiktoken BPE
// encodings (cl100k_base by default), matching the token accounting of
// OpenAI-style embedding models.
package tiktoken

import (
	"github.com/fwojciec/corpus"
	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the tokenizer encoding used when none is named.
const DefaultEncoding = "cl100k_base"

// Ensure Tokenizer implements corpus.Tokenizer at compile time.
var _ corpus.Tokenizer = (*Tokenizer)(nil)

// Tokenizer counts and slices text with a tiktoken BPE encoding.
// It is safe for concurrent use.
type Tokenizer struct {
	enc *tiktoken.Tiktoken
}

// NewTokenizer creates a Tokenizer for the named encoding.
// An unknown encoding name is a configuration error.
func NewTokenizer(encoding string) (*Tokenizer, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, corpus.Errorf(corpus.EINVALID, "unknown tokenizer encoding %q: %v", encoding, err)
	}
	return &Tokenizer{enc: enc}, nil
}

// Count returns the number of tokens in text.
func (t *Tokenizer) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(t.enc.Encode(text, nil, nil))
}

// Encode converts text to token IDs.
func (t *Tokenizer) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

// Decode converts token IDs back to text.
func (t *Tokenizer) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}
