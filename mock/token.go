package mock

import "github.com/fwojciec/corpus"

var _ corpus.Tokenizer = (*Tokenizer)(nil)

// Tokenizer is a mock implementation of corpus.Tokenizer.
type Tokenizer struct {
	CountFn  func(text string) int
	EncodeFn func(text string) []int
	DecodeFn func(tokens []int) string
}

func (t *Tokenizer) Count(text string) int {
	return t.CountFn(text)
}

func (t *Tokenizer) Encode(text string) []int {
	return t.EncodeFn(text)
}

func (t *Tokenizer) Decode(tokens []int) string {
	return t.DecodeFn(tokens)
}

var _ corpus.LanguageDetector = (*LanguageDetector)(nil)

// LanguageDetector is a mock implementation of corpus.LanguageDetector.
type LanguageDetector struct {
	DetectFn func(text string) (string, float64)
}

func (d *LanguageDetector) Detect(text string) (string, float64) {
	return d.DetectFn(text)
}
