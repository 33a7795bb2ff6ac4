package corpus

// Tokenizer counts and slices text at token boundaries. Implementations
// must be deterministic: identical text always yields identical tokens.
type Tokenizer interface {
	// Count returns the number of tokens in text.
	Count(text string) int

	// Encode converts text to token IDs.
	Encode(text string) []int

	// Decode converts token IDs back to text.
	Decode(tokens []int) string
}

// LanguageDetector detects the language of a text sample.
type LanguageDetector interface {
	// Detect returns an ISO 639-1 language code and a confidence in [0,1].
	// Undetectable text returns ("unknown", 0).
	Detect(text string) (lang string, confidence float64)
}
