// Package whatlanggo implements corpus.LanguageDetector using the
// whatlanggo trigram-based language detection library.
package whatlanggo

import (
	"strings"

	"github.com/abadojack/whatlanggo"
	"github.com/fwojciec/corpus"
)

// Ensure Detector implements corpus.LanguageDetector at compile time.
var _ corpus.LanguageDetector = (*Detector)(nil)

// Detector detects document languages with confidence scores.
type Detector struct{}

// NewDetector creates a new Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect returns the ISO 639-1 code of the text's language and the
// detection confidence in [0,1]. Undetectable text returns ("unknown", 0).
func (d *Detector) Detect(text string) (string, float64) {
	if strings.TrimSpace(text) == "" {
		return "unknown", 0
	}

	info := whatlanggo.Detect(text)
	code := info.Lang.Iso6391()
	if code == "" {
		return "unknown", 0
	}

	confidence := info.Confidence
	if confidence > 1 {
		confidence = 1
	}
	return code, confidence
}
