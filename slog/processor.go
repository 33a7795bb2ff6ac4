package slog

import (
	"log/slog"

	"github.com/fwojciec/corpus"
)

// Ensure LoggingProcessor implements corpus.Processor at compile time.
var _ corpus.Processor = (*LoggingProcessor)(nil)

// LoggingProcessor wraps a Processor and logs every rejection.
type LoggingProcessor struct {
	next   corpus.Processor
	logger *slog.Logger
}

// NewLoggingProcessor creates a new LoggingProcessor.
func NewLoggingProcessor(next corpus.Processor, logger *slog.Logger) *LoggingProcessor {
	return &LoggingProcessor{next: next, logger: logger}
}

// Process delegates to the wrapped processor and logs rejected documents.
func (p *LoggingProcessor) Process(doc *corpus.Document) (*corpus.Document, corpus.Rejection) {
	out, rejection := p.next.Process(doc)
	if rejection != corpus.RejectedNone {
		p.logger.Debug("document rejected",
			"url", doc.URL,
			"reason", string(rejection),
		)
	}
	return out, rejection
}
