package mock

import "github.com/fwojciec/corpus"

var _ corpus.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of corpus.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*corpus.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*corpus.ExtractResult, error) {
	return e.ExtractFn(html)
}

var _ corpus.Converter = (*Converter)(nil)

// Converter is a mock implementation of corpus.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

var _ corpus.Processor = (*Processor)(nil)

// Processor is a mock implementation of corpus.Processor.
type Processor struct {
	ProcessFn func(doc *corpus.Document) (*corpus.Document, corpus.Rejection)
}

func (p *Processor) Process(doc *corpus.Document) (*corpus.Document, corpus.Rejection) {
	return p.ProcessFn(doc)
}
