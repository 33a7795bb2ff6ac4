package htmltomarkdown_test

import (
	"testing"

	"github.com/fwojciec/corpus"
	"github.com/fwojciec/corpus/htmltomarkdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConverter_converts_headings_and_emphasis(t *testing.T) {
	t.Parallel()

	c := htmltomarkdown.NewConverter()

	md, err := c.Convert(`<h1>Getting Started</h1><p>Install the <strong>latest</strong> release.</p>`)
	require.NoError(t, err)

	assert.Contains(t, md, "# Getting Started")
	assert.Contains(t, md, "**latest**")
}

func TestConverter_converts_lists_and_code(t *testing.T) {
	t.Parallel()

	c := htmltomarkdown.NewConverter()

	md, err := c.Convert(`<ul><li>first</li><li>second</li></ul><pre><code>go build ./...</code></pre>`)
	require.NoError(t, err)

	assert.Contains(t, md, "- first")
	assert.Contains(t, md, "- second")
	assert.Contains(t, md, "go build ./...")
}

func TestConverter_converts_tables(t *testing.T) {
	t.Parallel()

	c := htmltomarkdown.NewConverter()

	md, err := c.Convert(`<table><tr><th>Flag</th><th>Default</th></tr><tr><td>max-pages</td><td>100</td></tr></table>`)
	require.NoError(t, err)

	assert.Contains(t, md, "Flag")
	assert.Contains(t, md, "max-pages")
	assert.Contains(t, md, "|")
}

func TestConverter_rejects_empty_input(t *testing.T) {
	t.Parallel()

	c := htmltomarkdown.NewConverter()

	_, err := c.Convert("  \n ")
	require.Error(t, err)
	assert.Equal(t, corpus.EINVALID, corpus.ErrorCode(err))
}
