package goquery_test

import (
	"testing"

	"github.com/fwojciec/corpus"
	"github.com/fwojciec/corpus/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_strips_noise_elements(t *testing.T) {
	t.Parallel()

	html := `<html><head><title>Test</title></head><body>
		<nav>navigation links</nav>
		<main><p>The actual content of the page.</p></main>
		<script>console.log("tracking")</script>
		<footer>copyright notice</footer>
	</body></html>`

	result, err := goquery.NewExtractor().Extract(html)
	require.NoError(t, err)

	assert.Contains(t, result.ContentHTML, "The actual content")
	assert.NotContains(t, result.ContentHTML, "navigation links")
	assert.NotContains(t, result.ContentHTML, "tracking")
	assert.NotContains(t, result.ContentHTML, "copyright")
}

func TestExtractor_prefers_main_over_body(t *testing.T) {
	t.Parallel()

	html := `<html><body>
		<div>sidebar text</div>
		<main><p>main region</p></main>
	</body></html>`

	result, err := goquery.NewExtractor().Extract(html)
	require.NoError(t, err)

	assert.Contains(t, result.ContentHTML, "main region")
	assert.NotContains(t, result.ContentHTML, "sidebar text")
}

func TestExtractor_falls_back_to_article_then_body(t *testing.T) {
	t.Parallel()

	withArticle := `<html><body><article><p>article text</p></article><div>other</div></body></html>`
	result, err := goquery.NewExtractor().Extract(withArticle)
	require.NoError(t, err)
	assert.Contains(t, result.ContentHTML, "article text")
	assert.NotContains(t, result.ContentHTML, "other")

	bodyOnly := `<html><body><div><p>plain body text</p></div></body></html>`
	result, err = goquery.NewExtractor().Extract(bodyOnly)
	require.NoError(t, err)
	assert.Contains(t, result.ContentHTML, "plain body text")
}

func TestExtractor_title_prefers_og_title(t *testing.T) {
	t.Parallel()

	html := `<html><head>
		<meta property="og:title" content="OG Title">
		<title>Doc Title</title>
	</head><body><h1>Heading</h1><p>text</p></body></html>`

	result, err := goquery.NewExtractor().Extract(html)
	require.NoError(t, err)
	assert.Equal(t, "OG Title", result.Title)
}

func TestExtractor_title_falls_back_to_title_then_h1(t *testing.T) {
	t.Parallel()

	withTitle := `<html><head><title>Doc Title</title></head><body><h1>Heading</h1></body></html>`
	result, err := goquery.NewExtractor().Extract(withTitle)
	require.NoError(t, err)
	assert.Equal(t, "Doc Title", result.Title)

	h1Only := `<html><body><h1>Heading Only</h1><p>text</p></body></html>`
	result, err = goquery.NewExtractor().Extract(h1Only)
	require.NoError(t, err)
	assert.Equal(t, "Heading Only", result.Title)
}

func TestExtractor_rejects_empty_input(t *testing.T) {
	t.Parallel()

	_, err := goquery.NewExtractor().Extract("   ")
	require.Error(t, err)
	assert.Equal(t, corpus.EINVALID, corpus.ErrorCode(err))
}
