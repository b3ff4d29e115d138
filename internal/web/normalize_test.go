package web

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_StripsNonContentMarkup(t *testing.T) {
	html := `<html><head>
		<title>Test Page</title>
		<style>body { color: red; }</style>
		<script>var secret = "tracking";</script>
	</head><body>
		<noscript>Enable JavaScript</noscript>
		<h1>Heading</h1>
		<p>First paragraph.</p>
		<p>Second paragraph.</p>
	</body></html>`

	text, err := Normalize(html)
	require.NoError(t, err)

	assert.NotContains(t, text, "color: red")
	assert.NotContains(t, text, "tracking")
	assert.NotContains(t, text, "Enable JavaScript")
	assert.Contains(t, text, "Heading")
	assert.Contains(t, text, "First paragraph.")
	assert.Contains(t, text, "Second paragraph.")
}

func TestNormalize_CanonicalWhitespace(t *testing.T) {
	html := "<p>  padded   line  </p>\n\n\n<p></p><p>next</p>"

	text, err := Normalize(html)
	require.NoError(t, err)

	for _, line := range strings.Split(text, "\n") {
		assert.Equal(t, strings.TrimSpace(line), line, "every line must be trimmed")
		assert.NotEmpty(t, line, "empty lines must be dropped")
	}
	assert.Contains(t, text, "padded   line")
	assert.Contains(t, text, "next")
}

func TestNormalize_BlockSeparation(t *testing.T) {
	html := "<div>alpha</div><div>beta</div>"

	text, err := Normalize(html)
	require.NoError(t, err)
	assert.Equal(t, "alpha\nbeta", text)
}

func TestNormalize_Idempotent(t *testing.T) {
	html := `<body><h1>Title</h1><p>Some content here.</p><ul><li>one</li><li>two</li></ul></body>`

	once, err := Normalize(html)
	require.NoError(t, err)

	twice, err := Normalize(once)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestNormalize_Empty(t *testing.T) {
	text, err := Normalize("")
	require.NoError(t, err)
	assert.Empty(t, text)
}
