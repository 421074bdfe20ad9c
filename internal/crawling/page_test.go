package crawling

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPage_PrefersArticle(t *testing.T) {
	html := `
	<html>
		<head>
			<title> Best Gardening Tips </title>
			<meta name="description" content=" Grow more with less. ">
			<script>var tracking = 1;</script>
		</head>
		<body>
			<header><h1>Site Header</h1></header>
			<nav>Home | Blog</nav>
			<main>
				<p>Main wrapper text</p>
				<article>
					<h1>Gardening Tips</h1>
					<p>Water   in the
					morning.</p>
					<h2>Soil</h2>
					<h3>Compost</h3>
				</article>
			</main>
			<aside>Related posts</aside>
			<footer>Copyright</footer>
		</body>
	</html>`

	page, err := ExtractPage(html, "https://blog.example.com/tips")
	require.NoError(t, err)

	assert.Equal(t, "https://blog.example.com/tips", page.URL)
	assert.Equal(t, "Best Gardening Tips", page.Title)
	assert.Equal(t, "Grow more with less.", page.MetaDescription)
	assert.Equal(t, "Gardening Tips Water in the morning. Soil Compost", page.BodyText)
	assert.NotContains(t, page.BodyText, "Main wrapper text")

	// Header heading removed with the header element
	require.Len(t, page.Headings, 3)
	assert.Equal(t, Heading{Level: 1, Text: "Gardening Tips"}, page.Headings[0])
	assert.Equal(t, "H2: Soil", page.Headings[1].String())
	assert.Equal(t, "H3: Compost", page.Headings[2].String())
}

func TestExtractPage_FallsBackToMain(t *testing.T) {
	html := `<html><body><div>Outside</div><main><p>Inside main</p></main></body></html>`

	page, err := ExtractPage(html, "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "Inside main", page.BodyText)
}

func TestExtractPage_FallsBackToBody(t *testing.T) {
	html := `<html><body><div>Some content here.</div><footer>Footer</footer></body></html>`

	page, err := ExtractPage(html, "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "Some content here.", page.BodyText)
	assert.Empty(t, page.Title)
	assert.Empty(t, page.MetaDescription)
	assert.Empty(t, page.Headings)
}

func TestExtractPage_SkipsEmptyHeadings(t *testing.T) {
	html := `<html><body><h2>   </h2><h2>Real</h2></body></html>`

	page, err := ExtractPage(html, "https://example.com")
	require.NoError(t, err)
	require.Len(t, page.Headings, 1)
	assert.Equal(t, "Real", page.Headings[0].Text)
}

func TestExtractPage_TruncatesLongBody(t *testing.T) {
	long := strings.Repeat("가", MaxBodyTextLength+100)
	html := "<html><body><article>" + long + "</article></body></html>"

	page, err := ExtractPage(html, "https://example.com")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(page.BodyText, "..."))
	assert.Equal(t, MaxBodyTextLength+3, utf8.RuneCountInString(page.BodyText))
}

func TestTruncate_ExactLengthUnchanged(t *testing.T) {
	text := strings.Repeat("a", 10)
	assert.Equal(t, text, truncate(text, 10))
	assert.Equal(t, "aaaaa...", truncate(text, 5))
}

func TestExtractPage_HeadingLevelsInDocumentOrder(t *testing.T) {
	html := `<html><body><h3>Tools</h3><h1>Pruning</h1><H2>When</H2></body></html>`

	page, err := ExtractPage(html, "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, []Heading{
		{Level: 3, Text: "Tools"},
		{Level: 1, Text: "Pruning"},
		{Level: 2, Text: "When"},
	}, page.Headings)
}
