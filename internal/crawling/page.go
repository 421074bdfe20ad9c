package crawling

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	// MaxBodyTextLength is the maximum number of characters kept from a page body
	MaxBodyTextLength = 3000
	// truncationMarker is appended when body text is truncated
	truncationMarker = "..."
)

// noiseSelector lists elements that never carry article content
const noiseSelector = "script, style, nav, footer, aside, header, iframe, noscript"

// contentSelectors are tried in order; the first match supplies the body text
var contentSelectors = []string{"article", "main"}

var whitespaceRe = regexp.MustCompile(`\s+`)

// ExtractPage parses page HTML into its title, meta description, headings and body text.
func ExtractPage(htmlContent, pageURL string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, &CrawlError{URL: pageURL, Message: "failed to parse HTML", Cause: err}
	}

	doc.Find(noiseSelector).Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	description, _ := doc.Find(`meta[name="description"]`).First().Attr("content")

	headings := make([]Heading, 0)
	doc.Find("h1, h2, h3").Each(func(_ int, s *goquery.Selection) {
		text := collapseWhitespace(s.Text())
		if text == "" {
			return
		}
		headings = append(headings, Heading{Level: headingLevel(s), Text: text})
	})

	var content *goquery.Selection
	for _, selector := range contentSelectors {
		if selection := doc.Find(selector); selection.Length() > 0 {
			content = selection.First()
			break
		}
	}
	if content == nil {
		content = doc.Find("body")
	}

	return &Page{
		URL:             pageURL,
		Title:           title,
		MetaDescription: strings.TrimSpace(description),
		Headings:        headings,
		BodyText:        truncate(collapseWhitespace(content.Text()), MaxBodyTextLength),
	}, nil
}

func headingLevel(s *goquery.Selection) int {
	switch goquery.NodeName(s) {
	case "h1":
		return 1
	case "h2":
		return 2
	default:
		return 3
	}
}

// collapseWhitespace flattens runs of whitespace into single spaces.
func collapseWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// truncate keeps the first limit characters, appending a marker when text was cut.
func truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit]) + truncationMarker
}
