package crawling

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/seo-writer/internal/fetch"
)

const (
	// DefaultSearchEndpoint is the DuckDuckGo HTML (no-JS) search endpoint
	DefaultSearchEndpoint = "https://html.duckduckgo.com/html/"
	// DefaultMaxResults is how many search results are crawled per keyword
	DefaultMaxResults = 5
)

// Searcher queries a search engine and extracts organic results
type Searcher struct {
	Endpoint   string
	MaxResults int
	Options    *fetch.Options
}

// NewSearcher creates a searcher against the default endpoint.
func NewSearcher(maxResults int) *Searcher {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &Searcher{
		Endpoint:   DefaultSearchEndpoint,
		MaxResults: maxResults,
		Options:    fetch.DefaultOptions(),
	}
}

// Search issues one query for keyword and returns up to MaxResults results in ranking order.
func (s *Searcher) Search(ctx context.Context, keyword string) ([]SearchResult, error) {
	endpoint := s.Endpoint
	if endpoint == "" {
		endpoint = DefaultSearchEndpoint
	}

	result, err := fetch.PostForm(ctx, endpoint, url.Values{"q": {keyword}}, s.Options)
	if err != nil {
		return nil, &SearchError{Keyword: keyword, Message: "search request failed", Cause: err}
	}

	results, err := ParseSearchResults(result.HTML, endpoint, s.MaxResults)
	if err != nil {
		return nil, &SearchError{Keyword: keyword, Message: "failed to parse search results", Cause: err}
	}
	return results, nil
}

// ParseSearchResults extracts up to limit results from a DuckDuckGo HTML result page.
// Entries without a title or a resolvable absolute URL are dropped.
func ParseSearchResults(htmlContent, base string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = DefaultMaxResults
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, limit)
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		anchor := s.Find("a.result__a").First()
		href, _ := anchor.Attr("href")
		title := strings.TrimSpace(anchor.Text())

		target := ResolveResultURL(href, base)
		if target == "" || title == "" {
			return true
		}

		results = append(results, SearchResult{
			Title:   title,
			URL:     target,
			Snippet: strings.TrimSpace(s.Find(".result__snippet").Text()),
		})
		return len(results) < limit
	})

	return results, nil
}
