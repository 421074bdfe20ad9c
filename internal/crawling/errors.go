// Package crawling turns a keyword into a bounded list of fetched, cleaned competitor pages.
package crawling

import "fmt"

// SearchError represents a failure querying the search engine
type SearchError struct {
	Keyword string
	Message string
	Cause   error
}

func (e *SearchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("search error for %q: %s: %v", e.Keyword, e.Message, e.Cause)
	}
	return fmt.Sprintf("search error for %q: %s", e.Keyword, e.Message)
}

func (e *SearchError) Unwrap() error {
	return e.Cause
}

// CrawlError represents a failure crawling or parsing a single page
type CrawlError struct {
	URL     string
	Message string
	Cause   error
}

func (e *CrawlError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("crawl error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("crawl error for %s: %s", e.URL, e.Message)
}

func (e *CrawlError) Unwrap() error {
	return e.Cause
}
