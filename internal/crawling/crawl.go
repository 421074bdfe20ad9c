package crawling

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/seo-writer/internal/fetch"
)

// Crawler searches for a keyword and crawls the top results
type Crawler struct {
	Searcher *Searcher
	Options  *fetch.Options
	// UseBrowser re-renders pages in a headless browser when the HTTP body is too thin
	UseBrowser bool
	Verbose    bool
}

// NewCrawler creates a crawler that fetches up to maxResults pages per keyword.
func NewCrawler(maxResults int, useBrowser, verbose bool) *Crawler {
	return &Crawler{
		Searcher:   NewSearcher(maxResults),
		Options:    fetch.DefaultOptions(),
		UseBrowser: useBrowser,
		Verbose:    verbose,
	}
}

// CrawlPage fetches one page and extracts its content.
func (c *Crawler) CrawlPage(ctx context.Context, pageURL string) (*Page, error) {
	result, err := fetch.URL(ctx, pageURL, c.Options)
	if err != nil {
		return nil, &CrawlError{URL: pageURL, Message: "fetch failed", Cause: err}
	}

	page, err := ExtractPage(result.HTML, pageURL)
	if err != nil {
		return nil, err
	}

	if c.UseBrowser && fetch.ShouldUseBrowser(page.BodyText) {
		timeout := fetch.DefaultTimeout
		if c.Options != nil && c.Options.Timeout > 0 {
			timeout = c.Options.Timeout
		}
		rendered, err := fetch.WithBrowser(ctx, pageURL, timeout, c.Verbose)
		if err != nil {
			log.Printf("[CRAWL] Browser fallback failed for %s: %v", pageURL, err)
			return page, nil
		}
		if renderedPage, err := ExtractPage(rendered, pageURL); err == nil {
			return renderedPage, nil
		}
	}

	return page, nil
}

// SearchAndCrawl searches for keyword, then crawls every result concurrently.
// onCrawl, when non-nil, is called with the number of results once the search returns.
// A failed crawl is logged and omitted; the surviving pages keep search-ranking order.
func (c *Crawler) SearchAndCrawl(ctx context.Context, keyword string, onCrawl func(found int)) (*Corpus, error) {
	searcher := c.Searcher
	if searcher == nil {
		searcher = NewSearcher(DefaultMaxResults)
	}

	results, err := searcher.Search(ctx, keyword)
	if err != nil {
		return nil, err
	}
	if c.Verbose {
		log.Printf("[CRAWL] Search for %q returned %d results", keyword, len(results))
	}
	if onCrawl != nil {
		onCrawl(len(results))
	}

	pages := c.crawlAll(ctx, results)
	if c.Verbose {
		log.Printf("[CRAWL] Crawled %d/%d pages for %q", len(pages), len(results), keyword)
	}

	return &Corpus{Keyword: keyword, Results: pages}, nil
}

// crawlOutcome is one crawl's page or error
type crawlOutcome struct {
	page *Page
	err  error
}

// crawlAll fans out one crawl per result and waits for all of them to settle.
func (c *Crawler) crawlAll(ctx context.Context, results []SearchResult) []Page {
	outcomes := make([]crawlOutcome, len(results))

	var g errgroup.Group
	for i, result := range results {
		g.Go(func() error {
			page, err := c.CrawlPage(ctx, result.URL)
			outcomes[i] = crawlOutcome{page: page, err: err}
			return nil
		})
	}
	_ = g.Wait() // crawl failures are carried in outcomes, never returned

	pages := make([]Page, 0, len(results))
	for i, outcome := range outcomes {
		if outcome.err != nil {
			log.Printf("[CRAWL] Failed to crawl %s: %v", results[i].URL, outcome.err)
			continue
		}
		pages = append(pages, *outcome.page)
	}
	return pages
}
