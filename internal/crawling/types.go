package crawling

import (
	"fmt"

	"github.com/jonathan/seo-writer/internal/types"
)

// SearchResult is one organic result from the search engine
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Heading is an H1-H3 heading in document order
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// String renders the heading as "H2: text".
func (h Heading) String() string {
	return fmt.Sprintf("H%d: %s", h.Level, h.Text)
}

// Page is the cleaned content of one crawled competitor page
type Page struct {
	URL             string    `json:"url"`
	Title           string    `json:"title"`
	MetaDescription string    `json:"meta_description"`
	Headings        []Heading `json:"headings"`
	BodyText        string    `json:"body_text"`
}

// Corpus is the analysis input: a keyword plus the pages that crawled successfully,
// in search-ranking order
type Corpus struct {
	Keyword string `json:"keyword"`
	Results []Page `json:"results"`
}

// Sources summarizes the corpus as the {url, title} pairs persisted with a session.
func (c *Corpus) Sources() []types.SourceRef {
	refs := make([]types.SourceRef, 0, len(c.Results))
	for _, p := range c.Results {
		refs = append(refs, types.SourceRef{URL: p.URL, Title: p.Title})
	}
	return refs
}
