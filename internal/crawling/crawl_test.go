package crawling

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFakeWeb serves a search page at /html/ listing pages /p1../pK, plus those pages.
// Pages whose index is in failing respond 500.
func newFakeWeb(t *testing.T, k int, failing map[int]bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var server *httptest.Server

	mux.HandleFunc("/html/", func(w http.ResponseWriter, _ *http.Request) {
		var sb strings.Builder
		sb.WriteString("<html><body>")
		for i := 1; i <= k; i++ {
			target := fmt.Sprintf("%s/p%d", server.URL, i)
			sb.WriteString(resultBlock("/l/?uddg="+url.QueryEscape(target), fmt.Sprintf("Result %d", i), "snippet"))
		}
		sb.WriteString("</body></html>")
		_, _ = w.Write([]byte(sb.String()))
	})

	for i := 1; i <= k; i++ {
		mux.HandleFunc(fmt.Sprintf("/p%d", i), func(w http.ResponseWriter, _ *http.Request) {
			if failing[i] {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			fmt.Fprintf(w, `<html><head><title>Page %d</title></head><body><article><h2>Heading %d</h2><p>Body %d</p></article></body></html>`, i, i, i)
		})
	}

	server = httptest.NewServer(mux)
	return server
}

func newTestCrawler(server *httptest.Server, maxResults int) *Crawler {
	c := NewCrawler(maxResults, false, false)
	c.Searcher.Endpoint = server.URL + "/html/"
	return c
}

func TestSearchAndCrawl_AllSucceed(t *testing.T) {
	server := newFakeWeb(t, 5, nil)
	defer server.Close()

	var found atomic.Int32
	corpus, err := newTestCrawler(server, 5).SearchAndCrawl(context.Background(), "gardening tips", func(n int) {
		found.Store(int32(n))
	})
	require.NoError(t, err)

	assert.Equal(t, "gardening tips", corpus.Keyword)
	assert.Equal(t, int32(5), found.Load())
	require.Len(t, corpus.Results, 5)
	for i, page := range corpus.Results {
		assert.Equal(t, fmt.Sprintf("Page %d", i+1), page.Title)
		assert.Equal(t, fmt.Sprintf("%s/p%d", server.URL, i+1), page.URL)
	}

	sources := corpus.Sources()
	require.Len(t, sources, 5)
	assert.Equal(t, "Page 1", sources[0].Title)
}

func TestSearchAndCrawl_PartialFailuresPreserveOrder(t *testing.T) {
	server := newFakeWeb(t, 5, map[int]bool{2: true, 4: true})
	defer server.Close()

	corpus, err := newTestCrawler(server, 5).SearchAndCrawl(context.Background(), "k", nil)
	require.NoError(t, err)

	// K - C survivors, in ranking order
	require.Len(t, corpus.Results, 3)
	assert.Equal(t, "Page 1", corpus.Results[0].Title)
	assert.Equal(t, "Page 3", corpus.Results[1].Title)
	assert.Equal(t, "Page 5", corpus.Results[2].Title)
}

func TestSearchAndCrawl_AllCrawlsFail(t *testing.T) {
	server := newFakeWeb(t, 3, map[int]bool{1: true, 2: true, 3: true})
	defer server.Close()

	corpus, err := newTestCrawler(server, 5).SearchAndCrawl(context.Background(), "k", nil)
	require.NoError(t, err)
	assert.Empty(t, corpus.Results)
}

func TestSearchAndCrawl_RespectsMaxResults(t *testing.T) {
	server := newFakeWeb(t, 8, nil)
	defer server.Close()

	corpus, err := newTestCrawler(server, 5).SearchAndCrawl(context.Background(), "k", nil)
	require.NoError(t, err)
	assert.Len(t, corpus.Results, 5)
}

func TestSearchAndCrawl_SearchFailurePropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	called := false
	_, err := newTestCrawler(server, 5).SearchAndCrawl(context.Background(), "k", func(int) { called = true })
	require.Error(t, err)

	var searchErr *SearchError
	assert.ErrorAs(t, err, &searchErr)
	assert.False(t, called)
}

func TestCrawlPage_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewCrawler(5, false, false).CrawlPage(context.Background(), server.URL)
	require.Error(t, err)

	var crawlErr *CrawlError
	require.ErrorAs(t, err, &crawlErr)
	assert.Equal(t, server.URL, crawlErr.URL)
	assert.Contains(t, err.Error(), "404")
}
