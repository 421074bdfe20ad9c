package crawling

import (
	"net/url"
	"strings"
)

// redirectParams maps search-engine redirect paths to the query parameter that
// carries the real destination.
var redirectParams = map[string]string{
	"/l/":  "uddg", // DuckDuckGo
	"/l":   "uddg",
	"/url": "q", // Google
}

// redirectHosts are hosts whose redirect paths are unwrapped in addition to the
// search endpoint's own host.
var redirectHosts = map[string]bool{
	"duckduckgo.com":      true,
	"html.duckduckgo.com": true,
	"www.google.com":      true,
	"google.com":          true,
}

// ResolveResultURL turns a search result href into an absolute destination URL.
// Relative hrefs are resolved against base, and known redirect wrappers are unwrapped.
// It returns "" when no absolute http(s) URL can be produced.
func ResolveResultURL(href, base string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := baseURL.ResolveReference(ref)

	isRedirectHost := resolved.Host == baseURL.Host || redirectHosts[resolved.Host]
	if param, ok := redirectParams[resolved.Path]; ok && isRedirectHost {
		if target := resolved.Query().Get(param); target != "" {
			targetURL, err := url.Parse(target)
			if err != nil {
				return ""
			}
			resolved = targetURL
		}
	}

	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	if resolved.Host == "" {
		return ""
	}
	return resolved.String()
}
