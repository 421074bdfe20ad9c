// Package types provides type definitions for structured data used throughout the seo-writer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Article is one generated blog draft as returned by the model.
type Article struct {
	Title           string   `json:"title"`
	MetaDescription string   `json:"metaDescription"`
	Content         string   `json:"content"` // HTML with embedded image-prompt markers
	Tags            []string `json:"tags"`
}

// SourceRef is the persisted summary of one crawled search result.
type SourceRef struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}
