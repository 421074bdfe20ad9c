// Package drafting asks the language model to analyze competitor pages and to write
// SEO articles from that analysis.
package drafting

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/seo-writer/internal/crawling"
	"github.com/jonathan/seo-writer/internal/llm"
	"github.com/jonathan/seo-writer/internal/prompts"
	"github.com/jonathan/seo-writer/internal/schemas"
	"github.com/jonathan/seo-writer/internal/types"
)

const (
	// MaxAnalyzedPages caps how many crawled pages go into the analysis prompt
	MaxAnalyzedPages = 5
	// AnalysisBodyChars is how much of each page body the analysis prompt sees
	AnalysisBodyChars = 1500
	// HistoryExcerptChars is how much of each prior article the regeneration prompt sees
	HistoryExcerptChars = 500

	// DefaultLanguage is the output language when none is configured
	DefaultLanguage = "English"
	// DefaultTone is the writing tone when none is configured
	DefaultTone = "friendly, informative"

	noFeedback = "none"
)

// Service is an optional product the articles should mention
type Service struct {
	Name        string
	Description string
	URL         string
}

// Options controls prompt content shared by every request
type Options struct {
	Language string
	Tone     string
	Service  Service
	Tier     llm.ModelTier
}

// Writer runs the three model operations
type Writer struct {
	client llm.Client
	opts   Options
}

// NewWriter creates a writer over client. Empty options fall back to defaults.
func NewWriter(client llm.Client, opts Options) *Writer {
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}
	if opts.Tone == "" {
		opts.Tone = DefaultTone
	}
	if opts.Tier == "" {
		opts.Tier = llm.TierStandard
	}
	return &Writer{client: client, opts: opts}
}

// AnalyzeCompetitors summarizes what the crawled pages have in common.
// The answer is free text and is not parsed.
func (w *Writer) AnalyzeCompetitors(ctx context.Context, corpus *crawling.Corpus) (string, error) {
	prompt, err := w.buildAnalysisPrompt(corpus)
	if err != nil {
		return "", err
	}

	text, err := w.client.GenerateContent(ctx, prompt, w.opts.Tier)
	if err != nil {
		return "", &APICallError{Operation: "competitor analysis", Cause: err}
	}
	return strings.TrimSpace(text), nil
}

// GenerateSEOContent drafts a new article for keyword from the competitor analysis.
func (w *Writer) GenerateSEOContent(ctx context.Context, keyword, analysis string) (*types.Article, error) {
	data, err := w.articleData(keyword, analysis)
	if err != nil {
		return nil, err
	}

	prompt, err := prompts.Render(prompts.SEOFile, "generate-article", data)
	if err != nil {
		return nil, err
	}

	text, err := w.client.GenerateContent(ctx, prompt, w.opts.Tier)
	if err != nil {
		return nil, &APICallError{Operation: "article generation", Cause: err}
	}
	return ParseArticle(text)
}

// RegenerateWithFeedback drafts a new article that takes the ratings and feedback on
// every earlier version into account. history is in version order.
func (w *Writer) RegenerateWithFeedback(ctx context.Context, keyword, analysis string, history []types.Generation) (*types.Article, error) {
	data, err := w.articleData(keyword, analysis)
	if err != nil {
		return nil, err
	}

	historyText, err := buildHistory(history)
	if err != nil {
		return nil, err
	}
	data["History"] = historyText

	prompt, err := prompts.Render(prompts.SEOFile, "regenerate-article", data)
	if err != nil {
		return nil, err
	}

	text, err := w.client.GenerateContent(ctx, prompt, w.opts.Tier)
	if err != nil {
		return nil, &APICallError{Operation: "article regeneration", Cause: err}
	}
	return ParseArticle(text)
}

// ParseArticle extracts and validates the article JSON from a model response.
func ParseArticle(text string) (*types.Article, error) {
	payload, err := llm.ExtractJSONPayload(text)
	if err != nil {
		return nil, err
	}

	if err := schemas.ValidateArticle(payload); err != nil {
		return nil, &llm.MalformedOutputError{Message: "article does not match schema", Output: text, Cause: err}
	}

	var article types.Article
	if err := json.Unmarshal([]byte(payload), &article); err != nil {
		return nil, &llm.MalformedOutputError{Message: "failed to decode article", Output: text, Cause: err}
	}
	return &article, nil
}

func (w *Writer) buildAnalysisPrompt(corpus *crawling.Corpus) (string, error) {
	pages := corpus.Results
	if len(pages) > MaxAnalyzedPages {
		pages = pages[:MaxAnalyzedPages]
	}

	template, err := prompts.Get(prompts.SEOFile, "competitor-page")
	if err != nil {
		return "", err
	}

	blocks := make([]string, 0, len(pages))
	for i, page := range pages {
		headings := make([]string, 0, len(page.Headings))
		for _, h := range page.Headings {
			headings = append(headings, h.String())
		}
		blocks = append(blocks, prompts.Format(template, map[string]string{
			"Index":           fmt.Sprintf("%d", i+1),
			"URL":             page.URL,
			"Title":           page.Title,
			"MetaDescription": page.MetaDescription,
			"Headings":        strings.Join(headings, "\n"),
			"Body":            prefix(page.BodyText, AnalysisBodyChars),
		}))
	}

	return prompts.Render(prompts.SEOFile, "analyze-competitors", map[string]string{
		"Keyword":  corpus.Keyword,
		"Pages":    strings.Join(blocks, "\n\n"),
		"Language": w.opts.Language,
	})
}

// articleData holds the placeholders shared by the generate and regenerate prompts.
func (w *Writer) articleData(keyword, analysis string) (map[string]string, error) {
	serviceBlock, serviceRule := "", ""
	if w.opts.Service.Name != "" {
		service := map[string]string{
			"Name":        w.opts.Service.Name,
			"Description": w.opts.Service.Description,
			"URL":         w.opts.Service.URL,
		}
		var err error
		if serviceBlock, err = prompts.Render(prompts.SEOFile, "service-block", service); err != nil {
			return nil, err
		}
		if serviceRule, err = prompts.Render(prompts.SEOFile, "service-rule", service); err != nil {
			return nil, err
		}
	}

	requirements, err := prompts.Render(prompts.SEOFile, "article-requirements", map[string]string{
		"ServiceRule": serviceRule,
		"Language":    w.opts.Language,
		"Tone":        w.opts.Tone,
	})
	if err != nil {
		return nil, err
	}

	responseFormat, err := prompts.Get(prompts.SEOFile, "response-format")
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"Keyword":        keyword,
		"Analysis":       analysis,
		"ServiceBlock":   serviceBlock,
		"Requirements":   requirements,
		"ResponseFormat": responseFormat,
	}, nil
}

func buildHistory(history []types.Generation) (string, error) {
	template, err := prompts.Get(prompts.SEOFile, "history-entry")
	if err != nil {
		return "", err
	}

	entries := make([]string, 0, len(history))
	for _, g := range history {
		feedback := noFeedback
		if g.Feedback != nil && *g.Feedback != "" {
			feedback = *g.Feedback
		}
		entries = append(entries, prompts.Format(template, map[string]string{
			"Version":  fmt.Sprintf("%d", g.Version),
			"Title":    g.Title,
			"Rating":   RatingLabel(g.Rating),
			"Feedback": feedback,
			"Excerpt":  prefix(g.Content, HistoryExcerptChars),
		}))
	}
	return strings.Join(entries, "\n\n"), nil
}

// RatingLabel is how a rating is described to the model.
func RatingLabel(rating *types.Rating) string {
	if rating == nil {
		return "Not rated"
	}
	switch *rating {
	case types.RatingGood:
		return "Liked"
	case types.RatingBad:
		return "Needs improvement"
	default:
		return "Not rated"
	}
}

// prefix returns at most n characters of text.
func prefix(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	return string([]rune(text)[:n])
}
