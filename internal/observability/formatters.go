// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/seo-writer/internal/status"
	"github.com/jonathan/seo-writer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// previewLines is how many lines of article text the article box shows
	previewLines = 8
)

var (
	tagRe        = regexp.MustCompile(`<[^>]+>`)
	blockTagRe   = regexp.MustCompile(`(?i)</(p|h[1-6]|li|div)>|<br\s*/?>`)
	blankLinesRe = regexp.MustCompile(`\n\s*\n+`)
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintArticle outputs the title, meta description, tags and a text preview of an article.
func (p *Printer) PrintArticle(keyword string, version int, maxReached bool, article *types.Article) {
	if article == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Keyword:  %s\n", keyword))
	sb.WriteString(fmt.Sprintf("Version:  v%d", version))
	if maxReached {
		sb.WriteString(" (regeneration limit reached)")
	}
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Title:    %s\n", article.Title))
	sb.WriteString(fmt.Sprintf("Meta:     %s\n", article.MetaDescription))
	if len(article.Tags) > 0 {
		sb.WriteString(fmt.Sprintf("Tags:     %s\n", strings.Join(article.Tags, ", ")))
	}
	sb.WriteString("\n")

	lines := strings.Split(PlainText(article.Content), "\n")
	count := min(len(lines), previewLines)
	for i := 0; i < count; i++ {
		sb.WriteString(lines[i])
		sb.WriteString("\n")
	}
	if len(lines) > previewLines {
		sb.WriteString(fmt.Sprintf("... and %d more lines\n", len(lines)-previewLines))
	}

	p.printBox("GENERATED ARTICLE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSources outputs the crawled pages a session was based on.
func (p *Printer) PrintSources(sources []types.SourceRef) {
	if len(sources) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Pages analyzed: %d\n\n", len(sources)))
	for i, src := range sources {
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, src.Title))
		sb.WriteString(fmt.Sprintf("    %s\n", src.URL))
	}

	p.printBox("COMPETITOR PAGES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAnalysis outputs the competitor analysis text.
func (p *Printer) PrintAnalysis(analysis string) {
	analysis = strings.TrimSpace(analysis)
	if analysis == "" {
		return
	}
	p.printBox("COMPETITOR ANALYSIS", analysis)
}

// PrintHistory outputs past sessions grouped by keyword.
func (p *Printer) PrintHistory(history []types.KeywordHistory) {
	if len(history) == 0 {
		p.printBox("HISTORY", "No sessions yet")
		return
	}

	var sb strings.Builder
	for i, entry := range history {
		sb.WriteString(fmt.Sprintf("%s  (%d sessions, last %s)\n",
			entry.Keyword, entry.SessionCount, entry.LatestDate.Format("2006-01-02 15:04")))
		if entry.LatestTitle != "" {
			sb.WriteString(fmt.Sprintf("  Latest: %s\n", entry.LatestTitle))
		}
		count := min(len(entry.Sessions), maxItemsToShow)
		for j := 0; j < count; j++ {
			s := entry.Sessions[j]
			sb.WriteString(fmt.Sprintf("  • %s  v%d\n", s.ID, s.Version))
		}
		if len(entry.Sessions) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(entry.Sessions)-maxItemsToShow))
		}
		if i < len(history)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("HISTORY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintStatus outputs the global generation status.
func (p *Printer) PrintStatus(s status.Status) {
	if !s.Active {
		p.printBox("STATUS", "Idle")
		return
	}
	p.printBox("STATUS", fmt.Sprintf("Keyword:  %s\nPhase:    %s", s.Keyword, s.Phase))
}

// PlainText strips HTML tags from article content, keeping block boundaries as line breaks.
func PlainText(html string) string {
	text := blockTagRe.ReplaceAllString(html, "\n")
	text = tagRe.ReplaceAllString(text, "")
	text = blankLinesRe.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}

// pad truncates or right-pads line to exactly width characters.
func pad(line string, width int) string {
	n := utf8.RuneCountInString(line)
	if n > width {
		return string([]rune(line)[:width-3]) + "..."
	}
	return line + strings.Repeat(" ", width-n)
}
