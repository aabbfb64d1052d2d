package ingest

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DescriptionCleaner normalizes raw posting descriptions before storage.
// Feeds deliver descriptions as HTML fragments or plain text; either way
// the stored form is plain text with collapsed whitespace.
type DescriptionCleaner struct {
	removeTags []string
}

func NewDescriptionCleaner() *DescriptionCleaner {
	return &DescriptionCleaner{
		removeTags: []string{
			"script", "style", "noscript", "iframe", "object", "embed",
			"form", "input", "button", "select", "textarea",
			"nav", "header", "footer", "aside", "menu",
			"svg", "path", "g", "defs", "use", "symbol",
			"meta", "link", "title", "base",
		},
	}
}

// Clean strips markup and clutter from a description. Input that does not
// look like HTML only gets whitespace normalization.
func (c *DescriptionCleaner) Clean(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "<") {
		return collapseWhitespace(raw)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return collapseWhitespace(raw)
	}

	for _, tag := range c.removeTags {
		doc.Find(tag).Remove()
	}

	// Block-level tags become line breaks so list items and paragraphs do
	// not run together in the extracted text.
	doc.Find("li, p, br, div, h1, h2, h3, h4, h5, h6").Each(func(i int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	text := doc.Text()
	return collapseWhitespace(text)
}

var (
	spaceRegex   = regexp.MustCompile(`[ \t]+`)
	newlineRegex = regexp.MustCompile(`\n{3,}`)
)

func collapseWhitespace(s string) string {
	s = spaceRegex.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = newlineRegex.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
