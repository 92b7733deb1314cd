// Package export renders results as downloadable plain-text and Word files.
package export

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/fumiama/go-docx"
)

const (
	ContentTypeText = "text/plain; charset=utf-8"
	ContentTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

const (
	wordFont         = "Times New Roman"
	wordSize         = "24" // half-points, 12pt
	wordParagraphGap = 240  // twips, 12pt
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Filename turns a title into a download name: lowercase, whitespace runs
// replaced by dashes, plus the extension.
func Filename(title, ext string) string {
	name := strings.ToLower(whitespaceRun.ReplaceAllString(strings.TrimSpace(title), "-"))
	if name == "" {
		name = "document"
	}
	return name + "." + strings.TrimPrefix(ext, ".")
}

// PlainText writes text verbatim.
func PlainText(w io.Writer, text string) error {
	_, err := io.WriteString(w, text)
	return err
}

// Paragraphs splits text on blank-line boundaries, dropping empty paragraphs.
func Paragraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SummaryText lays out a summary for the .txt download.
func SummaryText(length, summary string, keyPoints []string) string {
	rule := strings.Repeat("=", 50)
	return fmt.Sprintf("SUMMARY (%s)\n%s\n\n%s\n\n\nKEY POINTS\n%s\n%s", length, rule, summary, rule, bullets(keyPoints))
}

// SummaryWordText lays out a summary for the .docx download, one heading per paragraph.
func SummaryWordText(length, summary string, keyPoints []string) string {
	return fmt.Sprintf("SUMMARY (%s)\n\n%s\n\nKEY POINTS\n\n%s", length, summary, bullets(keyPoints))
}

func bullets(points []string) string {
	lines := make([]string, len(points))
	for i, p := range points {
		lines[i] = "• " + p
	}
	return strings.Join(lines, "\n")
}

// Word writes text as a single-section A4 .docx document with one paragraph
// per blank-line separated block.
func Word(w io.Writer, text string) error {
	doc := docx.New().WithDefaultTheme()
	for i, p := range Paragraphs(text) {
		para := doc.AddParagraph()
		if i > 0 {
			para.Properties = &docx.ParagraphProperties{Spacing: &docx.Spacing{Before: wordParagraphGap}}
		}
		para.AddText(p).Size(wordSize).Font(wordFont, wordFont, wordFont, "")
	}
	doc.WithA4Page()
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}
