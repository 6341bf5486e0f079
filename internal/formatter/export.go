package formatter

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"

	"commentarchive/internal/models"
	"commentarchive/internal/tree"
)

const indentUnit = "  "

// Exporter converts articles and their comment trees to markdown.
type Exporter struct {
	converter *md.Converter
}

// NewExporter creates an exporter with GitHub flavored output.
func NewExporter() *Exporter {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	return &Exporter{converter: converter}
}

// ExportArticle converts a single article with a fresh exporter.
func ExportArticle(a *models.Article) (string, error) {
	return NewExporter().Export(a)
}

// Export renders the article header, body and comment tree. Each comment
// keeps its id as an anchor; replies are nested list items.
func (e *Exporter) Export(a *models.Article) (string, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", a.Title)
	fmt.Fprintf(&sb, "> %s", a.PublishedAt)
	if a.URL != "" {
		fmt.Fprintf(&sb, " · [原文](%s)", a.URL)
	}
	sb.WriteString("\n\n")

	body, err := e.converter.ConvertString(a.Body)
	if err != nil {
		return "", fmt.Errorf("failed to convert article body: %w", err)
	}

	sb.WriteString(strings.TrimSpace(body))
	sb.WriteString("\n")

	total := tree.Count(a.Comments)
	if total == 0 {
		return sb.String(), nil
	}

	fmt.Fprintf(&sb, "\n## 评论 (%d)\n\n", total)

	var walkErr error

	tree.Walk(a.Comments, func(c *models.Comment, depth int) bool {
		if walkErr != nil {
			return false
		}

		text, err := e.converter.ConvertString(c.Content)
		if err != nil {
			walkErr = fmt.Errorf("failed to convert comment %s: %w", c.ID, err)
			return false
		}

		indent := strings.Repeat(indentUnit, depth)
		marker := ""
		if c.Highlighted {
			marker = " ⭐"
		}

		fmt.Fprintf(&sb, "%s- <a id=\"%s\"></a>**%s** · %s%s\n", indent, c.ID, c.Author, c.Timestamp, marker)

		for line := range strings.SplitSeq(strings.TrimSpace(text), "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			fmt.Fprintf(&sb, "%s%s%s\n", indent, indentUnit, line)
		}

		return true
	})

	if walkErr != nil {
		return "", walkErr
	}

	return sb.String(), nil
}
