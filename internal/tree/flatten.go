package tree

import (
	"strings"

	"golang.org/x/net/html"

	"commentarchive/internal/models"
)

// Flatten walks the tree in pre-order and produces one index entry per comment.
// Only the search engine consumes the flattened form; renderers walk the tree.
func Flatten(comments []*models.Comment, articleIndex int) []models.FlatComment {
	out := make([]models.FlatComment, 0, Count(comments))

	Walk(comments, func(c *models.Comment, _ int) bool {
		out = append(out, models.FlatComment{
			ID:           c.ID,
			ArticleIndex: articleIndex,
			Author:       PlainText(c.Author),
			Text:         PlainText(c.Content),
			Timestamp:    c.Timestamp,
			Content:      c.Content,
		})

		return true
	})

	return out
}

// PlainText returns the visible text of an inline markup fragment: tags are
// dropped, entities decoded, line breaks kept, script and style bodies skipped.
func PlainText(markup string) string {
	if !strings.ContainsAny(markup, "<&") {
		return markup
	}

	var sb strings.Builder

	z := html.NewTokenizer(strings.NewReader(markup))
	skip := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or malformed input: return what was read
			return sb.String()
		case html.TextToken:
			if skip == 0 {
				sb.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				if tt == html.StartTagToken {
					skip++
				}
			case "br":
				sb.WriteByte('\n')
			case "p", "div", "li":
				if sb.Len() > 0 {
					sb.WriteByte('\n')
				}
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if (string(name) == "script" || string(name) == "style") && skip > 0 {
				skip--
			}
		}
	}
}
