package search

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"commentarchive/internal/convert"
)

const (
	highlightOpen  = `<span class="keyword-highlight">`
	highlightClose = `</span>`
)

// Highlighter wraps every case-insensitive occurrence of a keyword, in either
// script form, with a highlight span.
type Highlighter struct {
	re *regexp.Regexp
}

// NewHighlighter compiles a literal pattern for both forms of keyword.
func NewHighlighter(c convert.Converter, keyword string) *Highlighter {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return &Highlighter{}
	}

	simp, trad := convert.Forms(c, keyword)

	alts := []string{regexp.QuoteMeta(simp)}
	if trad != simp && trad != "" {
		alts = append(alts, regexp.QuoteMeta(trad))
	}

	return &Highlighter{re: regexp.MustCompile(`(?i)(` + strings.Join(alts, "|") + `)`)}
}

// Apply highlights matches inside the text of markup. Tags and attributes are
// copied through untouched, as is any text that holds no match.
func (h *Highlighter) Apply(markup string) string {
	if h.re == nil || markup == "" {
		return markup
	}

	z := html.NewTokenizer(strings.NewReader(markup))

	var sb strings.Builder
	sb.Grow(len(markup))

	skip := false

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return sb.String()
		case html.StartTagToken, html.EndTagToken:
			raw := z.Raw()
			name, _ := z.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skip = tt == html.StartTagToken
			}
			sb.Write(raw)
		case html.TextToken:
			raw := string(z.Raw())
			if skip {
				sb.WriteString(raw)
				continue
			}
			sb.WriteString(h.wrap(raw))
		default:
			sb.Write(z.Raw())
		}
	}
}

// Text highlights plain text, escaping it for inclusion in markup.
func (h *Highlighter) Text(s string) string {
	if h.re == nil {
		return html.EscapeString(s)
	}

	return h.wrapText(s)
}

func (h *Highlighter) wrap(raw string) string {
	text := html.UnescapeString(raw)
	if !h.re.MatchString(text) {
		return raw
	}

	return h.wrapText(text)
}

func (h *Highlighter) wrapText(text string) string {
	var sb strings.Builder

	last := 0
	for _, loc := range h.re.FindAllStringIndex(text, -1) {
		if loc[0] == loc[1] {
			continue
		}
		sb.WriteString(html.EscapeString(text[last:loc[0]]))
		sb.WriteString(highlightOpen)
		sb.WriteString(html.EscapeString(text[loc[0]:loc[1]]))
		sb.WriteString(highlightClose)
		last = loc[1]
	}
	sb.WriteString(html.EscapeString(text[last:]))

	return sb.String()
}
