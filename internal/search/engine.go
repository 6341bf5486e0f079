// Package search matches a keyword against comments, authors or articles of
// a catalog and produces result records for the pager.
package search

import (
	"strconv"
	"strings"

	"commentarchive/internal/catalog"
	"commentarchive/internal/convert"
	"commentarchive/internal/models"
	"commentarchive/internal/tree"
)

const (
	DefaultPreviewLength = 60
	previewSuffix        = "..."

	// UnknownTimeSortKey stands in for an unknown publication time so such
	// articles compare after dated ones.
	UnknownTimeSortKey = "9999"

	articleIDPrefix = "article-"
)

// Result is a single search hit.
type Result struct {
	ID             string `json:"id"`
	ArticleIndex   int    `json:"article_index"`
	ArticleTitle   string `json:"article_title"`
	Author         string `json:"author"`
	Time           string `json:"time"`
	SortableTime   string `json:"sortable_time"`
	Preview        string `json:"preview"`
	DisplayText    string `json:"display_text"`
	Highlighted    string `json:"highlighted,omitempty"`
	MatchedInTitle bool   `json:"matched_in_title,omitempty"`
	MatchedInBody  bool   `json:"matched_in_body,omitempty"`
}

// IsArticle reports whether the hit refers to a whole article.
func (r Result) IsArticle() bool {
	return strings.HasPrefix(r.ID, articleIDPrefix)
}

// ResultSet holds the hits of one query in natural order.
type ResultSet struct {
	Scope   Scope    `json:"scope"`
	Keyword string   `json:"keyword"`
	Results []Result `json:"results"`
}

// Empty reports whether the query matched nothing.
func (rs *ResultSet) Empty() bool {
	return rs == nil || len(rs.Results) == 0
}

// NoResultsNotice returns the message shown when the query matched nothing.
func (rs *ResultSet) NoResultsNotice() string {
	if rs != nil && rs.Scope == ScopeArticle {
		return "没有找到匹配的文章！"
	}

	return "没有找到匹配的评论！"
}

// Engine runs keyword queries over a catalog.
type Engine struct {
	catalog    *catalog.Catalog
	converter  convert.Converter
	previewLen int
}

// NewEngine creates an engine. A non-positive previewLen selects
// DefaultPreviewLength.
func NewEngine(cat *catalog.Catalog, c convert.Converter, previewLen int) *Engine {
	if c == nil {
		c = convert.Identity{}
	}
	if previewLen <= 0 {
		previewLen = DefaultPreviewLength
	}

	return &Engine{catalog: cat, converter: c, previewLen: previewLen}
}

// Converter returns the converter the engine normalizes keywords with.
func (e *Engine) Converter() convert.Converter {
	return e.converter
}

// Search matches keyword within scope. Site scopes return ErrExternalScope;
// callers redirect with SiteSearchURL instead.
func (e *Engine) Search(scope Scope, keyword string) (*ResultSet, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, ErrEmptyKeyword
	}

	rs := &ResultSet{Scope: scope, Keyword: keyword, Results: []Result{}}

	switch scope {
	case ScopeComment, ScopeAuthor:
		rs.Results = e.searchComments(scope, keyword)
	case ScopeArticle:
		rs.Results = e.searchArticles(keyword)
	case ScopeSiteBing, ScopeSiteGoogle:
		return nil, ErrExternalScope
	default:
		return nil, ErrUnknownScope
	}

	return rs, nil
}

type matcher struct {
	simplified  string
	traditional string
}

func (e *Engine) matcher(keyword string) matcher {
	simp, trad := convert.Forms(e.converter, keyword)

	return matcher{simplified: strings.ToLower(simp), traditional: strings.ToLower(trad)}
}

func (m matcher) match(text string) bool {
	text = strings.ToLower(text)

	return strings.Contains(text, m.simplified) || strings.Contains(text, m.traditional)
}

func (e *Engine) searchComments(scope Scope, keyword string) []Result {
	m := e.matcher(keyword)
	hl := NewHighlighter(e.converter, keyword)

	results := []Result{}

	for i, article := range e.catalog.Articles() {
		for _, fc := range e.catalog.Comments(i) {
			field := fc.Text
			if scope == ScopeAuthor {
				field = fc.Author
			}
			if !m.match(field) {
				continue
			}

			preview := e.preview(fc.Text)
			results = append(results, Result{
				ID:           fc.ID,
				ArticleIndex: i,
				ArticleTitle: article.Title,
				Author:       fc.Author,
				Time:         fc.Timestamp,
				SortableTime: fc.Timestamp,
				Preview:      preview,
				DisplayText:  fc.Author + " - " + fc.Timestamp + " : " + preview,
				Highlighted:  hl.Apply(fc.Content),
			})
		}
	}

	return results
}

func (e *Engine) searchArticles(keyword string) []Result {
	m := e.matcher(keyword)
	hl := NewHighlighter(e.converter, keyword)

	results := []Result{}

	for i, article := range e.catalog.Articles() {
		body := tree.PlainText(article.Body)
		if !m.match(article.Title + " " + body) {
			continue
		}

		inTitle := m.match(article.Title)
		inBody := m.match(body)

		r := Result{
			ID:             articleIDPrefix + strconv.Itoa(i),
			ArticleIndex:   i,
			ArticleTitle:   article.Title,
			Time:           article.PublishedAt,
			SortableTime:   articleSortableTime(article),
			Preview:        e.preview(body),
			MatchedInTitle: inTitle,
			MatchedInBody:  inBody,
		}
		r.DisplayText = article.PublishedAt + " - " + article.Title + " - " + r.Preview
		if inBody {
			r.Highlighted = hl.Apply(article.Body)
		}

		results = append(results, r)
	}

	return results
}

func articleSortableTime(a *models.Article) string {
	if !a.HasKnownTime() {
		return UnknownTimeSortKey
	}

	return a.PublishedAt
}

func (e *Engine) preview(text string) string {
	return Preview(text, e.previewLen)
}

// Preview returns the first n runes of text followed by an ellipsis.
func Preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) > n {
		runes = runes[:n]
	}

	return string(runes) + previewSuffix
}
