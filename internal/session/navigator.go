// Package session holds the per-reader browsing cursor and display
// preferences, and the stores that persist them between visits.
package session

import (
	"errors"

	"commentarchive/internal/catalog"
)

// DefaultArticlePageSize is the number of articles listed per picker page.
const DefaultArticlePageSize = 10

var (
	ErrFirstArticle    = errors.New("已经是第一篇文章了")
	ErrLastArticle     = errors.New("已经是最后一篇文章了")
	ErrArticleNotFound = errors.New("article index out of range")
)

// State is the reader's position in the archive. It is passed into and
// returned from every navigation step.
type State struct {
	ArticleIndex int   `json:"article_index"`
	ArticlePage  int   `json:"article_page"`
	ResultPage   int   `json:"result_page"`
	Query        Query `json:"query"`
}

// Query identifies the search whose result page is remembered in ResultPage.
type Query struct {
	Scope   string `json:"scope,omitempty"`
	Keyword string `json:"keyword,omitempty"`
	Sort    string `json:"sort,omitempty"`
	Filter  string `json:"filter,omitempty"`
}

// WithQuery records q as the current search. A query that differs from the
// stored one starts again on result page 1.
func (s State) WithQuery(q Query) State {
	if q != s.Query || s.ResultPage < 1 {
		s.Query = q
		s.ResultPage = 1
	}

	return s
}

// Navigator moves a State through a catalog.
type Navigator struct {
	catalog  *catalog.Catalog
	pageSize int
}

// NewNavigator creates a navigator. A non-positive pageSize selects
// DefaultArticlePageSize.
func NewNavigator(cat *catalog.Catalog, pageSize int) *Navigator {
	if pageSize <= 0 {
		pageSize = DefaultArticlePageSize
	}

	return &Navigator{catalog: cat, pageSize: pageSize}
}

// PageSize returns the number of articles per picker page.
func (n *Navigator) PageSize() int {
	return n.pageSize
}

// TotalPages returns the picker page count.
func (n *Navigator) TotalPages() int {
	return n.catalog.TotalPages(n.pageSize)
}

// Restore repairs a saved state against the current catalog. An index that
// no longer exists falls back to the first article.
func (n *Navigator) Restore(s State) State {
	s.ArticleIndex = n.catalog.ClampIndex(s.ArticleIndex)
	s.ArticlePage = catalog.PageOf(s.ArticleIndex, n.pageSize)
	if s.ResultPage < 1 {
		s.ResultPage = 1
	}

	return s
}

// SelectResult jumps to the article a search hit belongs to. The picker page
// is switched before the article index changes.
func (n *Navigator) SelectResult(s State, articleIndex int) (State, error) {
	if _, ok := n.catalog.At(articleIndex); !ok {
		return s, ErrArticleNotFound
	}

	if page := catalog.PageOf(articleIndex, n.pageSize); page != s.ArticlePage {
		s.ArticlePage = page
	}
	s.ArticleIndex = articleIndex

	return s, nil
}

// Next moves to the following article.
func (n *Navigator) Next(s State) (State, error) {
	if s.ArticleIndex >= n.catalog.Len()-1 {
		return s, ErrLastArticle
	}

	return n.SelectResult(s, s.ArticleIndex+1)
}

// Prev moves to the preceding article.
func (n *Navigator) Prev(s State) (State, error) {
	if s.ArticleIndex <= 0 {
		return s, ErrFirstArticle
	}

	return n.SelectResult(s, s.ArticleIndex-1)
}

// GoToPage switches the picker to page, clamped to the valid range, and
// selects the first article on it.
func (n *Navigator) GoToPage(s State, page int) State {
	total := n.TotalPages()
	if page > total {
		page = total
	}
	if page < 1 {
		page = 1
	}

	s.ArticlePage = page
	s.ArticleIndex = n.catalog.ClampIndex((page - 1) * n.pageSize)

	return s
}
