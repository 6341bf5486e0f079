// Package catalog owns the ordered list of articles and the page view over it.
package catalog

import (
	"sort"
	"sync"

	"commentarchive/internal/models"
	"commentarchive/internal/tree"
)

// Catalog is an immutable, ordered collection of articles. The flattened
// comment index of each article is built on first access and cached.
type Catalog struct {
	articles []*models.Article
	flat     []flatCache
}

type flatCache struct {
	once    sync.Once
	entries []models.FlatComment
}

// New sorts the articles by (Page, Order) ascending and returns the catalog.
// The sort is stable: records sharing a key keep their input order.
func New(articles []*models.Article) *Catalog {
	sorted := make([]*models.Article, len(articles))
	copy(sorted, articles)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Page != sorted[j].Page {
			return sorted[i].Page < sorted[j].Page
		}

		return sorted[i].Order < sorted[j].Order
	})

	return &Catalog{
		articles: sorted,
		flat:     make([]flatCache, len(sorted)),
	}
}

// Len returns the number of articles.
func (c *Catalog) Len() int {
	return len(c.articles)
}

// Articles returns the ordered articles. The slice must not be modified.
func (c *Catalog) Articles() []*models.Article {
	return c.articles
}

// At returns the article at index i.
func (c *Catalog) At(i int) (*models.Article, bool) {
	if i < 0 || i >= len(c.articles) {
		return nil, false
	}

	return c.articles[i], true
}

// ClampIndex returns i when it addresses an article and 0 otherwise.
func (c *Catalog) ClampIndex(i int) int {
	if i < 0 || i >= len(c.articles) {
		return 0
	}

	return i
}

// PageOf returns the 1-based page holding articleIndex.
func PageOf(articleIndex, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}

	return articleIndex/pageSize + 1
}

// TotalPages returns the number of pages needed for the catalog.
func (c *Catalog) TotalPages(pageSize int) int {
	if pageSize <= 0 || len(c.articles) == 0 {
		return 0
	}

	return (len(c.articles) + pageSize - 1) / pageSize
}

// Slice returns the articles on the given 1-based page, or nil when the page
// lies outside the catalog.
func (c *Catalog) Slice(page, pageSize int) []*models.Article {
	start, end := c.Bounds(page, pageSize)
	if start >= end {
		return nil
	}

	return c.articles[start:end]
}

// Bounds returns the [start, end) article indexes of a 1-based page.
func (c *Catalog) Bounds(page, pageSize int) (int, int) {
	if page < 1 || pageSize <= 0 {
		return 0, 0
	}

	start := (page - 1) * pageSize
	if start >= len(c.articles) {
		return 0, 0
	}

	end := min(start+pageSize, len(c.articles))

	return start, end
}

// Comments returns the flattened comment index of article i, building it on
// first use. It returns nil for an unknown index.
func (c *Catalog) Comments(i int) []models.FlatComment {
	if i < 0 || i >= len(c.articles) {
		return nil
	}

	fc := &c.flat[i]
	fc.once.Do(func() {
		fc.entries = tree.Flatten(c.articles[i].Comments, i)
	})

	return fc.entries
}

// CommentCount returns the total number of comments across all articles.
func (c *Catalog) CommentCount() int {
	n := 0
	for _, a := range c.articles {
		n += tree.Count(a.Comments)
	}

	return n
}
