// Package models defines data structures for the archive ingestion, search and rendering layers.
package models

import "strings"

// Sentinels substituted when an ingestion record omits an optional field.
const (
	// UnknownTime replaces a missing article_time.
	UnknownTime = "未知时间"
	// MissingBody replaces a missing article content.
	MissingBody = "文章内容加载失败"
	// DefaultSortKey is used for a missing page or order.
	DefaultSortKey = 9999
)

// Article is one published piece of content plus its comment thread.
// It is built once at ingestion and never mutated afterwards.
type Article struct {
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	PublishedAt string     `json:"publishedAt"`
	Body        string     `json:"body"`
	Comments    []*Comment `json:"comments"`
	Page        int        `json:"page"`
	Order       int        `json:"order"`
}

// HasKnownTime reports whether the article carries a real publication time.
func (a *Article) HasKnownTime() bool {
	switch strings.TrimSpace(a.PublishedAt) {
	case "", UnknownTime, "unknown":
		return false
	}

	return true
}

// RawArticle is an article record as supplied by the ingestion source.
// Optional fields are pointers so that absence can be told apart from zero values.
type RawArticle struct {
	ArticleURL  string       `json:"article_url"`
	Title       string       `json:"title"`
	Content     *string      `json:"content,omitempty"`
	ArticleTime *string      `json:"article_time,omitempty"`
	Page        *int         `json:"page,omitempty"`
	Order       *int         `json:"order,omitempty"`
	Comments    []RawComment `json:"comments"`
}

// SortKey returns the (page, order) pair with missing values defaulted.
func (r *RawArticle) SortKey() (int, int) {
	page, order := DefaultSortKey, DefaultSortKey
	if r.Page != nil {
		page = *r.Page
	}

	if r.Order != nil {
		order = *r.Order
	}

	return page, order
}
