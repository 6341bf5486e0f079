package ingest

import (
	"fmt"

	"commentarchive/internal/models"
	"commentarchive/internal/tree"
)

// Transformer turns a validated record into an Article, filling in the
// placeholders for absent optional fields.
type Transformer struct{}

// NewTransformer creates a new transformer instance.
func NewTransformer() *Transformer {
	return &Transformer{}
}

// Transform builds the article and its comment tree. Comment ids are keyed
// on the article URL.
func (t *Transformer) Transform(raw *models.RawArticle) (*models.Article, error) {
	comments, _, err := tree.Build(raw.Comments, raw.ArticleURL, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to build comment tree: %w", err)
	}

	page, order := raw.SortKey()

	article := &models.Article{
		URL:         raw.ArticleURL,
		Title:       raw.Title,
		PublishedAt: models.UnknownTime,
		Body:        models.MissingBody,
		Comments:    comments,
		Page:        page,
		Order:       order,
	}

	if raw.ArticleTime != nil {
		article.PublishedAt = *raw.ArticleTime
	}

	if raw.Content != nil {
		article.Body = *raw.Content
	}

	return article, nil
}
