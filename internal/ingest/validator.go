package ingest

import (
	"errors"
	"fmt"
	"strings"

	"commentarchive/internal/models"
)

// Validation errors.
var (
	ErrMissingArticleURL = errors.New("missing article_url")
	ErrMissingTitle      = errors.New("missing title")
)

// Validator checks the article-level fields of a record. Comment fields are
// checked while the tree is built.
type Validator struct{}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks if raw meets requirements.
func (v *Validator) Validate(raw *models.RawArticle) error {
	if strings.TrimSpace(raw.ArticleURL) == "" {
		return fmt.Errorf("%w: %w", models.ErrMalformedRecord, ErrMissingArticleURL)
	}

	if strings.TrimSpace(raw.Title) == "" {
		return fmt.Errorf("%w: %w", models.ErrMalformedRecord, ErrMissingTitle)
	}

	return nil
}
