package ingest

import (
	"fmt"

	"commentarchive/internal/models"
)

// Processor validates and transforms one record.
type Processor struct {
	validator   *Validator
	transformer *Transformer
}

// NewProcessor creates a new processor instance.
func NewProcessor() *Processor {
	return &Processor{
		validator:   NewValidator(),
		transformer: NewTransformer(),
	}
}

// Process transforms a raw record into an Article.
func (p *Processor) Process(raw *models.RawArticle) (*models.Article, error) {
	if err := p.validator.Validate(raw); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	article, err := p.transformer.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("transformation failed: %w", err)
	}

	return article, nil
}
