package ingest

import (
	"context"
	"fmt"

	"commentarchive/internal/catalog"
	"commentarchive/internal/logger"
	"commentarchive/internal/models"
)

// Failure records a record file that could not be ingested.
type Failure struct {
	Path string
	Err  error
}

// Report summarizes one pipeline run.
type Report struct {
	Files    int
	Articles int
	Comments int
	Failures []Failure
}

// Pipeline loads records and builds the catalog.
type Pipeline struct {
	source    *Source
	processor *Processor
	strict    bool
	log       *logger.Logger
}

// NewPipeline creates a pipeline. In strict mode the first bad record aborts
// the run; otherwise bad records are skipped and listed in the report.
func NewPipeline(source *Source, strict bool, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.Discard()
	}

	return &Pipeline{
		source:    source,
		processor: NewProcessor(),
		strict:    strict,
		log:       log.With("component", "ingest"),
	}
}

// Run ingests every record and returns the resulting catalog.
func (p *Pipeline) Run(ctx context.Context) (*catalog.Catalog, Report, error) {
	var report Report

	records, err := p.source.Load(ctx)
	if err != nil {
		return nil, report, fmt.Errorf("failed to load records: %w", err)
	}

	report.Files = len(records)
	articles := make([]*models.Article, 0, len(records))

	for _, rec := range records {
		article, err := p.processor.Process(&rec.Raw)
		if err != nil {
			if p.strict {
				return nil, report, &FileError{Path: rec.Path, Err: err}
			}

			p.log.Warn("Skipping malformed record", "path", rec.Path, "error", err)
			report.Failures = append(report.Failures, Failure{Path: rec.Path, Err: err})

			continue
		}

		articles = append(articles, article)
	}

	cat := catalog.New(articles)
	report.Articles = cat.Len()
	report.Comments = cat.CommentCount()

	p.log.Info("Ingested archive",
		"files", report.Files,
		"articles", report.Articles,
		"comments", report.Comments,
		"skipped", len(report.Failures))

	return cat, report, nil
}
