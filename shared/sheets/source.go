// Package sheets loads the remote spreadsheets behind the dashboard
package sheets

import (
	"context"
	"fmt"
	"time"

	"video-insights/internal/models"
)

// Source yields the raw rows of one dataset
type Source interface {
	Name() string
	Rows(ctx context.Context) ([]models.RawRow, error)
}

// SheetSource is a spreadsheet document published at a URL
type SheetSource struct {
	name    string
	url     string
	format  string
	fetcher *Fetcher
}

// NewSheetSource builds a source for url. An empty format is inferred from the URL.
func NewSheetSource(name, url, format string, timeout time.Duration) *SheetSource {
	if format == "" {
		format = FormatFromURL(url)
	}
	return &SheetSource{
		name:    name,
		url:     url,
		format:  format,
		fetcher: NewFetcher(name, timeout),
	}
}

func (s *SheetSource) Name() string { return s.name }

func (s *SheetSource) Rows(ctx context.Context) ([]models.RawRow, error) {
	data, err := s.fetcher.Fetch(ctx, s.url)
	if err != nil {
		return nil, err
	}

	rows, err := Parse(data, s.format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s sheet: %w", s.name, err)
	}
	return rows, nil
}
