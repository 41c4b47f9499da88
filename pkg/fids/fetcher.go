// Package fids exports YUDL file identifiers to date-stamped text files, one
// file per category.
package fids

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/Sternrassler/yudl-client/pkg/pagination"
)

var fidsWrittenTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "yudl_fids_written_total",
	Help: "Total number of fids written by category",
}, []string{"category"})

// Result summarizes one category's extraction.
type Result struct {
	Category string
	Written  int
	Stop     pagination.Stop

	// Path is the output file, empty when no file was created.
	Path string
}

// Fetcher runs the identifier extraction for a set of categories.
type Fetcher struct {
	extractor *pagination.Extractor[string]
	fs        afero.Fs
	outputDir string
	now       func() time.Time
	logger    zerolog.Logger
}

// Config holds fetcher configuration.
type Config struct {
	// OutputDir is where fid files are written (default: working directory).
	OutputDir string

	// Now returns the run date for filenames (default: time.Now).
	Now func() time.Time
}

// NewFetcher creates a fetcher reading pages through pf and writing to fs.
func NewFetcher(pf pagination.PageFetcher, fs afero.Fs, cfg Config, logger zerolog.Logger) *Fetcher {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Fetcher{
		extractor: pagination.NewExtractor[string](pf, Decoder{}, logger),
		fs:        fs,
		outputDir: cfg.OutputDir,
		now:       cfg.Now,
		logger:    logger,
	}
}

// Run extracts each category from baseURL in turn. Stream-ending conditions
// are not errors; only sink failures and cancellation abort the run.
func (f *Fetcher) Run(ctx context.Context, baseURL string, categories []string) ([]Result, error) {
	baseURL = strings.TrimRight(baseURL, "/")
	results := make([]Result, 0, len(categories))

	for _, category := range categories {
		result, err := f.RunCategory(ctx, baseURL+"/"+category, category)
		results = append(results, result)
		if err != nil {
			return results, err
		}
		if result.Stop.Reason == pagination.StopCancelled {
			return results, context.Cause(ctx)
		}
	}

	return results, nil
}

// RunCategory extracts one category from endpoint into its dated file.
func (f *Fetcher) RunCategory(ctx context.Context, endpoint, category string) (result Result, err error) {
	logger := f.logger.With().Str("category", category).Logger()
	logger.Info().Str("endpoint", endpoint).Msg("Processing endpoint")

	path := filepath.Join(f.outputDir, Filename(category, f.now()))
	sink := NewSink(f.fs, path)
	defer func() {
		err = errors.Join(err, sink.Close())
	}()

	result = Result{Category: category}
	stream := f.extractor.Extract(ctx, endpoint)
	for batch := range stream.Batches() {
		if err := sink.Write(batch.Records); err != nil {
			return result, err
		}
		fidsWrittenTotal.WithLabelValues(category).Add(float64(len(batch.Records)))
		logger.Debug().
			Int("page", batch.Page).
			Int("count", len(batch.Records)).
			Msg("Wrote fids")
	}

	result.Stop = stream.Stop()
	result.Written = sink.Written()

	if !sink.Opened() {
		logger.Warn().
			Str("reason", string(result.Stop.Reason)).
			Msg("No valid fids found, skipping file creation")
		return result, nil
	}

	result.Path = sink.Path()
	logger.Info().
		Str("path", result.Path).
		Int("written", result.Written).
		Msg("Fid list saved")

	return result, nil
}
