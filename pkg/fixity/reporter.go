// Package fixity exports YUDL fixity check results to a date-stamped CSV report.
package fixity

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/Sternrassler/yudl-client/pkg/pagination"
)

var (
	rowsWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yudl_fixity_rows_written_total",
		Help: "Total number of fixity report rows written",
	})

	entriesByStateTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yudl_fixity_entries_total",
		Help: "Total number of fixity entries by state (passed, failed, other)",
	}, []string{"state"})
)

// Result summarizes one report run.
type Result struct {
	Path string
	Rows int
	Stop pagination.Stop
}

// Config holds reporter configuration.
type Config struct {
	// OutputDir is where the report is written (default: working directory).
	OutputDir string

	// Now returns the run date for the filename (default: time.Now).
	Now func() time.Time
}

// Reporter runs the fixity report extraction.
type Reporter struct {
	extractor *pagination.Extractor[Entry]
	fs        afero.Fs
	outputDir string
	now       func() time.Time
	logger    zerolog.Logger
}

// NewReporter creates a reporter reading pages through pf and writing to fs.
func NewReporter(pf pagination.PageFetcher, fs afero.Fs, cfg Config, logger zerolog.Logger) *Reporter {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Reporter{
		extractor: pagination.NewExtractor[Entry](pf, Decoder{}, logger),
		fs:        fs,
		outputDir: cfg.OutputDir,
		now:       cfg.Now,
		logger:    logger,
	}
}

// Run writes every fixity entry served by endpoint to the day's report. The
// report file is created before the first request, so it exists (with its
// header) even when no entries are found.
func (r *Reporter) Run(ctx context.Context, endpoint string) (result Result, err error) {
	path := filepath.Join(r.outputDir, Filename(r.now()))
	report, err := OpenReport(r.fs, path)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		err = errors.Join(err, report.Close())
	}()

	result.Path = path
	stream := r.extractor.Extract(ctx, endpoint)
	for batch := range stream.Batches() {
		for _, entry := range batch.Records {
			if err := report.Write(entry); err != nil {
				result.Rows = report.Rows()
				return result, err
			}
			rowsWrittenTotal.Inc()
			entriesByStateTotal.WithLabelValues(StateLabel(entry.State)).Inc()
		}
	}

	result.Rows = report.Rows()
	result.Stop = stream.Stop()

	r.logger.Info().
		Str("path", path).
		Int("rows", result.Rows).
		Str("reason", string(result.Stop.Reason)).
		Msg("Fixity report saved")

	return result, nil
}
