// Package batch drives a processing run over many input files, collecting a
// per-file record for each and a summary at the end. One bad file never
// stops the rest of the run.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
)

// ProcessFunc handles one input file and reports whether it succeeded.
// Implementations must not return errors by panicking; failure is expressed
// through the returned ok/detail pair.
type ProcessFunc func(ctx context.Context, path, outputDir string) (ok bool, detail string)

// Record is the outcome of one file in a run.
type Record struct {
	File      string
	OK        bool
	Detail    string
	Timestamp time.Time
}

// Summary aggregates a finished run.
type Summary struct {
	Total     int
	Succeeded int
	Failed    []Record
}

// SuccessRate returns the fraction of files that succeeded, 0 for an empty
// run.
func (s Summary) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(s.Total)
}

// Orchestrator runs a ProcessFunc across a list of files.
type Orchestrator struct {
	process ProcessFunc
}

// New creates an Orchestrator around the given per-file handler.
func New(process ProcessFunc) *Orchestrator {
	return &Orchestrator{process: process}
}

// Run processes every file in order. Files that are missing or fail to
// process get a failed Record and the run continues; only an unusable output
// directory or a canceled context stops the run early. The records returned
// cover every file attempted so far.
func (o *Orchestrator) Run(ctx context.Context, files []string, outputDir string) ([]Record, error) {
	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	log.Info().Int("files", len(files)).Msg("Starting batch run")

	records := make([]Record, 0, len(files))
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			log.Warn().Int("processed", i).Int("total", len(files)).Msg("Batch run canceled")
			return records, err
		}

		log.Info().Int("file", i+1).Int("total", len(files)).Str("path", file).Msg("Processing")

		if _, err := os.Stat(file); err != nil {
			log.Error().Str("path", file).Msg("Input file not found, skipping")
			records = append(records, Record{
				File:      file,
				Detail:    fmt.Sprintf("file not found: %s", file),
				Timestamp: time.Now(),
			})
			continue
		}

		ok, detail := o.process(ctx, file, outputDir)
		records = append(records, Record{
			File:      file,
			OK:        ok,
			Detail:    detail,
			Timestamp: time.Now(),
		})
		if !ok {
			log.Error().Str("path", file).Str("reason", detail).Msg("File failed")
		}
	}

	return records, nil
}

// Summarize folds a run's records into totals.
func Summarize(records []Record) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		if r.OK {
			s.Succeeded++
		} else {
			s.Failed = append(s.Failed, r)
		}
	}
	return s
}

// textPatterns are the filename globs DiscoverTextFiles matches.
var textPatterns = []string{"*.txt", "*.md", "*.text"}

// DiscoverTextFiles lists the text files directly inside dir, sorted by
// name.
func DiscoverTextFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range textPatterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to scan directory: %w", err)
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}
