/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: scanner.go
Description: Concurrent batch extraction over sample files. Paths are expanded into a job
list, fanned out over a fixed pool of workers and decoded independently; every job owns its
own report so workers share nothing but the immutable decoder.
*/

package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kleascm/enfal-extractor/pkg/decoder"
	"github.com/kleascm/enfal-extractor/pkg/report"
	"github.com/sirupsen/logrus"
)

// DefaultMaxFileSize bounds how much of a single sample is read into memory
const DefaultMaxFileSize = 64 * 1024 * 1024

// ErrFileTooLarge is recorded for samples above Config.MaxFileSize
var ErrFileTooLarge = errors.New("sample exceeds maximum file size")

// Config controls a Scanner
type Config struct {
	Workers     int   `json:"workers" yaml:"workers"`             // 0 = runtime.NumCPU()
	MaxFileSize int64 `json:"max_file_size" yaml:"max_file_size"` // 0 = DefaultMaxFileSize
	Recursive   bool  `json:"recursive" yaml:"recursive"`         // descend into subdirectories
}

// Validate checks the configuration and fills in defaults
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	if c.MaxFileSize < 0 {
		return fmt.Errorf("max_file_size must not be negative")
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.MaxFileSize == 0 {
		c.MaxFileSize = DefaultMaxFileSize
	}
	return nil
}

// Stats tracks scanner totals. Fields are updated atomically.
type Stats struct {
	Samples int64 `json:"samples"`
	Found   int64 `json:"found"`
	Errors  int64 `json:"errors"`
	Fields  int64 `json:"fields"`
}

// Scanner decodes samples with a shared decoder
type Scanner struct {
	config  Config
	decoder *decoder.Decoder
	logger  *logrus.Logger
	stats   Stats
}

// New creates a scanner. A nil logger discards log output.
func New(config Config, dec *decoder.Decoder, logger *logrus.Logger) (*Scanner, error) {
	if dec == nil {
		return nil, fmt.Errorf("decoder must not be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scan config: %w", err)
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Scanner{config: config, decoder: dec, logger: logger}, nil
}

// Config returns the effective configuration
func (s *Scanner) Config() Config {
	return s.config
}

// Stats returns a snapshot of the totals
func (s *Scanner) Stats() Stats {
	return Stats{
		Samples: atomic.LoadInt64(&s.stats.Samples),
		Found:   atomic.LoadInt64(&s.stats.Found),
		Errors:  atomic.LoadInt64(&s.stats.Errors),
		Fields:  atomic.LoadInt64(&s.stats.Fields),
	}
}

// ScanBytes decodes an in-memory sample
func (s *Scanner) ScanBytes(name string, data []byte) *report.Report {
	start := time.Now()
	r := report.NewReport(name, data)
	atomic.AddInt64(&s.stats.Samples, 1)

	sink := report.NewLoggerSink(s.logger, name, r)
	match, found, err := s.decoder.Decode(data, sink)
	r.Duration = time.Since(start)

	if err != nil {
		r.SetError(err)
		atomic.AddInt64(&s.stats.Errors, 1)
		s.logger.WithFields(logrus.Fields{"sample": name, "error": err}).Warn("Decode failed")
		return r
	}
	if !found {
		s.logger.WithField("sample", name).Debug("No config found")
		return r
	}

	r.SetAnchor(match)
	atomic.AddInt64(&s.stats.Found, 1)
	atomic.AddInt64(&s.stats.Fields, int64(len(r.Fields)))
	s.logger.WithFields(logrus.Fields{
		"sample":  name,
		"pattern": match.PatternID,
		"offset":  fmt.Sprintf("%#x", match.Offset),
		"fields":  len(r.Fields),
	}).Info("Config found")
	return r
}

// ScanFile reads and decodes one sample. Read failures are returned and also
// recorded on the report.
func (s *Scanner) ScanFile(ctx context.Context, path string) (*report.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := s.readSample(path)
	if err != nil {
		r := report.NewReport(path, nil)
		r.SetError(err)
		atomic.AddInt64(&s.stats.Samples, 1)
		atomic.AddInt64(&s.stats.Errors, 1)
		s.logger.WithFields(logrus.Fields{"sample": path, "error": err}).Warn("Sample read failed")
		return r, err
	}
	return s.ScanBytes(path, data), nil
}

// readSample reads a file, refusing files above the size limit
func (s *Scanner) readSample(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat sample: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("sample %s is a directory", path)
	}
	if info.Size() > s.config.MaxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFileTooLarge, path, info.Size(), s.config.MaxFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sample: %w", err)
	}
	return data, nil
}

// Expand turns files and directories into a sorted list of sample files.
// Directories are listed one level deep unless Recursive is set.
func (s *Scanner) Expand(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		var found []string
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && !s.config.Recursive {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", p, err)
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

// ScanPaths scans files and directories concurrently. Reports come back in the
// order of the expanded file list; per-file failures are recorded on the reports.
// Cancelling ctx stops dispatching and returns ctx's error with the reports
// finished so far.
func (s *Scanner) ScanPaths(ctx context.Context, paths []string) ([]*report.Report, error) {
	files, err := s.Expand(paths)
	if err != nil {
		return nil, err
	}

	reports := make([]*report.Report, len(files))
	jobs := make(chan int)

	var wg sync.WaitGroup
	workers := s.config.Workers
	if workers > len(files) {
		workers = len(files)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				// Read errors are already on the report
				r, _ := s.ScanFile(ctx, files[i])
				reports[i] = r
			}
		}()
	}

dispatch:
	for i := range files {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		done := reports[:0]
		for _, r := range reports {
			if r != nil {
				done = append(done, r)
			}
		}
		return done, err
	}
	return reports, nil
}
