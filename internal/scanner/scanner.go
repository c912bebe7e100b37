package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/atikulmunna/tally/internal/analyzer"
	"github.com/atikulmunna/tally/internal/loader"
	"github.com/atikulmunna/tally/internal/model"
	"github.com/bmatcuk/doublestar/v4"
)

const (
	DefaultDir     = "outputs"
	DefaultPattern = "*.json"
)

// Scanner runs the load/analyze pipeline over the files of one directory.
type Scanner struct {
	pattern string
	log     *slog.Logger
}

// New creates a Scanner for the given doublestar pattern, evaluated relative
// to the scanned directory. An empty pattern means DefaultPattern.
func New(pattern string, logger *slog.Logger) (*Scanner, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{pattern: pattern, log: logger}, nil
}

// Pattern returns the match pattern in use.
func (s *Scanner) Pattern() string {
	return s.pattern
}

// Scan processes every matching file in dir, in lexical order. A missing
// directory, an empty match set, and bad files are logged and never abort
// the run; the returned Report holds whatever succeeded.
func (s *Scanner) Scan(dir string) model.Report {
	report := model.Report{
		Directory:   dir,
		Pattern:     s.pattern,
		GeneratedAt: time.Now(),
		Results:     []model.Summary{},
	}

	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Warn("directory does not exist", "dir", dir)
		return report
	}
	if err != nil {
		s.log.Warn("cannot access directory", "dir", dir, "err", err)
		return report
	}
	if !info.IsDir() {
		s.log.Warn("no files matched", "dir", dir, "pattern", s.pattern)
		return report
	}

	// Directories whose names match are kept: they fail in the loader and
	// get a per-file diagnostic instead of vanishing.
	matches, err := doublestar.Glob(os.DirFS(dir), s.pattern, doublestar.WithFailOnIOErrors())
	if err != nil {
		s.log.Warn("cannot list directory", "dir", dir, "pattern", s.pattern, "err", err)
		return report
	}
	if len(matches) == 0 {
		s.log.Warn("no files matched", "dir", dir, "pattern", s.pattern)
		return report
	}

	for _, m := range matches {
		full := filepath.Join(dir, filepath.FromSlash(m))
		summary, err := processFile(full)
		if err != nil {
			s.log.Error("error processing file", "file", full, "err", err)
			continue
		}
		summary.Filename = path.Base(m)
		report.Results = append(report.Results, summary)
	}

	s.log.Debug("scan complete", "dir", dir, "matched", len(matches), "analyzed", len(report.Results))
	return report
}

// processFile loads and analyzes one file, turning an analyzer panic into an error.
func processFile(file string) (summary model.Summary, err error) {
	rec, err := loader.Load(file)
	if err != nil {
		return model.Summary{}, err
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analyze: %v", r)
		}
	}()
	return analyzer.Analyze(rec), nil
}
