package fids

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// DateLayout is the run-date stamp used in output filenames.
const DateLayout = "20060102"

// Filename returns the output filename for category on the given day.
func Filename(category string, day time.Time) string {
	return fmt.Sprintf("yudl-fids-%s-%s.txt", category, day.Format(DateLayout))
}

// Sink appends identifiers to a text file, one per line. The file is not
// touched until the first write, so a category that yields nothing leaves
// no file behind.
type Sink struct {
	fs      afero.Fs
	path    string
	file    afero.File
	w       *bufio.Writer
	written int
}

// NewSink creates a sink for path.
func NewSink(fs afero.Fs, path string) *Sink {
	return &Sink{fs: fs, path: path}
}

// Path returns the sink's file path.
func (s *Sink) Path() string {
	return s.path
}

// Written returns the number of identifiers written.
func (s *Sink) Written() int {
	return s.written
}

// Opened reports whether the file has been created or opened.
func (s *Sink) Opened() bool {
	return s.file != nil
}

// Write appends fids in order and flushes them to the file.
func (s *Sink) Write(fids []string) error {
	if len(fids) == 0 {
		return nil
	}

	if s.file == nil {
		if dir := filepath.Dir(s.path); dir != "." {
			if err := s.fs.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
		}
		f, err := s.fs.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open fid file: %w", err)
		}
		s.file = f
		s.w = bufio.NewWriter(f)
	}

	for _, fid := range fids {
		if _, err := s.w.WriteString(fid + "\n"); err != nil {
			return fmt.Errorf("write fid: %w", err)
		}
	}
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("flush fid file: %w", err)
	}

	s.written += len(fids)
	return nil
}

// Close closes the file if it was opened.
func (s *Sink) Close() error {
	if s.file == nil {
		return nil
	}
	if err := s.w.Flush(); err != nil {
		s.file.Close()
		return fmt.Errorf("flush fid file: %w", err)
	}
	return s.file.Close()
}
