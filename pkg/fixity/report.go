package fixity

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// DateLayout is the run-date stamp used in the report filename.
const DateLayout = "20060102"

// Header is the report's column row.
var Header = []string{"Filename", "Fixity State", "Media ID", "File ID", "Performed"}

// Filename returns the report filename for the given day.
func Filename(day time.Time) string {
	return fmt.Sprintf("yudl-fixity-results-%s.csv", day.Format(DateLayout))
}

// Report is an append-only CSV fixity report. Rows end in CRLF and each row
// is flushed to the file as soon as it is written.
type Report struct {
	file afero.File
	w    *csv.Writer
	path string
	rows int
}

// OpenReport opens or creates the report at path in append mode and writes
// the header if the file is empty.
func OpenReport(fs afero.Fs, path string) (*Report, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open fixity report: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat fixity report: %w", err)
	}

	w := csv.NewWriter(f)
	w.UseCRLF = true

	r := &Report{file: f, w: w, path: path}
	if info.Size() == 0 {
		if err := r.writeRow(Header); err != nil {
			f.Close()
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	return r, nil
}

// Path returns the report's file path.
func (r *Report) Path() string {
	return r.path
}

// Rows returns the number of entries written, excluding the header.
func (r *Report) Rows() int {
	return r.rows
}

// Write appends one entry.
func (r *Report) Write(e Entry) error {
	if err := r.writeRow(e.Row()); err != nil {
		return fmt.Errorf("write fixity row: %w", err)
	}
	r.rows++
	return nil
}

func (r *Report) writeRow(row []string) error {
	if err := r.w.Write(row); err != nil {
		return err
	}
	r.w.Flush()
	return r.w.Error()
}

// Close flushes and closes the report file.
func (r *Report) Close() error {
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		r.file.Close()
		return fmt.Errorf("flush fixity report: %w", err)
	}
	return r.file.Close()
}
