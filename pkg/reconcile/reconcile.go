// Package reconcile filters a previous fid snapshot against a more recent one.
//
// The result is computed literally as (previous ∪ recent) ∩ previous, which
// always equals the previous set: lines only present in the recent snapshot
// are dropped and every previous line is kept. The output is sorted in
// descending byte order.
package reconcile

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/afero"
)

// maxLineSize bounds a single snapshot line.
const maxLineSize = 1024 * 1024

// Set is a snapshot: the distinct trimmed lines of a fid file.
type Set map[string]struct{}

// ReadSet reads r line by line. Lines are trimmed; blank lines are kept as
// the empty string.
func ReadSet(r io.Reader) (Set, error) {
	set := make(Set)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		set[strings.TrimSpace(scanner.Text())] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	return set, nil
}

// ReadSetFile reads the snapshot at path.
func ReadSetFile(fs afero.Fs, path string) (Set, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	set, err := ReadSet(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// Members returns the set's lines in no particular order.
func (s Set) Members() []string {
	return lo.Keys(s)
}

// Reconcile returns (previous ∪ recent) ∩ previous sorted descending.
func Reconcile(previous, recent Set) []string {
	union := lo.Union(previous.Members(), recent.Members())
	result := lo.Intersect(union, previous.Members())
	SortDescending(result)
	return result
}

// SortDescending sorts lines in descending lexicographic order in place.
func SortDescending(lines []string) {
	slices.SortFunc(lines, func(a, b string) int {
		return strings.Compare(b, a)
	})
}

// WriteLines writes lines separated by newlines, with a trailing newline.
// An empty result is written as a single newline.
func WriteLines(w io.Writer, lines []string) error {
	if _, err := io.WriteString(w, strings.Join(lines, "\n")+"\n"); err != nil {
		return fmt.Errorf("write lines: %w", err)
	}
	return nil
}

// Files reconciles the snapshots at previousPath and recentPath and writes
// the result to outputPath, replacing any existing file.
func Files(fs afero.Fs, previousPath, recentPath, outputPath string) ([]string, error) {
	previous, recent, err := ReadSnapshots(fs, previousPath, recentPath)
	if err != nil {
		return nil, err
	}

	lines := Reconcile(previous, recent)
	if err := WriteFile(fs, outputPath, lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// ReadSnapshots reads both input snapshots.
func ReadSnapshots(fs afero.Fs, previousPath, recentPath string) (Set, Set, error) {
	previous, err := ReadSetFile(fs, previousPath)
	if err != nil {
		return nil, nil, err
	}
	recent, err := ReadSetFile(fs, recentPath)
	if err != nil {
		return nil, nil, err
	}
	return previous, recent, nil
}

// WriteFile writes lines to path, creating or truncating it.
func WriteFile(fs afero.Fs, path string, lines []string) error {
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	if err := WriteLines(f, lines); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
