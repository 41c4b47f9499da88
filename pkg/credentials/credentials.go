// Package credentials reads the YUDL API password from a local credentials file.
package credentials

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/afero"
)

// Marker is the line prefix identifying the password line.
const Marker = "password"

var (
	// ErrNotFound indicates the credentials file does not exist.
	ErrNotFound = errors.New("credentials file not found")

	// ErrNoPassword indicates the file has no usable password line.
	ErrNoPassword = errors.New("no password entry in credentials file")
)

// Load returns the secret from the first line of the file at path that
// starts with Marker. The secret is the last whitespace-separated token on
// that line, so both "password secret" and "password = secret" work.
func Load(fsys afero.Fs, path string) (string, error) {
	f, err := fsys.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w at %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("open credentials file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, Marker) {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return "", fmt.Errorf("%w: %s", ErrNoPassword, path)
		}
		return fields[len(fields)-1], nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read credentials file: %w", err)
	}

	return "", fmt.Errorf("%w: %s", ErrNoPassword, path)
}
