package reconcile

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustReadSet(t *testing.T, content string) Set {
	t.Helper()
	set, err := ReadSet(strings.NewReader(content))
	require.NoError(t, err)
	return set
}

func TestReadSet(t *testing.T) {
	set := mustReadSet(t, "3\n 1 \n2\n2\n\n")

	assert.Len(t, set, 4)
	for _, line := range []string{"1", "2", "3", ""} {
		assert.Contains(t, set, line)
	}
}

func TestReadSet_NoTrailingNewline(t *testing.T) {
	set := mustReadSet(t, "a\nb")
	assert.ElementsMatch(t, []string{"a", "b"}, set.Members())
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name     string
		previous string
		recent   string
		expected []string
	}{
		{
			name:     "filter not merge",
			previous: "3\n1\n2\n",
			recent:   "2\n4\n",
			expected: []string{"3", "2", "1"},
		},
		{
			name:     "recent empty keeps previous",
			previous: "a\nb\n",
			recent:   "",
			expected: []string{"b", "a"},
		},
		{
			name:     "previous empty yields nothing",
			previous: "",
			recent:   "a\n",
			expected: []string{},
		},
		{
			name:     "lexicographic not numeric",
			previous: "9\n10\n100\n",
			recent:   "",
			expected: []string{"9", "100", "10"},
		},
		{
			name:     "blank line kept",
			previous: "a\n\nb\n",
			recent:   "c\n",
			expected: []string{"b", "a", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile(mustReadSet(t, tt.previous), mustReadSet(t, tt.recent))
			if len(tt.expected) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestWriteLines(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLines(&buf, []string{"3", "2", "1"}))
	assert.Equal(t, "3\n2\n1\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteLines(&buf, nil))
	assert.Equal(t, "\n", buf.String())
}

func TestFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "previous.txt", []byte("3\n1\n2\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "recent.txt", []byte("2\n4\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "out.txt", []byte("stale content that is longer\n"), 0o644))

	lines, err := Files(fs, "previous.txt", "recent.txt", "out.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "2", "1"}, lines)

	data, err := afero.ReadFile(fs, "out.txt")
	require.NoError(t, err)
	assert.Equal(t, "3\n2\n1\n", string(data))
}

func TestFiles_MissingInput(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "previous.txt", []byte("1\n"), 0o644))

	_, err := Files(fs, "previous.txt", "missing.txt", "out.txt")
	assert.Error(t, err)

	exists, err := afero.Exists(fs, "out.txt")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestNewRedisSets_Panic(t *testing.T) {
	assert.Panics(t, func() {
		NewRedisSets(nil, zerolog.Nop())
	})
}
