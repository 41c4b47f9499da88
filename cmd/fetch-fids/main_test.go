package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/yudl-client/internal/testutil"
	"github.com/Sternrassler/yudl-client/pkg/fids"
)

func writeCredentials(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "credentials")
	require.NoError(t, os.WriteFile(path, []byte("username admin\npassword s3cret\n"), 0o600))
	return path
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var stderr bytes.Buffer
	cmd.SetOut(&stderr)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--log-pretty=false"))

	err := cmd.Execute()
	return stderr.String(), err
}

func TestFetchFids_UnknownCategoryTolerated(t *testing.T) {
	mock := testutil.NewMockYUDL()
	defer mock.Close()
	mock.SetPages("/audio",
		testutil.NewJSONResponse(`[{"fid":"1"},{"fid":"2"}]`),
		testutil.NewJSONResponse(`[{"fid":"3"}]`),
	)

	dir := t.TempDir()
	output, err := runCmd(t,
		"--credentials", writeCredentials(t, dir),
		"--base-url", mock.URL()+"/",
		"--endpoints", "audio,bogus",
		"--output-dir", dir,
	)
	require.NoError(t, err)

	today := time.Now()
	data, err := os.ReadFile(filepath.Join(dir, fids.Filename("audio", today)))
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n3\n", string(data))

	_, err = os.Stat(filepath.Join(dir, fids.Filename("bogus", today)))
	assert.True(t, os.IsNotExist(err), "no file should exist for an unknown category")

	assert.Contains(t, output, "Skipping unknown endpoint")
	assert.Contains(t, output, "bogus")
	assert.Empty(t, mock.RequestedPages("/bogus"))
	assert.Equal(t, []int{0, 1, 2}, mock.RequestedPages("/audio"))
}

func TestFetchFids_NoDataCategory(t *testing.T) {
	mock := testutil.NewMockYUDL()
	defer mock.Close()
	mock.SetPages("/images", testutil.NewStatusResponse(404))

	dir := t.TempDir()
	output, err := runCmd(t,
		"--credentials", writeCredentials(t, dir),
		"--base-url", mock.URL(),
		"--endpoints", "images",
		"--output-dir", dir,
	)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, fids.Filename("images", time.Now())))
	assert.True(t, os.IsNotExist(err))
	assert.Contains(t, output, "No valid fids found")
}

func TestFetchFids_MissingCredentialsFile(t *testing.T) {
	mock := testutil.NewMockYUDL()
	defer mock.Close()

	dir := t.TempDir()
	_, err := runCmd(t,
		"--credentials", filepath.Join(dir, "missing"),
		"--base-url", mock.URL(),
		"--endpoints", "all",
		"--output-dir", dir,
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials file not found")
	assert.Zero(t, mock.GetRequestCount(), "no request may be made without credentials")
}

func TestFetchFids_RequiredFlags(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		errorString string
	}{
		{
			name:        "missing base url",
			args:        []string{"--endpoints", "all", "--credentials", "creds"},
			errorString: "required flag --base-url (or YUDL_BASE_URL) not set",
		},
		{
			name:        "missing endpoints",
			args:        []string{"--base-url", "https://example.org", "--credentials", "creds"},
			errorString: "required flag --endpoints (or YUDL_ENDPOINTS) not set",
		},
		{
			name:        "missing credentials",
			args:        []string{"--base-url", "https://example.org", "--endpoints", "all"},
			errorString: "required flag --credentials (or YUDL_CREDENTIALS) not set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCmd(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorString)
		})
	}
}

func TestFetchFids_FlagsFromEnvironment(t *testing.T) {
	mock := testutil.NewMockYUDL()
	defer mock.Close()
	mock.SetPages("/videos", testutil.NewJSONResponse(`[{"fid":"9"}]`))

	dir := t.TempDir()
	t.Setenv("YUDL_CREDENTIALS", writeCredentials(t, dir))
	t.Setenv("YUDL_BASE_URL", mock.URL())
	t.Setenv("YUDL_ENDPOINTS", "videos")
	t.Setenv("YUDL_OUTPUT_DIR", dir)

	_, err := runCmd(t)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, fids.Filename("videos", time.Now())))
	require.NoError(t, err)
	assert.Equal(t, "9\n", string(data))
}
