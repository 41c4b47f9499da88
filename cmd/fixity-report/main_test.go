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
	"github.com/Sternrassler/yudl-client/pkg/fixity"
)

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

func TestFixityReport_WritesReport(t *testing.T) {
	mock := testutil.NewMockYUDL()
	defer mock.Close()
	mock.SetPages("/fixity",
		testutil.NewJSONResponse(`[
			{"file_1":"a.tif","fid":"1","state":"passed","mid":"10","performed":"<time datetime=\"2024-03-01T00:00:00Z\">x</time>"},
			{"file_1":"b.tif","fid":"2","state":"passed","mid":"11","performed":"2024-03-02"},
			{"file_1":"","fid":"","state":"","mid":"","performed":""}
		]`),
	)

	dir := t.TempDir()
	credentials := filepath.Join(dir, "credentials")
	require.NoError(t, os.WriteFile(credentials, []byte("password s3cret\n"), 0o600))
	metricsFile := filepath.Join(dir, "fixity.prom")

	_, err := runCmd(t,
		"--credentials", credentials,
		"--endpoint", mock.URL()+"/fixity",
		"--output-dir", dir,
		"--metrics-file", metricsFile,
	)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, fixity.Filename(time.Now())))
	require.NoError(t, err)
	assert.Equal(t,
		"Filename,Fixity State,Media ID,File ID,Performed\r\n"+
			"a.tif,passed,10,1,2024-03-01T00:00:00Z\r\n"+
			"b.tif,passed,11,2,2024-03-02\r\n",
		string(data))

	user, password := mock.LastBasicAuth()
	assert.Equal(t, "admin", user)
	assert.Equal(t, "s3cret", password)

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "yudl_fixity_rows_written_total")
}

func TestFixityReport_CredentialsWithoutPassword(t *testing.T) {
	mock := testutil.NewMockYUDL()
	defer mock.Close()

	dir := t.TempDir()
	credentials := filepath.Join(dir, "credentials")
	require.NoError(t, os.WriteFile(credentials, []byte("username admin\n"), 0o600))

	_, err := runCmd(t,
		"--credentials", credentials,
		"--endpoint", mock.URL()+"/fixity",
		"--output-dir", dir,
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no password entry")
	assert.Zero(t, mock.GetRequestCount())

	_, statErr := os.Stat(filepath.Join(dir, fixity.Filename(time.Now())))
	assert.True(t, os.IsNotExist(statErr), "report must not be created before credentials load")
}

func TestFixityReport_MissingEndpoint(t *testing.T) {
	_, err := runCmd(t, "--credentials", "creds")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag --endpoint")
}
