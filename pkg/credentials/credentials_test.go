package credentials

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr error
	}{
		{
			name:    "space separated",
			content: "username admin\npassword s3cret\n",
			want:    "s3cret",
		},
		{
			name:    "equals separated",
			content: "password = s3cret\n",
			want:    "s3cret",
		},
		{
			name:    "trailing whitespace",
			content: "password s3cret   \r\n",
			want:    "s3cret",
		},
		{
			name:    "first matching line wins",
			content: "password first\npassword second\n",
			want:    "first",
		},
		{
			name:    "indented line is not a marker",
			content: "  password nope\n",
			wantErr: ErrNoPassword,
		},
		{
			name:    "marker without value",
			content: "password\n",
			wantErr: ErrNoPassword,
		},
		{
			name:    "no password line",
			content: "username admin\n",
			wantErr: ErrNoPassword,
		},
		{
			name:    "empty file",
			content: "",
			wantErr: ErrNoPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fsys, "creds.txt", []byte(tt.content), 0o600))

			got, err := Load(fsys, "creds.txt")
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "error = %v, want %v", err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "missing.txt")
}
