package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantError bool
	}{
		{name: "empty path", input: "", wantError: true},
		{name: "relative path", input: "./data", wantError: false},
		{name: "absolute path", input: "/tmp/ghrelay", wantError: false},
		{name: "home path", input: "~/.ghrelay", wantError: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ResolvePath(tt.input)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, filepath.IsAbs(result), "expected absolute path, got %q", result)
		})
	}
}

func TestEnsureParent(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "a", "b", "file.txt")

	require.NoError(t, EnsureParent(target))
	assert.True(t, DirExists(filepath.Join(root, "a", "b")))

	// existing directory is a no-op
	require.NoError(t, EnsureDir(filepath.Join(root, "a")))

	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))
	assert.False(t, DirExists(target))
}
