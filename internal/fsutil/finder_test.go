package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func TestFindFilesByExtension(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "plan.hcl"))
	touch(t, filepath.Join(dir, "nested", "deep", "other.hcl"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "plan.yaml"))

	t.Run("recurses into subdirectories", func(t *testing.T) {
		files, err := FindFilesByExtension(dir, ".hcl")
		require.NoError(t, err)
		assert.Len(t, files, 2)
	})

	t.Run("multiple extensions", func(t *testing.T) {
		files, err := FindFilesByExtension(dir, ".yaml", ".yml")
		require.NoError(t, err)
		assert.Len(t, files, 1)
	})

	t.Run("file root returns itself when it matches", func(t *testing.T) {
		path := filepath.Join(dir, "plan.hcl")
		files, err := FindFilesByExtension(path, ".hcl")
		require.NoError(t, err)
		assert.Equal(t, []string{path}, files)
	})

	t.Run("file root with wrong extension returns nothing", func(t *testing.T) {
		files, err := FindFilesByExtension(filepath.Join(dir, "notes.txt"), ".hcl")
		require.NoError(t, err)
		assert.Empty(t, files)
	})

	t.Run("missing root errors", func(t *testing.T) {
		_, err := FindFilesByExtension(filepath.Join(dir, "does-not-exist"), ".hcl")
		assert.Error(t, err)
	})

	t.Run("no extensions panics", func(t *testing.T) {
		assert.Panics(t, func() {
			_, _ = FindFilesByExtension(dir)
		})
	})
}
