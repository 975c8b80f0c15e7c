package yaml

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yamlv3 "gopkg.in/yaml.v3"
)

func TestAtomicWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "result.yaml")

	data := map[string]any{
		"status": "completed",
		"steps":  3,
	}
	require.NoError(t, AtomicWrite(path, data))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, yamlv3.Unmarshal(content, &got))
	assert.Equal(t, "completed", got["status"])
	assert.Equal(t, 3, got["steps"])
}

func TestAtomicWriteCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "outputs", "draft.md")

	require.NoError(t, AtomicWriteRaw(path, []byte("# Draft\n")))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Draft\n", string(content))
}

func TestAtomicWriteOverwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.md")

	require.NoError(t, AtomicWriteRaw(path, []byte("first")))
	require.NoError(t, AtomicWriteRaw(path, []byte("second")))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, AtomicWriteRaw(filepath.Join(dir, "a.yaml"), []byte("a: 1\n")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.yaml", entries[0].Name())
}
