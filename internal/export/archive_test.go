package export

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readArchiveEntries(t *testing.T, path string) map[string]string {
	t.Helper()
	reader, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer reader.Close()

	entries := make(map[string]string)
	for _, f := range reader.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		entries[f.Name] = string(data)
	}
	return entries
}

func TestBuildArchive(t *testing.T) {
	srcDir := t.TempDir()
	writeTestFile(t, filepath.Join(srcDir, ".env"), "GOOGLE_API_KEY=\n")
	writeTestFile(t, filepath.Join(srcDir, "config", "config.json"), `{"agent_name":"demo"}`)
	writeTestFile(t, filepath.Join(srcDir, "config", "retriever", "words.txt"), "stop\nwords\n")

	dest := filepath.Join(t.TempDir(), "out.zip")
	require.NoError(t, BuildArchive(srcDir, dest))

	entries := readArchiveEntries(t, dest)
	require.Len(t, entries, 3)
	assert.Equal(t, "GOOGLE_API_KEY=\n", entries[".env"])
	assert.Equal(t, `{"agent_name":"demo"}`, entries["config/config.json"])
	assert.Equal(t, "stop\nwords\n", entries["config/retriever/words.txt"])
}

func TestBuildArchiveSkipsEmptyDirs(t *testing.T) {
	srcDir := t.TempDir()
	writeTestFile(t, filepath.Join(srcDir, "config", "config.json"), "{}")
	require.NoError(t, os.MkdirAll(filepath.Join(srcDir, "config", "recognizer"), 0o755))

	dest := filepath.Join(t.TempDir(), "out.zip")
	require.NoError(t, BuildArchive(srcDir, dest))

	entries := readArchiveEntries(t, dest)
	assert.Len(t, entries, 1)
	assert.Contains(t, entries, "config/config.json")
}

func TestBuildArchiveDeterministicOrder(t *testing.T) {
	srcDir := t.TempDir()
	writeTestFile(t, filepath.Join(srcDir, "b.txt"), "b")
	writeTestFile(t, filepath.Join(srcDir, "a.txt"), "a")
	writeTestFile(t, filepath.Join(srcDir, "c.txt"), "c")

	dest := filepath.Join(t.TempDir(), "out.zip")
	require.NoError(t, BuildArchive(srcDir, dest))

	reader, err := zip.OpenReader(dest)
	require.NoError(t, err)
	defer reader.Close()

	var names []string
	for _, f := range reader.File {
		names = append(names, f.Name)
	}
	assert.True(t, sort.StringsAreSorted(names), "归档条目应按路径排序: %v", names)
}

func TestBuildArchiveMissingSource(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.zip")
	err := BuildArchive(filepath.Join(t.TempDir(), "missing"), dest)
	assert.Error(t, err)
	assert.NoFileExists(t, dest, "失败时不应留下半成品归档")
}
