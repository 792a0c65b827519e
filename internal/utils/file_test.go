package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestIsImageFile(t *testing.T) {
	assert.True(t, IsImageFile("sky.JPG"))
	assert.True(t, IsImageFile("dir/haze.webp"))
	assert.False(t, IsImageFile("notes.txt"))
	assert.False(t, IsImageFile("README"))
}

func TestExpandSources(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.png"))
	touch(t, filepath.Join(dir, "a.jpg"))
	touch(t, filepath.Join(dir, "nested", "c.webp"))
	touch(t, filepath.Join(dir, "notes.txt"))
	single := filepath.Join(t.TempDir(), "one.jpeg")
	touch(t, single)

	got, err := ExpandSources([]string{"https://example.com/sky.jpg", dir, single})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/sky.jpg",
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "nested", "c.webp"),
		single,
	}, got)

	_, err = ExpandSources([]string{filepath.Join(dir, "missing.jpg")})
	assert.Error(t, err)
}

func TestFileAndDirExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.png")
	touch(t, file)

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(dir))
	assert.True(t, DirExists(dir))
	assert.False(t, DirExists(file))
	assert.False(t, DirExists(filepath.Join(dir, "nope")))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "1.5 KB", FormatFileSize(1536))
	assert.Equal(t, "2.0 MB", FormatFileSize(2<<20))
}
