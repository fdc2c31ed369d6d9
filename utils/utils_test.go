package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpperCamelCase(t *testing.T) {
	tests := map[string]string{
		"unsupported_format":   "UnsupportedFormat",
		"invalid_scale_factor": "InvalidScaleFactor",
		"transcode_io":         "TranscodeIo",
		"usage":                "Usage",
		"":                     "",
	}
	for in, want := range tests {
		assert.Equal(t, want, UpperCamelCase(in), in)
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.bmp")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	isDir, exists, err := Exists(dir)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.True(t, isDir)

	isDir, exists, err = Exists(file)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.False(t, isDir)

	_, exists, err = Exists(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSiblingPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", ".x.tmp"), SiblingPath(filepath.Join("out", "x.bmp"), ".x.tmp"))
	assert.Equal(t, ".x.tmp", SiblingPath("x.bmp", ".x.tmp"))
}

func TestSameFile(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.bmp")
	b := filepath.Join(dir, "b.bmp")
	require.NoError(t, os.WriteFile(a, []byte("BM"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("BM"), 0o644))

	assert.True(t, SameFile(a, a))
	assert.True(t, SameFile(a, filepath.Join(dir, ".", "a.bmp")))
	assert.False(t, SameFile(a, b))
	assert.False(t, SameFile(a, filepath.Join(dir, "missing.bmp")))

	link := filepath.Join(dir, "link.bmp")
	require.NoError(t, os.Link(a, link))
	assert.True(t, SameFile(a, link))
}
