package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
}

func TestNextSequence(t *testing.T) {
	tests := []struct {
		name     string
		group    string
		files    []string
		dirs     []string
		expected int
	}{
		{name: "empty directory", group: "cats", expected: 1},
		{name: "contiguous", group: "cats", files: []string{"cats_1.png", "cats_2.mp4"}, expected: 3},
		{name: "gap is not reused", group: "cats", files: []string{"cats_1.png", "cats_3.png"}, expected: 4},
		{name: "numeric not lexical max", group: "cats", files: []string{"cats_9.png", "cats_10.png"}, expected: 11},
		{name: "other prefixes ignored", group: "cats", files: []string{"dogs_7.png", "cats_2.png", "xcats_9.png"}, expected: 3},
		{name: "no extension ignored", group: "cats", files: []string{"cats_5", "cats_1.gif"}, expected: 2},
		{name: "non numeric suffix ignored", group: "cats", files: []string{"cats_a.png", "cats_-1.png"}, expected: 1},
		{name: "directories ignored", group: "cats", dirs: []string{"cats_50.png"}, files: []string{"cats_1.png"}, expected: 2},
		{name: "regex metacharacters are literal", group: "a.b+(c)", files: []string{"a.b+(c)_4.jpg", "aXb+(c)_8.jpg", "a.bb(c)_9.jpg"}, expected: 5},
		{name: "unicode group name", group: "奥奇", files: []string{"奥奇_1.jpg", "奥奇_2.jpg"}, expected: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			touch(t, dir, tt.files...)
			for _, d := range tt.dirs {
				require.NoError(t, os.Mkdir(filepath.Join(dir, d), 0755))
			}

			next, err := NextSequence(tt.group, dir)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, next)
		})
	}
}

func TestNextSequence_MissingDirectory(t *testing.T) {
	next, err := NextSequence("cats", filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Equal(t, 1, next)
}

func TestSequentialName(t *testing.T) {
	assert.Equal(t, "cats_12.png", SequentialName("cats", 12, "png"))
}
