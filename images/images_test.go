package images

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/petindex/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocator(t *testing.T, opts ...Option) (*Locator, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "abc123-1.jpg"), []byte("jpeg"), 0644))
	l, err := NewLocator(dir, opts...)
	require.NoError(t, err)
	return l, dir
}

func TestNewLocatorRequiresDir(t *testing.T) {
	_, err := NewLocator("")
	assert.ErrorIs(t, err, ErrImageDirRequired)
}

func TestPath(t *testing.T) {
	l, dir := newTestLocator(t)

	p, ok := l.Path("abc123")
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "abc123-1.jpg"), p)

	_, ok = l.Path("missing")
	assert.False(t, ok)

	_, ok = l.Path("../abc123")
	assert.False(t, ok)
}

func TestImageURL(t *testing.T) {
	t.Run("file url", func(t *testing.T) {
		l, _ := newTestLocator(t)
		u, ok := l.ImageURL("abc123")
		require.True(t, ok)
		assert.Contains(t, u, "file://")
		assert.Contains(t, u, "abc123-1.jpg")
	})

	t.Run("base url", func(t *testing.T) {
		l, _ := newTestLocator(t, WithBaseURL("https://cdn.example.com/pets/"))
		u, ok := l.ImageURL("abc123")
		require.True(t, ok)
		assert.Equal(t, "https://cdn.example.com/pets/abc123-1.jpg", u)
	})

	t.Run("missing photo", func(t *testing.T) {
		l, _ := newTestLocator(t)
		_, ok := l.ImageURL("nope")
		assert.False(t, ok)
		assert.Equal(t, PlaceholderURL, l.URL("nope"))
	})
}

func TestDataURI(t *testing.T) {
	l, _ := newTestLocator(t)

	uri, err := l.DataURI("abc123")
	require.NoError(t, err)
	assert.Equal(t, "data:image/jpeg;base64,anBlZw==", uri)
	assert.Equal(t, uri, l.Source("abc123"))

	_, err = l.DataURI("nope")
	assert.ErrorIs(t, err, core.ErrSourceRead)
	assert.Equal(t, PlaceholderURL, l.Source("nope"))
}
