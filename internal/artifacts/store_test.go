package artifacts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndList(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)

	path, err := store.Save(Products, "accurate-sarees-1.jpg", []byte("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "products", "accurate-sarees-1.jpg"), path)

	_, err = store.Save(Products, "accurate-kurtis-2.jpg", []byte("jpeg"))
	require.NoError(t, err)

	names, err := store.List(Products)
	require.NoError(t, err)
	assert.Equal(t, []string{"accurate-kurtis-2.jpg", "accurate-sarees-1.jpg"}, names)

	payload, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(payload))
}

func TestListEmptyKind(t *testing.T) {
	names, err := NewStore(t.TempDir()).List(Backgrounds)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestRejectsUnknownKind(t *testing.T) {
	_, err := NewStore(t.TempDir()).Save(Kind("thumbnails"), "a.jpg", nil)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestRejectsTraversal(t *testing.T) {
	store := NewStore(t.TempDir())
	for _, name := range []string{"", "../escape.jpg", "nested/a.jpg", ".hidden"} {
		_, err := store.Save(Patterns, name, []byte("x"))
		assert.ErrorIs(t, err, ErrBadName, "name %q", name)
	}
}

func TestPathRequiresExistingFile(t *testing.T) {
	store := NewStore(t.TempDir())
	_, err := store.Path(Categories, "missing.jpg")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = store.Save(Categories, "present.jpg", []byte("x"))
	require.NoError(t, err)
	path, err := store.Path(Categories, "present.jpg")
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("Products")
	assert.ErrorIs(t, err, ErrUnknownKind)
}
