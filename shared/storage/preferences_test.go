package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "preferences.json")

	fs, err := NewFileStore(path)
	require.NoError(t, err)

	_, ok, err := fs.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, fs.Set(ctx, DarkModeKey, "1"))

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	v, ok, err := reopened.Get(ctx, DarkModeKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileStore(path)
	assert.Error(t, err)
}

func TestToggleDarkMode(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "preferences.json"))
	require.NoError(t, err)
	prefs := NewPreferences(fs)

	dark, err := prefs.DarkMode(ctx)
	require.NoError(t, err)
	assert.False(t, dark, "light mode by default")

	dark, err = prefs.ToggleDarkMode(ctx)
	require.NoError(t, err)
	assert.True(t, dark)

	v, _, _ := fs.Get(ctx, DarkModeKey)
	assert.Equal(t, "1", v)

	dark, err = prefs.ToggleDarkMode(ctx)
	require.NoError(t, err)
	assert.False(t, dark)

	v, _, _ = fs.Get(ctx, DarkModeKey)
	assert.Equal(t, "0", v)
}

func TestDarkModeIgnoresUnknownValues(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "preferences.json"))
	require.NoError(t, err)
	require.NoError(t, fs.Set(ctx, DarkModeKey, "yes"))

	dark, err := NewPreferences(fs).DarkMode(ctx)
	require.NoError(t, err)
	assert.False(t, dark)
}
