package storage

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statement = "Date,Description,Amount\n2024-01-01,Coffee,-4.50\n"

func TestSaveAndRead(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	file, err := store.Save("abc123", "../../etc/jan.csv", []byte(statement))
	require.NoError(t, err)
	assert.Equal(t, "jan.csv", file.Name)
	assert.Equal(t, filepath.Join(store.Dir(), "abc123_jan.csv"), file.Path)

	data, err := store.Read("abc123_jan.csv")
	require.NoError(t, err)
	assert.Equal(t, statement, string(data))

	rc, err := store.Open("abc123_jan.csv")
	require.NoError(t, err)
	defer rc.Close()
	data, err = io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, statement, string(data))

	files, err := store.List()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "abc123", files[0].ID)
	assert.Equal(t, "jan.csv", files[0].Name)

	require.NoError(t, store.Delete("abc123_jan.csv"))
	_, err = store.Read("abc123_jan.csv")
	assert.ErrorIs(t, err, ErrStatementNotFound)
	assert.NoError(t, store.Delete("abc123_jan.csv"))
}

func TestRejectsUnsafeNames(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("", "jan.csv", nil)
	assert.ErrorIs(t, err, ErrInvalidName)
	_, err = store.Save("id", "", nil)
	assert.ErrorIs(t, err, ErrInvalidName)

	for _, name := range []string{"", "../secret", "a/b.csv", verifyFile, markerFile} {
		_, err := store.Read(name)
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
}

func TestEncryptionLifecycle(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)

	_, err = store.Save("before", "jan.csv", []byte(statement))
	require.NoError(t, err)

	const passphrase = "correct horse battery"
	require.NoError(t, store.EnableEncryption(passphrase))
	assert.True(t, store.IsEncrypted())
	assert.True(t, store.IsUnlocked())
	assert.ErrorIs(t, store.EnableEncryption(passphrase), ErrAlreadyEncrypted)

	raw, err := os.ReadFile(filepath.Join(dir, "before_jan.csv"))
	require.NoError(t, err)
	assert.True(t, isAgeEncrypted(raw))

	_, err = store.Save("after", "feb.csv", []byte(statement))
	require.NoError(t, err)
	raw, err = os.ReadFile(filepath.Join(dir, "after_feb.csv"))
	require.NoError(t, err)
	assert.True(t, isAgeEncrypted(raw))

	data, err := store.Read("after_feb.csv")
	require.NoError(t, err)
	assert.Equal(t, statement, string(data))

	store.Lock()
	assert.False(t, store.IsUnlocked())
	_, err = store.Read("before_jan.csv")
	assert.ErrorIs(t, err, ErrLocked)
	_, err = store.Save("locked", "mar.csv", []byte(statement))
	assert.ErrorIs(t, err, ErrLocked)

	assert.ErrorIs(t, store.Unlock("wrong passphrase"), ErrWrongPassphrase)

	// a fresh handle on the same directory starts locked
	reopened, err := New(dir)
	require.NoError(t, err)
	assert.True(t, reopened.IsEncrypted())
	assert.False(t, reopened.IsUnlocked())
	require.NoError(t, reopened.Unlock(passphrase))
	data, err = reopened.Read("before_jan.csv")
	require.NoError(t, err)
	assert.Equal(t, statement, string(data))

	files, err := reopened.List()
	require.NoError(t, err)
	assert.Len(t, files, 2)

	assert.ErrorIs(t, reopened.DisableEncryption("wrong passphrase"), ErrWrongPassphrase)
	require.NoError(t, reopened.DisableEncryption(passphrase))
	assert.False(t, reopened.IsEncrypted())
	assert.ErrorIs(t, reopened.DisableEncryption(passphrase), ErrNotEncrypted)

	raw, err = os.ReadFile(filepath.Join(dir, "before_jan.csv"))
	require.NoError(t, err)
	assert.Equal(t, statement, string(raw))
	_, err = os.Stat(filepath.Join(dir, verifyFile))
	assert.True(t, os.IsNotExist(err))
}

func TestShortPassphrase(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	assert.ErrorIs(t, store.EnableEncryption("short"), ErrShortPassphrase)
	assert.False(t, store.IsEncrypted())
}
