package api

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	s := NewFileSession(path)

	tok, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, tok, "missing file is an empty session")

	require.NoError(t, s.Save("abc"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	tok, err = NewFileSession(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear(), "clearing twice is fine")
	tok, err = s.Load()
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestFileSession_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o600))

	_, err := NewFileSession(path).Load()
	assert.Error(t, err)
}

func TestDefaultSessionPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	assert.Equal(t, filepath.Join("/home/tester", ".shelfsync", "session.json"), DefaultSessionPath())
}
