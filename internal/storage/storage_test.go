package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func backends(t *testing.T) map[string]Storage {
	t.Helper()

	keyring.MockInit()

	sqliteStore, err := OpenSQLite(filepath.Join(t.TempDir(), "storage.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { sqliteStore.Close() })

	return map[string]Storage{
		BackendMemory:  NewMemoryStorage(),
		BackendFile:    NewFileStorage(filepath.Join(t.TempDir(), "session.json")),
		BackendSQLite:  sqliteStore,
		BackendKeyring: NewKeyringStorage("marquee-test"),
	}
}

func TestStorage_GetSetRemove(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get("missing")
			require.NoError(t, err)
			assert.False(t, ok, "missing key should be absent")

			require.NoError(t, s.Set("token", "abc123"))
			v, ok, err := s.Get("token")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "abc123", v)

			require.NoError(t, s.Set("token", "def456"))
			v, _, err = s.Get("token")
			require.NoError(t, err)
			assert.Equal(t, "def456", v)

			require.NoError(t, s.Set("empty", ""))
			v, ok, err = s.Get("empty")
			require.NoError(t, err)
			assert.True(t, ok, "empty string is a stored value, not absence")
			assert.Equal(t, "", v)

			require.NoError(t, s.Remove("token"))
			_, ok, err = s.Get("token")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Remove("token"), "removing twice is a no-op")
		})
	}
}

func TestScoped_IsolatesOrigins(t *testing.T) {
	inner := NewMemoryStorage()
	a := Scoped(inner, "http://localhost:8000")
	b := Scoped(inner, "https://reviews.example.com")

	require.NoError(t, a.Set("token", "for-a"))

	_, ok, err := b.Get("token")
	require.NoError(t, err)
	assert.False(t, ok)

	sameOrigin := Scoped(inner, "HTTP://LOCALHOST:8000/api/")
	v, ok, err := sameOrigin.Get("token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "for-a", v)
}

func TestNormalizeOrigin(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://localhost:8000", "http://localhost:8000"},
		{"http://localhost:8000/", "http://localhost:8000"},
		{"https://Example.com:443/path?q=1", "https://example.com"},
		{"http://example.com:80", "http://example.com"},
		{"  https://api.example.com:8443  ", "https://api.example.com:8443"},
		{"not a url/", "not a url"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeOrigin(tt.in), tt.in)
	}
}

func TestFileStorage_ToleratesVanishingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	s := NewFileStorage(path)

	require.NoError(t, s.Set("token", "abc123"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	require.NoError(t, os.Remove(path))

	_, ok, err := s.Get("token")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStorage_CorruptFilePropagates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, _, err := NewFileStorage(path).Get("token")
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	s, err := Open(BackendMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStorage{}, s)

	s, err = Open(BackendFile, filepath.Join(t.TempDir(), "s.json"))
	require.NoError(t, err)
	assert.IsType(t, &FileStorage{}, s)

	_, err = Open("etcd", "")
	assert.ErrorIs(t, err, ErrUnknownBackend)
}
