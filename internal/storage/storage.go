// Package storage provides the durable key/value slots the client keeps its
// session in. Every backend behaves like browser local storage: string keys,
// string values, a missing key is "absent" rather than an error, and data may
// disappear between runs without warning.
package storage

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Storage is a durable string key/value store.
type Storage interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(key string) (value string, ok bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error
}

// Backend names accepted by Open.
const (
	BackendFile    = "file"
	BackendKeyring = "keyring"
	BackendSQLite  = "sqlite"
	BackendMemory  = "memory"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

// Open returns the backend selected by name. path is the file or database
// location for the file and sqlite backends and is ignored by the others.
func Open(backend, path string) (Storage, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStorage(path), nil
	case BackendKeyring:
		return NewKeyringStorage(keyringService), nil
	case BackendSQLite:
		return OpenSQLite(path)
	case BackendMemory:
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// Close releases resources held by s if it holds any.
func Close(s Storage) error {
	if c, ok := s.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// scoped prefixes every key with an origin so that sessions for different
// backends never see each other's slots.
type scoped struct {
	inner  Storage
	prefix string
}

// Scoped returns a view of inner restricted to origin.
func Scoped(inner Storage, origin string) Storage {
	return &scoped{inner: inner, prefix: NormalizeOrigin(origin) + "|"}
}

func (s *scoped) Get(key string) (string, bool, error) {
	return s.inner.Get(s.prefix + key)
}

func (s *scoped) Set(key, value string) error {
	return s.inner.Set(s.prefix+key, value)
}

func (s *scoped) Remove(key string) error {
	return s.inner.Remove(s.prefix + key)
}

func (s *scoped) Close() error {
	return Close(s.inner)
}

// NormalizeOrigin reduces a URL to scheme://host[:port] in lower case. Default
// ports are dropped so that http://x and http://x:80 share one origin. Strings
// that do not parse as absolute URLs are returned trimmed and lower-cased.
func NormalizeOrigin(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return strings.ToLower(strings.TrimRight(raw, "/"))
	}

	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		port = ""
	}
	if port != "" {
		host = host + ":" + port
	}
	return scheme + "://" + host
}
