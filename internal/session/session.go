// Package session holds the client's record of who is logged in. The record
// lives in durable storage so it survives restarts; the Store is the only code
// that reads or writes those slots.
package session

import (
	"sync"

	"github.com/marquee-dev/marquee/internal/storage"
)

// Storage keys. Each field is its own slot.
const (
	KeyToken    = "marquee.token"
	KeyUserID   = "marquee.userId"
	KeyUsername = "marquee.username"
	KeyIsAdmin  = "marquee.isAdmin"
)

// adminMarker is the only persisted value that reads back as admin.
const adminMarker = "true"

// Session is the current user as issued by the backend at login. Empty strings
// mean the field is absent.
type Session struct {
	Token    string `json:"-"`
	UserID   string `json:"userId,omitempty"`
	Username string `json:"username,omitempty"`
	IsAdmin  bool   `json:"isAdmin"`
}

// Authenticated reports whether a token is present.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Store reads and writes the session slots.
type Store struct {
	storage storage.Storage

	mu sync.RWMutex

	subMu     sync.Mutex
	nextSubID int
	subs      map[int]func(Session)
}

// NewStore returns a Store over s. s should already be scoped to one backend
// origin.
func NewStore(s storage.Storage) *Store {
	return &Store{
		storage: s,
		subs:    make(map[int]func(Session)),
	}
}

// Token returns the bearer token, or "" when logged out.
func (s *Store) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(KeyToken)
}

// UserID returns the user identifier, or "".
func (s *Store) UserID() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(KeyUserID)
}

// Username returns the username, or "".
func (s *Store) Username() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(KeyUsername)
}

// IsAdmin reports the admin flag. Anything other than the exact value "true"
// is false.
func (s *Store) IsAdmin() (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readAdmin()
}

// Load reads all four fields under one lock.
func (s *Store) Load() (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load()
}

// Set replaces the stored session with sess. Subsequent reads return sess.
// The token slot is emptied first and written last, so storage never holds the
// new token next to the previous user's fields. If any write fails the slots
// are cleared and the write error is returned.
func (s *Store) Set(sess Session) error {
	admin := "false"
	if sess.IsAdmin {
		admin = adminMarker
	}

	s.mu.Lock()
	err := s.replace([]struct{ key, value string }{
		{KeyUserID, sess.UserID},
		{KeyUsername, sess.Username},
		{KeyIsAdmin, admin},
		{KeyToken, sess.Token},
	})
	if err != nil {
		_ = s.clear()
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.publish(sess)
	return nil
}

func (s *Store) replace(writes []struct{ key, value string }) error {
	for _, key := range []string{KeyToken, KeyIsAdmin} {
		if err := s.storage.Remove(key); err != nil {
			return err
		}
	}
	for _, w := range writes {
		if err := s.storage.Set(w.key, w.value); err != nil {
			return err
		}
	}
	return nil
}

// Clear removes every session slot. Clearing an empty store is a no-op.
func (s *Store) Clear() error {
	s.mu.Lock()
	if err := s.clear(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.publish(Session{})
	return nil
}

// ClearToken clears the session only while token is still the stored one. It
// reports whether anything was cleared.
func (s *Store) ClearToken(token string) (bool, error) {
	s.mu.Lock()
	current, err := s.read(KeyToken)
	if err != nil || current == "" || current != token {
		s.mu.Unlock()
		return false, err
	}
	if err := s.clear(); err != nil {
		s.mu.Unlock()
		return false, err
	}
	s.mu.Unlock()

	s.publish(Session{})
	return true, nil
}

// clear runs with mu held. The token goes first so a partial failure never
// leaves a usable session behind.
func (s *Store) clear() error {
	for _, key := range []string{KeyToken, KeyIsAdmin, KeyUserID, KeyUsername} {
		if err := s.storage.Remove(key); err != nil {
			return err
		}
	}
	return nil
}

// Subscribe registers fn to be called with the new session after every
// successful Set or Clear. The returned func unregisters it.
func (s *Store) Subscribe(fn func(Session)) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) publish(sess Session) {
	s.subMu.Lock()
	fns := make([]func(Session), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(sess)
	}
}

func (s *Store) read(key string) (string, error) {
	v, ok, err := s.storage.Get(key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return v, nil
}

func (s *Store) readAdmin() (bool, error) {
	v, err := s.read(KeyIsAdmin)
	if err != nil {
		return false, err
	}
	return v == adminMarker, nil
}

func (s *Store) load() (Session, error) {
	var (
		sess Session
		err  error
	)
	if sess.Token, err = s.read(KeyToken); err != nil {
		return Session{}, err
	}
	if sess.UserID, err = s.read(KeyUserID); err != nil {
		return Session{}, err
	}
	if sess.Username, err = s.read(KeyUsername); err != nil {
		return Session{}, err
	}
	if sess.IsAdmin, err = s.readAdmin(); err != nil {
		return Session{}, err
	}
	return sess, nil
}
