package app_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marquee-dev/marquee/internal/app"
	"github.com/marquee-dev/marquee/internal/config"
	"github.com/marquee-dev/marquee/internal/storage"
	"github.com/marquee-dev/marquee/internal/testutil/fakebackend"
)

func TestSessionsAreScopedToBackendOrigin(t *testing.T) {
	b := fakebackend.New(t)
	b.AddUser("ann", "password1", false)
	shared := storage.NewMemoryStorage()

	cfg := config.Default()
	cfg.API.BaseURL = b.URL()
	a := app.NewWithStorage(cfg, zerolog.Nop(), shared)

	other := config.Default()
	other.API.BaseURL = "https://reviews.example.com"
	o := app.NewWithStorage(other, zerolog.Nop(), shared)

	_, err := a.Accounts.Login(context.Background(), "ann", "password1")
	require.NoError(t, err)

	token, err := o.Sessions.Token()
	require.NoError(t, err)
	assert.Empty(t, token, "a session for one backend must not leak to another")

	token, err = a.Sessions.Token()
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestSessionChangesAreLoggedWithoutToken(t *testing.T) {
	b := fakebackend.New(t)
	b.AddUser("ann", "password1", true)

	var buf bytes.Buffer
	cfg := config.Default()
	cfg.API.BaseURL = b.URL()
	a := app.NewWithStorage(cfg, zerolog.New(&buf).Level(zerolog.DebugLevel), storage.NewMemoryStorage())

	sess, err := a.Accounts.Login(context.Background(), "ann", "password1")
	require.NoError(t, err)
	require.NoError(t, a.Accounts.Logout(context.Background()))
	require.NoError(t, a.Close(context.Background()))

	out := buf.String()
	assert.Contains(t, out, `"username":"ann"`)
	assert.Contains(t, out, "Session cleared")
	assert.NotContains(t, out, sess.Token)
}

func TestExpiredSessionIsCleared(t *testing.T) {
	b := fakebackend.New(t)
	b.AddUser("ann", "password1", false)

	cfg := config.Default()
	cfg.API.BaseURL = b.URL()
	a := app.NewWithStorage(cfg, zerolog.Nop(), storage.NewMemoryStorage())

	sess, err := a.Accounts.Login(context.Background(), "ann", "password1")
	require.NoError(t, err)
	b.Revoke(sess.Token)

	_, err = a.Catalog.Watchlist(context.Background())
	require.Error(t, err)

	after, err := a.Sessions.Load()
	require.NoError(t, err)
	assert.False(t, after.Authenticated())
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = "floppy"

	_, err := app.New(cfg, zerolog.Nop())
	assert.ErrorIs(t, err, storage.ErrUnknownBackend)
}
