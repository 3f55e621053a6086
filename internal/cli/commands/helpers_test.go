package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/marquee-dev/marquee/internal/app"
	"github.com/marquee-dev/marquee/internal/config"
	"github.com/marquee-dev/marquee/internal/storage"
	"github.com/marquee-dev/marquee/internal/testutil/fakebackend"
)

// testEnv is a fake backend plus an app talking to it over in-memory storage.
type testEnv struct {
	backend *fakebackend.Backend
	app     *app.App
	out     *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("MARQUEE_USERNAME", "")
	t.Setenv("MARQUEE_PASSWORD", "")

	b := fakebackend.New(t)
	cfg := config.Default()
	cfg.API.BaseURL = b.URL()
	a := app.NewWithStorage(cfg, zerolog.Nop(), storage.NewMemoryStorage())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = a.Close(ctx)
	})

	return &testEnv{backend: b, app: a, out: &bytes.Buffer{}}
}

// opts returns non-interactive options writing to env.out.
func (e *testEnv) opts() []Option {
	return []Option{WithApp(e.app), WithOutput(e.out), WithInteractive(false)}
}

// typing returns interactive options that answer prompts with lines.
func (e *testEnv) typing(lines ...string) []Option {
	return []Option{
		WithApp(e.app),
		WithOutput(e.out),
		WithInteractive(true),
		WithInput(strings.NewReader(strings.Join(lines, "\n") + "\n")),
	}
}

func (e *testEnv) loginAs(t *testing.T, username string, admin bool) int64 {
	t.Helper()
	id := e.backend.AddUser(username, "password1", admin)
	_, err := e.app.Accounts.Login(context.Background(), username, "password1")
	require.NoError(t, err)
	return id
}
