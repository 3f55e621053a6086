package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebCommand_StopsWithContext(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, runWeb(ctx, "127.0.0.1:0", false, env.opts()...))
	assert.Contains(t, env.out.String(), "Serving marquee on http://127.0.0.1:")
	assert.Equal(t, "127.0.0.1:0", env.app.Config.Web.Addr)
}

func TestAppContext(t *testing.T) {
	env := newTestEnv(t)

	assert.Nil(t, FromContext(context.Background()))
	ctx := NewContext(context.Background(), env.app)
	assert.Same(t, env.app, FromContext(ctx))
}
