package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marquee-dev/marquee/internal/authz"
	"github.com/marquee-dev/marquee/internal/catalog"
	"github.com/marquee-dev/marquee/internal/client"
	"github.com/marquee-dev/marquee/internal/testutil/fakebackend"
)

func TestFavoritesCommands(t *testing.T) {
	env := newTestEnv(t)
	user := env.loginAs(t, "ann", false)
	movie := env.backend.AddMovie("Alien", 1979, "Horror")
	env.backend.SetMetadata(movie, fakebackend.Metadata{Title: "Alien"}, fakebackend.Metadata{ID: 99, Title: "Aliens"})

	require.NoError(t, runFavorites(context.Background(), env.opts()...))
	assert.Contains(t, env.out.String(), "No favorites yet.")

	add := func(o *options) listEdit { return o.app.Catalog.AddFavorite }
	require.NoError(t, runListEdit(context.Background(), authz.FavoritesPage, movie, add, "added to favorites", env.opts()...))
	assert.Equal(t, []int64{movie}, env.backend.Favorites(user))

	env.out.Reset()
	require.NoError(t, runFavorites(context.Background(), env.opts()...))
	assert.Contains(t, env.out.String(), "Alien")
	assert.Contains(t, env.out.String(), "Because you liked Alien: Aliens")

	err := runListEdit(context.Background(), authz.FavoritesPage, movie, add, "added to favorites", env.opts()...)
	assert.True(t, client.IsStatus(err, 400), "adding twice should fail, got %v", err)

	rm := func(o *options) listEdit { return o.app.Catalog.RemoveFavorite }
	require.NoError(t, runListEdit(context.Background(), authz.FavoritesPage, movie, rm, "removed from favorites", env.opts()...))
	assert.Empty(t, env.backend.Favorites(user))
}

func TestWatchlistCommands(t *testing.T) {
	env := newTestEnv(t)
	user := env.loginAs(t, "ann", false)
	movie := env.backend.AddMovie("Heat", 1995, "Crime")

	add := func(o *options) listEdit { return o.app.Catalog.AddToWatchlist }
	require.NoError(t, runListEdit(context.Background(), authz.WatchlistPage, movie, add, "added to watchlist", env.opts()...))
	assert.Contains(t, env.out.String(), "added to watchlist")
	assert.Equal(t, []int64{movie}, env.backend.Watchlist(user))

	env.out.Reset()
	require.NoError(t, runWatchlist(context.Background(), env.opts()...))
	assert.Contains(t, env.out.String(), "Heat")

	rm := func(o *options) listEdit { return o.app.Catalog.RemoveFromWatchlist }
	err := runListEdit(context.Background(), authz.WatchlistPage, movie+100, rm, "removed from watchlist", env.opts()...)
	assert.True(t, client.IsStatus(err, 404))
}

func TestListEditNeedsSession(t *testing.T) {
	env := newTestEnv(t)

	add := func(o *options) listEdit { return o.app.Catalog.AddToWatchlist }
	err := runListEdit(context.Background(), authz.WatchlistPage, 1, add, "added", env.opts()...)
	assert.ErrorIs(t, err, ErrLoginRequired)
}

func TestProfileCommands(t *testing.T) {
	env := newTestEnv(t)
	env.loginAs(t, "ann", false)

	require.NoError(t, runProfile(context.Background(), env.opts()...))
	assert.Contains(t, env.out.String(), "ann@example.com")

	err := runUpdateProfile(context.Background(), catalog.ProfileForm{}, env.opts()...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to update")

	env.out.Reset()
	require.NoError(t, runUpdateProfile(context.Background(), catalog.ProfileForm{FirstName: "Annie", Age: 31}, env.opts()...))
	assert.Contains(t, env.out.String(), "Profile updated.")
	assert.Contains(t, env.out.String(), "Annie")

	err = runUpdateProfile(context.Background(), catalog.ProfileForm{Email: "not-an-email"}, env.opts()...)
	require.Error(t, err)
}
