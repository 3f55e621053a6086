package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marquee-dev/marquee/internal/client"
)

func TestFlagsCommand(t *testing.T) {
	env := newTestEnv(t)
	author := env.backend.AddUser("bob", "password1", false)
	movie := env.backend.AddMovie("Heat", 1995, "Crime")
	review := env.backend.AddReview(movie, author, "Rude", "Offensive   words\nhere", 1)
	env.backend.Flag(review, "abuse")
	env.loginAs(t, "root", true)

	require.NoError(t, runFlags(context.Background(), 1, false, env.opts()...))
	out := env.out.String()
	assert.Contains(t, out, "Flagged reviews: 1 (page 1 of 1)")
	assert.Contains(t, out, "abuse")
	assert.Contains(t, out, "Offensive words here")

	err := runFlags(context.Background(), 1, true, env.opts()...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--interactive needs a terminal")
}

func TestFlagActionCommands(t *testing.T) {
	env := newTestEnv(t)
	author := env.backend.AddUser("bob", "password1", false)
	movie := env.backend.AddMovie("Heat", 1995, "Crime")
	accepted := env.backend.AddReview(movie, author, "a", "a", 1)
	rejected := env.backend.AddReview(movie, author, "b", "b", 1)
	deleted := env.backend.AddReview(movie, author, "c", "c", 1)
	for _, id := range []int64{accepted, rejected, deleted} {
		env.backend.Flag(id, "spam")
	}
	env.loginAs(t, "root", true)

	require.NoError(t, runFlagAction(context.Background(), flagAccept, accepted, env.opts()...))
	_, exists := env.backend.Review(accepted)
	assert.False(t, exists)

	require.NoError(t, runFlagAction(context.Background(), flagReject, rejected, env.opts()...))
	r, exists := env.backend.Review(rejected)
	require.True(t, exists)
	assert.False(t, r.Flagged)

	require.NoError(t, runFlagAction(context.Background(), flagDelete, deleted, env.opts()...))
	assert.Contains(t, env.out.String(), "deleted")

	env.out.Reset()
	require.NoError(t, runFlags(context.Background(), 1, false, env.opts()...))
	assert.Contains(t, env.out.String(), "Nothing to moderate.")
}

func TestUsersAndAdminRights(t *testing.T) {
	env := newTestEnv(t)
	bob := env.backend.AddUser("bob", "password1", false)
	env.loginAs(t, "root", true)

	require.NoError(t, runUsers(context.Background(), 1, env.opts()...))
	assert.Contains(t, env.out.String(), "bob")
	assert.NotContains(t, env.out.String(), "Next page")

	err := runAdminRights(context.Background(), bob, true, false, env.opts()...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aborted")
	u, _ := env.backend.User(bob)
	assert.False(t, u.IsAdmin)

	require.NoError(t, runAdminRights(context.Background(), bob, true, false, env.typing("y")...))
	u, _ = env.backend.User(bob)
	assert.True(t, u.IsAdmin)

	require.NoError(t, runAdminRights(context.Background(), bob, false, true, env.opts()...))
	u, _ = env.backend.User(bob)
	assert.False(t, u.IsAdmin)
}

func TestUsersCommand_Paging(t *testing.T) {
	env := newTestEnv(t)
	for _, name := range []string{"u01", "u02", "u03", "u04", "u05", "u06", "u07", "u08", "u09", "u10", "u11"} {
		env.backend.AddUser(name, "password1", false)
	}
	env.loginAs(t, "root", true)

	require.NoError(t, runUsers(context.Background(), 1, env.opts()...))
	assert.Contains(t, env.out.String(), "Next page: marquee admin users --page 2")

	env.out.Reset()
	require.NoError(t, runUsers(context.Background(), 5, env.opts()...))
	assert.Contains(t, env.out.String(), "No users on page 5.")
}

func TestAdminMovieCommands(t *testing.T) {
	env := newTestEnv(t)
	env.loginAs(t, "root", true)

	f := movieFlags{title: "Arrival", genres: "Sci-Fi, Drama", directors: "Denis Villeneuve", duration: 116, year: 2016, rating: 7.9}
	require.NoError(t, runSaveMovie(context.Background(), 0, f.input(), env.opts()...))
	assert.Contains(t, env.out.String(), "Saved movie #")

	cards, err := env.app.Catalog.Search(context.Background(), "arrival")
	require.NoError(t, err)
	require.Len(t, cards, 1)
	id := cards[0].ID
	assert.Equal(t, []string{"Sci-Fi", "Drama"}, cards[0].Genres)

	f.title = "Arrival (2016)"
	require.NoError(t, runSaveMovie(context.Background(), id, f.input(), env.opts()...))
	m, err := env.app.API.GetMovie(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Arrival (2016)", m.Title)

	bad := movieFlags{title: "No genres", duration: 90}
	err = runSaveMovie(context.Background(), 0, bad.input(), env.opts()...)
	require.Error(t, err)

	err = runDeleteMovie(context.Background(), id, false, env.opts()...)
	require.Error(t, err)

	require.NoError(t, runDeleteMovie(context.Background(), id, true, env.opts()...))
	_, err = env.app.API.GetMovie(context.Background(), id)
	assert.True(t, client.IsStatus(err, 404))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a b", truncate("a \n  b", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
