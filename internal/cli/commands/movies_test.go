package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marquee-dev/marquee/internal/catalog"
	"github.com/marquee-dev/marquee/internal/client"
	"github.com/marquee-dev/marquee/internal/testutil/fakebackend"
)

func TestMoviesCommand_ListAndSearch(t *testing.T) {
	env := newTestEnv(t)
	env.backend.AddMovie("Alien", 1979, "Horror", "Sci-Fi")
	env.backend.AddMovie("Heat", 1995, "Crime")

	require.NoError(t, runMovies(context.Background(), "", env.opts()...))
	out := env.out.String()
	assert.Contains(t, out, "TITLE")
	assert.Contains(t, out, "Alien")
	assert.Contains(t, out, "Horror, Sci-Fi")
	assert.Contains(t, out, "Heat")

	env.out.Reset()
	require.NoError(t, runMovies(context.Background(), "heat", env.opts()...))
	assert.Contains(t, env.out.String(), "Heat")
	assert.NotContains(t, env.out.String(), "Alien")

	env.out.Reset()
	require.NoError(t, runMovies(context.Background(), "zzz", env.opts()...))
	assert.Contains(t, env.out.String(), `No movies match "zzz".`)
}

func TestMovieCommand_Details(t *testing.T) {
	env := newTestEnv(t)
	author := env.backend.AddUser("bob", "password1", false)
	movie := env.backend.AddMovie("Alien", 1979, "Horror")
	env.backend.SetMetadata(movie, fakebackend.Metadata{Title: "Alien", Overview: "In space no one can hear you scream."})
	env.backend.AddReview(movie, author, "Terrifying", "Still holds up", 5)

	require.NoError(t, runMovie(context.Background(), movie, env.opts()...))
	out := env.out.String()
	assert.Contains(t, out, "Alien (1979)")
	assert.Contains(t, out, "In space no one can hear you scream.")
	assert.Contains(t, out, "Reviews (1):")
	assert.Contains(t, out, "Terrifying")
	assert.Contains(t, out, "★★★★★")
}

func TestMovieCommand_NotFound(t *testing.T) {
	env := newTestEnv(t)

	err := runMovie(context.Background(), 404, env.opts()...)
	require.Error(t, err)
	assert.True(t, client.IsStatus(err, 404))
}

func TestParseID(t *testing.T) {
	id, err := parseID("movie", "12")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	for _, bad := range []string{"", "0", "-3", "abc"} {
		_, err := parseID("movie", bad)
		assert.Error(t, err, bad)
	}
}

func TestPostReviewCommand(t *testing.T) {
	env := newTestEnv(t)
	env.loginAs(t, "ann", false)
	movie := env.backend.AddMovie("Heat", 1995, "Crime")

	err := runPostReview(context.Background(), movie, catalog.ReviewForm{Title: "Tense", Body: "Great shootout", Rating: 4}, env.opts()...)
	require.NoError(t, err)
	assert.Contains(t, env.out.String(), "posted")

	env.out.Reset()
	require.NoError(t, runMovie(context.Background(), movie, env.opts()...))
	assert.Contains(t, env.out.String(), "Tense")
}

func TestPostReviewCommand_PromptsForText(t *testing.T) {
	env := newTestEnv(t)
	env.loginAs(t, "ann", false)
	movie := env.backend.AddMovie("Heat", 1995, "Crime")

	err := runPostReview(context.Background(), movie, catalog.ReviewForm{Rating: 3}, env.typing("Long", "But worth it")...)
	require.NoError(t, err)

	d, err := env.app.Catalog.Details(context.Background(), movie)
	require.NoError(t, err)
	require.Len(t, d.Reviews, 1)
	assert.Equal(t, "But worth it", d.Reviews[0].Body)
}

func TestPostReviewCommand_RatingOutOfRange(t *testing.T) {
	env := newTestEnv(t)
	env.loginAs(t, "ann", false)
	movie := env.backend.AddMovie("Heat", 1995, "Crime")

	err := runPostReview(context.Background(), movie, catalog.ReviewForm{Title: "x", Body: "y", Rating: 9}, env.opts()...)
	require.Error(t, err)
	assert.Empty(t, env.backend.CallsTo("/reviews"))
}

func TestLikeCommands(t *testing.T) {
	env := newTestEnv(t)
	user := env.loginAs(t, "ann", false)
	author := env.backend.AddUser("bob", "password1", false)
	movie := env.backend.AddMovie("Heat", 1995, "Crime")
	review := env.backend.AddReview(movie, author, "Tense", "Great", 4)

	require.NoError(t, runLike(context.Background(), review, true, env.opts()...))
	assert.True(t, env.backend.Liked(user, review))

	env.out.Reset()
	require.NoError(t, runLiked(context.Background(), env.opts()...))
	assert.Contains(t, env.out.String(), "Tense")

	require.NoError(t, runLike(context.Background(), review, false, env.opts()...))
	assert.False(t, env.backend.Liked(user, review))

	env.out.Reset()
	require.NoError(t, runLiked(context.Background(), env.opts()...))
	assert.Contains(t, env.out.String(), "You have not liked any reviews yet.")
}
