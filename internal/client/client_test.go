package client_test

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marquee-dev/marquee/internal/client"
	"github.com/marquee-dev/marquee/internal/testutil/fakebackend"
)

type staticToken struct {
	token string
	err   error
}

func (s *staticToken) Token() (string, error) { return s.token, s.err }

func login(t *testing.T, b *fakebackend.Backend, username, password string) string {
	t.Helper()
	resp, err := client.New(b.URL(), nil).Login(context.Background(), username, password)
	require.NoError(t, err)
	return resp.AccessToken
}

func TestLogin(t *testing.T) {
	b := fakebackend.New(t)
	id := b.AddUser("ann", "password1", true)
	c := client.New(b.URL(), nil)

	resp, err := c.Login(context.Background(), "ann", "password1")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "ann", resp.Username)
	assert.True(t, resp.IsAdmin)
	got, err := resp.UserID.Int64()
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = c.Login(context.Background(), "ann", "wrong")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Incorrect username or password", apiErr.Message)
}

func TestFailedLoginDoesNotTriggerUnauthorizedHandler(t *testing.T) {
	b := fakebackend.New(t)
	b.AddUser("ann", "password1", false)

	var calls atomic.Int32
	tokens := &staticToken{token: "stale"}
	c := client.New(b.URL(), tokens, client.WithUnauthorizedHandler(func(string) { calls.Add(1) }))

	_, err := c.Login(context.Background(), "ann", "wrong")
	require.Error(t, err)
	assert.Zero(t, calls.Load())

	// The token is never attached to /token.
	for _, call := range b.CallsTo("/token") {
		assert.Empty(t, call.Authorization)
	}
}

func TestRejectedTokenTriggersUnauthorizedHandler(t *testing.T) {
	b := fakebackend.New(t)
	b.AddUser("ann", "password1", false)
	token := login(t, b, "ann", "password1")
	b.Revoke(token)

	var rejected []string
	c := client.New(b.URL(), &staticToken{token: token},
		client.WithUnauthorizedHandler(func(sent string) { rejected = append(rejected, sent) }))

	_, err := c.Favorites(context.Background())
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized))
	assert.Equal(t, []string{token}, rejected)
}

func TestRejectedLogoutDoesNotTriggerUnauthorizedHandler(t *testing.T) {
	b := fakebackend.New(t)
	b.AddUser("ann", "password1", false)
	token := login(t, b, "ann", "password1")
	b.SetLogoutBehavior(0, http.StatusUnauthorized)

	var calls atomic.Int32
	c := client.New(b.URL(), &staticToken{token: "current"},
		client.WithUnauthorizedHandler(func(string) { calls.Add(1) }))

	err := c.Logout(context.Background(), token)
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized))
	assert.Zero(t, calls.Load())
}

func TestRequiredTokenMissing(t *testing.T) {
	b := fakebackend.New(t)
	c := client.New(b.URL(), &staticToken{})

	_, err := c.Watchlist(context.Background())
	assert.ErrorIs(t, err, client.ErrNotAuthenticated)
	assert.Empty(t, b.Calls(), "no request may be sent without a token")

	assert.ErrorIs(t, c.Logout(context.Background(), ""), client.ErrNotAuthenticated)
}

func TestTokenSourceErrorPropagates(t *testing.T) {
	b := fakebackend.New(t)
	boom := errors.New("keyring locked")
	c := client.New(b.URL(), &staticToken{err: boom})

	_, err := c.Favorites(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, b.Calls())
}

func TestHeaders(t *testing.T) {
	b := fakebackend.New(t)
	b.AddUser("ann", "password1", false)
	token := login(t, b, "ann", "password1")
	b.AddMovie("Alien", 1979, "horror")

	c := client.New(b.URL(), &staticToken{token: token})
	_, err := c.ListMovies(context.Background())
	require.NoError(t, err)
	_, err = c.ListMovies(context.Background())
	require.NoError(t, err)

	calls := b.CallsTo("/movies")
	require.Len(t, calls, 2)
	for _, call := range calls {
		assert.Equal(t, "Bearer "+token, call.Authorization)
		_, err := ulid.Parse(call.RequestID)
		assert.NoError(t, err, "request id %q", call.RequestID)
	}
	assert.NotEqual(t, calls[0].RequestID, calls[1].RequestID)
}

func TestOptionalAuthWithoutToken(t *testing.T) {
	b := fakebackend.New(t)
	b.AddMovie("Alien", 1979, "horror")
	b.AddMovie("Aliens", 1986, "action")
	b.AddMovie("Heat", 1995, "crime")

	c := client.New(b.URL(), &staticToken{})
	movies, err := c.SearchMovies(context.Background(), "alien")
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, "Alien", movies[0].Title)

	for _, call := range b.Calls() {
		assert.Empty(t, call.Authorization)
	}
}

func TestLibraryAndReviews(t *testing.T) {
	ctx := context.Background()
	b := fakebackend.New(t)
	ann := b.AddUser("ann", "password1", false)
	movie := b.AddMovie("Alien", 1979, "horror")
	c := client.New(b.URL(), &staticToken{token: login(t, b, "ann", "password1")})

	require.NoError(t, c.AddFavorite(ctx, movie))
	require.NoError(t, c.AddToWatchlist(ctx, movie))
	favs, err := c.Favorites(ctx)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, "Alien", favs[0].Title)
	assert.Equal(t, []int64{movie}, b.Watchlist(ann))

	require.NoError(t, c.RemoveFavorite(ctx, movie))
	assert.Empty(t, b.Favorites(ann))
	require.NoError(t, c.RemoveFromWatchlist(ctx, movie))
	assert.True(t, client.IsStatus(c.RemoveFromWatchlist(ctx, movie), http.StatusNotFound))

	review, err := c.PostReview(ctx, movie, client.ReviewInput{Title: "Great", Body: "Scary", Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, movie, review.MovieID)
	assert.Equal(t, ann, review.UserID)

	require.NoError(t, c.LikeReview(ctx, review.ID))
	liked, err := c.LikedReviews(ctx)
	require.NoError(t, err)
	require.Len(t, liked, 1)
	assert.Equal(t, 1, liked[0].Likes)

	require.NoError(t, c.UnlikeReview(ctx, review.ID))
	assert.False(t, b.Liked(ann, review.ID))

	reviews, err := c.MovieReviews(ctx, movie)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
}

func TestAdminEndpoints(t *testing.T) {
	ctx := context.Background()
	b := fakebackend.New(t)
	b.AddUser("root", "password1", true)
	bob := b.AddUser("bob", "password1", false)
	movie := b.AddMovie("Alien", 1979, "horror")
	review := b.AddReview(movie, bob, "spam", "buy now", 1)
	b.Flag(review, "spam")

	admin := client.New(b.URL(), &staticToken{token: login(t, b, "root", "password1")})

	queue, err := admin.FlaggedReviews(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, queue.TotalFlagged)
	require.Len(t, queue.Reviews, 1)
	assert.Equal(t, review, queue.Reviews[0].TargetID())
	assert.Equal(t, "spam", queue.Reviews[0].FlaggedReason)

	msg, err := admin.RejectFlag(ctx, review)
	require.NoError(t, err)
	assert.NotEmpty(t, msg.Message)
	r, ok := b.Review(review)
	require.True(t, ok)
	assert.False(t, r.Flagged)

	_, err = admin.GrantAdmin(ctx, bob)
	require.NoError(t, err)
	u, _ := b.User(bob)
	assert.True(t, u.IsAdmin)

	users, err := admin.ListUsers(ctx, 1, 10)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	created, err := admin.CreateMovie(ctx, client.MovieInput{Title: "Heat", Genres: []string{"crime"}, Duration: 170})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	require.NoError(t, admin.DeleteMovie(ctx, created.ID))
	_, err = admin.GetMovie(ctx, created.ID)
	assert.True(t, client.IsStatus(err, http.StatusNotFound))
}

func TestNonAdminGetsForbidden(t *testing.T) {
	b := fakebackend.New(t)
	b.AddUser("bob", "password1", false)
	var calls atomic.Int32
	c := client.New(b.URL(), &staticToken{token: login(t, b, "bob", "password1")},
		client.WithUnauthorizedHandler(func(string) { calls.Add(1) }))

	_, err := c.FlaggedReviews(context.Background(), 1, 10)
	assert.True(t, client.IsStatus(err, http.StatusForbidden))
	assert.Zero(t, calls.Load(), "403 is not an expired session")
}

func TestCreateUserValidationMessage(t *testing.T) {
	b := fakebackend.New(t)
	c := client.New(b.URL(), nil)

	_, err := c.CreateUser(context.Background(), client.CreateUserRequest{Username: "ann"})
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Contains(t, apiErr.Message, "body:")
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()
	b := fakebackend.New(t)
	ann := b.AddUser("ann", "password1", false)
	c := client.New(b.URL(), nil)

	_, err := c.ForgotPassword(ctx, "ann@example.com")
	require.NoError(t, err)
	token := b.ResetTokenFor(ann)
	require.NotEmpty(t, token)

	_, err = c.ResetPassword(ctx, token, "password2")
	require.NoError(t, err)
	_, err = c.Login(ctx, "ann", "password2")
	assert.NoError(t, err)

	_, err = c.ResetPassword(ctx, token, "password3")
	assert.True(t, client.IsStatus(err, http.StatusBadRequest))
}
