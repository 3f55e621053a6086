package account_test

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marquee-dev/marquee/internal/account"
	"github.com/marquee-dev/marquee/internal/client"
	"github.com/marquee-dev/marquee/internal/session"
	"github.com/marquee-dev/marquee/internal/storage"
	"github.com/marquee-dev/marquee/internal/testutil/fakebackend"
	"github.com/marquee-dev/marquee/internal/validation"
)

type fixture struct {
	backend *fakebackend.Backend
	store   *session.Store
	api     *client.Client
	svc     *account.Service
}

func setup(t *testing.T, opts ...account.Option) *fixture {
	t.Helper()
	b := fakebackend.New(t)
	store := session.NewStore(storage.Scoped(storage.NewMemoryStorage(), b.URL()))

	f := &fixture{backend: b, store: store}
	f.api = client.New(b.URL(), store, client.WithUnauthorizedHandler(func(token string) { f.svc.Expire(token) }))
	f.svc = account.New(f.api, store, opts...)
	return f
}

func TestLoginPersistsSessionBeforeReturning(t *testing.T) {
	f := setup(t)
	id := f.backend.AddUser("ann", "password1", true)

	sess, err := f.svc.Login(context.Background(), " ann ", "password1")
	require.NoError(t, err)

	stored, err := f.store.Load()
	require.NoError(t, err)
	assert.Equal(t, sess, stored)
	assert.NotEmpty(t, stored.Token)
	assert.Equal(t, "ann", stored.Username)
	assert.True(t, stored.IsAdmin)
	assert.Equal(t, strconv.FormatInt(id, 10), stored.UserID)
}

func TestLoginInvalidCredentialsLeavesSessionUntouched(t *testing.T) {
	f := setup(t)
	f.backend.AddUser("ann", "password1", false)
	require.NoError(t, f.store.Set(session.Session{Token: "old", Username: "prev"}))

	_, err := f.svc.Login(context.Background(), "ann", "nope")
	assert.ErrorIs(t, err, account.ErrInvalidCredentials)

	token, err := f.store.Token()
	require.NoError(t, err)
	assert.Equal(t, "old", token)
}

func TestLoginBannedAccount(t *testing.T) {
	f := setup(t)
	id := f.backend.AddUser("ann", "password1", false)
	f.backend.Ban(id)

	_, err := f.svc.Login(context.Background(), "ann", "password1")
	assert.True(t, client.IsStatus(err, http.StatusForbidden))
}

func TestLoginRequiresCredentials(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Login(context.Background(), "  ", "")
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "is required", verr.Message("username"))
	assert.Equal(t, "is required", verr.Message("password"))
	assert.Empty(t, f.backend.Calls())
}

type failingStorage struct{ err error }

func (f failingStorage) Get(string) (string, bool, error) { return "", false, f.err }
func (f failingStorage) Set(string, string) error         { return f.err }
func (f failingStorage) Remove(string) error              { return f.err }

func TestLoginStorageFailurePropagates(t *testing.T) {
	b := fakebackend.New(t)
	b.AddUser("ann", "password1", false)
	boom := errors.New("disk full")
	store := session.NewStore(failingStorage{err: boom})
	svc := account.New(client.New(b.URL(), store), store)

	_, err := svc.Login(context.Background(), "ann", "password1")
	assert.Equal(t, boom, err)
}

func TestRegister(t *testing.T) {
	f := setup(t)

	sess, err := f.svc.Register(context.Background(), account.RegisterRequest{
		Username:        "newbie",
		FirstName:       "New",
		LastName:        "Bie",
		Email:           "newbie@example.com",
		Age:             21,
		Password:        "longenough",
		ConfirmPassword: "longenough",
	})
	require.NoError(t, err)
	assert.Equal(t, "newbie", sess.Username)
	assert.False(t, sess.IsAdmin)

	token, err := f.store.Token()
	require.NoError(t, err)
	assert.Equal(t, sess.Token, token)
}

func TestRegisterValidation(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Register(context.Background(), account.RegisterRequest{
		Username:        "ab",
		Email:           "not-an-email",
		Age:             12,
		Password:        "short",
		ConfirmPassword: "different",
	})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	for _, field := range []string{"username", "firstName", "lastName", "email", "age", "password", "confirmPassword"} {
		assert.NotEmpty(t, verr.Message(field), field)
	}
	assert.Empty(t, f.backend.Calls())
}

func TestRegisterDuplicateUsername(t *testing.T) {
	f := setup(t)
	f.backend.AddUser("taken", "password1", false)

	_, err := f.svc.Register(context.Background(), account.RegisterRequest{
		Username:        "taken",
		FirstName:       "T",
		LastName:        "K",
		Email:           "t@example.com",
		Age:             40,
		Password:        "password2",
		ConfirmPassword: "password2",
	})
	assert.True(t, client.IsStatus(err, http.StatusBadRequest))

	sess, err := f.store.Load()
	require.NoError(t, err)
	assert.False(t, sess.Authenticated())
}

func TestLogoutClearsImmediatelyAndNotifiesInBackground(t *testing.T) {
	f := setup(t)
	f.backend.AddUser("ann", "password1", false)
	sess, err := f.svc.Login(context.Background(), "ann", "password1")
	require.NoError(t, err)
	f.backend.SetLogoutBehavior(200*time.Millisecond, 0)

	require.NoError(t, f.svc.Logout(context.Background()))

	// The session is gone before the backend has answered.
	token, err := f.store.Token()
	require.NoError(t, err)
	assert.Empty(t, token)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.svc.Wait(ctx))
	assert.Equal(t, 1, f.backend.LogoutCalls())

	calls := f.backend.CallsTo("/logout")
	require.Len(t, calls, 1)
	assert.Equal(t, "Bearer "+sess.Token, calls[0].Authorization)
}

func TestLogoutNotificationFailureIsSwallowed(t *testing.T) {
	f := setup(t)
	f.backend.AddUser("ann", "password1", false)
	_, err := f.svc.Login(context.Background(), "ann", "password1")
	require.NoError(t, err)
	f.backend.SetLogoutBehavior(0, http.StatusInternalServerError)

	require.NoError(t, f.svc.Logout(context.Background()))
	require.NoError(t, f.svc.Wait(context.Background()))
	assert.Equal(t, 1, f.backend.LogoutCalls())
}

func TestLogoutTimeoutBoundsNotification(t *testing.T) {
	f := setup(t, account.WithLogoutTimeout(50*time.Millisecond))
	f.backend.AddUser("ann", "password1", false)
	_, err := f.svc.Login(context.Background(), "ann", "password1")
	require.NoError(t, err)
	f.backend.SetLogoutBehavior(5*time.Second, 0)

	start := time.Now()
	require.NoError(t, f.svc.Logout(context.Background()))
	require.NoError(t, f.svc.Wait(context.Background()))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestLogoutSurvivesCancelledCallerContext(t *testing.T) {
	f := setup(t)
	f.backend.AddUser("ann", "password1", false)
	_, err := f.svc.Login(context.Background(), "ann", "password1")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, f.svc.Logout(ctx))
	cancel()

	require.NoError(t, f.svc.Wait(context.Background()))
	select {
	case <-f.backend.LogoutDone():
	case <-time.After(5 * time.Second):
		t.Fatal("logout notification never reached the backend")
	}
}

func TestLogoutWhenLoggedOut(t *testing.T) {
	f := setup(t)

	require.NoError(t, f.svc.Logout(context.Background()))
	require.NoError(t, f.svc.Wait(context.Background()))
	assert.Zero(t, f.backend.LogoutCalls())
}

func TestWaitHonoursContext(t *testing.T) {
	f := setup(t)
	f.backend.AddUser("ann", "password1", false)
	_, err := f.svc.Login(context.Background(), "ann", "password1")
	require.NoError(t, err)
	f.backend.SetLogoutBehavior(time.Second, 0)
	require.NoError(t, f.svc.Logout(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, f.svc.Wait(ctx), context.DeadlineExceeded)

	require.NoError(t, f.svc.Wait(context.Background()))
}

func TestExpiredTokenClearsSession(t *testing.T) {
	f := setup(t)
	f.backend.AddUser("ann", "password1", false)
	sess, err := f.svc.Login(context.Background(), "ann", "password1")
	require.NoError(t, err)
	f.backend.Revoke(sess.Token)

	_, err = f.api.Favorites(context.Background())
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized))

	after, err := f.store.Load()
	require.NoError(t, err)
	assert.Equal(t, session.Session{}, after)
}

func TestRejectedLogoutNotificationKeepsNewerSession(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.backend.AddUser("ann", "password1", false)
	f.backend.AddUser("bob", "password2", false)

	_, err := f.svc.Login(ctx, "ann", "password1")
	require.NoError(t, err)
	f.backend.SetLogoutBehavior(200*time.Millisecond, http.StatusUnauthorized)
	require.NoError(t, f.svc.Logout(ctx))

	bob, err := f.svc.Login(ctx, "bob", "password2")
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, f.svc.Wait(waitCtx))
	assert.Equal(t, 1, f.backend.LogoutCalls())

	stored, err := f.store.Load()
	require.NoError(t, err)
	assert.Equal(t, bob, stored)
}

func TestStaleRejectionKeepsNewerSession(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.backend.AddUser("ann", "password1", false)
	ann, err := f.svc.Login(ctx, "ann", "password1")
	require.NoError(t, err)

	f.svc.Expire("an-older-token")

	stored, err := f.store.Load()
	require.NoError(t, err)
	assert.Equal(t, ann, stored)
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	id := f.backend.AddUser("ann", "password1", false)

	_, err := f.svc.ForgotPassword(ctx, "bad")
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)

	msg, err := f.svc.ForgotPassword(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, msg)

	_, err = f.svc.ResetPassword(ctx, f.backend.ResetTokenFor(id), "short")
	require.ErrorAs(t, err, &verr)

	_, err = f.svc.ResetPassword(ctx, f.backend.ResetTokenFor(id), "password2")
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, "ann", "password2")
	assert.NoError(t, err)
}
