// Package account implements the flows that create and destroy a session:
// login, registration, logout and expiry.
package account

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/marquee-dev/marquee/internal/client"
	"github.com/marquee-dev/marquee/internal/session"
	"github.com/marquee-dev/marquee/internal/validation"
)

const defaultLogoutTimeout = 3 * time.Second

var (
	// ErrInvalidCredentials is returned when the backend rejects a login.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrMissingToken is returned when a login answer carries no token.
	ErrMissingToken = errors.New("backend did not return an access token")
)

// Backend is the part of the API client the account flows use.
type Backend interface {
	Login(ctx context.Context, username, password string) (*client.LoginResponse, error)
	Logout(ctx context.Context, token string) error
	CreateUser(ctx context.Context, req client.CreateUserRequest) (*client.User, error)
	ForgotPassword(ctx context.Context, email string) (*client.MessageResponse, error)
	ResetPassword(ctx context.Context, resetToken, newPassword string) (*client.MessageResponse, error)
}

// Service runs the account flows against one backend and one session store.
type Service struct {
	api           Backend
	store         *session.Store
	logger        zerolog.Logger
	logoutTimeout time.Duration

	pending sync.WaitGroup
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithLogoutTimeout bounds the background logout notification.
func WithLogoutTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.logoutTimeout = d
		}
	}
}

// New creates a Service.
func New(api Backend, store *session.Store, opts ...Option) *Service {
	s := &Service{
		api:           api,
		store:         store,
		logger:        zerolog.Nop(),
		logoutTimeout: defaultLogoutTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login exchanges credentials for a token and persists the session before
// returning, so whatever the caller shows next already sees it.
func (s *Service) Login(ctx context.Context, username, password string) (session.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return session.Session{}, &validation.Error{Fields: missingCredentials(username, password)}
	}

	resp, err := s.api.Login(ctx, username, password)
	if err != nil {
		if client.IsStatus(err, http.StatusUnauthorized) {
			return session.Session{}, ErrInvalidCredentials
		}
		return session.Session{}, fmt.Errorf("login failed: %w", err)
	}
	if resp.AccessToken == "" {
		return session.Session{}, ErrMissingToken
	}

	sess := session.Session{
		Token:    resp.AccessToken,
		UserID:   resp.UserID.String(),
		Username: resp.Username,
		IsAdmin:  resp.IsAdmin,
	}
	if sess.Username == "" {
		sess.Username = username
	}
	if err := s.store.Set(sess); err != nil {
		return session.Session{}, err
	}

	s.logger.Debug().Str("username", sess.Username).Bool("is_admin", sess.IsAdmin).Msg("Logged in")
	return sess, nil
}

func missingCredentials(username, password string) []validation.FieldError {
	var fields []validation.FieldError
	if username == "" {
		fields = append(fields, validation.FieldError{Field: "username", Message: "is required"})
	}
	if password == "" {
		fields = append(fields, validation.FieldError{Field: "password", Message: "is required"})
	}
	return fields
}

// Logout forgets the local session and tells the backend in the background.
// The local session is gone when Logout returns; the notification is best
// effort and its failure is only logged. Use Wait to let it finish.
func (s *Service) Logout(ctx context.Context) error {
	token, err := s.store.Token()
	if err != nil {
		return err
	}
	if err := s.store.Clear(); err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.logoutTimeout)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer cancel()
		if err := s.api.Logout(notifyCtx, token); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to notify backend of logout")
			return
		}
		s.logger.Debug().Msg("Backend acknowledged logout")
	}()
	return nil
}

// Wait blocks until background logout notifications finish or ctx is done.
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Expire drops the local session after the backend rejected token. A session
// stored since that request went out is left alone.
func (s *Service) Expire(token string) {
	cleared, err := s.store.ClearToken(token)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to clear expired session")
		return
	}
	if !cleared {
		s.logger.Debug().Msg("Ignoring rejection of a token that is no longer current")
		return
	}
	s.logger.Info().Msg("Session expired, please log in again")
}
