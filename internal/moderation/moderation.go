// Package moderation implements the admin views: the flagged review queue,
// the user list and catalog maintenance. Mutations update the page the admin
// is looking at in place instead of refetching it.
package moderation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/marquee-dev/marquee/internal/client"
)

const (
	// FlagPageSize is the number of flagged reviews per queue page.
	FlagPageSize = 10
	// UserPageSize is the number of accounts per user list page.
	UserPageSize = 10
)

// Backend is the part of the API client the admin views use.
type Backend interface {
	FlaggedReviews(ctx context.Context, page, pageSize int) (*client.FlagQueue, error)
	AcceptFlag(ctx context.Context, reviewID int64) (*client.MessageResponse, error)
	RejectFlag(ctx context.Context, reviewID int64) (*client.MessageResponse, error)
	DeleteReview(ctx context.Context, reviewID int64) error
	ListUsers(ctx context.Context, page, limit int) ([]client.User, error)
	GrantAdmin(ctx context.Context, userID int64) (*client.MessageResponse, error)
	RevokeAdmin(ctx context.Context, userID int64) (*client.MessageResponse, error)
	CreateMovie(ctx context.Context, in client.MovieInput) (*client.Movie, error)
	UpdateMovie(ctx context.Context, movieID int64, in client.MovieInput) (*client.Movie, error)
	DeleteMovie(ctx context.Context, movieID int64) error
}

// QueuePage is one page of the flagged review queue.
type QueuePage struct {
	Page         int
	PageCount    int
	TotalFlagged int
	Reviews      []client.FlaggedReview
}

// Drop removes reviewID from the page and reports whether it was there.
func (p *QueuePage) Drop(reviewID int64) bool {
	for i, r := range p.Reviews {
		if r.TargetID() == reviewID {
			p.Reviews = append(p.Reviews[:i:i], p.Reviews[i+1:]...)
			return true
		}
	}
	return false
}

// HasPrev reports whether an earlier page exists.
func (p *QueuePage) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a later page exists.
func (p *QueuePage) HasNext() bool { return p.Page < p.PageCount }

// UserPage is one page of the account list.
type UserPage struct {
	Page    int
	Users   []client.User
	HasNext bool
}

// SetAdmin flips the admin flag of userID on the page.
func (p *UserPage) SetAdmin(userID int64, admin bool) bool {
	for i := range p.Users {
		if p.Users[i].ID == userID {
			p.Users[i].IsAdmin = admin
			return true
		}
	}
	return false
}

// Service runs admin actions.
type Service struct {
	api    Backend
	logger zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a Service.
func New(api Backend, opts ...Option) *Service {
	s := &Service{api: api, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FlagQueue loads page of the flagged review queue. Pages start at 1.
func (s *Service) FlagQueue(ctx context.Context, page int) (*QueuePage, error) {
	if page < 1 {
		page = 1
	}
	q, err := s.api.FlaggedReviews(ctx, page, FlagPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load flagged reviews: %w", err)
	}
	out := &QueuePage{
		Page:         q.Page,
		PageCount:    q.PageCount,
		TotalFlagged: q.TotalFlagged,
		Reviews:      q.Reviews,
	}
	if out.Page == 0 {
		out.Page = page
	}
	return out, nil
}

// Accept upholds the flag on reviewID and drops it from page. page may be nil.
func (s *Service) Accept(ctx context.Context, page *QueuePage, reviewID int64) (string, error) {
	resp, err := s.api.AcceptFlag(ctx, reviewID)
	if err != nil {
		return "", fmt.Errorf("failed to accept flag on review %d: %w", reviewID, err)
	}
	if page != nil {
		page.Drop(reviewID)
	}
	s.logger.Info().Int64("review_id", reviewID).Msg("Flag accepted")
	return messageOr(resp, fmt.Sprintf("Flag on review #%d accepted.", reviewID)), nil
}

// Reject dismisses the flag on reviewID and drops it from page. page may be nil.
func (s *Service) Reject(ctx context.Context, page *QueuePage, reviewID int64) (string, error) {
	resp, err := s.api.RejectFlag(ctx, reviewID)
	if err != nil {
		return "", fmt.Errorf("failed to reject flag on review %d: %w", reviewID, err)
	}
	if page != nil {
		page.Drop(reviewID)
	}
	s.logger.Info().Int64("review_id", reviewID).Msg("Flag rejected")
	return messageOr(resp, fmt.Sprintf("Flag on review #%d rejected.", reviewID)), nil
}

// Delete removes a flagged review outright. page may be nil.
func (s *Service) Delete(ctx context.Context, page *QueuePage, reviewID int64) (string, error) {
	if err := s.api.DeleteReview(ctx, reviewID); err != nil {
		return "", fmt.Errorf("failed to delete review %d: %w", reviewID, err)
	}
	if page != nil {
		page.Drop(reviewID)
		page.TotalFlagged--
	}
	s.logger.Info().Int64("review_id", reviewID).Msg("Review deleted")
	return fmt.Sprintf("Review #%d deleted.", reviewID), nil
}

// Users loads page of the account list.
func (s *Service) Users(ctx context.Context, page int) (*UserPage, error) {
	if page < 1 {
		page = 1
	}
	users, err := s.api.ListUsers(ctx, page, UserPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return &UserPage{
		Page:    page,
		Users:   users,
		HasNext: len(users) == UserPageSize,
	}, nil
}

// Grant makes userID an administrator. page may be nil.
func (s *Service) Grant(ctx context.Context, page *UserPage, userID int64) (string, error) {
	resp, err := s.api.GrantAdmin(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to grant admin to user %d: %w", userID, err)
	}
	if page != nil {
		page.SetAdmin(userID, true)
	}
	s.logger.Info().Int64("user_id", userID).Msg("Admin granted")
	return messageOr(resp, fmt.Sprintf("User #%d is now an admin.", userID)), nil
}

// Revoke removes administrator rights from userID. page may be nil.
func (s *Service) Revoke(ctx context.Context, page *UserPage, userID int64) (string, error) {
	resp, err := s.api.RevokeAdmin(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to revoke admin from user %d: %w", userID, err)
	}
	if page != nil {
		page.SetAdmin(userID, false)
	}
	s.logger.Info().Int64("user_id", userID).Msg("Admin revoked")
	return messageOr(resp, fmt.Sprintf("User #%d is no longer an admin.", userID)), nil
}

func messageOr(resp *client.MessageResponse, fallback string) string {
	if resp != nil && resp.Message != "" {
		return resp.Message
	}
	return fallback
}
