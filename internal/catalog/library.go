package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/marquee-dev/marquee/internal/client"
	"github.com/marquee-dev/marquee/internal/validation"
)

// ReviewForm is a review as typed by the user.
type ReviewForm struct {
	Title  string `json:"reviewTitle" validate:"required,max=200"`
	Body   string `json:"reviewBody" validate:"required,max=5000"`
	Rating int    `json:"rating" validate:"gte=1,lte=5"`
}

// PostReview validates and posts a review of movieID.
func (s *Service) PostReview(ctx context.Context, movieID int64, form ReviewForm) (*client.Review, error) {
	form.Title = strings.TrimSpace(form.Title)
	form.Body = strings.TrimSpace(form.Body)
	if err := validation.Struct(form); err != nil {
		return nil, err
	}
	review, err := s.api.PostReview(ctx, movieID, client.ReviewInput{
		Title:  form.Title,
		Body:   form.Body,
		Rating: float64(form.Rating),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to post review: %w", err)
	}
	return review, nil
}

// LikeReview likes a review.
func (s *Service) LikeReview(ctx context.Context, reviewID int64) error {
	if err := s.api.LikeReview(ctx, reviewID); err != nil {
		return fmt.Errorf("failed to like review %d: %w", reviewID, err)
	}
	return nil
}

// UnlikeReview takes a like back.
func (s *Service) UnlikeReview(ctx context.Context, reviewID int64) error {
	if err := s.api.UnlikeReview(ctx, reviewID); err != nil {
		return fmt.Errorf("failed to unlike review %d: %w", reviewID, err)
	}
	return nil
}

func (s *Service) AddFavorite(ctx context.Context, movieID int64) error {
	if err := s.api.AddFavorite(ctx, movieID); err != nil {
		return fmt.Errorf("failed to add movie %d to favorites: %w", movieID, err)
	}
	return nil
}

func (s *Service) RemoveFavorite(ctx context.Context, movieID int64) error {
	if err := s.api.RemoveFavorite(ctx, movieID); err != nil {
		return fmt.Errorf("failed to remove movie %d from favorites: %w", movieID, err)
	}
	return nil
}

func (s *Service) AddToWatchlist(ctx context.Context, movieID int64) error {
	if err := s.api.AddToWatchlist(ctx, movieID); err != nil {
		return fmt.Errorf("failed to add movie %d to watchlist: %w", movieID, err)
	}
	return nil
}

func (s *Service) RemoveFromWatchlist(ctx context.Context, movieID int64) error {
	if err := s.api.RemoveFromWatchlist(ctx, movieID); err != nil {
		return fmt.Errorf("failed to remove movie %d from watchlist: %w", movieID, err)
	}
	return nil
}

// ProfileForm holds the editable profile fields. Empty fields are unchanged.
type ProfileForm struct {
	FirstName string `json:"firstName" validate:"max=64"`
	LastName  string `json:"lastName" validate:"max=64"`
	Email     string `json:"email" validate:"omitempty,email"`
	Age       int    `json:"age" validate:"omitempty,gte=13,lte=130"`
}

// Profile loads the logged in user's account.
func (s *Service) Profile(ctx context.Context) (*client.User, error) {
	userID, err := s.userID()
	if err != nil {
		return nil, err
	}
	user, err := s.api.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return user, nil
}

// UpdateProfile saves profile changes for the logged in user.
func (s *Service) UpdateProfile(ctx context.Context, form ProfileForm) (*client.User, error) {
	form.Email = strings.TrimSpace(form.Email)
	if err := validation.Struct(form); err != nil {
		return nil, err
	}
	userID, err := s.userID()
	if err != nil {
		return nil, err
	}
	user, err := s.api.UpdateUser(ctx, userID, client.UpdateUserRequest{
		FirstName: strings.TrimSpace(form.FirstName),
		LastName:  strings.TrimSpace(form.LastName),
		Email:     form.Email,
		Age:       form.Age,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

func (s *Service) userID() (string, error) {
	id, err := s.sessions.UserID()
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", client.ErrNotAuthenticated
	}
	return id, nil
}
