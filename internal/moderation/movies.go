package moderation

import (
	"context"
	"fmt"
	"strings"

	"github.com/marquee-dev/marquee/internal/client"
	"github.com/marquee-dev/marquee/internal/validation"
)

// SplitList turns a comma separated form field into trimmed, non-empty items.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func normalize(in client.MovieInput) client.MovieInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.DatePublished = strings.TrimSpace(in.DatePublished)
	return in
}

// CreateMovie adds a movie to the catalog.
func (s *Service) CreateMovie(ctx context.Context, in client.MovieInput) (*client.Movie, error) {
	in = normalize(in)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	movie, err := s.api.CreateMovie(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to create movie: %w", err)
	}
	s.logger.Info().Int64("movie_id", movie.ID).Str("title", movie.Title).Msg("Movie created")
	return movie, nil
}

// UpdateMovie replaces a movie's fields.
func (s *Service) UpdateMovie(ctx context.Context, movieID int64, in client.MovieInput) (*client.Movie, error) {
	in = normalize(in)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	movie, err := s.api.UpdateMovie(ctx, movieID, in)
	if err != nil {
		return nil, fmt.Errorf("failed to update movie %d: %w", movieID, err)
	}
	s.logger.Info().Int64("movie_id", movieID).Msg("Movie updated")
	return movie, nil
}

// DeleteMovie removes a movie from the catalog.
func (s *Service) DeleteMovie(ctx context.Context, movieID int64) error {
	if err := s.api.DeleteMovie(ctx, movieID); err != nil {
		return fmt.Errorf("failed to delete movie %d: %w", movieID, err)
	}
	s.logger.Info().Int64("movie_id", movieID).Msg("Movie deleted")
	return nil
}
