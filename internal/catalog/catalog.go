// Package catalog builds the browsing and library views: each one fetches the
// pieces it needs from the backend in sequence and joins them.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/marquee-dev/marquee/internal/client"
	"github.com/marquee-dev/marquee/internal/session"
)

// Backend is the part of the API client the catalog views use.
type Backend interface {
	ListMovies(ctx context.Context) ([]client.Movie, error)
	SearchMovies(ctx context.Context, query string) ([]client.Movie, error)
	GetMovie(ctx context.Context, movieID int64) (*client.Movie, error)
	MovieMetadata(ctx context.Context, movieID int64) (*client.Metadata, error)
	Recommendations(ctx context.Context, movieID int64) ([]client.Recommendation, error)
	MovieReviews(ctx context.Context, movieID int64) ([]client.Review, error)
	PostReview(ctx context.Context, movieID int64, in client.ReviewInput) (*client.Review, error)
	LikeReview(ctx context.Context, reviewID int64) error
	UnlikeReview(ctx context.Context, reviewID int64) error
	LikedReviews(ctx context.Context) ([]client.Review, error)
	Favorites(ctx context.Context) ([]client.Movie, error)
	AddFavorite(ctx context.Context, movieID int64) error
	RemoveFavorite(ctx context.Context, movieID int64) error
	Watchlist(ctx context.Context) ([]client.Movie, error)
	AddToWatchlist(ctx context.Context, movieID int64) error
	RemoveFromWatchlist(ctx context.Context, movieID int64) error
	GetUser(ctx context.Context, userID string) (*client.User, error)
	UpdateUser(ctx context.Context, userID string, in client.UpdateUserRequest) (*client.User, error)
}

// SessionReader supplies the logged in user's id.
type SessionReader interface {
	UserID() (string, error)
}

// Card is a movie with the poster and synopsis from the metadata proxy.
// Poster and Overview stay empty when the proxy has nothing for the movie.
type Card struct {
	client.Movie
	Poster   string
	Overview string
}

// Details is everything shown on a movie page.
type Details struct {
	Movie    client.Movie
	Metadata *client.Metadata
	Reviews  []client.Review
}

// Favorite is a favorite movie with suggestions for similar ones.
type Favorite struct {
	Card
	Recommendations []client.Recommendation
}

// Service builds catalog views.
type Service struct {
	api      Backend
	sessions SessionReader
	logger   zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a Service.
func New(api Backend, sessions SessionReader, opts ...Option) *Service {
	s := &Service{api: api, sessions: sessions, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Browse lists the whole catalog.
func (s *Service) Browse(ctx context.Context) ([]Card, error) {
	movies, err := s.api.ListMovies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	return s.cards(ctx, movies), nil
}

// Search lists the movies whose title matches query. An empty query browses.
func (s *Service) Search(ctx context.Context, query string) ([]Card, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.Browse(ctx)
	}
	movies, err := s.api.SearchMovies(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search movies: %w", err)
	}
	return s.cards(ctx, movies), nil
}

// Details loads a movie page. Reviews are newest first.
func (s *Service) Details(ctx context.Context, movieID int64) (*Details, error) {
	movie, err := s.api.GetMovie(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("failed to get movie %d: %w", movieID, err)
	}
	reviews, err := s.api.MovieReviews(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews for movie %d: %w", movieID, err)
	}
	sortNewestFirst(reviews)

	return &Details{
		Movie:    *movie,
		Metadata: s.metadata(ctx, movieID),
		Reviews:  reviews,
	}, nil
}

// Favorites lists the user's favorite movies with recommendations.
func (s *Service) Favorites(ctx context.Context) ([]Favorite, error) {
	movies, err := s.api.Favorites(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get favorites: %w", err)
	}
	out := make([]Favorite, 0, len(movies))
	for _, card := range s.cards(ctx, movies) {
		recs, err := s.api.Recommendations(ctx, card.ID)
		if err != nil {
			s.logger.Debug().Err(err).Int64("movie_id", card.ID).Msg("No recommendations")
			recs = nil
		}
		out = append(out, Favorite{Card: card, Recommendations: recs})
	}
	return out, nil
}

// Watchlist lists the movies the user saved for later.
func (s *Service) Watchlist(ctx context.Context) ([]Card, error) {
	movies, err := s.api.Watchlist(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get watchlist: %w", err)
	}
	return s.cards(ctx, movies), nil
}

// LikedReviews lists the reviews the user liked.
func (s *Service) LikedReviews(ctx context.Context) ([]client.Review, error) {
	reviews, err := s.api.LikedReviews(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get liked reviews: %w", err)
	}
	return reviews, nil
}

func (s *Service) cards(ctx context.Context, movies []client.Movie) []Card {
	cards := make([]Card, 0, len(movies))
	for _, m := range movies {
		card := Card{Movie: m}
		if meta := s.metadata(ctx, m.ID); meta != nil {
			card.Poster = meta.Poster
			card.Overview = meta.Overview
		}
		if card.Overview == "" {
			card.Overview = m.Description
		}
		cards = append(cards, card)
	}
	return cards
}

// metadata returns nil when the proxy fails; a missing poster never fails a page.
func (s *Service) metadata(ctx context.Context, movieID int64) *client.Metadata {
	meta, err := s.api.MovieMetadata(ctx, movieID)
	if err != nil {
		s.logger.Debug().Err(err).Int64("movie_id", movieID).Msg("No metadata for movie")
		return nil
	}
	return meta
}

func sortNewestFirst(reviews []client.Review) {
	posted := func(r client.Review) time.Time {
		t, err := time.Parse(time.RFC3339, r.DatePosted)
		if err != nil {
			t, _ = time.Parse("2006-01-02", r.DatePosted)
		}
		return t
	}
	sort.SliceStable(reviews, func(i, j int) bool {
		ti, tj := posted(reviews[i]), posted(reviews[j])
		if ti.Equal(tj) {
			return reviews[i].ID > reviews[j].ID
		}
		return ti.After(tj)
	})
}

var _ SessionReader = (*session.Store)(nil)
