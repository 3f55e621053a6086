package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ListMovies returns the whole catalog
func (c *Client) ListMovies(ctx context.Context) ([]Movie, error) {
	var movies []Movie
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/movies",
		auth:   authOptional,
		out:    &movies,
	})
	return movies, err
}

// SearchMovies returns catalog entries matching query
func (c *Client) SearchMovies(ctx context.Context, query string) ([]Movie, error) {
	var movies []Movie
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/movies/search",
		query:  url.Values{"query": {query}},
		auth:   authOptional,
		out:    &movies,
	})
	return movies, err
}

// GetMovie returns one catalog entry
func (c *Client) GetMovie(ctx context.Context, movieID int64) (*Movie, error) {
	var movie Movie
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   fmt.Sprintf("/movies/%d", movieID),
		auth:   authOptional,
		out:    &movie,
	})
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// CreateMovie adds a catalog entry (admin)
func (c *Client) CreateMovie(ctx context.Context, in MovieInput) (*Movie, error) {
	var movie Movie
	err := c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/movies",
		auth:     authRequired,
		jsonBody: in,
		out:      &movie,
	})
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// UpdateMovie replaces a catalog entry (admin)
func (c *Client) UpdateMovie(ctx context.Context, movieID int64, in MovieInput) (*Movie, error) {
	var movie Movie
	err := c.do(ctx, request{
		method:   http.MethodPut,
		path:     fmt.Sprintf("/movies/%d", movieID),
		auth:     authRequired,
		jsonBody: in,
		out:      &movie,
	})
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// DeleteMovie removes a catalog entry (admin)
func (c *Client) DeleteMovie(ctx context.Context, movieID int64) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/movies/%d", movieID),
		auth:   authRequired,
	})
}

// MovieMetadata returns poster and overview from the metadata proxy
func (c *Client) MovieMetadata(ctx context.Context, movieID int64) (*Metadata, error) {
	var meta Metadata
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   fmt.Sprintf("/tmdb/details/%d", movieID),
		auth:   authNone,
		out:    &meta,
	})
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

// Recommendations returns movies related to movieID from the metadata proxy
func (c *Client) Recommendations(ctx context.Context, movieID int64) ([]Recommendation, error) {
	var recs []Recommendation
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   fmt.Sprintf("/tmdb/recommendations/%d", movieID),
		auth:   authNone,
		out:    &recs,
	})
	return recs, err
}
