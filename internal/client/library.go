package client

import (
	"context"
	"fmt"
	"net/http"
)

// Favorites returns the current user's favorite movies
func (c *Client) Favorites(ctx context.Context) ([]Movie, error) {
	var movies []Movie
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/favorites/",
		auth:   authRequired,
		out:    &movies,
	})
	return movies, err
}

// AddFavorite adds movieID to the favorites list
func (c *Client) AddFavorite(ctx context.Context, movieID int64) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   fmt.Sprintf("/favorites/%d", movieID),
		auth:   authRequired,
	})
}

// RemoveFavorite removes movieID from the favorites list
func (c *Client) RemoveFavorite(ctx context.Context, movieID int64) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/favorites/%d", movieID),
		auth:   authRequired,
	})
}

// Watchlist returns the current user's watchlist
func (c *Client) Watchlist(ctx context.Context) ([]Movie, error) {
	var movies []Movie
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/users/watchlist",
		auth:   authRequired,
		out:    &movies,
	})
	return movies, err
}

// AddToWatchlist adds movieID to the watchlist
func (c *Client) AddToWatchlist(ctx context.Context, movieID int64) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   fmt.Sprintf("/users/watchlist/%d", movieID),
		auth:   authRequired,
	})
}

// RemoveFromWatchlist removes movieID from the watchlist
func (c *Client) RemoveFromWatchlist(ctx context.Context, movieID int64) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/users/watchlist/%d", movieID),
		auth:   authRequired,
	})
}
