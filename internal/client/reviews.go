package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// MovieReviews returns the reviews posted for a movie
func (c *Client) MovieReviews(ctx context.Context, movieID int64) ([]Review, error) {
	var reviews []Review
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/reviews/search",
		query:  url.Values{"query": {fmt.Sprint(movieID)}},
		auth:   authOptional,
		out:    &reviews,
	})
	return reviews, err
}

// PostReview publishes a review for movieID as the current user
func (c *Client) PostReview(ctx context.Context, movieID int64, in ReviewInput) (*Review, error) {
	var review Review
	err := c.do(ctx, request{
		method:   http.MethodPost,
		path:     fmt.Sprintf("/reviews/%d", movieID),
		auth:     authRequired,
		jsonBody: in,
		out:      &review,
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// DeleteReview removes a review
func (c *Client) DeleteReview(ctx context.Context, reviewID int64) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/reviews/%d", reviewID),
		auth:   authRequired,
	})
}

// LikeReview marks a review as liked by the current user
func (c *Client) LikeReview(ctx context.Context, reviewID int64) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   fmt.Sprintf("/reviews/%d/like", reviewID),
		auth:   authRequired,
	})
}

// UnlikeReview removes the current user's like
func (c *Client) UnlikeReview(ctx context.Context, reviewID int64) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/reviews/%d/like", reviewID),
		auth:   authRequired,
	})
}

// LikedReviews returns the reviews the current user liked
func (c *Client) LikedReviews(ctx context.Context) ([]Review, error) {
	var reviews []Review
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/users/likedReviews",
		auth:   authRequired,
		out:    &reviews,
	})
	return reviews, err
}
