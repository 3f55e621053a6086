package client

import (
	"context"
	"fmt"
	"net/http"
)

// GetUser returns an account
func (c *Client) GetUser(ctx context.Context, userID string) (*User, error) {
	var user User
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   fmt.Sprintf("/users/%s", userID),
		auth:   authRequired,
		out:    &user,
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser changes profile fields of an account
func (c *Client) UpdateUser(ctx context.Context, userID string, in UpdateUserRequest) (*User, error) {
	var user User
	err := c.do(ctx, request{
		method:   http.MethodPut,
		path:     fmt.Sprintf("/users/%s", userID),
		auth:     authRequired,
		jsonBody: in,
		out:      &user,
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns one page of accounts (admin)
func (c *Client) ListUsers(ctx context.Context, page, limit int) ([]User, error) {
	var users []User
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/users",
		query:  pageQuery(page, "limit", limit),
		auth:   authRequired,
		out:    &users,
	})
	return users, err
}

// FlaggedReviews returns one page of the moderation queue (admin)
func (c *Client) FlaggedReviews(ctx context.Context, page, pageSize int) (*FlagQueue, error) {
	var queue FlagQueue
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/admin/reports/reviews",
		query:  pageQuery(page, "pageSize", pageSize),
		auth:   authRequired,
		out:    &queue,
	})
	if err != nil {
		return nil, err
	}
	return &queue, nil
}

// AcceptFlag confirms a flag; the review is removed and its author penalized (admin)
func (c *Client) AcceptFlag(ctx context.Context, reviewID int64) (*MessageResponse, error) {
	return c.adminAction(ctx, http.MethodPost, fmt.Sprintf("/admin/reviews/%d/acceptFlag", reviewID))
}

// RejectFlag dismisses a flag and keeps the review (admin)
func (c *Client) RejectFlag(ctx context.Context, reviewID int64) (*MessageResponse, error) {
	return c.adminAction(ctx, http.MethodPost, fmt.Sprintf("/admin/reviews/%d/rejectFlag", reviewID))
}

// GrantAdmin gives a user administrator privileges (admin)
func (c *Client) GrantAdmin(ctx context.Context, userID int64) (*MessageResponse, error) {
	return c.adminAction(ctx, http.MethodPut, fmt.Sprintf("/admin/%d/grantAdmin", userID))
}

// RevokeAdmin removes a user's administrator privileges (admin)
func (c *Client) RevokeAdmin(ctx context.Context, userID int64) (*MessageResponse, error) {
	return c.adminAction(ctx, http.MethodPut, fmt.Sprintf("/admin/%d/revokeAdmin", userID))
}

func (c *Client) adminAction(ctx context.Context, method, path string) (*MessageResponse, error) {
	var resp MessageResponse
	err := c.do(ctx, request{
		method: method,
		path:   path,
		auth:   authRequired,
		out:    &resp,
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
