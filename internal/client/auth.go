package client

import (
	"context"
	"net/http"
	"net/url"
)

// Login exchanges credentials for a bearer token
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var resp LoginResponse
	err := c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/token",
		auth:     authNone,
		formBody: form,
		out:      &resp,
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout tells the backend the given token is no longer in use. The token is
// passed explicitly because the local session is usually gone by now, and a
// 401 here never expires whatever session is current.
func (c *Client) Logout(ctx context.Context, token string) error {
	if token == "" {
		return ErrNotAuthenticated
	}
	return c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/logout",
		auth:     authRequired,
		token:    token,
		quiet401: true,
	})
}

// CreateUser registers a new account
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	var user User
	err := c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/users",
		auth:     authNone,
		jsonBody: req,
		out:      &user,
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ForgotPassword asks the backend to send a reset token to email
func (c *Client) ForgotPassword(ctx context.Context, email string) (*MessageResponse, error) {
	form := url.Values{}
	form.Set("email", email)

	var resp MessageResponse
	err := c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/forgot-password",
		auth:     authNone,
		formBody: form,
		out:      &resp,
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResetPassword sets a new password using a reset token
func (c *Client) ResetPassword(ctx context.Context, resetToken, newPassword string) (*MessageResponse, error) {
	form := url.Values{}
	form.Set("token", resetToken)
	form.Set("new_password", newPassword)

	var resp MessageResponse
	err := c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/reset-password",
		auth:     authNone,
		formBody: form,
		out:      &resp,
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
