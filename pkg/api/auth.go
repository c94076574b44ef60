package api

import (
	"context"
	"net/http"

	"github.com/tasklight/tasklight.go/pkg/models"
)

// Credentials is the request body for registration and login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthPayload is returned by registration and login: the bearer credential to
// persist and the authenticated user.
type AuthPayload struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type userEnvelope struct {
	User models.User `json:"user"`
}

// Register creates a new account and returns its credential and user.
func (c *Client) Register(ctx context.Context, email, password string) Result[AuthPayload] {
	return call[AuthPayload](c, ctx, http.MethodPost, "/auth/register", Credentials{Email: email, Password: password})
}

// Login authenticates an existing account.
func (c *Client) Login(ctx context.Context, email, password string) Result[AuthPayload] {
	return call[AuthPayload](c, ctx, http.MethodPost, "/auth/login", Credentials{Email: email, Password: password})
}

// Me returns the user the current credential belongs to.
func (c *Client) Me(ctx context.Context) Result[models.User] {
	r := call[userEnvelope](c, ctx, http.MethodGet, "/me", nil)
	if !r.Ok() {
		return Fail[models.User](r.Err())
	}
	return Ok(r.Value().User)
}
