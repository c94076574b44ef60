package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tasklight/tasklight.go/pkg/models"
)

type usersEnvelope struct {
	Users []models.User `json:"users"`
}

type adminUpdate struct {
	IsAdmin bool `json:"is_admin"`
}

// ListUsers returns every user account. Requires an admin credential.
func (c *Client) ListUsers(ctx context.Context) Result[[]models.User] {
	r := call[usersEnvelope](c, ctx, http.MethodGet, "/admin/users", nil)
	if !r.Ok() {
		return Fail[[]models.User](r.Err())
	}
	return Ok(r.Value().Users)
}

// GetUser returns a single user account by id. Requires an admin credential.
func (c *Client) GetUser(ctx context.Context, id uint) Result[models.User] {
	r := call[userEnvelope](c, ctx, http.MethodGet, fmt.Sprintf("/admin/users/%d", id), nil)
	if !r.Ok() {
		return Fail[models.User](r.Err())
	}
	return Ok(r.Value().User)
}

// DeleteUser deletes another user's account. Requires an admin credential;
// the server rejects self-deletion.
func (c *Client) DeleteUser(ctx context.Context, id uint) Result[string] {
	r := call[messageEnvelope](c, ctx, http.MethodDelete, fmt.Sprintf("/admin/users/%d", id), nil)
	if !r.Ok() {
		return Fail[string](r.Err())
	}
	return Ok(r.Value().Message)
}

// SetUserAdmin sets another user's admin flag and returns the updated user.
func (c *Client) SetUserAdmin(ctx context.Context, id uint, isAdmin bool) Result[models.User] {
	r := call[userEnvelope](c, ctx, http.MethodPatch, fmt.Sprintf("/admin/users/%d", id), adminUpdate{IsAdmin: isAdmin})
	if !r.Ok() {
		return Fail[models.User](r.Err())
	}
	return Ok(r.Value().User)
}
