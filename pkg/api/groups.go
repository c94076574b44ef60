package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tasklight/tasklight.go/pkg/models"
)

type groupEnvelope struct {
	Group models.Group `json:"group"`
}

type groupsEnvelope struct {
	Groups []models.Group `json:"groups"`
}

// GroupCreate is the request body for creating a group. An empty Color lets
// the server pick its default.
type GroupCreate struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color,omitempty"`
}

// GroupUpdate is a partial group update; nil fields are left unchanged.
type GroupUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
}

// ListGroups returns the authenticated user's groups.
func (c *Client) ListGroups(ctx context.Context) Result[[]models.Group] {
	r := call[groupsEnvelope](c, ctx, http.MethodGet, "/groups", nil)
	if !r.Ok() {
		return Fail[[]models.Group](r.Err())
	}
	return Ok(r.Value().Groups)
}

// GetGroup returns a single group by id.
func (c *Client) GetGroup(ctx context.Context, id uint) Result[models.Group] {
	r := call[groupEnvelope](c, ctx, http.MethodGet, fmt.Sprintf("/groups/%d", id), nil)
	if !r.Ok() {
		return Fail[models.Group](r.Err())
	}
	return Ok(r.Value().Group)
}

// CreateGroup creates a group and returns the server's stored object.
func (c *Client) CreateGroup(ctx context.Context, create GroupCreate) Result[models.Group] {
	r := call[groupEnvelope](c, ctx, http.MethodPost, "/groups", create)
	if !r.Ok() {
		return Fail[models.Group](r.Err())
	}
	return Ok(r.Value().Group)
}

// UpdateGroup applies a partial update and returns the server's updated object.
func (c *Client) UpdateGroup(ctx context.Context, id uint, update GroupUpdate) Result[models.Group] {
	r := call[groupEnvelope](c, ctx, http.MethodPut, fmt.Sprintf("/groups/%d", id), update)
	if !r.Ok() {
		return Fail[models.Group](r.Err())
	}
	return Ok(r.Value().Group)
}

// DeleteGroup deletes a group. Todos referencing it become ungrouped on the
// server; callers are expected to patch their local copies to match.
func (c *Client) DeleteGroup(ctx context.Context, id uint) Result[string] {
	r := call[messageEnvelope](c, ctx, http.MethodDelete, fmt.Sprintf("/groups/%d", id), nil)
	if !r.Ok() {
		return Fail[string](r.Err())
	}
	return Ok(r.Value().Message)
}
