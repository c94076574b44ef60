package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/tasklight/tasklight.go/pkg/models"
)

type todoEnvelope struct {
	Todo models.Todo `json:"todo"`
}

type todosEnvelope struct {
	Todos []models.Todo `json:"todos"`
}

type messageEnvelope struct {
	Message string `json:"message"`
}

// TodoCreate is the request body for creating a todo. GroupID is optional;
// when set, the id is carried as a string like in updates.
type TodoCreate struct {
	Title       string
	Description string
	GroupID     *uint
}

// MarshalJSON emits group_id only when a group was chosen.
func (t TodoCreate) MarshalJSON() ([]byte, error) {
	body := map[string]any{
		"title":       t.Title,
		"description": t.Description,
	}
	if t.GroupID != nil {
		body["group_id"] = strconv.FormatUint(uint64(*t.GroupID), 10)
	}
	return json.Marshal(body)
}

// TodoUpdate is a partial update: nil fields are omitted from the request and
// left unchanged by the server. Group is tri-state; see models.GroupSelection.
type TodoUpdate struct {
	Title       *string
	Description *string
	Completed   *bool
	Group       models.GroupSelection
}

// MarshalJSON builds the partial body, enforcing the distinction between an
// omitted group field (no change) and an explicit empty one (detach).
func (u TodoUpdate) MarshalJSON() ([]byte, error) {
	body := make(map[string]any)
	if u.Title != nil {
		body["title"] = *u.Title
	}
	if u.Description != nil {
		body["description"] = *u.Description
	}
	if u.Completed != nil {
		body["completed"] = *u.Completed
	}
	if wire, present := u.Group.Wire(); present {
		body["group_id"] = wire
	}
	return json.Marshal(body)
}

// ListTodos returns the authenticated user's todos.
func (c *Client) ListTodos(ctx context.Context) Result[[]models.Todo] {
	r := call[todosEnvelope](c, ctx, http.MethodGet, "/todos", nil)
	if !r.Ok() {
		return Fail[[]models.Todo](r.Err())
	}
	return Ok(r.Value().Todos)
}

// GetTodo returns a single todo by id.
func (c *Client) GetTodo(ctx context.Context, id uint) Result[models.Todo] {
	r := call[todoEnvelope](c, ctx, http.MethodGet, fmt.Sprintf("/todos/%d", id), nil)
	if !r.Ok() {
		return Fail[models.Todo](r.Err())
	}
	return Ok(r.Value().Todo)
}

// CreateTodo creates a todo and returns the server's stored object.
func (c *Client) CreateTodo(ctx context.Context, create TodoCreate) Result[models.Todo] {
	r := call[todoEnvelope](c, ctx, http.MethodPost, "/todos", create)
	if !r.Ok() {
		return Fail[models.Todo](r.Err())
	}
	return Ok(r.Value().Todo)
}

// UpdateTodo applies a partial update and returns the server's updated
// object, so server-computed fields stay authoritative.
func (c *Client) UpdateTodo(ctx context.Context, id uint, update TodoUpdate) Result[models.Todo] {
	r := call[todoEnvelope](c, ctx, http.MethodPut, fmt.Sprintf("/todos/%d", id), update)
	if !r.Ok() {
		return Fail[models.Todo](r.Err())
	}
	return Ok(r.Value().Todo)
}

// DeleteTodo deletes a todo and returns the server's confirmation message.
func (c *Client) DeleteTodo(ctx context.Context, id uint) Result[string] {
	r := call[messageEnvelope](c, ctx, http.MethodDelete, fmt.Sprintf("/todos/%d", id), nil)
	if !r.Ok() {
		return Fail[string](r.Err())
	}
	return Ok(r.Value().Message)
}
