// Package models defines the entities the tasklight client exchanges with the
// task-management API. The server owns the authoritative definitions; these
// structs mirror the JSON shapes it produces and consumes.
package models

import "time"

// DefaultGroupColor is the color the server assigns to a group created
// without an explicit color.
const DefaultGroupColor = "#3B82F6"

// User represents a user account as returned by the API.
// CreatedAt is optional because some endpoints omit it, and Todos is only
// populated on admin views that embed a user's list.
type User struct {
	ID        uint       `json:"id"`
	Email     string     `json:"email"`
	IsAdmin   bool       `json:"is_admin"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	Todos     []Todo     `json:"todos,omitempty"`
}

// Todo represents a single task. GroupID is nil for ungrouped todos; the
// group's name and color are resolved client-side from the group list.
type Todo struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	UserID      uint      `json:"user_id"`
	GroupID     *uint     `json:"group_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Group is a user-defined, color-tagged collection of todos. Deleting a group
// does not delete its todos; they become ungrouped.
type Group struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	UserID      uint      `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SameGroup reports whether two optional group references point at the same
// group (both nil, or both the same id).
func SameGroup(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
