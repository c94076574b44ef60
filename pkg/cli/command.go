package cli

import "github.com/tasklight/tasklight.go/pkg/models"

// Command represents one parsed CLI operation with its specific options.
// Commands carry data only; execution happens on [App], which routes by the
// command's concrete type. Name exists for error messages and logging.
type Command interface {
	Name() string
}

// RegisterCommand creates an account and signs it in.
type RegisterCommand struct {
	Email    string
	Password string
}

func (c *RegisterCommand) Name() string { return "register" }

// LoginCommand signs in with existing credentials.
type LoginCommand struct {
	Email    string
	Password string
}

func (c *LoginCommand) Name() string { return "login" }

// LogoutCommand discards the persisted credential.
type LogoutCommand struct{}

func (c *LogoutCommand) Name() string { return "logout" }

// WhoamiCommand prints the signed-in user.
type WhoamiCommand struct{}

func (c *WhoamiCommand) Name() string { return "whoami" }

// TodosCommand lists todos, optionally filtered client-side.
type TodosCommand struct {
	// Filter is "all", "none" (ungrouped only), or a group id.
	Filter string
}

func (c *TodosCommand) Name() string { return "todos" }

// AddCommand creates a todo.
type AddCommand struct {
	Title       string
	Description string
	// GroupID is empty when the todo starts ungrouped.
	GroupID *uint
}

func (c *AddCommand) Name() string { return "add" }

// DoneCommand toggles a todo's completed flag.
type DoneCommand struct {
	ID uint
}

func (c *DoneCommand) Name() string { return "done" }

// EditCommand updates a todo. Nil fields are left untouched; the group
// selection distinguishes "not mentioned" from "cleared" from "assigned".
type EditCommand struct {
	ID          uint
	Title       *string
	Description *string
	Group       models.GroupSelection
}

func (c *EditCommand) Name() string { return "edit" }

// RemoveCommand deletes a todo.
type RemoveCommand struct {
	ID uint
}

func (c *RemoveCommand) Name() string { return "rm" }

// GroupsCommand lists groups.
type GroupsCommand struct{}

func (c *GroupsCommand) Name() string { return "groups" }

// GroupAddCommand creates a group.
type GroupAddCommand struct {
	GroupName   string
	Description string
	Color       string
}

func (c *GroupAddCommand) Name() string { return "group-add" }

// GroupEditCommand updates a group. Nil fields are left untouched.
type GroupEditCommand struct {
	ID          uint
	GroupName   *string
	Description *string
	Color       *string
}

func (c *GroupEditCommand) Name() string { return "group-edit" }

// GroupRemoveCommand deletes a group; its todos become ungrouped.
type GroupRemoveCommand struct {
	ID uint
}

func (c *GroupRemoveCommand) Name() string { return "group-rm" }

// UsersCommand lists all users (admin only).
type UsersCommand struct{}

func (c *UsersCommand) Name() string { return "users" }

// PromoteCommand grants admin to another user (admin only).
type PromoteCommand struct {
	ID uint
}

func (c *PromoteCommand) Name() string { return "promote" }

// DemoteCommand revokes admin from another user (admin only).
type DemoteCommand struct {
	ID uint
}

func (c *DemoteCommand) Name() string { return "demote" }

// UserRemoveCommand deletes another user's account (admin only). Confirmed
// stands in for the interactive confirmation; without it nothing is sent.
type UserRemoveCommand struct {
	ID        uint
	Confirmed bool
}

func (c *UserRemoveCommand) Name() string { return "user-rm" }
