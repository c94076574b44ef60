package cli

import (
	"flag"
	"fmt"
	"strconv"

	"github.com/tasklight/tasklight.go/pkg/models"
)

const usage = `Usage: tasklight <command> [flags] [args]

Commands:
  register <email> <password>   Create an account and sign in
  login <email> <password>      Sign in
  logout                        Sign out
  whoami                        Show the signed-in user

  todos [-filter all|none|ID]   List todos, optionally filtered by group
  add [-desc D] [-group ID] <title>
                                Create a todo
  done <id>                     Toggle a todo's completed flag
  edit [-title T] [-desc D] [-group ID|none] <id>
                                Update a todo; omitted flags keep their value
  rm <id>                       Delete a todo

  groups                        List groups
  group-add [-desc D] [-color C] <name>
                                Create a group
  group-edit [-name N] [-desc D] [-color C] <id>
                                Update a group; omitted flags keep their value
  group-rm <id>                 Delete a group; its todos become ungrouped

  users                         List all users (admin)
  promote <id>                  Grant admin to a user (admin)
  demote <id>                   Revoke admin from a user (admin)
  user-rm [-yes] <id>           Delete a user's account (admin)`

// Parse parses command line arguments and returns the command to execute,
// the shared configuration, and any error that occurred. Command-specific
// options live on the returned Command; everything environment-driven lives
// on the Config.
func Parse(args []string) (Command, *Config, error) {
	if len(args) == 0 {
		return nil, nil, fmt.Errorf("subcommand required\n\n%s", usage)
	}

	cfg, err := LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	name, rest := args[0], args[1:]
	var cmd Command
	switch name {
	case "register", "login":
		if len(rest) != 2 {
			return nil, nil, fmt.Errorf("usage: tasklight %s <email> <password>", name)
		}
		if name == "register" {
			cmd = &RegisterCommand{Email: rest[0], Password: rest[1]}
		} else {
			cmd = &LoginCommand{Email: rest[0], Password: rest[1]}
		}

	case "logout":
		cmd = &LogoutCommand{}

	case "whoami":
		cmd = &WhoamiCommand{}

	case "todos":
		fs := flag.NewFlagSet("todos", flag.ContinueOnError)
		filter := fs.String("filter", "all", "all, none (ungrouped), or a group id")
		if err := fs.Parse(rest); err != nil {
			return nil, nil, err
		}
		if *filter != "all" && *filter != "none" {
			if _, err := strconv.ParseUint(*filter, 10, 64); err != nil {
				return nil, nil, fmt.Errorf("invalid filter %q: want all, none, or a group id", *filter)
			}
		}
		cmd = &TodosCommand{Filter: *filter}

	case "add":
		fs := flag.NewFlagSet("add", flag.ContinueOnError)
		desc := fs.String("desc", "", "description")
		group := fs.String("group", "", "group id")
		if err := fs.Parse(rest); err != nil {
			return nil, nil, err
		}
		if fs.NArg() != 1 {
			return nil, nil, fmt.Errorf("usage: tasklight add [flags] <title>")
		}
		add := &AddCommand{Title: fs.Arg(0), Description: *desc}
		if *group != "" {
			id, err := parseID(*group)
			if err != nil {
				return nil, nil, err
			}
			add.GroupID = &id
		}
		cmd = add

	case "done", "rm", "group-rm", "promote", "demote":
		if len(rest) != 1 {
			return nil, nil, fmt.Errorf("usage: tasklight %s <id>", name)
		}
		id, err := parseID(rest[0])
		if err != nil {
			return nil, nil, err
		}
		switch name {
		case "done":
			cmd = &DoneCommand{ID: id}
		case "rm":
			cmd = &RemoveCommand{ID: id}
		case "group-rm":
			cmd = &GroupRemoveCommand{ID: id}
		case "promote":
			cmd = &PromoteCommand{ID: id}
		case "demote":
			cmd = &DemoteCommand{ID: id}
		}

	case "edit":
		fs := flag.NewFlagSet("edit", flag.ContinueOnError)
		title := fs.String("title", "", "new title")
		desc := fs.String("desc", "", "new description")
		group := fs.String("group", "", "group id, or none to ungroup")
		if err := fs.Parse(rest); err != nil {
			return nil, nil, err
		}
		if fs.NArg() != 1 {
			return nil, nil, fmt.Errorf("usage: tasklight edit [flags] <id>")
		}
		id, err := parseID(fs.Arg(0))
		if err != nil {
			return nil, nil, err
		}
		edit := &EditCommand{ID: id, Group: models.GroupUnchanged()}
		var parseErr error
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "title":
				edit.Title = title
			case "desc":
				edit.Description = desc
			case "group":
				if *group == "none" {
					edit.Group = models.GroupNone()
					return
				}
				gid, err := parseID(*group)
				if err != nil {
					parseErr = err
					return
				}
				edit.Group = models.GroupID(gid)
			}
		})
		if parseErr != nil {
			return nil, nil, parseErr
		}
		cmd = edit

	case "groups":
		cmd = &GroupsCommand{}

	case "group-add":
		fs := flag.NewFlagSet("group-add", flag.ContinueOnError)
		desc := fs.String("desc", "", "description")
		color := fs.String("color", "", "hex color, server default when empty")
		if err := fs.Parse(rest); err != nil {
			return nil, nil, err
		}
		if fs.NArg() != 1 {
			return nil, nil, fmt.Errorf("usage: tasklight group-add [flags] <name>")
		}
		cmd = &GroupAddCommand{GroupName: fs.Arg(0), Description: *desc, Color: *color}

	case "group-edit":
		fs := flag.NewFlagSet("group-edit", flag.ContinueOnError)
		gname := fs.String("name", "", "new name")
		desc := fs.String("desc", "", "new description")
		color := fs.String("color", "", "new hex color")
		if err := fs.Parse(rest); err != nil {
			return nil, nil, err
		}
		if fs.NArg() != 1 {
			return nil, nil, fmt.Errorf("usage: tasklight group-edit [flags] <id>")
		}
		id, err := parseID(fs.Arg(0))
		if err != nil {
			return nil, nil, err
		}
		edit := &GroupEditCommand{ID: id}
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "name":
				edit.GroupName = gname
			case "desc":
				edit.Description = desc
			case "color":
				edit.Color = color
			}
		})
		cmd = edit

	case "users":
		cmd = &UsersCommand{}

	case "user-rm":
		fs := flag.NewFlagSet("user-rm", flag.ContinueOnError)
		yes := fs.Bool("yes", false, "confirm the deletion")
		if err := fs.Parse(rest); err != nil {
			return nil, nil, err
		}
		if fs.NArg() != 1 {
			return nil, nil, fmt.Errorf("usage: tasklight user-rm [-yes] <id>")
		}
		id, err := parseID(fs.Arg(0))
		if err != nil {
			return nil, nil, err
		}
		cmd = &UserRemoveCommand{ID: id, Confirmed: *yes}

	default:
		return nil, nil, fmt.Errorf("unknown command: %s\n\n%s", name, usage)
	}

	return cmd, cfg, nil
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(id), nil
}
