// Package cli is the terminal entry point of the tasklight client. It parses
// a subcommand, wires the session and page controllers together the way the
// browser shell would, and prints plain text. All task and user semantics
// live in pkg/app and pkg/session; this layer only drives them.
package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/tasklight/tasklight.go/pkg/api"
	"github.com/tasklight/tasklight.go/pkg/app"
	"github.com/tasklight/tasklight.go/pkg/logger"
	"github.com/tasklight/tasklight.go/pkg/models"
	"github.com/tasklight/tasklight.go/pkg/session"
)

// App wires the configuration, API client and session for one invocation.
type App struct {
	config  *Config
	log     zerolog.Logger
	out     io.Writer
	api     *api.Client
	session *session.Session
}

// NewApp builds the client stack from the configuration. Output goes to out.
func NewApp(cfg *Config, out io.Writer) (*App, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	logData, err := logger.New().WithLevel(level).Make()
	if err != nil {
		return nil, err
	}

	store := session.NewFileStore(cfg.CredentialsFile)
	client := api.NewClient(cfg.BaseURL, store, api.WithLogger(logData.Logger))
	return &App{
		config:  cfg,
		log:     logData.Logger,
		out:     out,
		api:     client,
		session: session.New(client, store),
	}, nil
}

// Run resolves the session and executes the command. The session is always
// initialized first so gating decisions never run against an unresolved
// state.
func (a *App) Run(ctx context.Context, cmd Command) error {
	a.session.Init(ctx)
	a.log.Debug().
		Str("command", cmd.Name()).
		Stringer("session", a.session.State()).
		Msg("executing")

	switch c := cmd.(type) {
	case *RegisterCommand:
		return a.outcome(a.session.Register(ctx, c.Email, c.Password), "Registered and signed in.")
	case *LoginCommand:
		return a.outcome(a.session.Login(ctx, c.Email, c.Password), "Signed in.")
	case *LogoutCommand:
		a.session.Logout()
		fmt.Fprintln(a.out, "Signed out.")
		return nil
	case *WhoamiCommand:
		return a.whoami()
	}

	if !a.session.RequireUser() {
		return fmt.Errorf("not signed in; run tasklight login first")
	}

	switch c := cmd.(type) {
	case *TodosCommand:
		return a.listTodos(ctx, c.Filter)
	case *AddCommand:
		return a.addTodo(ctx, c)
	case *DoneCommand:
		return a.toggleTodo(ctx, c.ID)
	case *EditCommand:
		return a.editTodo(ctx, c)
	case *RemoveCommand:
		return a.removeTodo(ctx, c.ID)
	case *GroupsCommand:
		return a.listGroups(ctx)
	case *GroupAddCommand:
		return a.addGroup(ctx, c)
	case *GroupEditCommand:
		return a.editGroup(ctx, c)
	case *GroupRemoveCommand:
		return a.removeGroup(ctx, c.ID)
	}

	if !a.session.RequireAdmin() {
		return fmt.Errorf("admin access required")
	}

	panel := app.NewAdminPanel(a.api, a.session.CurrentUser().ID)
	switch c := cmd.(type) {
	case *UsersCommand:
		return a.listUsers(ctx, panel)
	case *PromoteCommand:
		return a.setAdmin(ctx, panel, c.ID, true)
	case *DemoteCommand:
		return a.setAdmin(ctx, panel, c.ID, false)
	case *UserRemoveCommand:
		return a.removeUser(ctx, panel, c)
	default:
		return fmt.Errorf("unhandled command: %s", cmd.Name())
	}
}

func (a *App) outcome(o session.Outcome, success string) error {
	if !o.OK {
		return fmt.Errorf("%s", o.Message)
	}
	fmt.Fprintln(a.out, success)
	return nil
}

func (a *App) whoami() error {
	user := a.session.CurrentUser()
	if user == nil {
		fmt.Fprintln(a.out, "Not signed in.")
		return nil
	}
	role := "user"
	if user.IsAdmin {
		role = "admin"
	}
	fmt.Fprintf(a.out, "%s (id %d, %s)\n", user.Email, user.ID, role)
	return nil
}

// dashboard loads a controller the way the page does on mount: todos and
// groups fetched together, with any load error reported before rendering.
func (a *App) dashboard(ctx context.Context) (*app.Dashboard, error) {
	d := app.NewDashboard(a.api)
	d.Load(ctx)
	if msg := d.Banner(); msg != "" {
		return nil, fmt.Errorf("%s", msg)
	}
	return d, nil
}

func (a *App) listTodos(ctx context.Context, filter string) error {
	d, err := a.dashboard(ctx)
	if err != nil {
		return err
	}
	switch filter {
	case "all":
	case "none":
		d.SetFilter(app.FilterUngrouped())
	default:
		id, err := strconv.ParseUint(filter, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid filter %q", filter)
		}
		d.SetFilter(app.FilterGroup(uint(id)))
	}

	todos := d.VisibleTodos()
	if len(todos) == 0 {
		fmt.Fprintln(a.out, "No todos.")
		return nil
	}
	for _, t := range todos {
		fmt.Fprintln(a.out, a.formatTodo(d, t))
	}
	return nil
}

func (a *App) formatTodo(d *app.Dashboard, t models.Todo) string {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	line := fmt.Sprintf("[%s] %d  %s", mark, t.ID, t.Title)
	if t.GroupID != nil {
		if g, ok := d.GroupByID(*t.GroupID); ok {
			line += fmt.Sprintf("  (%s)", g.Name)
		}
	}
	if t.Description != "" {
		line += "  - " + t.Description
	}
	return line
}

func (a *App) addTodo(ctx context.Context, c *AddCommand) error {
	d, err := a.dashboard(ctx)
	if err != nil {
		return err
	}
	if !d.CreateTodo(ctx, c.Title, c.Description, c.GroupID) {
		return dashboardErr(d, "title must not be empty")
	}
	created := d.Todos()[0]
	fmt.Fprintf(a.out, "Added todo %d.\n", created.ID)
	return nil
}

func (a *App) toggleTodo(ctx context.Context, id uint) error {
	d, err := a.dashboard(ctx)
	if err != nil {
		return err
	}
	if !d.ToggleComplete(ctx, id) {
		return dashboardErr(d, fmt.Sprintf("todo %d not found", id))
	}
	fmt.Fprintf(a.out, "Toggled todo %d.\n", id)
	return nil
}

func (a *App) editTodo(ctx context.Context, c *EditCommand) error {
	d, err := a.dashboard(ctx)
	if err != nil {
		return err
	}
	if !d.StartEdit(c.ID) {
		return fmt.Errorf("todo %d not found", c.ID)
	}
	if c.Title != nil {
		d.EditTitle(*c.Title)
	}
	if c.Description != nil {
		d.EditDescription(*c.Description)
	}
	if !c.Group.Unchanged() {
		d.EditGroup(c.Group.Target())
	}
	if !d.SaveEdit(ctx) {
		return dashboardErr(d, "title must not be empty")
	}
	fmt.Fprintf(a.out, "Updated todo %d.\n", c.ID)
	return nil
}

func (a *App) removeTodo(ctx context.Context, id uint) error {
	d, err := a.dashboard(ctx)
	if err != nil {
		return err
	}
	if !d.DeleteTodo(ctx, id) {
		return dashboardErr(d, fmt.Sprintf("todo %d not found", id))
	}
	fmt.Fprintf(a.out, "Deleted todo %d.\n", id)
	return nil
}

func (a *App) listGroups(ctx context.Context) error {
	d, err := a.dashboard(ctx)
	if err != nil {
		return err
	}
	groups := d.Groups()
	if len(groups) == 0 {
		fmt.Fprintln(a.out, "No groups.")
		return nil
	}
	for _, g := range groups {
		line := fmt.Sprintf("%d  %s  %s", g.ID, g.Name, g.Color)
		if g.Description != "" {
			line += "  - " + g.Description
		}
		fmt.Fprintln(a.out, line)
	}
	return nil
}

func (a *App) addGroup(ctx context.Context, c *GroupAddCommand) error {
	d, err := a.dashboard(ctx)
	if err != nil {
		return err
	}
	if !d.CreateGroup(ctx, c.GroupName, c.Description, c.Color) {
		return dashboardErr(d, "name must not be empty")
	}
	groups := d.Groups()
	fmt.Fprintf(a.out, "Added group %d.\n", groups[len(groups)-1].ID)
	return nil
}

func (a *App) editGroup(ctx context.Context, c *GroupEditCommand) error {
	d, err := a.dashboard(ctx)
	if err != nil {
		return err
	}
	if !d.StartGroupEdit(c.ID) {
		return fmt.Errorf("group %d not found", c.ID)
	}
	if c.GroupName != nil {
		d.EditGroupName(*c.GroupName)
	}
	if c.Description != nil {
		d.EditGroupDescription(*c.Description)
	}
	if c.Color != nil {
		d.EditGroupColor(*c.Color)
	}
	if !d.SaveGroupEdit(ctx) {
		return dashboardErr(d, "name must not be empty")
	}
	fmt.Fprintf(a.out, "Updated group %d.\n", c.ID)
	return nil
}

func (a *App) removeGroup(ctx context.Context, id uint) error {
	d, err := a.dashboard(ctx)
	if err != nil {
		return err
	}
	if !d.DeleteGroup(ctx, id) {
		return dashboardErr(d, fmt.Sprintf("group %d not found", id))
	}
	fmt.Fprintf(a.out, "Deleted group %d; its todos are now ungrouped.\n", id)
	return nil
}

func (a *App) listUsers(ctx context.Context, panel *app.AdminPanel) error {
	if !panel.Load(ctx) {
		return fmt.Errorf("%s", panel.Banner())
	}
	for _, u := range panel.Users() {
		role := "user"
		if u.IsAdmin {
			role = "admin"
		}
		self := ""
		if !panel.CanModify(u.ID) {
			self = "  (you)"
		}
		fmt.Fprintf(a.out, "%d  %s  %s%s\n", u.ID, u.Email, role, self)
	}
	return nil
}

func (a *App) setAdmin(ctx context.Context, panel *app.AdminPanel, id uint, isAdmin bool) error {
	if !panel.Load(ctx) {
		return fmt.Errorf("%s", panel.Banner())
	}
	if !panel.SetAdmin(ctx, id, isAdmin) {
		if msg := panel.Banner(); msg != "" {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("cannot change your own admin status")
	}
	verb := "Promoted"
	if !isAdmin {
		verb = "Demoted"
	}
	fmt.Fprintf(a.out, "%s user %d.\n", verb, id)
	return nil
}

func (a *App) removeUser(ctx context.Context, panel *app.AdminPanel, c *UserRemoveCommand) error {
	if !c.Confirmed {
		return fmt.Errorf("refusing to delete user %d without -yes", c.ID)
	}
	if !panel.Load(ctx) {
		return fmt.Errorf("%s", panel.Banner())
	}
	if !panel.DeleteUser(ctx, c.ID, c.Confirmed) {
		if msg := panel.Banner(); msg != "" {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("cannot delete yourself")
	}
	fmt.Fprintf(a.out, "Deleted user %d.\n", c.ID)
	return nil
}

func dashboardErr(d *app.Dashboard, fallback string) error {
	if msg := d.Banner(); msg != "" {
		return fmt.Errorf("%s", msg)
	}
	return fmt.Errorf("%s", fallback)
}
