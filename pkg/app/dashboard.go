// Package app holds the page controllers of the tasklight client: the
// dashboard (todos and groups) and the admin panel. Each controller owns its
// page's local state and keeps it consistent with the server after every
// mutation without a full reload, following one rule throughout: local state
// is updated only from the server's returned object, never assumed.
package app

import (
	"context"
	"strings"
	"sync"

	"github.com/tasklight/tasklight.go/pkg/api"
	"github.com/tasklight/tasklight.go/pkg/models"
)

// todoDraft holds the per-item edit state while a todo is being edited.
type todoDraft struct {
	id          uint
	title       string
	description string
	groupID     *uint
	// lastGroup is the item's group when editing started; the saved update
	// includes the group field only when the selection moved away from it.
	lastGroup *uint
}

// groupDraft holds the edit state of the group management panel.
type groupDraft struct {
	id          uint
	name        string
	description string
	color       string
}

// Dashboard is the controller behind the main page: the authenticated user's
// todos and groups, an optional per-item edit mode, a client-side view
// filter, and a single-message dismissible error banner (last error wins).
// Safe for concurrent use.
type Dashboard struct {
	api *api.Client

	mu        sync.RWMutex
	todos     []models.Todo
	groups    []models.Group
	banner    string
	filter    Filter
	draft     *todoDraft
	groupEdit *groupDraft
}

// NewDashboard creates an empty dashboard backed by the given client.
func NewDashboard(client *api.Client) *Dashboard {
	return &Dashboard{api: client, filter: FilterAll()}
}

// Load fetches todos and groups concurrently and waits for both, so a slow
// call does not serialize behind the other. Either failure surfaces its error
// message; whatever succeeded is still kept.
func (d *Dashboard) Load(ctx context.Context) {
	var (
		wg        sync.WaitGroup
		todosRes  api.Result[[]models.Todo]
		groupsRes api.Result[[]models.Group]
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		todosRes = d.api.ListTodos(ctx)
	}()
	go func() {
		defer wg.Done()
		groupsRes = d.api.ListGroups(ctx)
	}()
	wg.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	if todosRes.Ok() {
		d.todos = todosRes.Value()
	} else {
		d.banner = todosRes.Err()
	}
	if groupsRes.Ok() {
		d.groups = groupsRes.Value()
	} else {
		d.banner = groupsRes.Err()
	}
}

// CreateTodo creates a todo and prepends the server's object to the local
// list (most-recent-first is a client convention, not a server guarantee).
// A whitespace-only title is rejected before any network call.
func (d *Dashboard) CreateTodo(ctx context.Context, title, description string, groupID *uint) bool {
	if strings.TrimSpace(title) == "" {
		return false
	}
	res := d.api.CreateTodo(ctx, api.TodoCreate{Title: title, Description: description, GroupID: groupID})
	if !res.Ok() {
		d.setBanner(res.Err())
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.todos = append([]models.Todo{res.Value()}, d.todos...)
	return true
}

// ToggleComplete flips an item's completed flag. The local item is replaced
// only after the server confirms, using the returned object so
// server-computed fields like updated_at stay authoritative.
func (d *Dashboard) ToggleComplete(ctx context.Context, id uint) bool {
	todo, ok := d.findTodo(id)
	if !ok {
		return false
	}
	completed := !todo.Completed
	res := d.api.UpdateTodo(ctx, id, api.TodoUpdate{Completed: &completed})
	if !res.Ok() {
		d.setBanner(res.Err())
		return false
	}
	d.replaceTodo(res.Value())
	return true
}

// DeleteTodo removes an item locally only after the server confirms; on
// failure the item remains and the error is surfaced.
func (d *Dashboard) DeleteTodo(ctx context.Context, id uint) bool {
	res := d.api.DeleteTodo(ctx, id)
	if !res.Ok() {
		d.setBanner(res.Err())
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.todos = removeTodo(d.todos, id)
	return true
}

// StartEdit enters edit mode for an item, snapshotting its title,
// description and group into the draft.
func (d *Dashboard) StartEdit(id uint) bool {
	todo, ok := d.findTodo(id)
	if !ok {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.draft = &todoDraft{
		id:          todo.ID,
		title:       todo.Title,
		description: todo.Description,
		groupID:     copyGroup(todo.GroupID),
		lastGroup:   copyGroup(todo.GroupID),
	}
	return true
}

// EditTitle updates the draft title.
func (d *Dashboard) EditTitle(title string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.draft != nil {
		d.draft.title = title
	}
}

// EditDescription updates the draft description.
func (d *Dashboard) EditDescription(description string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.draft != nil {
		d.draft.description = description
	}
}

// EditGroup updates the draft group selection; nil means no group.
func (d *Dashboard) EditGroup(groupID *uint) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.draft != nil {
		d.draft.groupID = copyGroup(groupID)
	}
}

// CancelEdit leaves edit mode without saving.
func (d *Dashboard) CancelEdit() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.draft = nil
}

// EditingID returns the id of the item under edit, if any.
func (d *Dashboard) EditingID() (uint, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.draft == nil {
		return 0, false
	}
	return d.draft.id, true
}

// SaveEdit sends the draft to the server. The group field is included only
// when the selection differs from the item's group at edit start, so an
// unchanged selection can never clear a group by accident. On success the
// local item is replaced by the server's object and edit mode ends.
func (d *Dashboard) SaveEdit(ctx context.Context) bool {
	d.mu.RLock()
	draft := d.draft
	d.mu.RUnlock()
	if draft == nil {
		return false
	}
	if strings.TrimSpace(draft.title) == "" {
		return false
	}

	group := models.GroupUnchanged()
	if !models.SameGroup(draft.groupID, draft.lastGroup) {
		group = models.SelectGroup(draft.groupID)
	}
	update := api.TodoUpdate{
		Title:       &draft.title,
		Description: &draft.description,
		Group:       group,
	}

	res := d.api.UpdateTodo(ctx, draft.id, update)
	if !res.Ok() {
		d.setBanner(res.Err())
		return false
	}
	d.replaceTodo(res.Value())
	d.mu.Lock()
	d.draft = nil
	d.mu.Unlock()
	return true
}

// CreateGroup creates a group and appends the server's object to the local
// list. A whitespace-only name is rejected before any network call.
func (d *Dashboard) CreateGroup(ctx context.Context, name, description, color string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	res := d.api.CreateGroup(ctx, api.GroupCreate{Name: name, Description: description, Color: color})
	if !res.Ok() {
		d.setBanner(res.Err())
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.groups = append(d.groups, res.Value())
	return true
}

// StartGroupEdit enters edit mode for a group in the management panel.
func (d *Dashboard) StartGroupEdit(id uint) bool {
	group, ok := d.GroupByID(id)
	if !ok {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.groupEdit = &groupDraft{
		id:          group.ID,
		name:        group.Name,
		description: group.Description,
		color:       group.Color,
	}
	return true
}

// EditGroupName updates the group draft name.
func (d *Dashboard) EditGroupName(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.groupEdit != nil {
		d.groupEdit.name = name
	}
}

// EditGroupDescription updates the group draft description.
func (d *Dashboard) EditGroupDescription(description string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.groupEdit != nil {
		d.groupEdit.description = description
	}
}

// EditGroupColor updates the group draft color.
func (d *Dashboard) EditGroupColor(color string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.groupEdit != nil {
		d.groupEdit.color = color
	}
}

// CancelGroupEdit leaves group edit mode without saving.
func (d *Dashboard) CancelGroupEdit() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.groupEdit = nil
}

// SaveGroupEdit sends the group draft to the server and replaces the local
// group with the returned object.
func (d *Dashboard) SaveGroupEdit(ctx context.Context) bool {
	d.mu.RLock()
	draft := d.groupEdit
	d.mu.RUnlock()
	if draft == nil {
		return false
	}
	if strings.TrimSpace(draft.name) == "" {
		return false
	}

	res := d.api.UpdateGroup(ctx, draft.id, api.GroupUpdate{
		Name:        &draft.name,
		Description: &draft.description,
		Color:       &draft.color,
	})
	if !res.Ok() {
		d.setBanner(res.Err())
		return false
	}

	updated := res.Value()
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.groups {
		if d.groups[i].ID == updated.ID {
			d.groups[i] = updated
			break
		}
	}
	d.groupEdit = nil
	return true
}

// DeleteGroup removes a group after server confirmation and patches every
// local todo referencing it to ungrouped, matching the server's cascading
// behavior without any additional network calls.
func (d *Dashboard) DeleteGroup(ctx context.Context, id uint) bool {
	res := d.api.DeleteGroup(ctx, id)
	if !res.Ok() {
		d.setBanner(res.Err())
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	kept := d.groups[:0]
	for _, g := range d.groups {
		if g.ID != id {
			kept = append(kept, g)
		}
	}
	d.groups = kept
	for i := range d.todos {
		if d.todos[i].GroupID != nil && *d.todos[i].GroupID == id {
			d.todos[i].GroupID = nil
		}
	}
	if f := d.filter; f.mode == filterGroup && f.groupID == id {
		d.filter = FilterAll()
	}
	return true
}

// SetFilter changes the view filter.
func (d *Dashboard) SetFilter(f Filter) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filter = f
}

// VisibleTodos returns the todos passing the current filter.
func (d *Dashboard) VisibleTodos() []models.Todo {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]models.Todo, 0, len(d.todos))
	for _, t := range d.todos {
		if d.filter.matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// Todos returns a copy of the full local todo list.
func (d *Dashboard) Todos() []models.Todo {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]models.Todo, len(d.todos))
	copy(out, d.todos)
	return out
}

// Groups returns a copy of the local group list.
func (d *Dashboard) Groups() []models.Group {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]models.Group, len(d.groups))
	copy(out, d.groups)
	return out
}

// GroupByID resolves a group for denormalized display (name, color).
func (d *Dashboard) GroupByID(id uint) (models.Group, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, g := range d.groups {
		if g.ID == id {
			return g, true
		}
	}
	return models.Group{}, false
}

// Banner returns the current error message, empty when none.
func (d *Dashboard) Banner() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.banner
}

// DismissBanner clears the error banner.
func (d *Dashboard) DismissBanner() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.banner = ""
}

func (d *Dashboard) setBanner(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.banner = msg
}

func (d *Dashboard) findTodo(id uint) (models.Todo, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, t := range d.todos {
		if t.ID == id {
			return t, true
		}
	}
	return models.Todo{}, false
}

func (d *Dashboard) replaceTodo(updated models.Todo) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.todos {
		if d.todos[i].ID == updated.ID {
			d.todos[i] = updated
			return
		}
	}
}

func removeTodo(todos []models.Todo, id uint) []models.Todo {
	kept := todos[:0]
	for _, t := range todos {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	return kept
}

func copyGroup(id *uint) *uint {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
