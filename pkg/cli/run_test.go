package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasklight/tasklight.go/internal/fakeapi"
	"github.com/tasklight/tasklight.go/pkg/models"
)

func newTestApp(t *testing.T) (*fakeapi.Server, *App, *bytes.Buffer) {
	t.Helper()
	fake := fakeapi.New()
	ts := httptest.NewServer(fake.Handler())
	t.Cleanup(ts.Close)

	cfg := &Config{
		BaseURL:         ts.URL,
		CredentialsFile: filepath.Join(t.TempDir(), "credentials"),
		LogLevel:        "warn",
	}
	out := &bytes.Buffer{}
	app, err := NewApp(cfg, out)
	require.NoError(t, err)
	return fake, app, out
}

func TestRunTodoLifecycle(t *testing.T) {
	fake, app, out := newTestApp(t)
	user := fake.SeedUser("alice@example.com", "hunter2", false)
	group := fake.SeedGroup(user.ID, "work", "")
	todo := fake.SeedTodo(user.ID, "write report", "", &group.ID)
	ctx := context.Background()

	require.NoError(t, app.Run(ctx, &LoginCommand{Email: "alice@example.com", Password: "hunter2"}))
	assert.Contains(t, out.String(), "Signed in.")

	out.Reset()
	require.NoError(t, app.Run(ctx, &WhoamiCommand{}))
	assert.Contains(t, out.String(), "alice@example.com")

	out.Reset()
	require.NoError(t, app.Run(ctx, &AddCommand{Title: "buy milk", Description: "2 liters"}))
	assert.Contains(t, out.String(), "Added todo")

	out.Reset()
	require.NoError(t, app.Run(ctx, &TodosCommand{Filter: "all"}))
	assert.Contains(t, out.String(), "buy milk")
	assert.Contains(t, out.String(), "write report")
	assert.Contains(t, out.String(), "(work)")

	out.Reset()
	require.NoError(t, app.Run(ctx, &TodosCommand{Filter: "none"}))
	assert.Contains(t, out.String(), "buy milk")
	assert.NotContains(t, out.String(), "write report")

	require.NoError(t, app.Run(ctx, &DoneCommand{ID: todo.ID}))
	stored, ok := fake.TodoByID(todo.ID)
	require.True(t, ok)
	assert.True(t, stored.Completed)

	require.NoError(t, app.Run(ctx, &EditCommand{ID: todo.ID, Group: models.GroupNone()}))
	stored, ok = fake.TodoByID(todo.ID)
	require.True(t, ok)
	assert.Nil(t, stored.GroupID)

	require.NoError(t, app.Run(ctx, &RemoveCommand{ID: todo.ID}))
	_, ok = fake.TodoByID(todo.ID)
	assert.False(t, ok)
}

func TestRunRegisterPersistsAcrossApps(t *testing.T) {
	fake, app, _ := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, app.Run(ctx, &RegisterCommand{Email: "bob@example.com", Password: "secret"}))

	// A fresh App over the same credentials file resumes the session.
	out := &bytes.Buffer{}
	again, err := NewApp(app.config, out)
	require.NoError(t, err)
	require.NoError(t, again.Run(ctx, &WhoamiCommand{}))
	assert.Contains(t, out.String(), "bob@example.com")
	assert.NotZero(t, fake.RequestCount())
}

func TestRunRequiresSignIn(t *testing.T) {
	_, app, _ := newTestApp(t)

	err := app.Run(context.Background(), &TodosCommand{Filter: "all"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not signed in")
}

func TestRunAdminCommandsGated(t *testing.T) {
	fake, app, _ := newTestApp(t)
	fake.SeedUser("bob@example.com", "pw", false)
	ctx := context.Background()

	require.NoError(t, app.Run(ctx, &LoginCommand{Email: "bob@example.com", Password: "pw"}))
	err := app.Run(ctx, &UsersCommand{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "admin access required")
}

func TestRunAdminFlow(t *testing.T) {
	fake, app, out := newTestApp(t)
	fake.SeedUser("root@example.com", "pw", true)
	other := fake.SeedUser("bob@example.com", "pw", false)
	ctx := context.Background()

	require.NoError(t, app.Run(ctx, &LoginCommand{Email: "root@example.com", Password: "pw"}))

	out.Reset()
	require.NoError(t, app.Run(ctx, &UsersCommand{}))
	assert.Contains(t, out.String(), "bob@example.com")
	assert.Contains(t, out.String(), "(you)")

	require.NoError(t, app.Run(ctx, &PromoteCommand{ID: other.ID}))

	err := app.Run(ctx, &UserRemoveCommand{ID: other.ID, Confirmed: false})
	require.Error(t, err, "deletion without -yes must be refused")

	out.Reset()
	require.NoError(t, app.Run(ctx, &UserRemoveCommand{ID: other.ID, Confirmed: true}))
	assert.Contains(t, out.String(), "Deleted user")
}
