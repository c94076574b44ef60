package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasklight/tasklight.go/internal/fakeapi"
	"github.com/tasklight/tasklight.go/pkg/api"
	"github.com/tasklight/tasklight.go/pkg/models"
	"github.com/tasklight/tasklight.go/pkg/session"
)

func newAdminEnv(t *testing.T) (*fakeapi.Server, *AdminPanel, models.User, models.User) {
	t.Helper()
	fake := fakeapi.New()
	ts := httptest.NewServer(fake.Handler())
	t.Cleanup(ts.Close)

	admin := fake.SeedUser("root@example.com", "hunter2", true)
	other := fake.SeedUser("bob@example.com", "hunter2", false)

	store := session.NewMemoryStore()
	require.NoError(t, store.Save(fake.TokenFor(admin.ID)))

	panel := NewAdminPanel(api.NewClient(ts.URL, store), admin.ID)
	return fake, panel, admin, other
}

func TestAdminLoadListsAllUsers(t *testing.T) {
	_, panel, admin, other := newAdminEnv(t)

	require.True(t, panel.Load(context.Background()))
	users := panel.Users()
	require.Len(t, users, 2)
	assert.Equal(t, admin.ID, users[0].ID)
	assert.Equal(t, other.ID, users[1].ID)
}

func TestCanModifyNeverTargetsSelf(t *testing.T) {
	_, panel, admin, other := newAdminEnv(t)
	assert.False(t, panel.CanModify(admin.ID))
	assert.True(t, panel.CanModify(other.ID))
}

func TestSetAdminOnSelfRefusedWithoutRequest(t *testing.T) {
	fake, panel, admin, _ := newAdminEnv(t)
	require.True(t, panel.Load(context.Background()))
	before := fake.RequestCount()

	assert.False(t, panel.SetAdmin(context.Background(), admin.ID, false))
	assert.Equal(t, before, fake.RequestCount(), "self-targeting must not reach the server")
	assert.Empty(t, panel.Banner())
}

func TestSetAdminReplacesRowFromServer(t *testing.T) {
	_, panel, _, other := newAdminEnv(t)
	require.True(t, panel.Load(context.Background()))

	require.True(t, panel.SetAdmin(context.Background(), other.ID, true))

	users := panel.Users()
	require.Len(t, users, 2)
	assert.True(t, users[1].IsAdmin)
}

func TestSetAdminFailureKeepsRow(t *testing.T) {
	fake, panel, _, other := newAdminEnv(t)
	require.True(t, panel.Load(context.Background()))
	fake.FailNext(http.MethodPatch, "/admin/users/{id}", "boom")

	assert.False(t, panel.SetAdmin(context.Background(), other.ID, true))
	assert.False(t, panel.Users()[1].IsAdmin)
	assert.Equal(t, "boom", panel.Banner())
}

func TestDeleteUserRequiresConfirmation(t *testing.T) {
	fake, panel, _, other := newAdminEnv(t)
	require.True(t, panel.Load(context.Background()))
	before := fake.RequestCount()

	assert.False(t, panel.DeleteUser(context.Background(), other.ID, false))
	assert.Equal(t, before, fake.RequestCount(), "unconfirmed deletion must not reach the server")
	assert.Len(t, panel.Users(), 2)
}

func TestDeleteUserRemovesRowAfterServerConfirms(t *testing.T) {
	_, panel, admin, other := newAdminEnv(t)
	require.True(t, panel.Load(context.Background()))

	require.True(t, panel.DeleteUser(context.Background(), other.ID, true))

	users := panel.Users()
	require.Len(t, users, 1)
	assert.Equal(t, admin.ID, users[0].ID)
}

func TestDeleteSelfRefusedWithoutRequest(t *testing.T) {
	fake, panel, admin, _ := newAdminEnv(t)
	require.True(t, panel.Load(context.Background()))
	before := fake.RequestCount()

	assert.False(t, panel.DeleteUser(context.Background(), admin.ID, true))
	assert.Equal(t, before, fake.RequestCount())
	assert.Len(t, panel.Users(), 2)
}

func TestDeleteUserFailureKeepsRow(t *testing.T) {
	fake, panel, _, other := newAdminEnv(t)
	require.True(t, panel.Load(context.Background()))
	fake.FailNext(http.MethodDelete, "/admin/users/{id}", "boom")

	assert.False(t, panel.DeleteUser(context.Background(), other.ID, true))
	assert.Len(t, panel.Users(), 2)
	assert.Equal(t, "boom", panel.Banner())
}
