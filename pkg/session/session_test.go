package session

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasklight/tasklight.go/internal/fakeapi"
	"github.com/tasklight/tasklight.go/pkg/api"
)

func newTestSession(t *testing.T) (*fakeapi.Server, *Session, *MemoryStore) {
	t.Helper()
	fake := fakeapi.New()
	ts := httptest.NewServer(fake.Handler())
	t.Cleanup(ts.Close)

	store := NewMemoryStore()
	client := api.NewClient(ts.URL, store)
	return fake, New(client, store), store
}

func TestSessionStartsUninitialized(t *testing.T) {
	_, sess, _ := newTestSession(t)
	assert.Equal(t, StateUninitialized, sess.State())
	assert.Nil(t, sess.CurrentUser())
	assert.False(t, sess.RequireUser())
}

func TestInitWithoutCredentialIsAnonymous(t *testing.T) {
	fake, sess, _ := newTestSession(t)

	sess.Init(context.Background())

	assert.Equal(t, StateAnonymous, sess.State())
	assert.Zero(t, fake.RequestCount(), "no credential means no validation request")
}

func TestInitWithValidCredentialAuthenticates(t *testing.T) {
	fake, sess, store := newTestSession(t)
	user := fake.SeedUser("alice@example.com", "hunter2", false)
	require.NoError(t, store.Save(fake.TokenFor(user.ID)))

	sess.Init(context.Background())

	assert.Equal(t, StateAuthenticated, sess.State())
	require.NotNil(t, sess.CurrentUser())
	assert.Equal(t, "alice@example.com", sess.CurrentUser().Email)
	assert.True(t, sess.RequireUser())
}

func TestInitWithStaleCredentialClearsIt(t *testing.T) {
	_, sess, store := newTestSession(t)
	require.NoError(t, store.Save("not-a-valid-token"))

	sess.Init(context.Background())

	assert.Equal(t, StateAnonymous, sess.State())
	_, ok := store.Load()
	assert.False(t, ok, "stale credential must be discarded")
}

func TestLoginPersistsCredential(t *testing.T) {
	fake, sess, store := newTestSession(t)
	fake.SeedUser("alice@example.com", "hunter2", false)
	sess.Init(context.Background())

	out := sess.Login(context.Background(), "alice@example.com", "hunter2")

	require.True(t, out.OK)
	assert.Equal(t, StateAuthenticated, sess.State())
	token, ok := store.Load()
	require.True(t, ok)
	assert.NotEmpty(t, token)
}

func TestLoginFailureLeavesStateUntouched(t *testing.T) {
	fake, sess, store := newTestSession(t)
	fake.SeedUser("alice@example.com", "hunter2", false)
	sess.Init(context.Background())

	out := sess.Login(context.Background(), "alice@example.com", "wrong")

	require.False(t, out.OK)
	assert.Equal(t, "Invalid credentials", out.Message)
	assert.Equal(t, StateAnonymous, sess.State())
	_, ok := store.Load()
	assert.False(t, ok)
}

func TestRegisterSignsIn(t *testing.T) {
	_, sess, store := newTestSession(t)
	sess.Init(context.Background())

	out := sess.Register(context.Background(), "bob@example.com", "secret")

	require.True(t, out.OK)
	assert.True(t, sess.RequireUser())
	assert.Equal(t, "bob@example.com", sess.CurrentUser().Email)
	_, ok := store.Load()
	assert.True(t, ok)
}

func TestLogoutClearsCredentialWithoutServerCall(t *testing.T) {
	fake, sess, store := newTestSession(t)
	user := fake.SeedUser("alice@example.com", "hunter2", false)
	require.NoError(t, store.Save(fake.TokenFor(user.ID)))
	sess.Init(context.Background())
	require.True(t, sess.RequireUser())
	before := fake.RequestCount()

	sess.Logout()

	assert.Equal(t, StateAnonymous, sess.State())
	assert.Nil(t, sess.CurrentUser())
	_, ok := store.Load()
	assert.False(t, ok)
	assert.Equal(t, before, fake.RequestCount())
}

func TestRequireAdmin(t *testing.T) {
	fake, sess, store := newTestSession(t)
	admin := fake.SeedUser("root@example.com", "hunter2", true)
	require.NoError(t, store.Save(fake.TokenFor(admin.ID)))
	sess.Init(context.Background())

	assert.True(t, sess.RequireAdmin())

	sess.Logout()
	assert.False(t, sess.RequireAdmin())
}

func TestCurrentUserReturnsCopy(t *testing.T) {
	fake, sess, store := newTestSession(t)
	user := fake.SeedUser("alice@example.com", "hunter2", false)
	require.NoError(t, store.Save(fake.TokenFor(user.ID)))
	sess.Init(context.Background())

	u := sess.CurrentUser()
	require.NotNil(t, u)
	u.Email = "mutated@example.com"
	assert.Equal(t, "alice@example.com", sess.CurrentUser().Email)
}
