// Package session tracks which user, if any, is authenticated for the
// lifetime of the process, and owns credential persistence.
//
// The session is an explicit shared state container with a defined lifecycle:
// it starts uninitialized, Init moves it through loading into authenticated
// or anonymous, and only Login, Register and Logout change it afterwards.
// Pages read it to gate access; gating must not run before Init settles.
package session

import (
	"context"
	"sync"

	"github.com/tasklight/tasklight.go/pkg/api"
	"github.com/tasklight/tasklight.go/pkg/models"
)

// State is the session's position in its lifecycle.
type State int

const (
	// StateUninitialized means Init has not been called yet.
	StateUninitialized State = iota
	// StateLoading means the stored credential is being validated.
	StateLoading
	// StateAuthenticated means a user is signed in.
	StateAuthenticated
	// StateAnonymous means no user is signed in.
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Outcome is the caller-facing result of a login or registration attempt:
// success, or a user-facing message explaining the failure.
type Outcome struct {
	OK      bool
	Message string
}

// Session holds the current user and loading flag, guarded by a mutex.
// Safe for concurrent use.
type Session struct {
	mu    sync.RWMutex
	state State
	user  *models.User

	api   *api.Client
	store CredentialStore
}

// New creates an uninitialized session. The store must be the same one the
// api client reads credentials from, so persisted tokens are attached to
// subsequent requests.
func New(client *api.Client, store CredentialStore) *Session {
	return &Session{
		state: StateUninitialized,
		api:   client,
		store: store,
	}
}

// Init resolves the stored credential, if any, into a session state. With no
// stored credential the session is immediately anonymous. With one, the
// current-user endpoint decides: success authenticates the session, failure
// discards the stale credential and leaves the session anonymous.
func (s *Session) Init(ctx context.Context) {
	s.mu.Lock()
	s.state = StateLoading
	s.mu.Unlock()

	if _, ok := s.store.Load(); !ok {
		s.setAnonymous()
		return
	}

	res := s.api.Me(ctx)
	if !res.Ok() {
		_ = s.store.Clear()
		s.setAnonymous()
		return
	}

	user := res.Value()
	s.setAuthenticated(&user)
}

// Login authenticates with the given credentials. On success the returned
// token is persisted and the session becomes authenticated; on failure the
// session state is unchanged and the server's message is returned.
func (s *Session) Login(ctx context.Context, email, password string) Outcome {
	return s.authenticate(s.api.Login(ctx, email, password))
}

// Register creates an account and signs it in, following the same rules as
// Login.
func (s *Session) Register(ctx context.Context, email, password string) Outcome {
	return s.authenticate(s.api.Register(ctx, email, password))
}

func (s *Session) authenticate(res api.Result[api.AuthPayload]) Outcome {
	if !res.Ok() {
		return Outcome{Message: res.Err()}
	}
	payload := res.Value()
	if err := s.store.Save(payload.Token); err != nil {
		return Outcome{Message: "Failed to save credentials"}
	}
	s.setAuthenticated(&payload.User)
	return Outcome{OK: true}
}

// Logout discards the persisted credential and makes the session anonymous.
// It is synchronous; no server call is made.
func (s *Session) Logout() {
	_ = s.store.Clear()
	s.setAnonymous()
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// CurrentUser returns a copy of the authenticated user, or nil when the
// session is not authenticated.
func (s *Session) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// RequireUser reports whether a user is signed in. It must only be consulted
// after Init has settled, so a not-yet-resolved session is never treated as
// anonymous.
func (s *Session) RequireUser() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateAuthenticated && s.user != nil
}

// RequireAdmin reports whether the signed-in user is an admin.
func (s *Session) RequireAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateAuthenticated && s.user != nil && s.user.IsAdmin
}

func (s *Session) setAuthenticated(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateAuthenticated
	s.user = u
}

func (s *Session) setAnonymous() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateAnonymous
	s.user = nil
}
