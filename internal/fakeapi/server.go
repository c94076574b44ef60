// Package fakeapi provides an in-process fake of the task-management backend
// for testing the client against real HTTP round trips.
//
// We don't currently have an executable binary for this package; it is used
// as a library, typically wrapped in an httptest server. The fake mirrors the
// backend's observable contract: JSON envelopes, bearer-token auth, per-user
// ownership of todos and groups, newest-first todo listing, and the cascade
// that ungroups todos when their group is deleted. Failure injection lets a
// test force the next call on a route to fail with a chosen message.
package fakeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/tasklight/tasklight.go/pkg/models"
)

type account struct {
	user         models.User
	passwordHash []byte
}

// Server is the fake backend. Create one with New, expose it over HTTP with
// Handler, and drive state through the seed and failure-injection helpers.
type Server struct {
	mu       sync.Mutex
	accounts map[uint]*account
	todos    map[uint]*models.Todo
	groups   map[uint]*models.Group
	nextID   uint
	secret   []byte
	failNext map[string]string
	requests int

	router *mux.Router
}

// New creates an empty fake backend.
func New() *Server {
	s := &Server{
		accounts: make(map[uint]*account),
		todos:    make(map[uint]*models.Todo),
		groups:   make(map[uint]*models.Group),
		secret:   []byte("fakeapi-test-secret"),
		failNext: make(map[string]string),
	}
	s.router = s.buildRouter()
	return s
}

// Handler returns the HTTP handler serving the fake API.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) buildRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.countAndInject)

	r.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.Handle("/me", s.authed(s.handleMe)).Methods(http.MethodGet)

	r.Handle("/todos", s.authed(s.handleListTodos)).Methods(http.MethodGet)
	r.Handle("/todos", s.authed(s.handleCreateTodo)).Methods(http.MethodPost)
	r.Handle("/todos/{id}", s.authed(s.handleGetTodo)).Methods(http.MethodGet)
	r.Handle("/todos/{id}", s.authed(s.handleUpdateTodo)).Methods(http.MethodPut)
	r.Handle("/todos/{id}", s.authed(s.handleDeleteTodo)).Methods(http.MethodDelete)

	r.Handle("/groups", s.authed(s.handleListGroups)).Methods(http.MethodGet)
	r.Handle("/groups", s.authed(s.handleCreateGroup)).Methods(http.MethodPost)
	r.Handle("/groups/{id}", s.authed(s.handleGetGroup)).Methods(http.MethodGet)
	r.Handle("/groups/{id}", s.authed(s.handleUpdateGroup)).Methods(http.MethodPut)
	r.Handle("/groups/{id}", s.authed(s.handleDeleteGroup)).Methods(http.MethodDelete)

	r.Handle("/admin/users", s.admin(s.handleListUsers)).Methods(http.MethodGet)
	r.Handle("/admin/users/{id}", s.admin(s.handleGetUser)).Methods(http.MethodGet)
	r.Handle("/admin/users/{id}", s.admin(s.handleDeleteUser)).Methods(http.MethodDelete)
	r.Handle("/admin/users/{id}", s.admin(s.handleSetAdmin)).Methods(http.MethodPatch)

	return r
}

// FailNext makes the next request matching the method and mux path template
// (for example "PUT /todos/{id}") fail with a 500 and the given message.
func (s *Server) FailNext(method, pathTemplate, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext[method+" "+pathTemplate] = message
}

// RequestCount returns how many requests the server has received.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

func (s *Server) countAndInject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := ""
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				key = r.Method + " " + tpl
			}
		}
		s.mu.Lock()
		s.requests++
		msg, fail := s.failNext[key]
		if fail {
			delete(s.failNext, key)
		}
		s.mu.Unlock()
		if fail {
			writeError(w, http.StatusInternalServerError, msg)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SeedUser registers an account directly, bypassing the HTTP surface.
func (s *Server) SeedUser(email, password string, isAdmin bool) models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("fakeapi: hashing seed password: %v", err))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	s.nextID++
	user := models.User{
		ID:        s.nextID,
		Email:     email,
		IsAdmin:   isAdmin,
		CreatedAt: &now,
	}
	s.accounts[user.ID] = &account{user: user, passwordHash: hash}
	return user
}

// SeedTodo inserts a todo for a user, returning the stored object.
func (s *Server) SeedTodo(userID uint, title, description string, groupID *uint) models.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	now := time.Now().UTC()
	todo := models.Todo{
		ID:          s.nextID,
		Title:       title,
		Description: description,
		UserID:      userID,
		GroupID:     groupID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.todos[todo.ID] = &todo
	return todo
}

// SeedGroup inserts a group for a user, returning the stored object.
func (s *Server) SeedGroup(userID uint, name, color string) models.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	now := time.Now().UTC()
	if color == "" {
		color = models.DefaultGroupColor
	}
	group := models.Group{
		ID:        s.nextID,
		Name:      name,
		Color:     color,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.groups[group.ID] = &group
	return group
}

// TokenFor mints a valid bearer token for the given user id.
func (s *Server) TokenFor(userID uint) string {
	return s.mintToken(userID)
}

// TodoByID returns the stored todo, for assertions on server-side state.
func (s *Server) TodoByID(id uint) (models.Todo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.todos[id]
	if !ok {
		return models.Todo{}, false
	}
	return *t, true
}

func (s *Server) mintToken(userID uint) string {
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(fmt.Sprintf("fakeapi: signing token: %v", err))
	}
	return token
}

func (s *Server) userFromRequest(r *http.Request) (*account, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix {
		return nil, false
	}
	parsed, err := jwt.ParseWithClaims(auth[len(prefix):], &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, false
	}
	claims := parsed.Claims.(*jwt.RegisteredClaims)
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[uint(id)]
	return acc, ok
}

type authedHandler func(w http.ResponseWriter, r *http.Request, acc *account)

func (s *Server) authed(h authedHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acc, ok := s.userFromRequest(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		h(w, r, acc)
	})
}

func (s *Server) admin(h authedHandler) http.Handler {
	return s.authed(func(w http.ResponseWriter, r *http.Request, acc *account) {
		if !acc.user.IsAdmin {
			writeError(w, http.StatusForbidden, "Admin access required")
			return
		}
		h(w, r, acc)
	})
}

// Auth handlers

type credentialsInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in credentialsInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Email == "" || in.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	s.mu.Lock()
	for _, acc := range s.accounts {
		if acc.user.Email == in.Email {
			s.mu.Unlock()
			writeError(w, http.StatusBadRequest, "Email already registered")
			return
		}
	}
	s.mu.Unlock()

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.MinCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	s.mu.Lock()
	s.nextID++
	now := time.Now().UTC()
	user := models.User{ID: s.nextID, Email: in.Email, CreatedAt: &now}
	s.accounts[user.ID] = &account{user: user, passwordHash: hash}
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{
		"token":   s.mintToken(user.ID),
		"user":    user,
		"message": "User registered successfully",
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in credentialsInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	s.mu.Lock()
	var found *account
	for _, acc := range s.accounts {
		if acc.user.Email == in.Email {
			found = acc
			break
		}
	}
	s.mu.Unlock()
	if found == nil || bcrypt.CompareHashAndPassword(found.passwordHash, []byte(in.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":   s.mintToken(found.user.ID),
		"user":    found.user,
		"message": "Login successful",
	})
}

func (s *Server) handleMe(w http.ResponseWriter, _ *http.Request, acc *account) {
	writeJSON(w, http.StatusOK, map[string]any{"user": acc.user})
}

// Todo handlers

type todoCreateInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	GroupID     string `json:"group_id"`
}

type todoUpdateInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
	GroupID     *string `json:"group_id"`
}

func (s *Server) handleListTodos(w http.ResponseWriter, _ *http.Request, acc *account) {
	s.mu.Lock()
	todos := make([]models.Todo, 0)
	for _, t := range s.todos {
		if t.UserID == acc.user.ID {
			todos = append(todos, *t)
		}
	}
	s.mu.Unlock()
	sort.Slice(todos, func(i, j int) bool {
		if !todos[i].CreatedAt.Equal(todos[j].CreatedAt) {
			return todos[i].CreatedAt.After(todos[j].CreatedAt)
		}
		return todos[i].ID > todos[j].ID
	})
	writeJSON(w, http.StatusOK, map[string]any{"todos": todos})
}

func (s *Server) handleGetTodo(w http.ResponseWriter, r *http.Request, acc *account) {
	todo, ok := s.ownedTodo(r, acc)
	if !ok {
		writeError(w, http.StatusNotFound, "Todo not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"todo": todo})
}

func (s *Server) handleCreateTodo(w http.ResponseWriter, r *http.Request, acc *account) {
	var in todoCreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Title == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}
	var groupID *uint
	if in.GroupID != "" {
		id, ok := s.ownedGroupID(in.GroupID, acc.user.ID)
		if !ok {
			writeError(w, http.StatusNotFound, "Group not found")
			return
		}
		groupID = &id
	}
	s.mu.Lock()
	s.nextID++
	now := time.Now().UTC()
	todo := models.Todo{
		ID:          s.nextID,
		Title:       in.Title,
		Description: in.Description,
		UserID:      acc.user.ID,
		GroupID:     groupID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.todos[todo.ID] = &todo
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{"todo": todo})
}

func (s *Server) handleUpdateTodo(w http.ResponseWriter, r *http.Request, acc *account) {
	todo, ok := s.ownedTodo(r, acc)
	if !ok {
		writeError(w, http.StatusNotFound, "Todo not found")
		return
	}
	var in todoUpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	var groupID *uint
	groupSet := false
	if in.GroupID != nil {
		groupSet = true
		if *in.GroupID != "" {
			id, ok := s.ownedGroupID(*in.GroupID, acc.user.ID)
			if !ok {
				writeError(w, http.StatusNotFound, "Group not found")
				return
			}
			groupID = &id
		}
	}

	s.mu.Lock()
	stored := s.todos[todo.ID]
	if in.Title != nil && *in.Title != "" {
		stored.Title = *in.Title
	}
	if in.Description != nil {
		stored.Description = *in.Description
	}
	if in.Completed != nil {
		stored.Completed = *in.Completed
	}
	if groupSet {
		stored.GroupID = groupID
	}
	stored.UpdatedAt = time.Now().UTC()
	updated := *stored
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"todo": updated})
}

func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request, acc *account) {
	todo, ok := s.ownedTodo(r, acc)
	if !ok {
		writeError(w, http.StatusNotFound, "Todo not found")
		return
	}
	s.mu.Lock()
	delete(s.todos, todo.ID)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"message": "Todo deleted successfully"})
}

// Group handlers

type groupCreateInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

type groupUpdateInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

func (s *Server) handleListGroups(w http.ResponseWriter, _ *http.Request, acc *account) {
	s.mu.Lock()
	groups := make([]models.Group, 0)
	for _, g := range s.groups {
		if g.UserID == acc.user.ID {
			groups = append(groups, *g)
		}
	}
	s.mu.Unlock()
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	writeJSON(w, http.StatusOK, map[string]any{"groups": groups})
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request, acc *account) {
	group, ok := s.ownedGroup(r, acc)
	if !ok {
		writeError(w, http.StatusNotFound, "Group not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"group": group})
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request, acc *account) {
	var in groupCreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if in.Color == "" {
		in.Color = models.DefaultGroupColor
	}
	s.mu.Lock()
	s.nextID++
	now := time.Now().UTC()
	group := models.Group{
		ID:          s.nextID,
		Name:        in.Name,
		Description: in.Description,
		Color:       in.Color,
		UserID:      acc.user.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.groups[group.ID] = &group
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{"group": group})
}

func (s *Server) handleUpdateGroup(w http.ResponseWriter, r *http.Request, acc *account) {
	group, ok := s.ownedGroup(r, acc)
	if !ok {
		writeError(w, http.StatusNotFound, "Group not found")
		return
	}
	var in groupUpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	s.mu.Lock()
	stored := s.groups[group.ID]
	if in.Name != nil && *in.Name != "" {
		stored.Name = *in.Name
	}
	if in.Description != nil {
		stored.Description = *in.Description
	}
	if in.Color != nil && *in.Color != "" {
		stored.Color = *in.Color
	}
	stored.UpdatedAt = time.Now().UTC()
	updated := *stored
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"group": updated})
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request, acc *account) {
	group, ok := s.ownedGroup(r, acc)
	if !ok {
		writeError(w, http.StatusNotFound, "Group not found")
		return
	}
	s.mu.Lock()
	delete(s.groups, group.ID)
	// Deleting a group never deletes its todos; they become ungrouped.
	for _, t := range s.todos {
		if t.GroupID != nil && *t.GroupID == group.ID {
			t.GroupID = nil
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"message": "Group deleted successfully"})
}

// Admin handlers

func (s *Server) handleListUsers(w http.ResponseWriter, _ *http.Request, _ *account) {
	s.mu.Lock()
	users := make([]models.User, 0, len(s.accounts))
	for _, acc := range s.accounts {
		users = append(users, acc.user)
	}
	s.mu.Unlock()
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request, _ *account) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	s.mu.Lock()
	target, found := s.accounts[id]
	var user models.User
	if found {
		user = target.user
	}
	s.mu.Unlock()
	if !found {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request, acc *account) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	if id == acc.user.ID {
		writeError(w, http.StatusBadRequest, "Cannot delete yourself")
		return
	}
	s.mu.Lock()
	_, found := s.accounts[id]
	if found {
		delete(s.accounts, id)
		for tid, t := range s.todos {
			if t.UserID == id {
				delete(s.todos, tid)
			}
		}
		for gid, g := range s.groups {
			if g.UserID == id {
				delete(s.groups, gid)
			}
		}
	}
	s.mu.Unlock()
	if !found {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "User deleted successfully"})
}

func (s *Server) handleSetAdmin(w http.ResponseWriter, r *http.Request, acc *account) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	if id == acc.user.ID {
		writeError(w, http.StatusBadRequest, "Cannot change your own admin status")
		return
	}
	var in struct {
		IsAdmin bool `json:"is_admin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	s.mu.Lock()
	target, found := s.accounts[id]
	var updated models.User
	if found {
		target.user.IsAdmin = in.IsAdmin
		updated = target.user
	}
	s.mu.Unlock()
	if !found {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": updated})
}

// Lookup helpers

func pathID(r *http.Request) (uint, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func (s *Server) ownedTodo(r *http.Request, acc *account) (models.Todo, bool) {
	id, ok := pathID(r)
	if !ok {
		return models.Todo{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, found := s.todos[id]
	if !found || t.UserID != acc.user.ID {
		return models.Todo{}, false
	}
	return *t, true
}

func (s *Server) ownedGroup(r *http.Request, acc *account) (models.Group, bool) {
	id, ok := pathID(r)
	if !ok {
		return models.Group{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g, found := s.groups[id]
	if !found || g.UserID != acc.user.ID {
		return models.Group{}, false
	}
	return *g, true
}

func (s *Server) ownedGroupID(raw string, userID uint) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g, found := s.groups[uint(id)]
	if !found || g.UserID != userID {
		return 0, false
	}
	return uint(id), true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
