package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasklight/tasklight.go/pkg/models"
)

type staticCreds struct {
	token string
}

func (s staticCreds) Load() (string, bool) {
	return s.token, s.token != ""
}

// capture records the last request the test server received.
type capture struct {
	method string
	path   string
	header http.Header
	body   []byte
}

func newCaptureServer(t *testing.T, status int, response string) (*httptest.Server, *capture) {
	t.Helper()
	cap := &capture{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cap.method = r.Method
		cap.path = r.URL.Path
		cap.header = r.Header.Clone()
		cap.body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, response)
	}))
	t.Cleanup(ts.Close)
	return ts, cap
}

func TestRequestCarriesBearerAndRequestID(t *testing.T) {
	ts, cap := newCaptureServer(t, http.StatusOK, `{"todos":[]}`)
	client := NewClient(ts.URL, staticCreds{token: "tok-123"})

	res := client.ListTodos(context.Background())
	require.True(t, res.Ok())

	assert.Equal(t, "Bearer tok-123", cap.header.Get("Authorization"))
	assert.Equal(t, "application/json", cap.header.Get("Content-Type"))
	assert.NotEmpty(t, cap.header.Get("X-Request-ID"))
}

func TestRequestWithoutCredentialHasNoAuthHeader(t *testing.T) {
	ts, cap := newCaptureServer(t, http.StatusOK, `{"todos":[]}`)
	client := NewClient(ts.URL, staticCreds{})

	require.True(t, client.ListTodos(context.Background()).Ok())
	assert.Empty(t, cap.header.Get("Authorization"))
}

func TestServerErrorMessageSurfacesVerbatim(t *testing.T) {
	ts, _ := newCaptureServer(t, http.StatusBadRequest, `{"error":"Title is required"}`)
	client := NewClient(ts.URL, nil)

	res := client.CreateTodo(context.Background(), TodoCreate{Title: ""})
	require.False(t, res.Ok())
	assert.Equal(t, "Title is required", res.Err())
}

func TestServerErrorWithoutMessageFallsBack(t *testing.T) {
	ts, _ := newCaptureServer(t, http.StatusInternalServerError, `oops`)
	client := NewClient(ts.URL, nil)

	res := client.ListTodos(context.Background())
	require.False(t, res.Ok())
	assert.Equal(t, GenericServerError, res.Err())
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	ts, _ := newCaptureServer(t, http.StatusOK, `{}`)
	ts.Close()
	client := NewClient(ts.URL, nil)

	res := client.ListTodos(context.Background())
	require.False(t, res.Ok())
	assert.Equal(t, NetworkError, res.Err())
}

func TestMalformedSuccessBodyIsNetworkError(t *testing.T) {
	ts, _ := newCaptureServer(t, http.StatusOK, `{"todos":`)
	client := NewClient(ts.URL, nil)

	res := client.ListTodos(context.Background())
	require.False(t, res.Ok())
	assert.Equal(t, NetworkError, res.Err())
}

func TestUpdateTodoGroupFieldTriState(t *testing.T) {
	tests := []struct {
		name      string
		group     models.GroupSelection
		wantField bool
		wantValue string
	}{
		{name: "unchanged omits field", group: models.GroupUnchanged(), wantField: false},
		{name: "none sends empty", group: models.GroupNone(), wantField: true, wantValue: ""},
		{name: "set sends id string", group: models.GroupID(5), wantField: true, wantValue: "5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, cap := newCaptureServer(t, http.StatusOK, `{"todo":{"id":1}}`)
			client := NewClient(ts.URL, nil)

			title := "groceries"
			res := client.UpdateTodo(context.Background(), 1, TodoUpdate{Title: &title, Group: tt.group})
			require.True(t, res.Ok())

			var body map[string]any
			require.NoError(t, json.Unmarshal(cap.body, &body))
			assert.Equal(t, "groceries", body["title"])

			val, ok := body["group_id"]
			assert.Equal(t, tt.wantField, ok)
			if tt.wantField {
				assert.Equal(t, tt.wantValue, val)
			}
		})
	}
}

func TestUpdateTodoOmitsNilFields(t *testing.T) {
	ts, cap := newCaptureServer(t, http.StatusOK, `{"todo":{"id":1}}`)
	client := NewClient(ts.URL, nil)

	completed := true
	require.True(t, client.UpdateTodo(context.Background(), 1, TodoUpdate{Completed: &completed}).Ok())

	var body map[string]any
	require.NoError(t, json.Unmarshal(cap.body, &body))
	assert.Equal(t, map[string]any{"completed": true}, body)
	assert.Equal(t, http.MethodPut, cap.method)
	assert.Equal(t, "/todos/1", cap.path)
}

func TestCreateTodoGroupAsString(t *testing.T) {
	ts, cap := newCaptureServer(t, http.StatusCreated, `{"todo":{"id":9,"title":"x"}}`)
	client := NewClient(ts.URL, nil)

	gid := uint(3)
	res := client.CreateTodo(context.Background(), TodoCreate{Title: "x", GroupID: &gid})
	require.True(t, res.Ok())
	assert.Equal(t, uint(9), res.Value().ID)

	var body map[string]any
	require.NoError(t, json.Unmarshal(cap.body, &body))
	assert.Equal(t, "3", body["group_id"])
}

func TestDeleteTodoReturnsMessage(t *testing.T) {
	ts, cap := newCaptureServer(t, http.StatusOK, `{"message":"Todo deleted successfully"}`)
	client := NewClient(ts.URL, nil)

	res := client.DeleteTodo(context.Background(), 4)
	require.True(t, res.Ok())
	assert.Equal(t, "Todo deleted successfully", res.Value())
	assert.Equal(t, http.MethodDelete, cap.method)
	assert.Equal(t, "/todos/4", cap.path)
}

func TestLoginDecodesAuthPayload(t *testing.T) {
	ts, cap := newCaptureServer(t, http.StatusOK,
		`{"token":"tok","user":{"id":2,"email":"a@b.c","is_admin":true}}`)
	client := NewClient(ts.URL, nil)

	res := client.Login(context.Background(), "a@b.c", "secret")
	require.True(t, res.Ok())
	assert.Equal(t, "tok", res.Value().Token)
	assert.Equal(t, uint(2), res.Value().User.ID)
	assert.True(t, res.Value().User.IsAdmin)
	assert.Equal(t, "/auth/login", cap.path)

	var body map[string]any
	require.NoError(t, json.Unmarshal(cap.body, &body))
	assert.Equal(t, "a@b.c", body["email"])
	assert.Equal(t, "secret", body["password"])
}

func TestSetUserAdminPatchesFlag(t *testing.T) {
	ts, cap := newCaptureServer(t, http.StatusOK, `{"user":{"id":7,"is_admin":true}}`)
	client := NewClient(ts.URL, nil)

	res := client.SetUserAdmin(context.Background(), 7, true)
	require.True(t, res.Ok())
	assert.True(t, res.Value().IsAdmin)
	assert.Equal(t, http.MethodPatch, cap.method)
	assert.Equal(t, "/admin/users/7", cap.path)
	assert.JSONEq(t, `{"is_admin":true}`, string(cap.body))
}
