package catalog_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/sagarc03/switchyard"
	"github.com/sagarc03/switchyard/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCatalogDispatcher(t *testing.T, repo catalog.Repo) *switchyard.Dispatcher {
	t.Helper()

	reg := switchyard.NewRegistry(switchyard.RegistryConfig{RejectDuplicates: true})
	require.NoError(t, catalog.NewHandlers(catalog.NewService(repo)).Register(reg))

	return switchyard.NewDispatcher(reg, switchyard.DispatcherConfig{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func call(t *testing.T, d *switchyard.Dispatcher, method, target, body string) switchyard.Outcome {
	t.Helper()
	req, err := switchyard.NewRequest(method, target)
	require.NoError(t, err)
	if body != "" {
		req.Body = switchyard.Body{ContentType: "application/json", Raw: []byte(body)}
	}
	return d.Dispatch(context.Background(), req)
}

func TestHandlers_ListUsers(t *testing.T) {
	repo := new(MockRepo)
	d := newCatalogDispatcher(t, repo)

	repo.On("ListUsers", mock.Anything, catalog.UserQuery{FirstName: "Jane", ByAgeDesc: true, Limit: 3, Offset: 1}).
		Return([]catalog.User{{ID: 1, FirstName: "Jane", FavoriteColor: "green"}}, nil).
		Once()

	out := call(t, d, "GET", "/users?firstName=Jane&order=age&limit=3&offset=1", "")
	require.Equal(t, switchyard.OutcomeResponse, out.Kind)
	assert.Equal(t, http.StatusOK, out.Response.Status)
	assert.JSONEq(t, `[{"id":1,"firstName":"Jane","favoriteColor":"green"}]`, string(out.Response.Body))
	repo.AssertExpectations(t)
}

func TestHandlers_ListUsers_BadLimit(t *testing.T) {
	d := newCatalogDispatcher(t, new(MockRepo))

	out := call(t, d, "GET", "/users?limit=ten", "")
	require.Equal(t, switchyard.OutcomeFailure, out.Kind)
	assert.ErrorIs(t, out.Err, catalog.ErrInvalidInput)
}

func TestHandlers_CreateUsers(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		setup  func(*MockRepo)
		status int
	}{
		{
			name: "single",
			body: `{"firstName":"Jane"}`,
			setup: func(r *MockRepo) {
				r.On("CreateUser", mock.Anything, catalog.User{FirstName: "Jane", FavoriteColor: "green"}).
					Return(catalog.User{ID: 1, FirstName: "Jane", FavoriteColor: "green"}, nil)
			},
			status: http.StatusCreated,
		},
		{
			name: "bulk",
			body: ` [{"firstName":"Jack","age":20,"favoriteColor":"red"},{"firstName":"Emma","age":30}]`,
			setup: func(r *MockRepo) {
				r.On("CreateUsers", mock.Anything, mock.MatchedBy(func(us []catalog.User) bool {
					return len(us) == 2 && us[1].FavoriteColor == "green"
				})).Return([]catalog.User{{ID: 1}, {ID: 2}}, nil)
			},
			status: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepo)
			tt.setup(repo)
			d := newCatalogDispatcher(t, repo)

			out := call(t, d, "POST", "/users", tt.body)
			require.Equal(t, switchyard.OutcomeResponse, out.Kind)
			assert.Equal(t, tt.status, out.Response.Status)
			repo.AssertExpectations(t)
		})
	}
}

func TestHandlers_CreateUser_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ""},
		{name: "malformed", body: `{"firstName":`},
		{name: "missing first name", body: `{"lastName":"Doe"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepo)
			d := newCatalogDispatcher(t, repo)

			out := call(t, d, "POST", "/users", tt.body)
			require.Equal(t, switchyard.OutcomeFailure, out.Kind)
			assert.ErrorIs(t, out.Err, catalog.ErrInvalidInput)
			repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
		})
	}
}

func TestHandlers_UserByID(t *testing.T) {
	repo := new(MockRepo)
	d := newCatalogDispatcher(t, repo)

	repo.On("GetUser", mock.Anything, int64(7)).Return(catalog.User{ID: 7, FirstName: "Amy"}, nil).Once()
	repo.On("GetUser", mock.Anything, int64(8)).Return(catalog.User{}, catalog.ErrNotFound).Once()
	repo.On("UpdateUser", mock.Anything, catalog.User{ID: 7, FirstName: "Amy", LastName: "Doe", FavoriteColor: "green"}).
		Return(catalog.User{ID: 7, FirstName: "Amy", LastName: "Doe", FavoriteColor: "green"}, nil).Once()
	repo.On("DeleteUser", mock.Anything, int64(7)).Return(nil).Once()

	out := call(t, d, "GET", "/users/7", "")
	require.Equal(t, switchyard.OutcomeResponse, out.Kind)
	var u catalog.User
	require.NoError(t, json.Unmarshal(out.Response.Body, &u))
	assert.Equal(t, "Amy", u.FirstName)

	out = call(t, d, "GET", "/users/8", "")
	require.Equal(t, switchyard.OutcomeFailure, out.Kind)
	assert.ErrorIs(t, out.Err, catalog.ErrNotFound)

	out = call(t, d, "PUT", "/users/7", `{"firstName":"Amy","lastName":"Doe"}`)
	require.Equal(t, switchyard.OutcomeResponse, out.Kind)
	assert.Equal(t, http.StatusOK, out.Response.Status)

	out = call(t, d, "DELETE", "/users/7", "")
	require.Equal(t, switchyard.OutcomeResponse, out.Kind)
	assert.Equal(t, http.StatusNoContent, out.Response.Status)

	out = call(t, d, "GET", "/users/abc", "")
	assert.Equal(t, switchyard.OutcomeNotFound, out.Kind)

	repo.AssertExpectations(t)
}

func TestHandlers_Books(t *testing.T) {
	repo := new(MockRepo)
	d := newCatalogDispatcher(t, repo)

	repo.On("CreateBook", mock.Anything, mock.MatchedBy(func(b catalog.Book) bool {
		return b.Title == "Software Design" && b.Code == catalog.HashCode("SD-1")
	})).Return(catalog.Book{ID: 1, Title: "Software Design", Code: catalog.HashCode("SD-1")}, nil).Once()
	repo.On("GetBook", mock.Anything, int64(1)).Return(catalog.Book{ID: 1, Title: "Software Design"}, nil).Once()
	repo.On("ListBooks", mock.Anything).Return([]catalog.Book{{ID: 1, Title: "Software Design"}}, nil).Once()

	out := call(t, d, "POST", "/books", `{"title":"Software Design","code":"SD-1"}`)
	require.Equal(t, switchyard.OutcomeResponse, out.Kind)
	assert.Equal(t, http.StatusCreated, out.Response.Status)

	var b catalog.Book
	require.NoError(t, json.Unmarshal(out.Response.Body, &b))
	assert.Equal(t, "SOFTWARE DESIGN", b.Title)

	out = call(t, d, "GET", "/books/1", "")
	require.Equal(t, switchyard.OutcomeResponse, out.Kind)
	assert.Contains(t, string(out.Response.Body), `"SOFTWARE DESIGN"`)

	out = call(t, d, "GET", "/books", "")
	require.Equal(t, switchyard.OutcomeResponse, out.Kind)
	assert.JSONEq(t, `[{"id":1,"title":"SOFTWARE DESIGN","price":0}]`, string(out.Response.Body))

	out = call(t, d, "PATCH", "/books", "")
	require.Equal(t, switchyard.OutcomeMethodNotAllowed, out.Kind)
	assert.Equal(t, "GET, POST", out.Response.Header.Get("Allow"))

	repo.AssertExpectations(t)
}
