package stubserver_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/api"
	"github.com/taskdeck/taskdeck/internal/logging"
	"github.com/taskdeck/taskdeck/internal/service"
	"github.com/taskdeck/taskdeck/internal/stubserver"
	"github.com/taskdeck/taskdeck/internal/task"
)

type tokenHolder struct {
	token string
}

func (h *tokenHolder) Token() string { return h.token }

// newClient spins up a stub server and returns a client pointed at it.
func newClient(t *testing.T, store *stubserver.Store) (*api.Client, *tokenHolder) {
	t.Helper()

	srv := stubserver.New(store, logging.Discard())
	ts := httptest.NewServer(srv.Engine().Handler())
	t.Cleanup(ts.Close)

	holder := &tokenHolder{}
	return api.New(ts.URL+"/api", holder, api.WithLogger(logging.Discard())), holder
}

func login(t *testing.T, client *api.Client, holder *tokenHolder) service.Identity {
	t.Helper()
	id, err := client.Login(context.Background(), service.Credentials{
		Email:    stubserver.DefaultEmail,
		Password: stubserver.DefaultPassword,
	})
	require.NoError(t, err)
	holder.token = id.Token
	return id
}

func TestLogin(t *testing.T) {
	client, _ := newClient(t, stubserver.NewStore())

	id, err := client.Login(context.Background(), service.Credentials{
		Email:    stubserver.DefaultEmail,
		Password: stubserver.DefaultPassword,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id.Token)
	assert.NotEmpty(t, id.UserID)
	assert.Equal(t, stubserver.DefaultEmail, id.Email)
	assert.Equal(t, stubserver.DefaultName, id.Name)
}

func TestLoginBadPassword(t *testing.T) {
	client, _ := newClient(t, stubserver.NewStore())

	_, err := client.Login(context.Background(), service.Credentials{
		Email:    stubserver.DefaultEmail,
		Password: "wrong",
	})
	var authErr *service.AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestRegister(t *testing.T) {
	client, holder := newClient(t, stubserver.NewStore())

	err := client.Register(context.Background(), service.Registration{
		Email:    "new@example.com",
		Password: "secret",
		Name:     "New User",
	})
	require.NoError(t, err)

	id, err := client.Login(context.Background(), service.Credentials{
		Email:    "new@example.com",
		Password: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "New User", id.Name)
	holder.token = id.Token

	created, err := client.CreateTask(context.Background(), task.CreateRequest{Title: "first"})
	require.NoError(t, err)
	assert.Equal(t, "New User", created.UserName)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	client, _ := newClient(t, stubserver.NewStore())

	err := client.Register(context.Background(), service.Registration{
		Email:    stubserver.DefaultEmail,
		Password: "x",
	})
	var fetchErr *service.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 409, fetchErr.StatusCode)
	assert.Equal(t, "email already registered", fetchErr.Message)
}

func TestTasksRequireAuth(t *testing.T) {
	client, _ := newClient(t, stubserver.NewStore())

	_, err := client.ListTasks(context.Background(), 1, 10, task.FilterAll)
	var authErr *service.AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestStaleTokenRejected(t *testing.T) {
	store := stubserver.NewStore()
	client, holder := newClient(t, store)
	id := login(t, client, holder)

	store.Revoke(id.Token)

	_, err := client.ListTasks(context.Background(), 1, 10, task.FilterAll)
	var authErr *service.AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestCreateListUpdateDelete(t *testing.T) {
	client, holder := newClient(t, stubserver.NewStore())
	login(t, client, holder)
	ctx := context.Background()

	first, err := client.CreateTask(ctx, task.CreateRequest{Title: "first"})
	require.NoError(t, err)
	assert.Equal(t, task.StatusPending, first.Status)

	due := task.NewDate(2026, 3, 15)
	second, err := client.CreateTask(ctx, task.CreateRequest{
		Title:       "second",
		Description: "with details",
		DueDate:     &due,
	})
	require.NoError(t, err)

	// Newest first.
	page, err := client.ListTasks(ctx, 1, 10, task.FilterAll)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "second", page.Items[0].Title)
	assert.Equal(t, "first", page.Items[1].Title)
	assert.Equal(t, 2, page.TotalCount)
	assert.Equal(t, 1, page.TotalPages)
	require.NotNil(t, page.Items[0].DueDate)
	assert.Equal(t, due, *page.Items[0].DueDate)

	// Move the second task to in progress with a full-object update.
	updated, err := client.UpdateTask(ctx, second.ID, task.UpdateRequest{
		Title:       second.Title,
		Description: second.Description,
		DueDate:     second.DueDate,
		Status:      task.StatusInProgress,
	})
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, updated.Status)
	assert.Equal(t, "with details", updated.Description)

	// Filtered listing sees only the moved task.
	page, err = client.ListTasks(ctx, 1, 10, task.FilterBy(task.StatusInProgress))
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, second.ID, page.Items[0].ID)

	require.NoError(t, client.DeleteTask(ctx, first.ID))

	_, err = client.UpdateTask(ctx, first.ID, task.UpdateRequest{Title: "ghost"})
	var fetchErr *service.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 404, fetchErr.StatusCode)
	assert.Equal(t, "task not found", fetchErr.Message)
}

func TestPagination(t *testing.T) {
	client, holder := newClient(t, stubserver.NewStore())
	login(t, client, holder)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		_, err := client.CreateTask(ctx, task.CreateRequest{Title: "task"})
		require.NoError(t, err)
	}

	page, err := client.ListTasks(ctx, 3, 10, task.FilterAll)
	require.NoError(t, err)
	assert.Len(t, page.Items, 5)
	assert.Equal(t, 25, page.TotalCount)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 3, page.CurrentPage)

	// Past the end: empty items, requested page echoed.
	page, err = client.ListTasks(ctx, 4, 10, task.FilterAll)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 4, page.CurrentPage)
	assert.Equal(t, 25, page.TotalCount)
}

func TestCreateValidation(t *testing.T) {
	client, holder := newClient(t, stubserver.NewStore())
	login(t, client, holder)

	_, err := client.CreateTask(context.Background(), task.CreateRequest{Title: ""})
	var fetchErr *service.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 400, fetchErr.StatusCode)
}

func TestLoadSeed(t *testing.T) {
	store := stubserver.NewStore()

	seed := `{
		"accounts": [
			{"email": "seeded@example.com", "password": "pw", "name": "Seeded"}
		],
		"tasks": [
			{"title": "newest", "status": 1, "dueDate": "2026-04-01"},
			{"title": "oldest", "description": "done long ago", "status": 2}
		]
	}`
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0644))
	require.NoError(t, stubserver.LoadSeed(store, path))

	client, holder := newClient(t, store)

	id, err := client.Login(context.Background(), service.Credentials{
		Email:    "seeded@example.com",
		Password: "pw",
	})
	require.NoError(t, err)
	holder.token = id.Token

	page, err := client.ListTasks(context.Background(), 1, 10, task.FilterAll)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	// File order preserved: first task in the file is newest.
	assert.Equal(t, "newest", page.Items[0].Title)
	assert.Equal(t, task.StatusInProgress, page.Items[0].Status)
	require.NotNil(t, page.Items[0].DueDate)
	assert.Equal(t, "2026-04-01", page.Items[0].DueDate.String())
	assert.Equal(t, "oldest", page.Items[1].Title)
	assert.Equal(t, task.StatusCompleted, page.Items[1].Status)
}

func TestLoadSeedRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		seed string
	}{
		{"unknown status", `{"tasks": [{"title": "x", "status": 7}]}`},
		{"missing title", `{"tasks": [{"status": 0}]}`},
		{"account without password", `{"accounts": [{"email": "a@b.c"}]}`},
		{"unknown top-level key", `{"extra": true}`},
		{"not json", `{{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "seed.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.seed), 0644))
			err := stubserver.LoadSeed(stubserver.NewStore(), path)
			require.Error(t, err)
		})
	}
}

func TestLoadSeedMissingFile(t *testing.T) {
	err := stubserver.LoadSeed(stubserver.NewStore(), filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestSeedTaskAppliesStatus(t *testing.T) {
	st := stubserver.NewStore()

	seeded := st.SeedTask(task.CreateRequest{Title: "carry the status"}, task.StatusCompleted, "Seeder")
	assert.Equal(t, task.StatusCompleted, seeded.Status)
	assert.Equal(t, "carry the status", seeded.Title)
	assert.Equal(t, "Seeder", seeded.UserName)

	page := st.List(1, 10, task.FilterAll)
	require.Len(t, page.Items, 1)
	assert.Equal(t, seeded, page.Items[0])
}

func TestRunStopsOnContextCancel(t *testing.T) {
	srv := stubserver.New(stubserver.NewStore(), logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server still running after context cancellation")
	}
}
