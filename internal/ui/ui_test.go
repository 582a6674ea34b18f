package ui

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/flows"
	"github.com/taskdeck/taskdeck/internal/logging"
	"github.com/taskdeck/taskdeck/internal/service"
	"github.com/taskdeck/taskdeck/internal/session"
	"github.com/taskdeck/taskdeck/internal/store"
	"github.com/taskdeck/taskdeck/internal/task"
	"github.com/taskdeck/taskdeck/internal/testutil"
	"github.com/taskdeck/taskdeck/internal/views"
)

func newTestModel(t *testing.T, authenticated bool) (*Model, *testutil.FakeService) {
	t.Helper()

	fake := testutil.NewFakeService()
	logger := logging.Discard()
	col := store.NewCollection(fake, logger)
	sess := session.NewStore()
	if authenticated {
		sess.Set(service.Identity{Token: "tok", UserID: "u1", Email: "user@example.com", Name: "User"})
	}
	runner := flows.NewRunner(fake, col, sess, logger)

	cfg := &config.Config{}
	cfg.APIBaseURL = "http://test"
	cfg.PageSize = 10
	cfg.BoardPageSize = 200

	m := NewModel(context.Background(), Deps{
		Config:     cfg,
		Service:    fake,
		Collection: col,
		Session:    sess,
		Runner:     runner,
		Logger:     logger,
	})
	return m, fake
}

// seedTasks loads n tasks into the fake, cycling through the three
// statuses in order: task 1 pending, task 2 in progress, task 3 done...
func seedTasks(fake *testutil.FakeService, n int) {
	for i := 1; i <= n; i++ {
		fake.Seed(task.Task{
			Title:  fmt.Sprintf("task %d", i),
			Status: task.Status((i - 1) % 3),
		})
	}
}

// press sends one key and drives any resulting command to completion.
func press(t *testing.T, m *Model, k string) {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		msg = tea.KeyMsg{Type: tea.KeyBackspace}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	_, cmd := m.Update(msg)
	drain(t, m, cmd)
}

func typeText(t *testing.T, m *Model, text string) {
	t.Helper()
	for _, r := range text {
		press(t, m, string(r))
	}
}

// drain executes returned commands until the chain settles, feeding
// each resulting message back into the model the way the runtime would.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			return
		}
		_, cmd = m.Update(msg)
	}
}

func load(t *testing.T, m *Model) {
	t.Helper()
	drain(t, m, m.Init())
}

func TestUnauthenticatedStartsAtLogin(t *testing.T) {
	m, fake := newTestModel(t, false)
	require.NotNil(t, m.login)
	assert.Nil(t, m.Init())

	typeText(t, m, "x@y.z")
	press(t, m, "tab")
	typeText(t, m, "pw")
	press(t, m, "enter")

	assert.Nil(t, m.login, "login overlay should close on success")
	assert.True(t, m.deps.Session.Authenticated())
	assert.Equal(t, 1, fake.Calls["Login"])
	assert.Equal(t, 1, fake.Calls["ListTasks"], "a load follows the login")
}

func TestAuthenticatedStartsLoaded(t *testing.T) {
	m, fake := newTestModel(t, true)
	seedTasks(fake, 3)
	require.Nil(t, m.login)

	load(t, m)

	snap := m.deps.Collection.Snapshot()
	assert.Len(t, snap.Page.Items, 3)
	assert.Equal(t, 1, fake.Calls["ListTasks"])
}

func TestFilterKeysReload(t *testing.T) {
	m, fake := newTestModel(t, true)
	seedTasks(fake, 5)
	load(t, m)

	press(t, m, "2")

	snap := m.deps.Collection.Snapshot()
	assert.Equal(t, task.FilterBy(task.StatusInProgress), snap.Filter)
	assert.Equal(t, 1, snap.Cursor, "filter change resets the cursor")
	assert.Equal(t, 2, fake.Calls["ListTasks"])

	press(t, m, "0")
	assert.True(t, m.deps.Collection.Snapshot().Filter.All())
}

func TestSearchNarrowsLocally(t *testing.T) {
	m, fake := newTestModel(t, true)
	seedTasks(fake, 5)
	load(t, m)
	listCalls := fake.Calls["ListTasks"]

	press(t, m, "/")
	require.True(t, m.searching)
	typeText(t, m, "task 3")

	rows := m.listRows()
	require.Len(t, rows, 1)
	assert.Equal(t, "task 3", rows[0].Title)
	assert.Equal(t, listCalls, fake.Calls["ListTasks"], "typing a query is local")

	press(t, m, "esc")
	assert.False(t, m.searching)
	assert.Empty(t, m.deps.Collection.Snapshot().Search)
}

func TestCreateFlowThroughForm(t *testing.T) {
	m, fake := newTestModel(t, true)
	load(t, m)

	press(t, m, "n")
	require.NotNil(t, m.form)

	// Submitting an empty title fails locally, before any network call.
	press(t, m, "enter")
	require.NotNil(t, m.form)
	require.NotNil(t, m.form.f.FieldErr)
	assert.Equal(t, "title", m.form.f.FieldErr.Field)
	assert.Equal(t, 0, fake.Calls["CreateTask"])

	typeText(t, m, "write the report")
	press(t, m, "enter")

	assert.Nil(t, m.form, "form closes on success")
	assert.Equal(t, 1, fake.Calls["CreateTask"])
	snap := m.deps.Collection.Snapshot()
	require.NotEmpty(t, snap.Page.Items)
	assert.Equal(t, "write the report", snap.Page.Items[0].Title)
}

func TestEditFlowPrefillsSelected(t *testing.T) {
	m, fake := newTestModel(t, true)
	seedTasks(fake, 2)
	load(t, m)

	press(t, m, "e")
	require.NotNil(t, m.form)
	require.True(t, m.form.f.IsEdit())
	assert.NotEmpty(t, m.form.f.Title)

	typeText(t, m, "!")
	press(t, m, "enter")

	assert.Nil(t, m.form)
	assert.Equal(t, 1, fake.Calls["UpdateTask"])
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	m, fake := newTestModel(t, true)
	seedTasks(fake, 2)
	load(t, m)

	press(t, m, "d")
	require.NotNil(t, m.confirm)
	assert.Equal(t, 0, fake.Calls["DeleteTask"], "no call before confirmation")

	press(t, m, "n")
	assert.Nil(t, m.confirm, "n dismisses without deleting")
	assert.Equal(t, 0, fake.Calls["DeleteTask"])

	press(t, m, "d")
	press(t, m, "y")
	assert.Nil(t, m.confirm)
	assert.Equal(t, 1, fake.Calls["DeleteTask"])
	assert.Len(t, m.deps.Collection.Snapshot().Page.Items, 1)
}

func TestQuickStatusCycle(t *testing.T) {
	m, fake := newTestModel(t, true)
	seedTasks(fake, 1)
	load(t, m)

	before := m.deps.Collection.Snapshot().Page.Items[0]
	press(t, m, "s")

	after := m.deps.Collection.Snapshot().Page.Items[0]
	assert.Equal(t, 1, fake.Calls["UpdateTask"])
	assert.Equal(t, nextStatus(before.Status), after.Status)
	assert.Equal(t, before.Title, after.Title, "full-payload update keeps the rest")
}

func TestViewSwitchResetsLocalState(t *testing.T) {
	m, fake := newTestModel(t, true)
	seedTasks(fake, 3)
	load(t, m)

	m.listIndex = 2
	press(t, m, "v") // -> calendar
	assert.Equal(t, modeCalendar, m.mode)
	assert.Equal(t, 0, m.listIndex)

	press(t, m, "]")
	assert.NotEqual(t, views.CurrentMonth(time.Now()), m.month, "month moved")
	assert.Equal(t, 0, m.selDay, "day selection cleared")
	press(t, m, "v") // -> board
	assert.Equal(t, modeBoard, m.mode)

	m.board.ToggleColumn(task.StatusPending)
	press(t, m, "v") // -> list
	assert.Equal(t, modeList, m.mode)
	press(t, m, "v") // -> calendar again: board state gone
	press(t, m, "v") // -> board
	assert.False(t, m.board.Collapsed[task.StatusPending], "board state resets on switch")
}

func TestBoardGrabAndDrop(t *testing.T) {
	m, fake := newTestModel(t, true)
	seedTasks(fake, 3) // seeds one task per status
	load(t, m)

	press(t, m, "v")
	press(t, m, "v")
	require.Equal(t, modeBoard, m.mode)

	// Grab the pending card, move focus to completed, drop.
	press(t, m, " ")
	require.NotNil(t, m.board.Dragged)
	moved := *m.board.Dragged

	press(t, m, "right")
	press(t, m, "right")
	press(t, m, " ")

	assert.Nil(t, m.board.Dragged)
	assert.Equal(t, 1, fake.Calls["UpdateTask"])

	board := m.boardColumns()
	var found bool
	for _, t2 := range board.Columns[2].Tasks {
		if t2.ID == moved.ID {
			found = true
		}
	}
	assert.True(t, found, "card landed in the completed column")
}

func TestBoardDropOnOwnColumnIsNoop(t *testing.T) {
	m, fake := newTestModel(t, true)
	seedTasks(fake, 3)
	load(t, m)
	press(t, m, "v")
	press(t, m, "v")

	press(t, m, " ")
	require.NotNil(t, m.board.Dragged)
	press(t, m, " ") // drop where it came from

	assert.Nil(t, m.board.Dragged)
	assert.Equal(t, 0, fake.Calls["UpdateTask"])
}

func TestServerFailureKeepsPreviousPage(t *testing.T) {
	m, fake := newTestModel(t, true)
	seedTasks(fake, 3)
	load(t, m)

	fake.ListErr = &service.FetchError{Op: "load tasks", StatusCode: 500, Message: "database is down"}
	press(t, m, "r")

	assert.Equal(t, "database is down", m.banner)
	assert.Len(t, m.deps.Collection.Snapshot().Page.Items, 3, "stale page stays visible")

	fake.ListErr = nil
	press(t, m, "r")
	assert.Empty(t, m.banner, "banner clears on the next successful load")
}

func TestAuthFailureOpensLogin(t *testing.T) {
	m, fake := newTestModel(t, true)
	seedTasks(fake, 1)
	load(t, m)

	fake.ListErr = &service.AuthError{Op: "load tasks"}
	press(t, m, "r")

	assert.NotNil(t, m.login, "401 sends the user back to login")
}

func TestCalendarDayNavigation(t *testing.T) {
	m, fake := newTestModel(t, true)
	seedTasks(fake, 1)
	load(t, m)
	press(t, m, "v")
	require.Equal(t, modeCalendar, m.mode)

	press(t, m, "right")
	assert.Equal(t, 1, m.selDay)
	press(t, m, "down")
	assert.Equal(t, 8, m.selDay)
	press(t, m, "up")
	assert.Equal(t, 1, m.selDay)
	press(t, m, "left")
	assert.Equal(t, 1, m.selDay, "day selection never leaves the month")
}

func TestCalendarCreatePrefillsDay(t *testing.T) {
	m, fake := newTestModel(t, true)
	seedTasks(fake, 1)
	load(t, m)
	press(t, m, "v")

	press(t, m, "right") // select day 1
	press(t, m, "n")

	require.NotNil(t, m.form)
	d := task.NewDate(m.month.Year, m.month.Month, 1)
	assert.Equal(t, d.String(), m.form.f.DueDate)
}

func TestViewRendersWithoutPanic(t *testing.T) {
	m, fake := newTestModel(t, true)
	seedTasks(fake, 5)
	load(t, m)

	for i := 0; i < 3; i++ {
		out := m.View()
		assert.NotEmpty(t, out)
		press(t, m, "v")
	}

	press(t, m, "n")
	assert.NotEmpty(t, m.View())
	press(t, m, "esc")
	press(t, m, "d")
	assert.NotEmpty(t, m.View())
}

func TestIsTTY(t *testing.T) {
	assert.False(t, IsTTY(&bytes.Buffer{}), "non-file writer")

	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	assert.False(t, IsTTY(f), "regular file is not a terminal")

	require.NoError(t, f.Close())
	assert.False(t, IsTTY(f), "closed file stats false, not a panic")
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	long := strings.Repeat("ü", 60)
	got := truncate(long, 48)
	assert.True(t, utf8.ValidString(got), "truncation must not split a rune")
	assert.Equal(t, strings.Repeat("ü", 45)+"...", got)

	assert.Equal(t, "short", truncate("short", 48))
}

func TestRenderLongMultibyteTitles(t *testing.T) {
	m, fake := newTestModel(t, true)
	fake.Seed(task.Task{Title: strings.Repeat("é", 80)})
	load(t, m)

	assert.True(t, utf8.ValidString(m.View()), "list view")
	press(t, m, "v")
	press(t, m, "v")
	assert.True(t, utf8.ValidString(m.View()), "board view")
}
