// Package ui is the interactive terminal client: the list, calendar and
// kanban views over the shared task collection, plus the create/edit
// form, delete confirmation and login overlays.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/flows"
	"github.com/taskdeck/taskdeck/internal/service"
	"github.com/taskdeck/taskdeck/internal/session"
	"github.com/taskdeck/taskdeck/internal/store"
	"github.com/taskdeck/taskdeck/internal/task"
	"github.com/taskdeck/taskdeck/internal/views"
)

// Deps carries the wired application state into the TUI.
type Deps struct {
	Config     *config.Config
	Service    service.Service
	Collection *store.Collection
	Session    *session.Store
	Runner     *flows.Runner
	Logger     *log.Logger

	// SaveSession persists a fresh login so later invocations reuse it.
	// Optional.
	SaveSession func(service.Identity)
}

// Run starts the TUI and blocks until it exits.
func Run(ctx context.Context, deps Deps) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	model := NewModel(ctx, deps)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type viewMode int

const (
	modeList viewMode = iota
	modeCalendar
	modeBoard
)

func (m viewMode) String() string {
	switch m {
	case modeList:
		return "list"
	case modeCalendar:
		return "calendar"
	case modeBoard:
		return "board"
	}
	return "unknown"
}

// Model is the bubbletea model for the whole client.
type Model struct {
	ctx  context.Context
	deps Deps

	mode   viewMode
	width  int
	height int

	// list view local state
	listIndex int
	searching bool

	// calendar view local state
	month  views.MonthCursor
	selDay int

	// board view local state
	board    views.BoardState
	focusCol int
	focusRow int

	// overlays; at most one is active, login wins over the others
	login    *loginForm
	form     *formView
	confirm  *flows.DeleteConfirm
	showHelp bool

	// statusOp guards the quick status changes fired outside the form
	statusOp flows.Operation

	banner  string // load failure shown above the kept previous page
	loading bool
}

// NewModel builds the initial model. Exported for tests.
func NewModel(ctx context.Context, deps Deps) *Model {
	m := &Model{
		ctx:   ctx,
		deps:  deps,
		month: views.CurrentMonth(time.Now()),
		board: views.NewBoardState(),
	}
	if !deps.Session.Authenticated() {
		m.login = newLoginForm()
	}
	return m
}

type loadedMsg struct {
	err error
}

type flowDoneMsg struct {
	flow string
	err  error
	msg  string
}

type loginDoneMsg struct {
	id  service.Identity
	err error
}

func (m *Model) Init() tea.Cmd {
	if m.login != nil {
		return nil
	}
	return m.loadCmd()
}

func (m *Model) loadCmd() tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		return loadedMsg{err: m.deps.Collection.Load(m.ctx)}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			return m.handleLoadError(msg.err)
		}
		m.banner = ""
		m.clampListIndex()
		return m, nil

	case flowDoneMsg:
		return m.handleFlowDone(msg)

	case loginDoneMsg:
		return m.handleLoginDone(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleLoadError keeps the previous page visible and surfaces the
// failure inline. A 401 opens the login overlay instead; the session is
// already gone by the time the error reaches us.
func (m *Model) handleLoadError(err error) (tea.Model, tea.Cmd) {
	var authErr *service.AuthError
	if errors.As(err, &authErr) {
		if m.login == nil {
			m.login = newLoginForm()
		}
		return m, nil
	}

	var fetchErr *service.FetchError
	if errors.As(err, &fetchErr) && fetchErr.Message != "" {
		m.banner = fetchErr.Message
	} else {
		m.banner = flows.FallbackMessage
	}
	return m, nil
}

func (m *Model) handleFlowDone(msg flowDoneMsg) (tea.Model, tea.Cmd) {
	var authErr *service.AuthError
	if errors.As(msg.err, &authErr) {
		// Session torn down by the runner. Overlays keep their values
		// underneath so nothing typed is lost.
		if m.login == nil {
			m.login = newLoginForm()
		}
		return m, nil
	}

	if msg.err != nil {
		if m.form != nil {
			m.form.errMsg = msg.msg
		} else {
			m.banner = msg.msg
		}
		return m, nil
	}

	switch msg.flow {
	case "create", "edit":
		m.form = nil
	case "delete":
		m.confirm = nil
	}
	m.clampListIndex()
	return m, nil
}

func (m *Model) handleLoginDone(msg loginDoneMsg) (tea.Model, tea.Cmd) {
	if m.login != nil {
		m.login.busy = false
	}
	if msg.err != nil {
		if m.login != nil {
			m.login.errMsg = loginErrorMessage(msg.err)
		}
		return m, nil
	}

	m.deps.Session.Set(msg.id)
	if m.deps.SaveSession != nil {
		m.deps.SaveSession(msg.id)
	}
	m.login = nil
	return m, m.loadCmd()
}

func loginErrorMessage(err error) string {
	var authErr *service.AuthError
	if errors.As(err, &authErr) {
		return "invalid email or password"
	}
	var fetchErr *service.FetchError
	if errors.As(err, &fetchErr) && fetchErr.Message != "" {
		return fetchErr.Message
	}
	return flows.FallbackMessage
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch {
	case m.login != nil:
		return m.updateLogin(msg)
	case m.form != nil:
		return m.updateForm(msg)
	case m.confirm != nil:
		return m.updateConfirm(msg)
	case m.searching:
		return m.updateSearch(msg)
	case m.showHelp:
		m.showHelp = false
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "?":
		m.showHelp = true
		return m, nil
	case "r", "f5":
		return m, m.loadCmd()
	case "v":
		return m.switchMode((m.mode + 1) % 3)
	case "0":
		m.deps.Collection.SetFilter(task.FilterAll)
		return m, m.loadCmd()
	case "1":
		m.deps.Collection.SetFilter(task.FilterBy(task.StatusPending))
		return m, m.loadCmd()
	case "2":
		m.deps.Collection.SetFilter(task.FilterBy(task.StatusInProgress))
		return m, m.loadCmd()
	case "3":
		m.deps.Collection.SetFilter(task.FilterBy(task.StatusCompleted))
		return m, m.loadCmd()
	case "n":
		m.openCreateForm()
		return m, nil
	}

	switch m.mode {
	case modeList:
		return m.updateList(msg)
	case modeCalendar:
		return m.updateCalendar(msg)
	case modeBoard:
		return m.updateBoard(msg)
	}
	return m, nil
}

// switchMode changes the active view. Local view state never survives a
// switch; only the shared collection state does.
func (m *Model) switchMode(mode viewMode) (tea.Model, tea.Cmd) {
	m.mode = mode
	m.listIndex = 0
	m.searching = false
	m.month = views.CurrentMonth(time.Now())
	m.selDay = 0
	m.board = views.NewBoardState()
	m.focusCol = 0
	m.focusRow = 0

	// Calendar and board approximate "all tasks" with an enlarged page.
	switch mode {
	case modeList:
		m.deps.Collection.SetPageSize(m.deps.Config.PageSize)
	default:
		m.deps.Collection.SetPageSize(m.deps.Config.BoardPageSize)
	}
	m.deps.Collection.SetPage(1)
	return m, m.loadCmd()
}

func (m *Model) openCreateForm() {
	f := flows.NewCreateForm()
	if m.mode == modeCalendar && m.selDay > 0 {
		d := task.NewDate(m.month.Year, m.month.Month, m.selDay)
		f = flows.NewCreateFormForDate(d)
	}
	m.form = &formView{f: f}
}

// listRows returns the rows currently on screen in list mode.
func (m *Model) listRows() []task.Task {
	snap := m.deps.Collection.Snapshot()
	return views.ProjectList(snap.Page, snap.Search).Rows
}

func (m *Model) selectedListTask() (task.Task, bool) {
	rows := m.listRows()
	if m.listIndex < 0 || m.listIndex >= len(rows) {
		return task.Task{}, false
	}
	return rows[m.listIndex], true
}

func (m *Model) clampListIndex() {
	rows := m.listRows()
	if m.listIndex >= len(rows) {
		m.listIndex = len(rows) - 1
	}
	if m.listIndex < 0 {
		m.listIndex = 0
	}
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.deps.Collection.Snapshot()

	switch msg.String() {
	case "up", "k":
		if m.listIndex > 0 {
			m.listIndex--
		}
	case "down", "j":
		if m.listIndex < len(m.listRows())-1 {
			m.listIndex++
		}
	case "left", "h":
		if snap.Page.CurrentPage > 1 {
			m.deps.Collection.SetPage(snap.Page.CurrentPage - 1)
			m.listIndex = 0
			return m, m.loadCmd()
		}
	case "right", "l":
		if snap.Page.CurrentPage < snap.Page.TotalPages {
			m.deps.Collection.SetPage(snap.Page.CurrentPage + 1)
			m.listIndex = 0
			return m, m.loadCmd()
		}
	case "/":
		m.searching = true
	case "e", "enter":
		if t, ok := m.selectedListTask(); ok {
			m.deps.Collection.Select(t)
			m.form = &formView{f: flows.NewEditForm(t)}
		}
	case "d", "backspace":
		if t, ok := m.selectedListTask(); ok {
			m.confirm = flows.RequestDelete(t)
		}
	case "s", " ":
		if t, ok := m.selectedListTask(); ok {
			return m, m.changeStatusCmd(t, nextStatus(t.Status))
		}
	}
	return m, nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.deps.Collection.Snapshot()

	switch msg.String() {
	case "esc":
		m.searching = false
		m.deps.Collection.SetSearch("")
		return m, m.loadCmd()
	case "enter":
		m.searching = false
		// The query narrowed locally while typing; the cursor reset to
		// page 1 still needs that page loaded.
		return m, m.loadCmd()
	case "backspace":
		q := []rune(snap.Search)
		if len(q) > 0 {
			m.deps.Collection.SetSearch(string(q[:len(q)-1]))
		}
	default:
		if msg.Type == tea.KeyRunes {
			m.deps.Collection.SetSearch(snap.Search + string(msg.Runes))
		}
	}
	m.listIndex = 0
	return m, nil
}

func (m *Model) updateCalendar(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	daysInMonth := time.Date(m.month.Year, m.month.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1).Day()

	switch msg.String() {
	case "[", "pgup":
		m.month = m.month.Prev()
		m.selDay = 0
	case "]", "pgdown":
		m.month = m.month.Next()
		m.selDay = 0
	case "t":
		now := time.Now()
		m.month = views.CurrentMonth(now)
		m.selDay = now.Day()
	case "left", "h":
		if m.selDay > 1 {
			m.selDay--
		} else if m.selDay == 0 {
			m.selDay = 1
		}
	case "right", "l":
		if m.selDay == 0 {
			m.selDay = 1
		} else if m.selDay < daysInMonth {
			m.selDay++
		}
	case "up", "k":
		if m.selDay > 7 {
			m.selDay -= 7
		}
	case "down", "j":
		if m.selDay == 0 {
			m.selDay = 1
		} else if m.selDay+7 <= daysInMonth {
			m.selDay += 7
		}
	}
	return m, nil
}

// boardColumns resolves the current board projection.
func (m *Model) boardColumns() views.BoardView {
	snap := m.deps.Collection.Snapshot()
	return views.ProjectBoard(snap.Page.Items, m.board)
}

func (m *Model) focusedBoardTask() (task.Task, bool) {
	board := m.boardColumns()
	if m.focusCol < 0 || m.focusCol >= len(board.Columns) {
		return task.Task{}, false
	}
	col := board.Columns[m.focusCol]
	if !col.Expanded || m.focusRow < 0 || m.focusRow >= len(col.Tasks) {
		return task.Task{}, false
	}
	return col.Tasks[m.focusRow], true
}

func (m *Model) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	statuses := task.Statuses()

	switch msg.String() {
	case "left", "h":
		if m.focusCol > 0 {
			m.focusCol--
			m.focusRow = 0
		}
	case "right", "l":
		if m.focusCol < len(statuses)-1 {
			m.focusCol++
			m.focusRow = 0
		}
	case "tab":
		m.focusCol = (m.focusCol + 1) % len(statuses)
		m.focusRow = 0
	case "up", "k":
		if m.focusRow > 0 {
			m.focusRow--
		}
	case "down", "j":
		board := m.boardColumns()
		if col := board.Columns[m.focusCol]; m.focusRow < len(col.Tasks)-1 {
			m.focusRow++
		}
	case "x":
		m.board.ToggleColumn(statuses[m.focusCol])
		m.focusRow = 0
	case " ", "enter":
		// Space grabs the focused card, or drops the grabbed one on the
		// focused column.
		if m.board.Dragged == nil {
			if t, ok := m.focusedBoardTask(); ok {
				m.board.Grab(t)
			}
			return m, nil
		}
		dragged := *m.board.Dragged
		target := statuses[m.focusCol]
		if _, _, ok := m.board.Drop(target); ok {
			return m, m.changeStatusCmd(dragged, target)
		}
	case "esc":
		m.board.Release()
	case "e":
		if t, ok := m.focusedBoardTask(); ok {
			m.deps.Collection.Select(t)
			m.form = &formView{f: flows.NewEditForm(t)}
		}
	case "d":
		if t, ok := m.focusedBoardTask(); ok {
			m.confirm = flows.RequestDelete(t)
		}
	}
	return m, nil
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "n":
		m.confirm = nil
	case "enter", "y":
		if m.confirm.Op.State() == flows.Submitting {
			return m, nil
		}
		d := m.confirm
		return m, func() tea.Msg {
			err := m.deps.Runner.Confirm(m.ctx, d)
			return flowDoneMsg{flow: "delete", err: err, msg: d.Op.UserMessage()}
		}
	}
	return m, nil
}

func (m *Model) changeStatusCmd(t task.Task, target task.Status) tea.Cmd {
	if m.statusOp.State() == flows.Submitting {
		return nil
	}
	return func() tea.Msg {
		err := m.deps.Runner.ChangeStatus(m.ctx, &m.statusOp, t, target)
		return flowDoneMsg{flow: "status", err: err, msg: m.statusOp.UserMessage()}
	}
}

func nextStatus(s task.Status) task.Status {
	return task.Status((int(s) + 1) % 3)
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
