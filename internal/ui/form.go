package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/taskdeck/taskdeck/internal/flows"
	"github.com/taskdeck/taskdeck/internal/service"
	"github.com/taskdeck/taskdeck/internal/task"
)

// Form field order. Status is only reachable on edit forms; a created
// task always starts pending.
const (
	fieldTitle = iota
	fieldDescription
	fieldDueDate
	fieldStatus
)

// formView wraps the create/edit form with its focus and submission
// state. The form values live in flows.TaskForm and survive failed
// submissions untouched.
type formView struct {
	f      *flows.TaskForm
	focus  int
	op     flows.Operation
	errMsg string
}

func (v *formView) lastField() int {
	if v.f.IsEdit() {
		return fieldStatus
	}
	return fieldDueDate
}

func (v *formView) cycleFocus(delta int) {
	n := v.lastField() + 1
	v.focus = (v.focus + delta + n) % n
}

func (v *formView) field(i int) *string {
	switch i {
	case fieldTitle:
		return &v.f.Title
	case fieldDescription:
		return &v.f.Description
	case fieldDueDate:
		return &v.f.DueDate
	}
	return nil
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := m.form

	switch msg.String() {
	case "esc":
		m.form = nil
		m.deps.Collection.ClearSelection()
		return m, nil
	case "tab", "down":
		v.cycleFocus(1)
		return m, nil
	case "shift+tab", "up":
		v.cycleFocus(-1)
		return m, nil
	case "enter":
		return m, m.submitFormCmd()
	case "left":
		if v.focus == fieldStatus {
			v.f.Status = prevStatus(v.f.Status)
		}
		return m, nil
	case "right":
		if v.focus == fieldStatus {
			v.f.Status = nextStatus(v.f.Status)
		}
		return m, nil
	case "backspace":
		if field := v.field(v.focus); field != nil {
			r := []rune(*field)
			if len(r) > 0 {
				*field = string(r[:len(r)-1])
			}
		}
		return m, nil
	}

	if field := v.field(v.focus); field != nil {
		switch msg.Type {
		case tea.KeyRunes:
			*field += string(msg.Runes)
		case tea.KeySpace:
			*field += " "
		}
	}
	return m, nil
}

// submitFormCmd validates locally and only reaches the network when the
// payload is clean. Validation failures set FieldErr on the form and
// issue no command at all.
func (m *Model) submitFormCmd() tea.Cmd {
	v := m.form
	if v.op.State() == flows.Submitting {
		return nil
	}
	v.errMsg = ""

	if v.f.IsEdit() {
		req, ok := v.f.UpdateRequest()
		if !ok {
			return nil
		}
		return func() tea.Msg {
			err := m.deps.Runner.Edit(m.ctx, &v.op, v.f.EditID, req)
			return flowDoneMsg{flow: "edit", err: err, msg: v.op.UserMessage()}
		}
	}

	req, ok := v.f.CreateRequest()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		err := m.deps.Runner.Create(m.ctx, &v.op, req)
		return flowDoneMsg{flow: "create", err: err, msg: v.op.UserMessage()}
	}
}

func prevStatus(s task.Status) task.Status {
	return task.Status((int(s) + 2) % 3)
}

// loginForm is the credentials overlay shown when no session is held.
type loginForm struct {
	email    string
	password string
	focus    int // 0 email, 1 password
	busy     bool
	errMsg   string
}

func newLoginForm() *loginForm {
	return &loginForm{}
}

func (m *Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.login

	switch msg.String() {
	case "esc", "ctrl+c":
		return m, tea.Quit
	case "tab", "down", "up", "shift+tab":
		f.focus = 1 - f.focus
		return m, nil
	case "enter":
		if f.busy || f.email == "" || f.password == "" {
			return m, nil
		}
		f.busy = true
		f.errMsg = ""
		creds := service.Credentials{Email: f.email, Password: f.password}
		return m, func() tea.Msg {
			id, err := m.deps.Service.Login(m.ctx, creds)
			return loginDoneMsg{id: id, err: err}
		}
	case "backspace":
		field := f.activeField()
		r := []rune(*field)
		if len(r) > 0 {
			*field = string(r[:len(r)-1])
		}
		return m, nil
	}

	if msg.Type == tea.KeyRunes {
		*f.activeField() += string(msg.Runes)
	}
	return m, nil
}

func (f *loginForm) activeField() *string {
	if f.focus == 0 {
		return &f.email
	}
	return &f.password
}
