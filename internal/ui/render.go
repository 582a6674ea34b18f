package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/taskdeck/taskdeck/internal/flows"
	"github.com/taskdeck/taskdeck/internal/task"
	"github.com/taskdeck/taskdeck/internal/views"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	todayStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	markedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	columnStyle   = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1).Width(26)
	focusedColumn = columnStyle.BorderForeground(lipgloss.Color("205"))
)

func (m *Model) View() string {
	var b strings.Builder
	m.writeHeader(&b)

	switch {
	case m.login != nil:
		b.WriteString(m.viewLogin())
	case m.showHelp:
		b.WriteString(helpView())
	case m.form != nil:
		b.WriteString(m.viewForm())
	case m.confirm != nil:
		b.WriteString(m.viewConfirm())
	default:
		switch m.mode {
		case modeList:
			b.WriteString(m.viewList())
		case modeCalendar:
			b.WriteString(m.viewCalendar())
		case modeBoard:
			b.WriteString(m.viewBoard())
		}
	}

	b.WriteString("\n")
	m.writeFooter(&b)
	return b.String()
}

func (m *Model) writeHeader(b *strings.Builder) {
	snap := m.deps.Collection.Snapshot()

	parts := []string{titleStyle.Render("taskdeck"), headerStyle.Render(m.mode.String())}
	if u := m.deps.Session.User(); u != nil {
		parts = append(parts, dimStyle.Render(u.Email))
	}
	if !snap.Filter.All() {
		parts = append(parts, headerStyle.Render("filter: "+snap.Filter.Status.String()))
	}
	if snap.Search != "" {
		parts = append(parts, headerStyle.Render("search: "+snap.Search))
	}
	if m.loading {
		parts = append(parts, dimStyle.Render("loading..."))
	}
	b.WriteString(strings.Join(parts, "  "))
	b.WriteString("\n")

	if m.banner != "" {
		b.WriteString(errorStyle.Render(m.banner))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func (m *Model) writeFooter(b *strings.Builder) {
	var hint string
	switch {
	case m.login != nil:
		hint = "tab switch field | enter sign in | esc quit"
	case m.form != nil:
		hint = "tab next field | enter save | esc cancel"
	case m.confirm != nil:
		hint = "y/enter delete | n/esc keep"
	case m.searching:
		hint = "type to search | enter apply | esc clear"
	case m.mode == modeCalendar:
		hint = "[ ] month | arrows day | t today | n new on day | ? help | q quit"
	case m.mode == modeBoard:
		hint = "arrows move | space grab/drop | x collapse | e edit | d delete | ? help | q quit"
	default:
		hint = "arrows move | / search | n new | e edit | d delete | s status | ? help | q quit"
	}
	b.WriteString(dimStyle.Render(hint))
	b.WriteString("\n")
}

func (m *Model) viewList() string {
	snap := m.deps.Collection.Snapshot()
	lv := views.ProjectList(snap.Page, snap.Search)

	var b strings.Builder
	b.WriteString(dimStyle.Render(fmt.Sprintf(
		"pending %d  in progress %d  completed %d  (%d total)",
		lv.Counts.Pending, lv.Counts.InProgress, lv.Counts.Completed, snap.Page.TotalCount,
	)))
	b.WriteString("\n\n")

	if m.searching {
		b.WriteString("search: " + snap.Search + "▌\n\n")
	}

	if len(lv.Rows) == 0 {
		b.WriteString(dimStyle.Render("no tasks here") + "\n")
	}
	for i, t := range lv.Rows {
		line := formatTaskRow(t)
		if i == m.listIndex {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("page %d/%d", lv.Pager.Current, lv.Pager.Total)))
	if lv.Pager.HasPrev || lv.Pager.HasNext {
		b.WriteString(dimStyle.Render("  (h/l to page)"))
	}
	b.WriteString("\n")
	return b.String()
}

// truncate shortens s to at most max runes, ellipsis included.
// Counting runes keeps multibyte titles from being split mid-rune.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

func formatTaskRow(t task.Task) string {
	title := truncate(t.Title, 48)
	row := fmt.Sprintf(" %s %-48s", statusIcon(t.Status), title)
	if t.DueDate != nil && !t.DueDate.IsZero() {
		row += " " + t.DueDate.String()
	}
	return row
}

func statusIcon(s task.Status) string {
	switch s {
	case task.StatusPending:
		return "[ ]"
	case task.StatusInProgress:
		return "[>]"
	case task.StatusCompleted:
		return "[x]"
	}
	return "[?]"
}

func (m *Model) viewCalendar() string {
	snap := m.deps.Collection.Snapshot()
	today := task.DateOf(time.Now())
	cal := views.ProjectCalendar(snap.Page.Items, m.month, today)

	var b strings.Builder
	b.WriteString(titleStyle.Render(cal.Cursor.String()))
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render(" Su  Mo  Tu  We  Th  Fr  Sa"))
	b.WriteString("\n")

	col := 0
	for i := 0; i < cal.LeadingBlanks; i++ {
		b.WriteString("    ")
		col++
	}
	for _, day := range cal.Days {
		cell := fmt.Sprintf("%3d", day.Date.Day)
		if day.HasTasks {
			cell = markedStyle.Render(cell)
		}
		if day.IsToday {
			cell = todayStyle.Render(cell)
		}
		if day.Date.Day == m.selDay {
			cell = selectedStyle.Render(cell)
		}
		b.WriteString(cell + " ")
		col++
		if col == 7 {
			b.WriteString("\n")
			col = 0
		}
	}
	if col != 0 {
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d tasks loaded, %d without a due date", cal.Total, cal.Undated)))
	b.WriteString("\n")

	if m.selDay > 0 {
		date := task.NewDate(m.month.Year, m.month.Month, m.selDay)
		b.WriteString("\n" + headerStyle.Render(date.String()) + "\n")
		due := cal.TasksOn(date)
		if len(due) == 0 {
			b.WriteString(dimStyle.Render("  nothing due") + "\n")
		}
		for _, t := range due {
			b.WriteString(formatTaskRow(t) + "\n")
		}
	}
	return b.String()
}

func (m *Model) viewBoard() string {
	board := m.boardColumns()

	rendered := make([]string, 0, len(board.Columns))
	for ci, col := range board.Columns {
		var cb strings.Builder
		cb.WriteString(fmt.Sprintf("%s (%d)\n", col.Title, len(col.Tasks)))

		if !col.Expanded {
			cb.WriteString(dimStyle.Render("collapsed"))
		} else if len(col.Tasks) == 0 {
			cb.WriteString(dimStyle.Render("empty"))
		} else {
			for ti, t := range col.Tasks {
				card := truncate(t.Title, 20)
				if board.Dragged != nil && board.Dragged.ID == t.ID {
					card = "» " + card
				}
				if ci == m.focusCol && ti == m.focusRow {
					card = selectedStyle.Render(card)
				}
				cb.WriteString(card + "\n")
			}
		}

		style := columnStyle
		if ci == m.focusCol {
			style = focusedColumn
		}
		rendered = append(rendered, style.Render(cb.String()))
	}

	out := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	if board.Dragged != nil {
		out += "\n" + headerStyle.Render("moving: "+board.Dragged.Title) +
			dimStyle.Render("  (space to drop on the focused column, esc to cancel)")
	}
	return out + "\n"
}

func (m *Model) viewForm() string {
	v := m.form

	heading := "New Task"
	if v.f.IsEdit() {
		heading = "Edit Task"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(heading) + "\n\n")
	b.WriteString(formField("Title", v.f.Title, v.focus == fieldTitle))
	b.WriteString(formField("Description", v.f.Description, v.focus == fieldDescription))
	b.WriteString(formField("Due date", v.f.DueDate, v.focus == fieldDueDate))
	if v.f.IsEdit() {
		status := v.f.Status.String()
		if v.focus == fieldStatus {
			status = "< " + status + " >"
		}
		b.WriteString(formField("Status", status, v.focus == fieldStatus))
	}

	if v.f.FieldErr != nil {
		b.WriteString("\n" + errorStyle.Render(v.f.FieldErr.Error()) + "\n")
	}
	if v.errMsg != "" {
		b.WriteString("\n" + errorStyle.Render(v.errMsg) + "\n")
	}
	if v.op.State() == flows.Submitting {
		b.WriteString("\n" + dimStyle.Render("saving...") + "\n")
	}

	return boxStyle.Render(b.String()) + "\n"
}

func formField(label, value string, focused bool) string {
	cursor := ""
	if focused {
		cursor = "▌"
		label = titleStyle.Render(label)
	} else {
		label = headerStyle.Render(label)
	}
	return fmt.Sprintf("%s\n  %s%s\n", label, value, cursor)
}

func (m *Model) viewConfirm() string {
	d := m.confirm

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Delete %q?\n\n", d.Task.Title))
	switch d.Op.State() {
	case flows.Submitting:
		b.WriteString(dimStyle.Render("deleting..."))
	case flows.Failed:
		b.WriteString(errorStyle.Render("delete failed") + dimStyle.Render("  (enter to retry, esc to keep)"))
	default:
		b.WriteString(dimStyle.Render("y/enter to delete, n/esc to keep"))
	}
	b.WriteString("\n")
	return boxStyle.Render(b.String()) + "\n"
}

func (m *Model) viewLogin() string {
	f := m.login

	var b strings.Builder
	b.WriteString(titleStyle.Render("Sign in") + "\n\n")
	b.WriteString(formField("Email", f.email, f.focus == 0))
	b.WriteString(formField("Password", strings.Repeat("*", len(f.password)), f.focus == 1))

	if f.errMsg != "" {
		b.WriteString("\n" + errorStyle.Render(f.errMsg) + "\n")
	}
	if f.busy {
		b.WriteString("\n" + dimStyle.Render("signing in...") + "\n")
	}
	return boxStyle.Render(b.String()) + "\n"
}

func helpView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Keys") + "\n\n")
	b.WriteString("  v            switch view (list / calendar / board)\n")
	b.WriteString("  0            clear status filter\n")
	b.WriteString("  1 2 3        filter pending / in progress / completed\n")
	b.WriteString("  r, F5        reload\n")
	b.WriteString("  n            new task (on the selected day in calendar)\n")
	b.WriteString("  e, enter     edit the selected task\n")
	b.WriteString("  d            delete the selected task\n")
	b.WriteString("  s, space     cycle the selected task's status (list)\n")
	b.WriteString("  /            search the loaded page (list)\n")
	b.WriteString("  h/l, arrows  page through the list\n")
	b.WriteString("  [ ]          previous / next month (calendar)\n")
	b.WriteString("  space        grab and drop cards (board)\n")
	b.WriteString("  x            collapse the focused column (board)\n")
	b.WriteString("  q, ctrl+c    quit\n")
	return b.String()
}
