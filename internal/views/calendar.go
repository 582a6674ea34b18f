package views

import (
	"time"

	"github.com/taskdeck/taskdeck/internal/task"
)

// MonthCursor is the calendar view's local UI state: which month is on
// screen. Navigation is unbounded in both directions.
type MonthCursor struct {
	Year  int
	Month time.Month
}

// CurrentMonth positions the cursor on now's month.
func CurrentMonth(now time.Time) MonthCursor {
	return MonthCursor{Year: now.Year(), Month: now.Month()}
}

// Prev moves one month back.
func (m MonthCursor) Prev() MonthCursor {
	t := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	return MonthCursor{Year: t.Year(), Month: t.Month()}
}

// Next moves one month forward.
func (m MonthCursor) Next() MonthCursor {
	t := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return MonthCursor{Year: t.Year(), Month: t.Month()}
}

// String formats the cursor as "March 2024".
func (m MonthCursor) String() string {
	return m.Month.String() + " " + time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006")
}

// Day is one cell of the month grid.
type Day struct {
	Date     task.Date
	HasTasks bool
	Tasks    []task.Task
	IsToday  bool
}

// CalendarView is the monthly grouping of the loaded set by due date.
// Tasks without a due date appear in no cell but are still part of the
// aggregate stats.
type CalendarView struct {
	Cursor        MonthCursor
	Days          []Day // one entry per day of the displayed month
	LeadingBlanks int   // grid offset: weekday of day 1 (Sunday = 0)
	Total         int   // all loaded tasks, dated or not
	Undated       int   // loaded tasks with no due date
}

// ProjectCalendar groups the entire loaded set by calendar date. Callers
// are expected to have loaded with an enlarged page size, since the
// calendar is not itself paginated.
func ProjectCalendar(items []task.Task, cursor MonthCursor, today task.Date) CalendarView {
	first := time.Date(cursor.Year, cursor.Month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	byDay := make(map[int][]task.Task)
	undated := 0
	for _, t := range items {
		if t.DueDate == nil || t.DueDate.IsZero() {
			undated++
			continue
		}
		if t.DueDate.Year == cursor.Year && t.DueDate.Month == cursor.Month {
			byDay[t.DueDate.Day] = append(byDay[t.DueDate.Day], t)
		}
	}

	days := make([]Day, daysInMonth)
	for d := 1; d <= daysInMonth; d++ {
		date := task.NewDate(cursor.Year, cursor.Month, d)
		days[d-1] = Day{
			Date:     date,
			Tasks:    byDay[d],
			HasTasks: len(byDay[d]) > 0,
			IsToday:  date == today,
		}
	}

	return CalendarView{
		Cursor:        cursor,
		Days:          days,
		LeadingBlanks: int(first.Weekday()),
		Total:         len(items),
		Undated:       undated,
	}
}

// TasksOn returns the tasks due on one date of the displayed month, for
// the day-detail view. Nil when the date is outside the month.
func (v CalendarView) TasksOn(d task.Date) []task.Task {
	if d.Year != v.Cursor.Year || d.Month != v.Cursor.Month {
		return nil
	}
	if d.Day < 1 || d.Day > len(v.Days) {
		return nil
	}
	return v.Days[d.Day-1].Tasks
}
