// Package views derives display-ready groupings from the loaded page of
// tasks. Every projection is a pure function of (page data, local UI
// state); none holds task data of its own and none mutates the shared
// page in place.
package views

import (
	"strings"

	"github.com/taskdeck/taskdeck/internal/task"
)

// Counts aggregates the loaded set per status.
type Counts struct {
	Pending    int
	InProgress int
	Completed  int
}

// Of returns the count for one status.
func (c Counts) Of(s task.Status) int {
	switch s {
	case task.StatusPending:
		return c.Pending
	case task.StatusInProgress:
		return c.InProgress
	case task.StatusCompleted:
		return c.Completed
	}
	return 0
}

// CountByStatus tallies the loaded set. Counts reflect only what is
// loaded, not the server-side total.
func CountByStatus(items []task.Task) Counts {
	var c Counts
	for _, t := range items {
		switch t.Status {
		case task.StatusPending:
			c.Pending++
		case task.StatusInProgress:
			c.InProgress++
		case task.StatusCompleted:
			c.Completed++
		}
	}
	return c
}

// Pager describes the page-number control next to the list.
type Pager struct {
	Current int
	Total   int
	HasPrev bool
	HasNext bool
}

// ListView is the paginated list rendering of the current page.
type ListView struct {
	Rows   []task.Task
	Counts Counts
	Pager  Pager
}

// ProjectList passes the page's ordered sequence through, narrowed by the
// local search query. The query matches title and description,
// case-insensitive, and never leaves the client.
func ProjectList(page task.Page, search string) ListView {
	rows := page.Items
	if q := strings.ToLower(strings.TrimSpace(search)); q != "" {
		rows = nil
		for _, t := range page.Items {
			if strings.Contains(strings.ToLower(t.Title), q) ||
				strings.Contains(strings.ToLower(t.Description), q) {
				rows = append(rows, t)
			}
		}
	}

	total := page.TotalPages
	if total < 1 {
		total = 1
	}
	return ListView{
		Rows:   rows,
		Counts: CountByStatus(page.Items),
		Pager: Pager{
			Current: page.CurrentPage,
			Total:   total,
			HasPrev: page.CurrentPage > 1,
			HasNext: page.CurrentPage < page.TotalPages,
		},
	}
}
