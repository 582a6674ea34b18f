package cmd

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/task"
	"github.com/taskdeck/taskdeck/internal/views"
)

// lsCommand lists one page of tasks.
func lsCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskdeck ls", flag.ContinueOnError)
	statusName := fs.String("status", "", "Filter by status (pending|in-progress|completed)")
	page := fs.Int("page", 1, "Page to show")
	pageSize := fs.Int("page-size", cfg.PageSize, "Page size")
	search := fs.String("search", "", "Narrow the page to tasks whose title contains the text")

	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if len(remaining) > 1 {
		return fmt.Errorf("unexpected arguments: %v", remaining[1:])
	}
	if len(remaining) == 1 && *statusName == "" {
		*statusName = remaining[0]
	}

	filter := task.FilterAll
	if *statusName != "" && *statusName != "all" {
		s, err := task.ParseStatus(*statusName)
		if err != nil {
			return err
		}
		filter = task.FilterBy(s)
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireAuth(); err != nil {
		return err
	}

	p, err := a.client.ListTasks(ctx, *page, *pageSize, filter)
	if err != nil {
		return err
	}

	view := views.ProjectList(p, *search)
	if len(view.Rows) == 0 {
		fmt.Println("No tasks found.")
	}
	for _, t := range view.Rows {
		printTask(t)
	}
	fmt.Println()
	fmt.Printf("Page %d/%d, %d tasks total", view.Pager.Current, view.Pager.Total, p.TotalCount)
	if !filter.All() {
		fmt.Printf(" (%s only)", filter)
	}
	fmt.Println()
	return nil
}

// addCommand creates a task. The title is the remaining arguments joined.
func addCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskdeck add", flag.ContinueOnError)
	desc := fs.String("desc", "", "Task description")
	due := fs.String("due", "", "Due date (YYYY-MM-DD)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	title := strings.TrimSpace(strings.Join(fs.Args(), " "))

	req := task.CreateRequest{Title: title, Description: *desc}
	if *due != "" {
		d, err := task.ParseDate(*due)
		if err != nil {
			return fmt.Errorf("parsing due date: %w", err)
		}
		req.DueDate = &d
	}
	if verr := req.Validate(); verr != nil {
		return verr
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireAuth(); err != nil {
		return err
	}

	created, err := a.client.CreateTask(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("Created task %d: %s\n", created.ID, created.Title)
	return nil
}

// editCommand updates a task. Only fields set via flags change; the rest
// of the full-object payload is carried over from the current task.
func editCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskdeck edit", flag.ContinueOnError)
	title := fs.String("title", "", "New title")
	desc := fs.String("desc", "", "New description")
	due := fs.String("due", "", "New due date (YYYY-MM-DD, 'none' clears it)")
	statusName := fs.String("status", "", "New status (pending|in-progress|completed)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := idArg(fs.Args())
	if err != nil {
		return err
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireAuth(); err != nil {
		return err
	}

	current, err := findTask(ctx, a, cfg, id)
	if err != nil {
		return err
	}
	req := task.UpdateFrom(current)

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["title"] {
		req.Title = *title
	}
	if set["desc"] {
		req.Description = *desc
	}
	if set["due"] {
		if *due == "none" {
			req.DueDate = nil
		} else {
			d, err := task.ParseDate(*due)
			if err != nil {
				return fmt.Errorf("parsing due date: %w", err)
			}
			req.DueDate = &d
		}
	}
	if set["status"] {
		s, err := task.ParseStatus(*statusName)
		if err != nil {
			return err
		}
		req.Status = s
	}
	if len(set) == 0 {
		return fmt.Errorf("nothing to change, pass at least one of -title, -desc, -due, -status")
	}
	if verr := req.Validate(); verr != nil {
		return verr
	}

	updated, err := a.client.UpdateTask(ctx, id, req)
	if err != nil {
		return err
	}
	fmt.Printf("Updated task %d: %s\n", updated.ID, updated.Title)
	return nil
}

// rmCommand deletes a task after an explicit confirmation.
func rmCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskdeck rm", flag.ContinueOnError)
	yes := fs.Bool("y", false, "Skip the confirmation prompt")
	fs.BoolVar(yes, "yes", false, "Skip the confirmation prompt")

	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := idArg(fs.Args())
	if err != nil {
		return err
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireAuth(); err != nil {
		return err
	}

	t, err := findTask(ctx, a, cfg, id)
	if err != nil {
		return err
	}
	if !*yes {
		answer := promptLine(fmt.Sprintf("Delete %q? [y/N] ", t.Title))
		if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := a.client.DeleteTask(ctx, id); err != nil {
		return err
	}
	fmt.Printf("Deleted task %d: %s\n", id, t.Title)
	return nil
}

// statusCommand sets a task's status, keeping the rest of the payload.
func statusCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskdeck status", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if len(remaining) != 2 {
		return fmt.Errorf("usage: taskdeck status <id> <pending|in-progress|completed>")
	}
	id, err := strconv.Atoi(remaining[0])
	if err != nil {
		return fmt.Errorf("invalid task ID %q", remaining[0])
	}
	target, err := task.ParseStatus(remaining[1])
	if err != nil {
		return err
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireAuth(); err != nil {
		return err
	}

	current, err := findTask(ctx, a, cfg, id)
	if err != nil {
		return err
	}
	if current.Status == target {
		fmt.Printf("Task %d is already %s.\n", id, target)
		return nil
	}

	req := task.UpdateFrom(current)
	req.Status = target
	updated, err := a.client.UpdateTask(ctx, id, req)
	if err != nil {
		return err
	}
	fmt.Printf("Task %d is now %s.\n", updated.ID, updated.Status)
	return nil
}

// findTask locates a task by ID by walking the pages of the unfiltered
// collection. The remote contract has no single-task fetch.
func findTask(ctx context.Context, a *app, cfg *config.Config, id int) (task.Task, error) {
	for page := 1; ; page++ {
		p, err := a.client.ListTasks(ctx, page, cfg.BoardPageSize, task.FilterAll)
		if err != nil {
			return task.Task{}, err
		}
		for _, t := range p.Items {
			if t.ID == id {
				return t, nil
			}
		}
		if page >= p.TotalPages {
			return task.Task{}, fmt.Errorf("task %d not found", id)
		}
	}
}

// idArg parses the single positional task-ID argument.
func idArg(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected exactly one task ID argument")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid task ID %q", args[0])
	}
	return id, nil
}

// printTask prints a single task line.
func printTask(t task.Task) {
	icon := "[ ]"
	switch t.Status {
	case task.StatusInProgress:
		icon = "[>]"
	case task.StatusCompleted:
		icon = "[x]"
	}
	line := fmt.Sprintf("  %s #%-4d %s", icon, t.ID, t.Title)
	if t.DueDate != nil {
		line += fmt.Sprintf("  (due %s)", t.DueDate)
	}
	fmt.Println(line)
}
