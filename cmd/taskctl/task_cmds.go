package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/jrsteele09/go-taskmaster/tasks"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	sortDue      = "due"
	sortDueDesc  = "due-desc"
	sortPriority = "priority"

	upcomingWindow = 7 * 24 * time.Hour
)

func newTasksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "List and edit tasks",
	}
	cmd.AddCommand(
		newTasksListCmd(a),
		newTasksShowCmd(a),
		newTasksAddCmd(a),
		newTasksUpdateCmd(a),
		newTasksStatusCmd(a, "done", "Mark a task as done", tasks.StatusDone),
		newTasksStatusCmd(a, "reopen", "Move a done task back to to do", tasks.StatusTodo),
		newTasksRemoveCmd(a),
	)
	return cmd
}

func newTasksListCmd(a *app) *cobra.Command {
	var (
		filter    tasks.Filter
		status    string
		priority  string
		sortOrder string
		completed bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter.Status = tasks.Status(status)
			filter.Priority = tasks.Priority(priority)
			if completed {
				filter.Status = tasks.StatusDone
			}
			if filter.Status != "" && !filter.Status.Valid() {
				return fmt.Errorf("unknown status %q", status)
			}
			if filter.Priority != "" && !filter.Priority.Valid() {
				return fmt.Errorf("unknown priority %q", priority)
			}

			list, err := a.client.Tasks(cmd.Context())
			if err != nil {
				return err
			}
			list = filter.Apply(list)

			switch sortOrder {
			case sortDue:
				list = tasks.SortByDueDate(list, false)
			case sortDueDesc:
				list = tasks.SortByDueDate(list, true)
			case sortPriority:
				list = tasks.SortByPriority(tasks.SortByDueDate(list, false))
			default:
				return fmt.Errorf("unknown sort %q, use %s, %s or %s", sortOrder, sortDue, sortDueDesc, sortPriority)
			}

			printTaskTable(cmd.OutOrStdout(), list, NowTimeFunc())
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only tasks with this status (todo, in_progress, done)")
	cmd.Flags().StringVar(&priority, "priority", "", "only tasks with this priority (low, medium, high)")
	cmd.Flags().StringVar(&filter.Search, "search", "", "only tasks whose title or description contains this text")
	cmd.Flags().StringVar(&sortOrder, "sort", sortDue, "sort order: due, due-desc or priority")
	cmd.Flags().BoolVar(&completed, "completed", false, "only done tasks")
	return cmd
}

func newTasksShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			task, err := a.client.Task(cmd.Context(), id)
			if err != nil {
				return err
			}
			printTask(cmd.OutOrStdout(), task, NowTimeFunc())
			return nil
		},
	}
}

// taskFlags are the editable task fields as command line flags.
type taskFlags struct {
	title       string
	description string
	priority    string
	status      string
	due         string
}

func (f *taskFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.title, "title", "", "task title")
	flags.StringVar(&f.description, "description", "", "task description")
	flags.StringVar(&f.priority, "priority", string(tasks.PriorityMedium), "low, medium or high")
	flags.StringVar(&f.status, "status", string(tasks.StatusTodo), "todo, in_progress or done")
	flags.StringVar(&f.due, "due", "", "due date as YYYY-MM-DD, empty for none")
}

// apply copies every flag that was set on the command line onto draft.
func (f *taskFlags) apply(flags *pflag.FlagSet, draft tasks.NewTask) (tasks.NewTask, error) {
	if flags.Changed("title") {
		draft.Title = strings.TrimSpace(f.title)
	}
	if flags.Changed("description") {
		draft.Description = strings.TrimSpace(f.description)
	}
	if flags.Changed("priority") {
		draft.Priority = tasks.Priority(f.priority)
	}
	if flags.Changed("status") {
		draft.Status = tasks.Status(f.status)
	}
	if flags.Changed("due") {
		due, err := tasks.ParseDate(strings.TrimSpace(f.due))
		if err != nil {
			return draft, tasks.FieldErrors{"due_date": "Enter a valid date"}
		}
		draft.DueDate = due
	}
	return draft, nil
}

func newTasksAddCmd(a *app) *cobra.Command {
	var f taskFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			draft, err := f.apply(cmd.Flags(), tasks.NewTask{
				Priority: tasks.Priority(f.priority),
				Status:   tasks.Status(f.status),
			})
			if err != nil {
				return err
			}
			if err := tasks.ValidateNewTask(draft); err != nil {
				return err
			}
			created, err := a.client.CreateTask(cmd.Context(), draft)
			if err != nil {
				return err
			}
			successColor.Fprintf(cmd.OutOrStdout(), "Created task %d: %s\n", created.ID, created.Title)
			return nil
		},
	}
	f.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newTasksUpdateCmd(a *app) *cobra.Command {
	var f taskFlags

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change the fields given as flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			original, err := a.client.Task(cmd.Context(), id)
			if err != nil {
				return err
			}
			draft, err := f.apply(cmd.Flags(), original.Draft())
			if err != nil {
				return err
			}
			if err := tasks.ValidateNewTask(draft); err != nil {
				return err
			}

			patch := tasks.Diff(original, draft)
			if patch.IsEmpty() {
				noticeColor.Fprintln(cmd.OutOrStdout(), "No changes to save")
				return nil
			}
			updated, err := a.client.UpdateTask(cmd.Context(), id, patch)
			if err != nil {
				return err
			}
			successColor.Fprintf(cmd.OutOrStdout(), "Updated task %d: %s\n", updated.ID, updated.Title)
			return nil
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newTasksStatusCmd(a *app, use, short string, status tasks.Status) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			updated, err := a.client.UpdateTask(cmd.Context(), id, tasks.StatusPatch(status))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %d is now %s\n", updated.ID, colored(statusColors[updated.Status], updated.Status.Label()))
			return nil
		},
	}
}

func newTasksRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.client.DeleteTask(cmd.Context(), id); err != nil {
				return err
			}
			successColor.Fprintf(cmd.OutOrStdout(), "Deleted task %d\n", id)
			return nil
		},
	}
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarise tasks and upcoming deadlines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.client.Tasks(cmd.Context())
			if err != nil {
				return err
			}
			now := NowTimeFunc()
			stats := tasks.ComputeStats(list, now)
			done := tasks.CompletedStats(list, now)

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Total:        %d\n", stats.Total)
			fmt.Fprintf(w, "To do:        %s\n", colored(statusColors[tasks.StatusTodo], fmt.Sprint(stats.Todo)))
			fmt.Fprintf(w, "In progress:  %s\n", colored(statusColors[tasks.StatusInProgress], fmt.Sprint(stats.InProgress)))
			fmt.Fprintf(w, "Done:         %s (%d high priority, %d this week)\n",
				colored(statusColors[tasks.StatusDone], fmt.Sprint(stats.Done)), done.HighPriority, done.ThisWeek)
			fmt.Fprintf(w, "Overdue:      %s\n", overdueColor.Sprint(stats.Overdue))

			fmt.Fprintln(w, "\nDue in the next 7 days:")
			printTaskTable(w, tasks.UpcomingDeadlines(list, now, upcomingWindow, 5), now)
			return nil
		},
	}
}
