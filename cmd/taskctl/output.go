package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/jrsteele09/go-taskmaster/api"
	"github.com/jrsteele09/go-taskmaster/internal/errors"
	"github.com/jrsteele09/go-taskmaster/tasks"
)

var (
	successColor = color.New(color.FgGreen)
	noticeColor  = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
	mutedColor   = color.New(color.FgHiBlack)
	overdueColor = color.New(color.FgRed)
)

var priorityColors = map[tasks.Priority]*color.Color{
	tasks.PriorityHigh:   color.New(color.FgRed),
	tasks.PriorityMedium: color.New(color.FgYellow),
	tasks.PriorityLow:    color.New(color.FgCyan),
}

var statusColors = map[tasks.Status]*color.Color{
	tasks.StatusTodo:       color.New(color.FgWhite),
	tasks.StatusInProgress: color.New(color.FgBlue),
	tasks.StatusDone:       color.New(color.FgGreen),
}

func colored(c *color.Color, s string) string {
	if c == nil {
		return s
	}
	return c.Sprint(s)
}

func printError(w io.Writer, err error) {
	if errors.Is(err, errors.ErrSessionExpired) {
		errorColor.Fprintln(w, "Session expired, run `taskctl login`")
		return
	}
	errorColor.Fprintln(w, "Error:", describe(err))
}

// describe turns err into one line for the terminal.
func describe(err error) string {
	var fields tasks.FieldErrors
	if errors.As(err, &fields) {
		return fields.Error()
	}
	var verr *api.ValidationError
	var serr *api.StatusError
	if errors.As(err, &verr) || errors.As(err, &serr) ||
		errors.Is(err, errors.ErrTransport) || errors.Is(err, errors.ErrSignInAfterSignUp) {
		return api.Message(err)
	}
	return err.Error()
}

func dueLabel(t tasks.Task, now time.Time) string {
	if t.DueDate.IsZero() {
		return mutedColor.Sprint("-")
	}
	if t.IsOverdue(now) {
		return overdueColor.Sprintf("%s (overdue)", t.DueDate)
	}
	return t.DueDate.String()
}

func printTaskTable(w io.Writer, list []tasks.Task, now time.Time) {
	if len(list) == 0 {
		mutedColor.Fprintln(w, "No tasks")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRIORITY\tSTATUS\tDUE")
	for _, t := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			t.ID,
			t.Title,
			colored(priorityColors[t.Priority], t.Priority.Label()),
			colored(statusColors[t.Status], t.Status.Label()),
			dueLabel(t, now),
		)
	}
	tw.Flush()
}

func printTask(w io.Writer, t tasks.Task, now time.Time) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", t.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", t.Title)
	fmt.Fprintf(tw, "Priority:\t%s\n", colored(priorityColors[t.Priority], t.Priority.Label()))
	fmt.Fprintf(tw, "Status:\t%s\n", colored(statusColors[t.Status], t.Status.Label()))
	fmt.Fprintf(tw, "Due:\t%s\n", dueLabel(t, now))
	if t.CreatedDate != nil {
		fmt.Fprintf(tw, "Created:\t%s\n", t.CreatedDate.Format(time.RFC3339))
	}
	tw.Flush()
	if t.Description != "" {
		fmt.Fprintf(w, "\n%s\n", t.Description)
	}
}
