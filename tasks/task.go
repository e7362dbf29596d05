package tasks

import (
	"time"

	"github.com/jrsteele09/go-taskmaster/internal/utils"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every priority, lowest first.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Rank orders priorities: high=3, medium=2, low=1, unknown=0.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

func (p Priority) Label() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	}
	return string(p)
}

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "To do"
	case StatusInProgress:
		return "In progress"
	case StatusDone:
		return "Done"
	}
	return string(s)
}

// Task is the remote service's task record.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    Priority   `json:"priority"`
	DueDate     Date       `json:"due_date"`
	Status      Status     `json:"status"`
	CreatedDate *time.Time `json:"created_date,omitempty"`
}

func (t Task) IsOpen() bool {
	return t.Status != StatusDone
}

// IsOverdue reports whether an open task's due date is before the day of now.
func (t Task) IsOverdue(now time.Time) bool {
	return t.IsOpen() && !t.DueDate.IsZero() && t.DueDate.Before(Today(now))
}

// Draft returns the editable fields of t.
func (t Task) Draft() NewTask {
	return NewTask{
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
		Status:      t.Status,
	}
}

// NewTask is the create payload.
type NewTask struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	DueDate     Date     `json:"due_date"`
	Status      Status   `json:"status"`
}

// TaskPatch is a partial update. Nil fields are left out of the payload.
type TaskPatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	DueDate     *Date     `json:"due_date,omitempty"`
	Status      *Status   `json:"status,omitempty"`
}

func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil && p.DueDate == nil && p.Status == nil
}

// Diff builds the patch that turns original into updated.
func Diff(original Task, updated NewTask) TaskPatch {
	return TaskPatch{
		Title:       utils.ChangedPtr(original.Title, updated.Title),
		Description: utils.ChangedPtr(original.Description, updated.Description),
		Priority:    utils.ChangedPtr(original.Priority, updated.Priority),
		DueDate:     utils.ChangedPtr(original.DueDate, updated.DueDate),
		Status:      utils.ChangedPtr(original.Status, updated.Status),
	}
}

// StatusPatch changes only the status.
func StatusPatch(status Status) TaskPatch {
	return TaskPatch{Status: &status}
}

// Master is the signed-in account.
type Master struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type MasterPatch struct {
	Email *string `json:"email,omitempty"`
}

func (p MasterPatch) IsEmpty() bool {
	return p.Email == nil
}
