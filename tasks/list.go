package tasks

import (
	"sort"
	"strings"
	"time"
)

// Filter narrows a task list. Empty fields match everything.
type Filter struct {
	Search   string
	Status   Status
	Priority Priority
}

func (f Filter) Matches(t Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		return strings.Contains(strings.ToLower(t.Title), q) ||
			strings.Contains(strings.ToLower(t.Description), q)
	}
	return true
}

// Apply returns the matching tasks in their original order.
func (f Filter) Apply(list []Task) []Task {
	matched := make([]Task, 0, len(list))
	for _, t := range list {
		if f.Matches(t) {
			matched = append(matched, t)
		}
	}
	return matched
}

// Open drops done tasks.
func Open(list []Task) []Task {
	return keep(list, Task.IsOpen)
}

func Completed(list []Task) []Task {
	return Filter{Status: StatusDone}.Apply(list)
}

func keep(list []Task, pred func(Task) bool) []Task {
	kept := make([]Task, 0, len(list))
	for _, t := range list {
		if pred(t) {
			kept = append(kept, t)
		}
	}
	return kept
}

// SortByDueDate sorts a copy of list. Undated tasks go last in either direction.
func SortByDueDate(list []Task, desc bool) []Task {
	sorted := append([]Task(nil), list...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].DueDate, sorted[j].DueDate
		switch {
		case a.IsZero() || b.IsZero():
			return !a.IsZero() && b.IsZero()
		case desc:
			return a.After(b)
		default:
			return a.Before(b)
		}
	})
	return sorted
}

// SortByPriority sorts a copy of list, high first.
func SortByPriority(list []Task) []Task {
	sorted := append([]Task(nil), list...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority.Rank() > sorted[j].Priority.Rank()
	})
	return sorted
}

type Stats struct {
	Todo       int
	InProgress int
	Done       int
	Overdue    int
	Total      int
}

func ComputeStats(list []Task, now time.Time) Stats {
	stats := Stats{Total: len(list)}
	for _, t := range list {
		switch t.Status {
		case StatusTodo:
			stats.Todo++
		case StatusInProgress:
			stats.InProgress++
		case StatusDone:
			stats.Done++
		}
		if t.IsOverdue(now) {
			stats.Overdue++
		}
	}
	return stats
}

// Recent returns up to n open tasks, soonest due first.
func Recent(list []Task, n int) []Task {
	return limit(SortByDueDate(Open(list), false), n)
}

// UpcomingDeadlines returns up to n open tasks due between today and today+window.
func UpcomingDeadlines(list []Task, now time.Time, window time.Duration, n int) []Task {
	today := Today(now)
	end := Today(now.Add(window))

	upcoming := keep(Open(list), func(t Task) bool {
		return !t.DueDate.IsZero() && !t.DueDate.Before(today) && !t.DueDate.After(end)
	})
	return limit(SortByDueDate(upcoming, false), n)
}

type CompletedSummary struct {
	Total        int
	HighPriority int
	ThisWeek     int
}

// CompletedStats summarises done tasks. ThisWeek counts tasks whose due date is no earlier than 7 days ago.
func CompletedStats(list []Task, now time.Time) CompletedSummary {
	weekAgo := Today(now).AddDays(-7)

	var summary CompletedSummary
	for _, t := range Completed(list) {
		summary.Total++
		if t.Priority == PriorityHigh {
			summary.HighPriority++
		}
		if !t.DueDate.IsZero() && !t.DueDate.Before(weekAgo) {
			summary.ThisWeek++
		}
	}
	return summary
}

func limit(list []Task, n int) []Task {
	if n >= 0 && len(list) > n {
		return list[:n]
	}
	return list
}
