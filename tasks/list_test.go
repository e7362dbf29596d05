package tasks_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-taskmaster/tasks"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, time.June, 10, 15, 0, 0, 0, time.UTC)

func setupTestFixture() []tasks.Task {
	day := func(offset int) tasks.Date { return tasks.Today(now).AddDays(offset) }
	return []tasks.Task{
		{ID: 1, Title: "Buy milk", Description: "semi-skimmed", Priority: tasks.PriorityLow, Status: tasks.StatusTodo, DueDate: day(2)},
		{ID: 2, Title: "Ship release", Priority: tasks.PriorityHigh, Status: tasks.StatusInProgress, DueDate: day(-1)},
		{ID: 3, Title: "Write notes", Priority: tasks.PriorityMedium, Status: tasks.StatusTodo},
		{ID: 4, Title: "File taxes", Priority: tasks.PriorityHigh, Status: tasks.StatusDone, DueDate: day(-3)},
		{ID: 5, Title: "Plan trip", Description: "buy tickets", Priority: tasks.PriorityMedium, Status: tasks.StatusTodo, DueDate: day(10)},
		{ID: 6, Title: "Old chore", Priority: tasks.PriorityLow, Status: tasks.StatusDone, DueDate: day(-30)},
		{ID: 7, Title: "Call bank", Priority: tasks.PriorityMedium, Status: tasks.StatusTodo, DueDate: day(0)},
	}
}

func ids(list []tasks.Task) []int64 {
	out := make([]int64, 0, len(list))
	for _, t := range list {
		out = append(out, t.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	list := setupTestFixture()

	require.Equal(t, []int64{1, 5}, ids(tasks.Filter{Search: "BUY"}.Apply(list)))
	require.Equal(t, []int64{4, 6}, ids(tasks.Filter{Status: tasks.StatusDone}.Apply(list)))
	require.Equal(t, []int64{2}, ids(tasks.Filter{Status: tasks.StatusInProgress, Priority: tasks.PriorityHigh}.Apply(list)))
	require.Len(t, tasks.Filter{}.Apply(list), len(list))
}

func TestSorts(t *testing.T) {
	list := setupTestFixture()

	require.Equal(t, []int64{6, 4, 2, 7, 1, 5, 3}, ids(tasks.SortByDueDate(list, false)))
	require.Equal(t, []int64{5, 1, 7, 2, 4, 6, 3}, ids(tasks.SortByDueDate(list, true)))
	require.Equal(t, []int64{2, 4, 3, 5, 7, 1, 6}, ids(tasks.SortByPriority(list)))

	// input untouched
	require.Equal(t, []int64{1, 2, 3, 4, 5, 6, 7}, ids(list))
}

func TestComputeStats(t *testing.T) {
	stats := tasks.ComputeStats(setupTestFixture(), now)
	require.Equal(t, tasks.Stats{Todo: 4, InProgress: 1, Done: 2, Overdue: 1, Total: 7}, stats)
}

func TestRecentAndUpcoming(t *testing.T) {
	list := setupTestFixture()

	require.Equal(t, []int64{2, 7, 1, 5, 3}, ids(tasks.Recent(list, 5)))
	require.Equal(t, []int64{2, 7}, ids(tasks.Recent(list, 2)))

	require.Equal(t, []int64{7, 1}, ids(tasks.UpcomingDeadlines(list, now, 7*24*time.Hour, 3)))
	require.Equal(t, []int64{7}, ids(tasks.UpcomingDeadlines(list, now, 7*24*time.Hour, 1)))
}

func TestCompletedStats(t *testing.T) {
	summary := tasks.CompletedStats(setupTestFixture(), now)
	require.Equal(t, tasks.CompletedSummary{Total: 2, HighPriority: 1, ThisWeek: 1}, summary)
}
