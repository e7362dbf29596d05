package tasks_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jrsteele09/go-taskmaster/internal/errors"
	"github.com/jrsteele09/go-taskmaster/tasks"
	"github.com/stretchr/testify/require"
)

func TestTaskJSON(t *testing.T) {
	raw := `[{"id":1,"title":"X","status":"todo","priority":"medium","due_date":"2024-01-01"}]`

	var list []tasks.Task
	require.NoError(t, json.Unmarshal([]byte(raw), &list))
	require.Len(t, list, 1)
	require.Equal(t, int64(1), list[0].ID)
	require.Equal(t, tasks.StatusTodo, list[0].Status)
	require.Equal(t, tasks.PriorityMedium, list[0].Priority)
	require.Equal(t, tasks.NewDate(2024, time.January, 1), list[0].DueDate)
	require.Nil(t, list[0].CreatedDate)

	t.Run("null and timestamp due dates", func(t *testing.T) {
		var task tasks.Task
		require.NoError(t, json.Unmarshal([]byte(`{"due_date":null}`), &task))
		require.True(t, task.DueDate.IsZero())

		require.NoError(t, json.Unmarshal([]byte(`{"due_date":"2024-03-05T10:00:00Z"}`), &task))
		require.Equal(t, "2024-03-05", task.DueDate.String())

		require.Error(t, json.Unmarshal([]byte(`{"due_date":"tomorrow"}`), &task))
	})

	t.Run("patch carries only set fields", func(t *testing.T) {
		data, err := json.Marshal(tasks.StatusPatch(tasks.StatusDone))
		require.NoError(t, err)
		require.JSONEq(t, `{"status":"done"}`, string(data))
	})

	t.Run("new task without due date", func(t *testing.T) {
		data, err := json.Marshal(tasks.NewTask{Title: "a", Priority: tasks.PriorityLow, Status: tasks.StatusTodo})
		require.NoError(t, err)
		require.JSONEq(t, `{"title":"a","description":"","priority":"low","due_date":null,"status":"todo"}`, string(data))
	})
}

func TestDiff(t *testing.T) {
	original := tasks.Task{
		ID:       7,
		Title:    "Write report",
		Priority: tasks.PriorityLow,
		DueDate:  tasks.NewDate(2024, time.May, 2),
		Status:   tasks.StatusTodo,
	}

	require.True(t, tasks.Diff(original, original.Draft()).IsEmpty())

	updated := original.Draft()
	updated.Priority = tasks.PriorityHigh
	updated.DueDate = tasks.NewDate(2024, time.May, 3)

	patch := tasks.Diff(original, updated)
	require.Nil(t, patch.Title)
	require.Nil(t, patch.Status)
	require.Equal(t, tasks.PriorityHigh, *patch.Priority)
	require.Equal(t, "2024-05-03", patch.DueDate.String())
}

func TestPriorityAndStatus(t *testing.T) {
	require.True(t, tasks.PriorityHigh.Valid())
	require.False(t, tasks.Priority("urgent").Valid())
	require.Greater(t, tasks.PriorityHigh.Rank(), tasks.PriorityMedium.Rank())
	require.Greater(t, tasks.PriorityMedium.Rank(), tasks.PriorityLow.Rank())

	require.True(t, tasks.StatusInProgress.Valid())
	require.False(t, tasks.Status("blocked").Valid())
	require.Equal(t, "In progress", tasks.StatusInProgress.Label())
}

func TestValidation(t *testing.T) {
	t.Run("new task", func(t *testing.T) {
		err := tasks.ValidateNewTask(tasks.NewTask{Title: " ", Priority: "urgent", Status: tasks.StatusTodo})
		require.ErrorIs(t, err, errors.ErrInvalidInput)

		var fields tasks.FieldErrors
		require.True(t, errors.As(err, &fields))
		require.Contains(t, fields, "title")
		require.Contains(t, fields, "priority")
		require.NotContains(t, fields, "status")

		require.NoError(t, tasks.ValidateNewTask(tasks.NewTask{Title: "ok", Priority: tasks.PriorityLow, Status: tasks.StatusDone}))
	})

	t.Run("credentials", func(t *testing.T) {
		require.NoError(t, tasks.ValidateCredentials("a@example.com", "pw"))
		require.Error(t, tasks.ValidateCredentials("", "pw"))
		require.Error(t, tasks.ValidateCredentials("not-an-email", "pw"))
		require.Error(t, tasks.ValidateCredentials("a@example.com", ""))
	})

	t.Run("registration", func(t *testing.T) {
		require.NoError(t, tasks.ValidateRegistration("a@example.com", "pw", "pw"))
		err := tasks.ValidateRegistration("a@example.com", "pw", "other")
		var fields tasks.FieldErrors
		require.True(t, errors.As(err, &fields))
		require.Equal(t, "Passwords do not match", fields.First())
	})

	t.Run("password reset", func(t *testing.T) {
		require.NoError(t, tasks.ValidatePasswordReset("uid", "tok", "pw", "pw"))
		require.Error(t, tasks.ValidatePasswordReset("", "tok", "pw", "pw"))
		require.Error(t, tasks.ValidatePasswordReset("uid", "tok", "pw", "px"))
	})
}
