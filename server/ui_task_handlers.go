package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/go-taskmaster/api"
	"github.com/jrsteele09/go-taskmaster/tasks"
)

// TaskRow is a task plus what the templates cannot work out themselves.
type TaskRow struct {
	tasks.Task
	Overdue bool
}

func taskRows(list []tasks.Task, now time.Time) []TaskRow {
	rows := make([]TaskRow, 0, len(list))
	for _, t := range list {
		rows = append(rows, TaskRow{Task: t, Overdue: t.IsOverdue(now)})
	}
	return rows
}

type TaskListPageData struct {
	Tasks      []TaskRow
	Filter     tasks.Filter
	Total      int
	Statuses   []tasks.Status
	Priorities []tasks.Priority
}

type CompletedPageData struct {
	Tasks   []TaskRow
	Search  string
	Sort    string
	Summary tasks.CompletedSummary
}

type TaskFormPageData struct {
	ID         int64
	Editing    bool
	Action     string
	Form       tasks.NewTask
	DueDate    string
	Fields     map[string]string
	Statuses   []tasks.Status
	Priorities []tasks.Priority
}

func newTaskForm(action string, form tasks.NewTask) TaskFormPageData {
	return TaskFormPageData{
		Action:     action,
		Form:       form,
		DueDate:    form.DueDate.String(),
		Statuses:   tasks.Statuses,
		Priorities: tasks.Priorities,
	}
}

// TaskListHandler lists every task, narrowed by the search, status and priority query parameters.
func (s *Server) TaskListHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("tasks.html")

	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		data := TaskListPageData{
			Filter: tasks.Filter{
				Search:   strings.TrimSpace(query.Get("search")),
				Status:   tasks.Status(query.Get("status")),
				Priority: tasks.Priority(query.Get("priority")),
			},
			Statuses:   tasks.Statuses,
			Priorities: tasks.Priorities,
		}
		p := page{Active: "tasks", Title: "Tasks"}

		list, err := clientFromContext(r.Context()).Tasks(r.Context())
		if err != nil {
			if s.sessionEnded(w, r, err) {
				return
			}
			p.Error, p.Status = api.Message(err), failureStatus(err)
		}

		data.Total = len(list)
		data.Tasks = taskRows(tasks.SortByDueDate(data.Filter.Apply(list), false), NowTimeFunc())
		s.renderPage(w, r, tmpl, p, data)
	}
}

// CompletedTasksHandler lists done tasks. sort=priority orders high first, otherwise latest due date first.
func (s *Server) CompletedTasksHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("tasks_completed.html")

	return func(w http.ResponseWriter, r *http.Request) {
		now := NowTimeFunc()
		data := CompletedPageData{
			Search: strings.TrimSpace(r.URL.Query().Get("search")),
			Sort:   r.URL.Query().Get("sort"),
		}
		if data.Sort != "priority" {
			data.Sort = "date"
		}
		p := page{Active: "completed", Title: "Completed tasks"}

		list, err := clientFromContext(r.Context()).Tasks(r.Context())
		if err != nil {
			if s.sessionEnded(w, r, err) {
				return
			}
			p.Error, p.Status = api.Message(err), failureStatus(err)
		}

		done := tasks.Filter{Search: data.Search}.Apply(tasks.Completed(list))
		if data.Sort == "priority" {
			done = tasks.SortByPriority(done)
		} else {
			done = tasks.SortByDueDate(done, true)
		}
		data.Tasks = taskRows(done, now)
		data.Summary = tasks.CompletedStats(list, now)
		s.renderPage(w, r, tmpl, p, data)
	}
}

func (s *Server) NewTaskGetHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("task_form.html")

	return func(w http.ResponseWriter, r *http.Request) {
		s.renderPage(w, r, tmpl, page{Active: "new", Title: "New task"}, newTaskForm(RouteTaskNew, tasks.NewTask{
			Priority: tasks.PriorityMedium,
			Status:   tasks.StatusTodo,
		}))
	}
}

func (s *Server) NewTaskPostHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("task_form.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		draft, err := parseTaskForm(r)
		if err == nil {
			err = tasks.ValidateNewTask(draft)
		}
		if err == nil {
			_, err = clientFromContext(r.Context()).CreateTask(r.Context(), draft)
		}
		if err != nil {
			if s.sessionEnded(w, r, err) {
				return
			}
			data := newTaskForm(RouteTaskNew, draft)
			data.DueDate = r.FormValue("due_date")
			msg, fields := formErrors(err)
			data.Fields = fields
			s.renderPage(w, r, tmpl, page{Active: "new", Title: "New task", Error: msg, Status: failureStatus(err)}, data)
			return
		}

		redirectWithNotice(w, r, RouteTasks, "Task created")
	}
}

func (s *Server) TaskDetailGetHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("task_form.html")
	notFound := mustParseTemplate("not_found.html")

	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := taskID(r)
		if !ok {
			s.renderPage(w, r, notFound, page{Title: "Not found", Status: http.StatusNotFound}, nil)
			return
		}

		task, err := clientFromContext(r.Context()).Task(r.Context(), id)
		if err != nil {
			if s.sessionEnded(w, r, err) {
				return
			}
			if api.IsNotFound(err) {
				s.renderPage(w, r, notFound, page{Title: "Not found", Status: http.StatusNotFound}, nil)
				return
			}
			redirectWithError(w, r, RouteTasks, api.Message(err))
			return
		}

		data := newTaskForm(taskPath(id), task.Draft())
		data.ID, data.Editing = id, true
		s.renderPage(w, r, tmpl, page{Active: "tasks", Title: task.Title}, data)
	}
}

// TaskDetailPostHandler saves an edit, sending only the fields that changed.
func (s *Server) TaskDetailPostHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("task_form.html")

	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := taskID(r)
		if !ok {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		ctx := r.Context()
		client := clientFromContext(ctx)

		original, err := client.Task(ctx, id)
		if err != nil {
			if s.sessionEnded(w, r, err) {
				return
			}
			redirectWithError(w, r, RouteTasks, api.Message(err))
			return
		}

		draft, err := parseTaskForm(r)
		if err == nil {
			err = tasks.ValidateNewTask(draft)
		}
		if err == nil {
			patch := tasks.Diff(original, draft)
			if patch.IsEmpty() {
				redirectWithNotice(w, r, taskPath(id), "No changes to save")
				return
			}
			_, err = client.UpdateTask(ctx, id, patch)
		}
		if err != nil {
			if s.sessionEnded(w, r, err) {
				return
			}
			data := newTaskForm(taskPath(id), draft)
			data.ID, data.Editing = id, true
			data.DueDate = r.FormValue("due_date")
			msg, fields := formErrors(err)
			data.Fields = fields
			s.renderPage(w, r, tmpl, page{Active: "tasks", Title: original.Title, Error: msg, Status: failureStatus(err)}, data)
			return
		}

		redirectWithNotice(w, r, taskPath(id), "Task updated")
	}
}

// TaskStatusHandler is the quick status change used by the list pages, including reopen.
func (s *Server) TaskStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := taskID(r)
		if !ok {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		next := localPath(r.FormValue("next"), RouteTasks)

		status := tasks.Status(r.FormValue("status"))
		if !status.Valid() {
			redirectWithError(w, r, next, "Unknown status")
			return
		}

		if _, err := clientFromContext(r.Context()).UpdateTask(r.Context(), id, tasks.StatusPatch(status)); err != nil {
			if s.sessionEnded(w, r, err) {
				return
			}
			redirectWithError(w, r, next, api.Message(err))
			return
		}
		redirectSuccess(w, r, next)
	}
}

func (s *Server) TaskDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := taskID(r)
		if !ok {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		next := localPath(r.FormValue("next"), RouteTasks)

		if err := clientFromContext(r.Context()).DeleteTask(r.Context(), id); err != nil {
			if s.sessionEnded(w, r, err) {
				return
			}
			redirectWithError(w, r, next, api.Message(err))
			return
		}
		redirectWithNotice(w, r, next, "Task deleted")
	}
}

func taskID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

// parseTaskForm reads the task form. An unparsable due date is reported as a field error.
func parseTaskForm(r *http.Request) (tasks.NewTask, error) {
	draft := tasks.NewTask{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Priority:    tasks.Priority(r.FormValue("priority")),
		Status:      tasks.Status(r.FormValue("status")),
	}
	due, err := tasks.ParseDate(strings.TrimSpace(r.FormValue("due_date")))
	if err != nil {
		return draft, tasks.FieldErrors{"due_date": "Enter a valid date"}
	}
	draft.DueDate = due
	return draft, nil
}
