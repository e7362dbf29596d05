package server_test

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-taskmaster/server"
	"github.com/jrsteele09/go-taskmaster/tasks"
	"github.com/stretchr/testify/require"
)

func TestProtectedPagesRequireSession(t *testing.T) {
	f := setupTestFixture(t)

	paths := []string{
		server.RouteHome,
		server.RouteTasks,
		server.RouteTasksCompleted,
		server.RouteTaskNew,
		"/tasks/1",
		server.RouteProfile,
		server.RouteProfileEdit,
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			resp, _ := f.get(t, f.browser(t), path)
			require.Equal(t, http.StatusSeeOther, resp.StatusCode)
			require.Equal(t, server.RouteLogin, resp.Header.Get("Location"))
		})
	}

	t.Run("htmx", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, f.web.URL+server.RouteHome, nil)
		require.NoError(t, err)
		req.Header.Set("HX-Request", "true")

		resp, _ := f.do(t, f.browser(t), req)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		require.Equal(t, server.RouteLogin, resp.Header.Get("HX-Redirect"))
	})

	require.Zero(t, f.fake.Calls(http.MethodGet, "/tasks"))
}

func TestLogin(t *testing.T) {
	f := setupTestFixture(t)
	f.fake.AddAccount(testEmail, testPassword)
	c := f.browser(t)

	t.Run("missing fields never reach the service", func(t *testing.T) {
		resp, _ := f.post(t, c, server.RouteLogin, url.Values{"email": {""}, "password": {""}})
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		require.Zero(t, f.fake.Calls(http.MethodPost, "/login"))
	})

	t.Run("wrong password", func(t *testing.T) {
		resp, body := f.post(t, c, server.RouteLogin, url.Values{"email": {testEmail}, "password": {"nope"}})
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		require.Contains(t, body, "No active account found with the given credentials")
		require.Contains(t, body, testEmail)
		require.Empty(t, f.store.Keys())
	})

	t.Run("success", func(t *testing.T) {
		resp, _ := f.post(t, c, server.RouteLogin, url.Values{"email": {testEmail}, "password": {testPassword}})
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		require.Equal(t, server.RouteHome, resp.Header.Get("Location"))

		keys := f.store.Keys()
		require.Len(t, keys, 2)
		for _, k := range keys {
			require.True(t, strings.HasPrefix(k, "browser:"), k)
		}
	})

	t.Run("signed in browsers skip the form", func(t *testing.T) {
		resp, _ := f.get(t, c, server.RouteLogin)
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		require.Equal(t, server.RouteHome, resp.Header.Get("Location"))

		resp, _ = f.get(t, c, server.RouteIndex)
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	})
}

func TestBrowsersAreIsolated(t *testing.T) {
	f := setupTestFixture(t)
	alice := f.browser(t)
	f.signIn(t, alice)

	resp, _ := f.get(t, alice, server.RouteHome)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = f.get(t, f.browser(t), server.RouteHome)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, server.RouteLogin, resp.Header.Get("Location"))
}

func TestDashboard(t *testing.T) {
	now := time.Date(2024, time.June, 10, 15, 0, 0, 0, time.UTC)
	server.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { server.NowTimeFunc = time.Now })

	f := setupTestFixture(t)
	c := f.browser(t)
	f.signIn(t, c)

	f.fake.AddTask(testEmail, tasks.NewTask{Title: "Write report", Priority: tasks.PriorityHigh, Status: tasks.StatusTodo, DueDate: tasks.NewDate(2024, time.June, 12)})
	f.fake.AddTask(testEmail, tasks.NewTask{Title: "Renew passport", Priority: tasks.PriorityLow, Status: tasks.StatusInProgress, DueDate: tasks.NewDate(2024, time.June, 1)})
	f.fake.AddTask(testEmail, tasks.NewTask{Title: "Ship release", Priority: tasks.PriorityMedium, Status: tasks.StatusDone, DueDate: tasks.NewDate(2024, time.June, 9)})

	resp, body := f.get(t, c, server.RouteHome)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Signed in as "+testEmail)
	require.Contains(t, body, "Write report")
	require.Contains(t, body, "Renew passport")
	require.NotContains(t, body, "Ship release")
	require.Contains(t, body, `class="overdue"`)
	require.Contains(t, body, "Jun 12, 2024")
}

func TestDashboardShowsThreeUpcomingDeadlines(t *testing.T) {
	now := time.Date(2024, time.June, 10, 15, 0, 0, 0, time.UTC)
	server.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { server.NowTimeFunc = time.Now })

	f := setupTestFixture(t)
	c := f.browser(t)
	f.signIn(t, c)

	for day := 11; day <= 14; day++ {
		f.fake.AddTask(testEmail, tasks.NewTask{
			Title:    fmt.Sprintf("Due on the %dth", day),
			Priority: tasks.PriorityMedium,
			Status:   tasks.StatusTodo,
			DueDate:  tasks.NewDate(2024, time.June, day),
		})
	}

	resp, body := f.get(t, c, server.RouteHome)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// recent lists all four, upcoming only the first three
	require.Equal(t, 2, strings.Count(body, "Jun 11, 2024"))
	require.Equal(t, 2, strings.Count(body, "Jun 13, 2024"))
	require.Equal(t, 1, strings.Count(body, "Jun 14, 2024"))
}

func TestDashboardFetchFailureShowsEmpty(t *testing.T) {
	f := setupTestFixture(t)
	c := f.browser(t)
	f.signIn(t, c)
	f.fake.AddTask(testEmail, tasks.NewTask{Title: "Hidden", Priority: tasks.PriorityLow, Status: tasks.StatusTodo})
	f.fake.FailNext(http.MethodGet, "/tasks", http.StatusInternalServerError, "")

	resp, body := f.get(t, c, server.RouteHome)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Nothing open")
	require.NotContains(t, body, "Hidden")
}

func TestSilentRefreshKeepsThePage(t *testing.T) {
	f := setupTestFixture(t)
	c := f.browser(t)
	f.signIn(t, c)
	f.fake.AddTask(testEmail, tasks.NewTask{Title: "Still here", Priority: tasks.PriorityLow, Status: tasks.StatusTodo})
	f.fake.ExpireAccessTokens()

	resp, body := f.get(t, c, server.RouteTasks)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Still here")
	require.Equal(t, 1, f.fake.Calls(http.MethodPost, "/refresh"))
	require.Equal(t, 2, f.fake.Calls(http.MethodGet, "/tasks"))
}

func TestSessionExpiryNavigatesToLogin(t *testing.T) {
	f := setupTestFixture(t)
	c := f.browser(t)
	f.signIn(t, c)
	f.fake.ExpireAccessTokens()
	f.fake.RevokeRefreshTokens()

	resp, _ := f.get(t, c, server.RouteTasks)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.True(t, strings.HasPrefix(resp.Header.Get("Location"), server.RouteLogin+"?error="))
	require.Empty(t, f.store.Keys())

	resp, body := f.get(t, c, resp.Header.Get("Location"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Your session has expired")

	resp, _ = f.get(t, c, server.RouteHome)
	require.Equal(t, server.RouteLogin, resp.Header.Get("Location"))
}

type recordingNavigator struct {
	calls int
}

func (n *recordingNavigator) ToLogin(w http.ResponseWriter, _ *http.Request) {
	n.calls++
	w.WriteHeader(http.StatusUnauthorized)
}

func TestCustomNavigator(t *testing.T) {
	nav := &recordingNavigator{}
	f := setupTestFixture(t, server.WithNavigator(nav))
	c := f.browser(t)
	f.signIn(t, c)
	f.fake.ExpireAccessTokens()
	f.fake.RevokeRefreshTokens()

	resp, _ := f.get(t, c, server.RouteHome)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, 1, nav.calls)
}

func TestTaskLifecycle(t *testing.T) {
	f := setupTestFixture(t)
	c := f.browser(t)
	f.signIn(t, c)

	form := url.Values{
		"title":       {"Buy milk"},
		"description": {"semi skimmed"},
		"priority":    {"high"},
		"status":      {"todo"},
		"due_date":    {"2024-07-01"},
	}
	resp, _ := f.post(t, c, server.RouteTaskNew, form)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/tasks?notice=Task+created", resp.Header.Get("Location"))

	resp, body := f.get(t, c, server.RouteTasks)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Buy milk")

	t.Run("detail shows the stored values", func(t *testing.T) {
		resp, body := f.get(t, c, "/tasks/1")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Contains(t, body, `value="2024-07-01"`)
		require.Contains(t, body, "semi skimmed")
	})

	t.Run("unchanged edit sends nothing", func(t *testing.T) {
		resp, _ := f.post(t, c, "/tasks/1", form)
		require.Equal(t, "/tasks/1?notice=No+changes+to+save", resp.Header.Get("Location"))
		require.Zero(t, f.fake.Calls(http.MethodPatch, "/tasks/1"))
	})

	t.Run("edit", func(t *testing.T) {
		edited := url.Values{}
		for k, v := range form {
			edited[k] = v
		}
		edited.Set("title", "Buy oat milk")

		resp, _ := f.post(t, c, "/tasks/1", edited)
		require.Equal(t, "/tasks/1?notice=Task+updated", resp.Header.Get("Location"))
		require.Equal(t, 1, f.fake.Calls(http.MethodPatch, "/tasks/1"))
	})

	t.Run("complete then reopen", func(t *testing.T) {
		resp, _ := f.post(t, c, "/tasks/1/status", url.Values{"status": {"done"}, "next": {server.RouteTasksCompleted}})
		require.Equal(t, server.RouteTasksCompleted, resp.Header.Get("Location"))

		_, body := f.get(t, c, server.RouteTasksCompleted)
		require.Contains(t, body, "Buy oat milk")
		require.Contains(t, body, "Reopen")

		resp, _ = f.post(t, c, "/tasks/1/status", url.Values{"status": {"todo"}, "next": {server.RouteTasksCompleted}})
		require.Equal(t, server.RouteTasksCompleted, resp.Header.Get("Location"))

		_, body = f.get(t, c, server.RouteTasksCompleted)
		require.NotContains(t, body, "Buy oat milk")
	})

	t.Run("delete", func(t *testing.T) {
		resp, _ := f.post(t, c, "/tasks/1/delete", url.Values{"next": {server.RouteTasks}})
		require.Equal(t, "/tasks?notice=Task+deleted", resp.Header.Get("Location"))
		require.Equal(t, 1, f.fake.Calls(http.MethodDelete, "/tasks/1"))

		resp, _ = f.get(t, c, "/tasks/1")
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestDeleteFromCompletedPage(t *testing.T) {
	f := setupTestFixture(t)
	c := f.browser(t)
	f.signIn(t, c)
	done := f.fake.AddTask(testEmail, tasks.NewTask{Title: "Old chore", Priority: tasks.PriorityLow, Status: tasks.StatusDone})

	_, body := f.get(t, c, server.RouteTasksCompleted)
	require.Contains(t, body, fmt.Sprintf(`action="/tasks/%d/delete"`, done.ID))

	resp, _ := f.post(t, c, fmt.Sprintf("/tasks/%d/delete", done.ID), url.Values{"next": {server.RouteTasksCompleted}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/tasks/completed?notice=Task+deleted", resp.Header.Get("Location"))

	_, body = f.get(t, c, server.RouteTasksCompleted)
	require.NotContains(t, body, "Old chore")
}

func TestNewTaskValidation(t *testing.T) {
	f := setupTestFixture(t)
	c := f.browser(t)
	f.signIn(t, c)

	resp, _ := f.post(t, c, server.RouteTaskNew, url.Values{"title": {" "}, "priority": {"high"}, "status": {"todo"}})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, body := f.post(t, c, server.RouteTaskNew, url.Values{"title": {"x"}, "priority": {"high"}, "status": {"todo"}, "due_date": {"31/02/2024"}})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.Contains(t, body, "Enter a valid date")
	require.Contains(t, body, `value="31/02/2024"`)

	require.Zero(t, f.fake.Calls(http.MethodPost, "/tasks"))
}

func TestTaskListFilters(t *testing.T) {
	f := setupTestFixture(t)
	c := f.browser(t)
	f.signIn(t, c)

	f.fake.AddTask(testEmail, tasks.NewTask{Title: "Alpha report", Priority: tasks.PriorityHigh, Status: tasks.StatusTodo})
	f.fake.AddTask(testEmail, tasks.NewTask{Title: "Beta errand", Priority: tasks.PriorityLow, Status: tasks.StatusInProgress})
	f.fake.AddTask(testEmail, tasks.NewTask{Title: "Gamma chore", Description: "the REPORT appendix", Priority: tasks.PriorityLow, Status: tasks.StatusDone})

	_, body := f.get(t, c, "/tasks?priority=high")
	require.Contains(t, body, "Alpha report")
	require.NotContains(t, body, "Beta errand")
	require.Contains(t, body, "Showing 1 of 3")

	_, body = f.get(t, c, "/tasks?search=report")
	require.Contains(t, body, "Alpha report")
	require.Contains(t, body, "Gamma chore")
	require.NotContains(t, body, "Beta errand")

	_, body = f.get(t, c, "/tasks?status=in_progress")
	require.Contains(t, body, "Beta errand")
	require.NotContains(t, body, "Alpha report")
}

func TestTaskStatusGuards(t *testing.T) {
	f := setupTestFixture(t)
	c := f.browser(t)
	f.signIn(t, c)
	f.fake.AddTask(testEmail, tasks.NewTask{Title: "a", Priority: tasks.PriorityLow, Status: tasks.StatusTodo})

	resp, _ := f.post(t, c, "/tasks/1/status", url.Values{"status": {"bogus"}, "next": {"//evil.example.com"}})
	require.Equal(t, "/tasks?error=Unknown+status", resp.Header.Get("Location"))
	require.Zero(t, f.fake.Calls(http.MethodPatch, "/tasks/1"))

	resp, _ = f.post(t, c, "/tasks/abc/status", url.Values{"status": {"done"}})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRegister(t *testing.T) {
	f := setupTestFixture(t)

	t.Run("passwords must match", func(t *testing.T) {
		resp, _ := f.post(t, f.browser(t), server.RouteRegister, url.Values{
			"email": {testEmail}, "password": {testPassword}, "password_confirm": {"other"},
		})
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		require.Zero(t, f.fake.Calls(http.MethodPost, "/register"))
	})

	t.Run("registers and signs in", func(t *testing.T) {
		c := f.browser(t)
		resp, _ := f.post(t, c, server.RouteRegister, url.Values{
			"email": {testEmail}, "password": {testPassword}, "password_confirm": {testPassword},
		})
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		require.Equal(t, server.RouteHome, resp.Header.Get("Location"))

		resp, _ = f.get(t, c, server.RouteHome)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("duplicate email", func(t *testing.T) {
		resp, body := f.post(t, f.browser(t), server.RouteRegister, url.Values{
			"email": {testEmail}, "password": {testPassword}, "password_confirm": {testPassword},
		})
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		require.Contains(t, body, "master with this email already exists.")
	})

	t.Run("created but sign in failed", func(t *testing.T) {
		f.fake.FailNext(http.MethodPost, "/login", http.StatusServiceUnavailable, "")
		resp, _ := f.post(t, f.browser(t), server.RouteRegister, url.Values{
			"email": {"grace@example.com"}, "password": {testPassword}, "password_confirm": {testPassword},
		})
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)

		location, err := url.Parse(resp.Header.Get("Location"))
		require.NoError(t, err)
		require.Equal(t, server.RouteLogin, location.Path)
		require.Equal(t, "grace@example.com", location.Query().Get("email"))
		require.Contains(t, location.Query().Get("error"), "Account created")
	})
}

func TestProfileEdit(t *testing.T) {
	f := setupTestFixture(t)
	c := f.browser(t)
	f.signIn(t, c)

	_, body := f.get(t, c, server.RouteProfile)
	require.Contains(t, body, testEmail)

	resp, _ := f.post(t, c, server.RouteProfileEdit, url.Values{"email": {testEmail}})
	require.Equal(t, "/profile?notice=No+changes+to+save", resp.Header.Get("Location"))
	require.Zero(t, f.fake.Calls(http.MethodPatch, "/current-user"))

	resp, _ = f.post(t, c, server.RouteProfileEdit, url.Values{"email": {"not-an-email"}})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = f.post(t, c, server.RouteProfileEdit, url.Values{"email": {"grace@example.com"}})
	require.Equal(t, "/profile?notice=Profile+updated", resp.Header.Get("Location"))
	require.Equal(t, 1, f.fake.Calls(http.MethodPatch, "/current-user"))

	_, body = f.get(t, c, server.RouteProfile)
	require.Contains(t, body, "grace@example.com")
}

func TestPasswordReset(t *testing.T) {
	f := setupTestFixture(t)
	f.fake.AddAccount(testEmail, testPassword)
	c := f.browser(t)

	resp, _ := f.get(t, c, server.RouteResetPasswordConfirm)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := f.post(t, c, server.RouteResetPassword, url.Values{"email": {testEmail}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Check your inbox")

	uid, token, ok := f.fake.ResetLink(testEmail)
	require.True(t, ok)

	resp, body = f.get(t, c, server.RouteResetPasswordConfirm+"?"+url.Values{"uid": {uid}, "token": {token}}.Encode())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, uid)

	resp, _ = f.post(t, c, server.RouteResetPasswordConfirm, url.Values{
		"uid": {uid}, "token": {token}, "new_password": {"N3wPassword"}, "new_password_confirm": {"N3wPassword"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.True(t, strings.HasPrefix(resp.Header.Get("Location"), server.RouteLogin+"?notice="))

	resp, _ = f.post(t, c, server.RouteLogin, url.Values{"email": {testEmail}, "password": {"N3wPassword"}})
	require.Equal(t, server.RouteHome, resp.Header.Get("Location"))
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t)
	c := f.browser(t)
	f.signIn(t, c)

	resp, _ := f.post(t, c, server.RouteLogout, nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.True(t, strings.HasPrefix(resp.Header.Get("Location"), server.RouteLogin))
	require.Equal(t, 1, f.fake.Calls(http.MethodPost, "/logout"))
	require.Empty(t, f.store.Keys())

	t.Run("remote failure still signs out", func(t *testing.T) {
		resp, _ := f.post(t, c, server.RouteLogin, url.Values{"email": {testEmail}, "password": {testPassword}})
		require.Equal(t, server.RouteHome, resp.Header.Get("Location"))
		f.fake.FailNext(http.MethodPost, "/logout", http.StatusInternalServerError, "")

		resp, _ = f.post(t, c, server.RouteLogout, nil)
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		require.Empty(t, f.store.Keys())

		resp, _ = f.get(t, c, server.RouteHome)
		require.Equal(t, server.RouteLogin, resp.Header.Get("Location"))
	})
}
