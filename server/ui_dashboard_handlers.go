package server

import (
	"net/http"
	"time"

	"github.com/jrsteele09/go-taskmaster/tasks"
	"github.com/rs/zerolog/log"
)

const (
	dashboardRecent         = 5
	dashboardUpcoming       = 3
	dashboardUpcomingWindow = 7 * 24 * time.Hour
)

type DashboardPageData struct {
	Master   tasks.Master
	Stats    tasks.Stats
	Recent   []TaskRow
	Upcoming []TaskRow
}

// DashboardHandler shows counts, the next open tasks and deadlines in the coming week.
// A failed fetch shows as empty data unless the session has ended.
func (s *Server) DashboardHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("home.html")

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		client := clientFromContext(ctx)
		now := NowTimeFunc()

		list, err := client.Tasks(ctx)
		if err != nil {
			if s.sessionEnded(w, r, err) {
				return
			}
			log.Err(err).Msg("Failed to load tasks for dashboard")
			list = nil
		}

		master, err := client.CurrentUser(ctx)
		if err != nil {
			if s.sessionEnded(w, r, err) {
				return
			}
			log.Err(err).Msg("Failed to load current user for dashboard")
		}

		s.renderPage(w, r, tmpl, page{Active: "home", Title: "Dashboard"}, DashboardPageData{
			Master:   master,
			Stats:    tasks.ComputeStats(list, now),
			Recent:   taskRows(tasks.Recent(list, dashboardRecent), now),
			Upcoming: taskRows(tasks.UpcomingDeadlines(list, now, dashboardUpcomingWindow, dashboardUpcoming), now),
		})
	}
}
