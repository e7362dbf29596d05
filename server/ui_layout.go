package server

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/jrsteele09/go-taskmaster/api"
	"github.com/jrsteele09/go-taskmaster/internal/errors"
	"github.com/jrsteele09/go-taskmaster/tasks"
	"github.com/rs/zerolog/log"
)

// page describes the chrome around a content template.
type page struct {
	Active string
	Title  string
	Error  string
	Notice string
	Status int
}

type layoutData struct {
	AppName       string
	ActivePage    string
	PageTitle     string
	Authenticated bool
	Error         string
	Notice        string
	Content       template.HTML
}

// renderPage renders content with data, then wraps it in the site layout. Error and notice
// fall back to the error and notice query parameters set by the redirect helpers.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, content *template.Template, p page, data any) {
	var contentBuf bytes.Buffer
	if err := content.Execute(&contentBuf, data); err != nil {
		log.Err(err).Str("template", content.Name()).Msg("Failed to render content")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	layout := layoutData{
		AppName:       s.config.GetAppName(),
		ActivePage:    p.Active,
		PageTitle:     p.Title,
		Authenticated: isAuthenticated(r),
		Error:         p.Error,
		Notice:        p.Notice,
		Content:       template.HTML(contentBuf.String()),
	}
	if layout.Error == "" {
		layout.Error = r.URL.Query().Get("error")
	}
	if layout.Notice == "" {
		layout.Notice = r.URL.Query().Get("notice")
	}

	var pageBuf bytes.Buffer
	if err := s.layout.Execute(&pageBuf, layout); err != nil {
		log.Err(err).Msg("Failed to render layout")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	status := p.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	_, _ = pageBuf.WriteTo(w)
}

// formErrors splits err into the banner message and per-field messages for a form.
func formErrors(err error) (string, map[string]string) {
	var fields tasks.FieldErrors
	if errors.As(err, &fields) {
		return fields.First(), fields
	}

	var verr *api.ValidationError
	if errors.As(err, &verr) {
		byField := make(map[string]string, len(verr.Fields))
		for name := range verr.Fields {
			byField[name] = verr.Field(name)
		}
		return verr.Message(), byField
	}

	return api.Message(err), nil
}

// failureStatus is the status a page is rendered with when the remote service call behind it failed.
func failureStatus(err error) int {
	var verr *api.ValidationError
	switch {
	case errors.As(err, &verr), errors.Is(err, errors.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case api.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}
