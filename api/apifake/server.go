// Package apifake is an in-process stand-in for the remote task service.
// It speaks the same JSON contract on the default routes and lets tests
// expire tokens, inject failures and count calls.
package apifake

import (
	"crypto/rand"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-taskmaster/internal/config"
	"github.com/jrsteele09/go-taskmaster/tasks"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

type resetLink struct {
	accountID int64
	token     string
}

type failure struct {
	status int
	body   string
}

type Server struct {
	srv    *httptest.Server
	routes config.Routes
	secret []byte

	accessTokenTTL time.Duration
	generation     int

	lock          sync.Mutex
	accounts      map[int64]*account
	emails        map[string]int64
	refreshTokens map[string]int64
	resets        map[string]resetLink
	nextAccountID int64
	nextTaskID    int64
	calls         map[string]int
	failures      map[string][]failure
}

type ServerOption func(*Server)

func WithAccessTokenTTL(ttl time.Duration) ServerOption {
	return func(s *Server) {
		s.accessTokenTTL = ttl
	}
}

// New starts the fake on a loopback listener. Call Close when done.
func New(options ...ServerOption) *Server {
	secret := make([]byte, 32)
	_, _ = rand.Read(secret)

	s := &Server{
		routes:         config.DefaultRoutes(),
		secret:         secret,
		accessTokenTTL: 15 * time.Minute,
		accounts:       make(map[int64]*account),
		emails:         make(map[string]int64),
		refreshTokens:  make(map[string]int64),
		resets:         make(map[string]resetLink),
		calls:          make(map[string]int),
		failures:       make(map[string][]failure),
	}
	for _, opt := range options {
		opt(s)
	}

	s.srv = httptest.NewServer(s.routesHandler())
	return s
}

func (s *Server) URL() string {
	return s.srv.URL
}

func (s *Server) Close() {
	s.srv.Close()
}

// Config returns settings pointing a client at this server.
func (s *Server) Config() config.Config {
	return config.New(config.Settings{
		Env: "TEST",
		API: config.APISettings{
			BaseURL: s.URL(),
			Timeout: 5 * time.Second,
			Routes:  s.routes,
		},
	})
}

// AddAccount registers an account directly and returns it.
func (s *Server) AddAccount(email, password string) tasks.Master {
	s.lock.Lock()
	defer s.lock.Unlock()

	acc, _ := s.createAccount(email, password)
	return acc.master
}

// AddTask stores a task for the account with email and returns it with its id.
func (s *Server) AddTask(email string, task tasks.NewTask) tasks.Task {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.storeTask(s.accounts[s.emails[email]], task)
}

// ExpireAccessTokens makes every access token issued so far answer 401.
func (s *Server) ExpireAccessTokens() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.generation++
}

// RevokeRefreshTokens makes every refresh token issued so far unusable.
func (s *Server) RevokeRefreshTokens() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.refreshTokens = make(map[string]int64)
}

// FailNext makes the next call to "METHOD /path" answer status with body.
func (s *Server) FailNext(method, path string, status int, body string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	key := method + " " + path
	s.failures[key] = append(s.failures[key], failure{status: status, body: body})
}

// Calls counts requests received for "METHOD /path".
func (s *Server) Calls(method, path string) int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.calls[method+" "+path]
}

// ResetLink returns the uid and token of the last reset requested for email.
func (s *Server) ResetLink(email string) (string, string, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	id, ok := s.emails[email]
	if !ok {
		return "", "", false
	}
	for uid, link := range s.resets {
		if link.accountID == id {
			return uid, link.token, true
		}
	}
	return "", "", false
}

func (s *Server) routesHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+s.routes.Login, s.handleLogin)
	mux.HandleFunc("POST "+s.routes.Register, s.handleRegister)
	mux.HandleFunc("POST "+s.routes.Refresh, s.handleRefresh)
	mux.HandleFunc("POST "+s.routes.Logout, s.authenticated(s.handleLogout))
	mux.HandleFunc("POST "+s.routes.PasswordReset, s.handlePasswordReset)
	mux.HandleFunc("POST "+s.routes.PasswordResetConfirm, s.handlePasswordResetConfirm)
	mux.HandleFunc("GET "+s.routes.CurrentUser, s.authenticated(s.handleCurrentUser))
	mux.HandleFunc("PATCH "+s.routes.CurrentUser, s.authenticated(s.handleUpdateCurrentUser))
	mux.HandleFunc("GET "+s.routes.Tasks, s.authenticated(s.handleListTasks))
	mux.HandleFunc("POST "+s.routes.Tasks, s.authenticated(s.handleCreateTask))
	mux.HandleFunc("GET "+s.routes.Task, s.authenticated(s.handleGetTask))
	mux.HandleFunc("PATCH "+s.routes.Task, s.authenticated(s.handleUpdateTask))
	mux.HandleFunc("DELETE "+s.routes.Task, s.authenticated(s.handleDeleteTask))
	return s.recordCalls(mux)
}

func (s *Server) recordCalls(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path

		s.lock.Lock()
		s.calls[key]++
		var injected *failure
		if queued := s.failures[key]; len(queued) > 0 {
			injected = &queued[0]
			s.failures[key] = queued[1:]
		}
		s.lock.Unlock()

		if injected != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(injected.status)
			_, _ = w.Write([]byte(injected.body))
			return
		}
		next.ServeHTTP(w, r)
	})
}

type accountHandler func(w http.ResponseWriter, r *http.Request, acc *account)

func (s *Server) authenticated(next accountHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}

		s.lock.Lock()
		id, valid := s.parseAccessToken(raw)
		acc := s.accounts[id]
		s.lock.Unlock()

		if !valid || acc == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"detail": "Given token not valid for any token type",
				"code":   "token_not_valid",
			})
			return
		}
		next(w, r, acc)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	acc := s.accounts[s.emails[strings.ToLower(req.Email)]]
	if acc == nil || !acc.checkPassword(req.Password) {
		writeDetail(w, http.StatusUnauthorized, "No active account found with the given credentials")
		return
	}

	access, err := s.createAccessToken(acc.master.ID)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	refresh, err := newRefreshToken()
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.refreshTokens[refresh] = acc.master.ID

	writeJSON(w, http.StatusOK, map[string]string{"access": access, "refresh": refresh})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}

	fields := map[string][]string{}
	if req.Email == "" {
		fields["email"] = []string{"This field is required."}
	}
	if problem := passwordProblem(req.Password); problem != "" {
		fields["password"] = []string{problem}
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if _, taken := s.emails[strings.ToLower(req.Email)]; taken {
		fields["email"] = []string{"master with this email already exists."}
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, fields)
		return
	}

	acc, err := s.createAccount(req.Email, req.Password)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, acc.master)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	id, ok := s.refreshTokens[req.Refresh]
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"detail": "Token is invalid or expired",
			"code":   "token_not_valid",
		})
		return
	}
	access, err := s.createAccessToken(id)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access": access})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request, acc *account) {
	s.lock.Lock()
	defer s.lock.Unlock()

	for token, id := range s.refreshTokens {
		if id == acc.master.ID {
			delete(s.refreshTokens, token)
		}
	}
	writeDetail(w, http.StatusOK, "Successfully logged out.")
}

func (s *Server) handlePasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"email": {"This field is required."}})
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if id, ok := s.emails[strings.ToLower(req.Email)]; ok {
		for uid, link := range s.resets {
			if link.accountID == id {
				delete(s.resets, uid)
			}
		}
		token, err := newRefreshToken()
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.resets[uuid.New().String()] = resetLink{accountID: id, token: token[:20]}
	}
	writeDetail(w, http.StatusOK, "Password reset e-mail has been sent.")
}

func (s *Server) handlePasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UID                string `json:"uid"`
		Token              string `json:"token"`
		NewPassword        string `json:"new_password"`
		NewPasswordConfirm string `json:"new_password_confirm"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	link, ok := s.resets[req.UID]
	switch {
	case !ok:
		writeJSON(w, http.StatusBadRequest, map[string][]string{"uid": {"Invalid value"}})
		return
	case link.token != req.Token:
		writeJSON(w, http.StatusBadRequest, map[string][]string{"token": {"Invalid value"}})
		return
	case req.NewPassword != req.NewPasswordConfirm:
		writeJSON(w, http.StatusBadRequest, map[string][]string{"new_password_confirm": {"The two password fields didn't match."}})
		return
	}
	if problem := passwordProblem(req.NewPassword); problem != "" {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"new_password": {problem}})
		return
	}

	acc := s.accounts[link.accountID]
	if err := acc.setPassword(req.NewPassword); err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	delete(s.resets, req.UID)
	writeDetail(w, http.StatusOK, "Password has been reset with the new password.")
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, _ *http.Request, acc *account) {
	s.lock.Lock()
	defer s.lock.Unlock()
	writeJSON(w, http.StatusOK, acc.master)
}

func (s *Server) handleUpdateCurrentUser(w http.ResponseWriter, r *http.Request, acc *account) {
	var patch tasks.MasterPatch
	if !decode(w, r, &patch) {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if patch.Email != nil {
		email := strings.ToLower(*patch.Email)
		if email == "" {
			writeJSON(w, http.StatusBadRequest, map[string][]string{"email": {"This field may not be blank."}})
			return
		}
		if id, taken := s.emails[email]; taken && id != acc.master.ID {
			writeJSON(w, http.StatusBadRequest, map[string][]string{"email": {"master with this email already exists."}})
			return
		}
		delete(s.emails, strings.ToLower(acc.master.Email))
		acc.master.Email = *patch.Email
		s.emails[email] = acc.master.ID
	}
	writeJSON(w, http.StatusOK, acc.master)
}

func (s *Server) handleListTasks(w http.ResponseWriter, _ *http.Request, acc *account) {
	s.lock.Lock()
	defer s.lock.Unlock()

	list := make([]tasks.Task, 0, len(acc.tasks))
	for id := int64(1); id <= s.nextTaskID; id++ {
		if t, ok := acc.tasks[id]; ok {
			list = append(list, *t)
		}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request, acc *account) {
	var req tasks.NewTask
	if !decode(w, r, &req) {
		return
	}
	if fields := taskFieldErrors(req); len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, fields)
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	writeJSON(w, http.StatusCreated, s.storeTask(acc, req))
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request, acc *account) {
	s.lock.Lock()
	defer s.lock.Unlock()

	t := s.ownedTask(w, r, acc)
	if t == nil {
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request, acc *account) {
	var patch tasks.TaskPatch
	if !decode(w, r, &patch) {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	t := s.ownedTask(w, r, acc)
	if t == nil {
		return
	}

	updated := *t
	if patch.Title != nil {
		updated.Title = *patch.Title
	}
	if patch.Description != nil {
		updated.Description = *patch.Description
	}
	if patch.Priority != nil {
		updated.Priority = *patch.Priority
	}
	if patch.DueDate != nil {
		updated.DueDate = *patch.DueDate
	}
	if patch.Status != nil {
		updated.Status = *patch.Status
	}
	if fields := taskFieldErrors(updated.Draft()); len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, fields)
		return
	}

	*t = updated
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request, acc *account) {
	s.lock.Lock()
	defer s.lock.Unlock()

	t := s.ownedTask(w, r, acc)
	if t == nil {
		return
	}
	delete(acc.tasks, t.ID)
	w.WriteHeader(http.StatusNoContent)
}

// createAccount must be called with the lock held.
func (s *Server) createAccount(email, password string) (*account, error) {
	s.nextAccountID++
	acc := &account{
		master: tasks.Master{ID: s.nextAccountID, Email: email},
		tasks:  make(map[int64]*tasks.Task),
	}
	if err := acc.setPassword(password); err != nil {
		return nil, err
	}
	s.accounts[acc.master.ID] = acc
	s.emails[strings.ToLower(email)] = acc.master.ID
	return acc, nil
}

// storeTask must be called with the lock held.
func (s *Server) storeTask(acc *account, req tasks.NewTask) tasks.Task {
	s.nextTaskID++
	created := NowTimeFunc().UTC()
	t := &tasks.Task{
		ID:          s.nextTaskID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Status:      req.Status,
		CreatedDate: &created,
	}
	acc.tasks[t.ID] = t
	return *t
}

// ownedTask must be called with the lock held. It writes the 404 itself.
func (s *Server) ownedTask(w http.ResponseWriter, r *http.Request, acc *account) *tasks.Task {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return nil
	}
	t, ok := acc.tasks[id]
	if !ok {
		writeDetail(w, http.StatusNotFound, "No Task matches the given query.")
		return nil
	}
	return t
}

func taskFieldErrors(t tasks.NewTask) map[string][]string {
	fields := map[string][]string{}
	if strings.TrimSpace(t.Title) == "" {
		fields["title"] = []string{"This field may not be blank."}
	}
	if !t.Priority.Valid() {
		fields["priority"] = []string{"\"" + string(t.Priority) + "\" is not a valid choice."}
	}
	if !t.Status.Valid() {
		fields["status"] = []string{"\"" + string(t.Status) + "\" is not a valid choice."}
	}
	return fields
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeDetail(w, http.StatusBadRequest, "JSON parse error - "+err.Error())
		return false
	}
	return true
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
