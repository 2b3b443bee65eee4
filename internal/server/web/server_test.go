package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/task-tracker/internal/errs"
	"github.com/and161185/task-tracker/internal/model"
	"github.com/and161185/task-tracker/internal/service"
	"github.com/and161185/task-tracker/internal/session"
)

var alice = model.Identity{UserID: "u-alice", Username: "alice", Email: "a@x.com"}

type fakeAuth struct {
	registerID  model.Identity
	registerErr error
	loginID     model.Identity
	loginErr    error
}

var _ service.AuthService = (*fakeAuth)(nil)

func (f *fakeAuth) Register(context.Context, string, string, string) (model.Identity, error) {
	return f.registerID, f.registerErr
}
func (f *fakeAuth) Login(context.Context, string, string, string) (model.Identity, error) {
	return f.loginID, f.loginErr
}

type fakeTaskSvc struct {
	list    []model.Task
	listErr error

	task   *model.Task
	getErr error

	counts model.TaskCounts

	created   *service.TaskInput
	createErr error

	updateErr error

	deleted   []uuid.UUID
	deleteErr error

	toggleErr error
}

var _ service.TaskService = (*fakeTaskSvc)(nil)

func (f *fakeTaskSvc) Create(_ context.Context, _ string, in service.TaskInput) (*model.Task, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = &in
	return &model.Task{ID: uuid.Must(uuid.NewV4()), Title: in.Title}, nil
}
func (f *fakeTaskSvc) Get(context.Context, string, uuid.UUID) (*model.Task, error) {
	return f.task, f.getErr
}
func (f *fakeTaskSvc) List(context.Context, string) ([]model.Task, error) {
	return f.list, f.listErr
}
func (f *fakeTaskSvc) Update(context.Context, string, uuid.UUID, service.TaskInput) error {
	return f.updateErr
}
func (f *fakeTaskSvc) Delete(_ context.Context, _ string, id uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}
func (f *fakeTaskSvc) ToggleStatus(context.Context, string, uuid.UUID) error { return f.toggleErr }
func (f *fakeTaskSvc) Counts(context.Context, string) (model.TaskCounts, error) {
	return f.counts, nil
}

func newTestServer(t *testing.T, auth *fakeAuth, tasks *fakeTaskSvc) (*Server, http.Handler) {
	t.Helper()
	sessions := session.NewManager([]byte("test-key"), 24*time.Hour, 2*time.Hour)
	s, err := New(auth, tasks, sessions, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, s.Router()
}

func loggedInCookie(t *testing.T, s *Server) *http.Cookie {
	t.Helper()
	tok, exp, err := s.sessions.Issue(alice)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return &http.Cookie{Name: session.CookieName, Value: tok, Expires: exp}
}

func postForm(h http.Handler, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func get(h http.Handler, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func sessionCookieFrom(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	return nil
}

func TestRegister_SuccessSetsSessionAndRedirects(t *testing.T) {
	t.Parallel()
	_, h := newTestServer(t, &fakeAuth{registerID: alice}, &fakeTaskSvc{})

	w := postForm(h, "/register", url.Values{
		"username": {"alice"}, "email": {"a@x.com"}, "password": {"secret123"},
	})

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status=%d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/dashboard" {
		t.Fatalf("location=%q, want /dashboard", loc)
	}
	c := sessionCookieFrom(w)
	if c == nil || c.Value == "" || !c.HttpOnly {
		t.Fatalf("missing or weak session cookie: %+v", c)
	}
}

func TestRegister_DuplicateRerendersForm(t *testing.T) {
	t.Parallel()
	_, h := newTestServer(t, &fakeAuth{registerErr: errs.ErrAlreadyExists}, &fakeTaskSvc{})

	w := postForm(h, "/register", url.Values{
		"username": {"alice"}, "email": {"a@x.com"}, "password": {"secret123"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200 form re-render", w.Code)
	}
	if !strings.Contains(w.Body.String(), "already exists") {
		t.Fatalf("expected duplicate message in body")
	}
	if sessionCookieFrom(w) != nil {
		t.Fatalf("no session may be issued on failure")
	}
}

func TestLogin_InvalidCredentialsGenericMessage(t *testing.T) {
	t.Parallel()
	_, h := newTestServer(t, &fakeAuth{loginErr: errs.ErrInvalidCredentials}, &fakeTaskSvc{})

	w := postForm(h, "/login", url.Values{"email": {"a@x.com"}, "password": {"wrong"}})

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200 form re-render", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Invalid credentials") {
		t.Fatalf("expected generic credentials message")
	}
}

func TestLogin_RateLimitedMessage(t *testing.T) {
	t.Parallel()
	_, h := newTestServer(t, &fakeAuth{loginErr: errs.ErrRateLimited}, &fakeTaskSvc{})

	w := postForm(h, "/login", url.Values{"email": {"a@x.com"}, "password": {"pwd"}})

	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Too many attempts") {
		t.Fatalf("status=%d body=%q, want rate-limit message", w.Code, w.Body.String())
	}
}

func TestAnonymous_TaskPagesRedirectToLogin(t *testing.T) {
	t.Parallel()
	_, h := newTestServer(t, &fakeAuth{}, &fakeTaskSvc{})

	for _, path := range []string{"/dashboard", "/tasks", "/tasks/add"} {
		w := get(h, path)
		if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
			t.Fatalf("GET %s: status=%d loc=%q, want 302 /login", path, w.Code, w.Header().Get("Location"))
		}
	}
}

func TestExpiredSessionIsAnonymous(t *testing.T) {
	t.Parallel()
	_, h := newTestServer(t, &fakeAuth{}, &fakeTaskSvc{})

	expired := session.NewManager([]byte("test-key"), -time.Minute, 0)
	tok, _, err := expired.Issue(alice)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	w := get(h, "/tasks", &http.Cookie{Name: session.CookieName, Value: tok})
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
		t.Fatalf("status=%d loc=%q, want 302 /login for expired token", w.Code, w.Header().Get("Location"))
	}
}

func TestLoggedIn_RegisterRedirectsToDashboard(t *testing.T) {
	t.Parallel()
	s, h := newTestServer(t, &fakeAuth{}, &fakeTaskSvc{})

	w := get(h, "/register", loggedInCookie(t, s))
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/dashboard" {
		t.Fatalf("status=%d loc=%q, want 302 /dashboard", w.Code, w.Header().Get("Location"))
	}
}

func TestDashboard_ShowsCounts(t *testing.T) {
	t.Parallel()
	s, h := newTestServer(t, &fakeAuth{}, &fakeTaskSvc{counts: model.TaskCounts{Total: 3, Completed: 1, Pending: 2}})

	w := get(h, "/dashboard", loggedInCookie(t, s))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"Total: 3", "Completed: 1", "Pending: 2"} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q", want)
		}
	}
}

func TestTasks_ListShowsOwnedTasks(t *testing.T) {
	t.Parallel()
	tasks := &fakeTaskSvc{list: []model.Task{
		{ID: uuid.Must(uuid.NewV4()), Title: "Buy milk", Status: model.StatusPending},
	}}
	s, h := newTestServer(t, &fakeAuth{}, tasks)

	w := get(h, "/tasks", loggedInCookie(t, s))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Buy milk") {
		t.Fatalf("status=%d, body should list 'Buy milk'", w.Code)
	}
}

func TestEditForeignTask_RedirectsToList(t *testing.T) {
	t.Parallel()
	s, h := newTestServer(t, &fakeAuth{}, &fakeTaskSvc{getErr: errs.ErrNotFound})

	w := get(h, "/tasks/edit/"+uuid.Must(uuid.NewV4()).String(), loggedInCookie(t, s))
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/tasks" {
		t.Fatalf("status=%d loc=%q, want 302 /tasks", w.Code, w.Header().Get("Location"))
	}
}

func TestDeleteUnknownTask_SilentSuccess(t *testing.T) {
	t.Parallel()
	tasks := &fakeTaskSvc{}
	s, h := newTestServer(t, &fakeAuth{}, tasks)

	w := postForm(h, "/tasks/delete/"+uuid.Must(uuid.NewV4()).String(), url.Values{}, loggedInCookie(t, s))
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/tasks" {
		t.Fatalf("status=%d loc=%q, want 303 /tasks", w.Code, w.Header().Get("Location"))
	}
	if len(tasks.deleted) != 1 {
		t.Fatalf("delete calls=%d, want 1 (idempotence lives in the service)", len(tasks.deleted))
	}

	// malformed id never reaches the service, still lands on the list
	w = postForm(h, "/tasks/delete/not-a-uuid", url.Values{}, loggedInCookie(t, s))
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/tasks" {
		t.Fatalf("status=%d loc=%q, want 303 /tasks for malformed id", w.Code, w.Header().Get("Location"))
	}
	if len(tasks.deleted) != 1 {
		t.Fatalf("malformed id must not hit the service")
	}
}

func TestAddTask_ValidationRerendersForm(t *testing.T) {
	t.Parallel()
	s, h := newTestServer(t, &fakeAuth{}, &fakeTaskSvc{createErr: errs.ErrValidation})

	w := postForm(h, "/tasks/add", url.Values{"title": {"   "}}, loggedInCookie(t, s))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "class=\"error\"") {
		t.Fatalf("status=%d, want re-rendered form with error", w.Code)
	}
}

func TestLogout_ClearsCookie(t *testing.T) {
	t.Parallel()
	s, h := newTestServer(t, &fakeAuth{}, &fakeTaskSvc{})

	w := get(h, "/logout", loggedInCookie(t, s))
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
		t.Fatalf("status=%d loc=%q, want 302 /login", w.Code, w.Header().Get("Location"))
	}
	c := sessionCookieFrom(w)
	if c == nil || c.MaxAge >= 0 || c.Value != "" {
		t.Fatalf("session cookie not cleared: %+v", c)
	}

	// logout without a session behaves the same
	w = get(h, "/logout")
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
		t.Fatalf("anonymous logout: status=%d loc=%q", w.Code, w.Header().Get("Location"))
	}
}

func TestSlidingRefresh_SetsNewCookie(t *testing.T) {
	t.Parallel()
	tasks := &fakeTaskSvc{}
	sessions := session.NewManager([]byte("test-key"), time.Hour, 2*time.Hour)
	s, err := New(&fakeAuth{}, tasks, sessions, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h := s.Router()

	tok, exp, err := sessions.Issue(alice)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	w := get(h, "/tasks", &http.Cookie{Name: session.CookieName, Value: tok, Expires: exp})
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", w.Code)
	}
	// only a sliding refresh puts a session cookie on a plain GET response
	c := sessionCookieFrom(w)
	if c == nil || c.Value == "" {
		t.Fatalf("expected a reissued session cookie inside the active window")
	}
	if id, _, ok := sessions.Validate(c.Value); !ok || id != alice {
		t.Fatalf("reissued cookie does not validate: ok=%v id=%+v", ok, id)
	}
}
