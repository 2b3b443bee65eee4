// Package web exposes the server-rendered HTTP surface of the task tracker.
package web

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/and161185/task-tracker/internal/service"
	"github.com/and161185/task-tracker/internal/session"
)

// Server wires services into HTTP handlers.
type Server struct {
	auth     service.AuthService
	tasks    service.TaskService
	sessions *session.Manager
	log      *zap.Logger
	render   *renderer
}

// New constructs the web server with injected services.
func New(auth service.AuthService, tasks service.TaskService, sessions *session.Manager, log *zap.Logger) (*Server, error) {
	rd, err := newRenderer()
	if err != nil {
		return nil, err
	}
	return &Server{auth: auth, tasks: tasks, sessions: sessions, log: log, render: rd}, nil
}

// Router builds the route table. Register and login are anonymous-only,
// everything under /dashboard and /tasks requires a session.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.recoverMiddleware, s.loggingMiddleware, s.sessionMiddleware)

	r.HandleFunc("/", s.home).Methods(http.MethodGet)

	r.HandleFunc("/register", s.redirectIfAuthed(s.getRegister)).Methods(http.MethodGet)
	r.HandleFunc("/register", s.redirectIfAuthed(s.postRegister)).Methods(http.MethodPost)
	r.HandleFunc("/login", s.redirectIfAuthed(s.getLogin)).Methods(http.MethodGet)
	r.HandleFunc("/login", s.redirectIfAuthed(s.postLogin)).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.logout).Methods(http.MethodGet)

	r.HandleFunc("/dashboard", s.requireLogin(s.dashboard)).Methods(http.MethodGet)
	r.HandleFunc("/tasks", s.requireLogin(s.listTasks)).Methods(http.MethodGet)
	r.HandleFunc("/tasks/add", s.requireLogin(s.getAddTask)).Methods(http.MethodGet)
	r.HandleFunc("/tasks/add", s.requireLogin(s.postAddTask)).Methods(http.MethodPost)
	r.HandleFunc("/tasks/edit/{id}", s.requireLogin(s.getEditTask)).Methods(http.MethodGet)
	r.HandleFunc("/tasks/edit/{id}", s.requireLogin(s.postEditTask)).Methods(http.MethodPost)
	r.HandleFunc("/tasks/delete/{id}", s.requireLogin(s.deleteTask)).Methods(http.MethodPost)
	r.HandleFunc("/tasks/status/{id}", s.requireLogin(s.toggleStatus)).Methods(http.MethodPost)

	return r
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	if _, ok := IdentityFromCtx(r.Context()); ok {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// serverError logs the failure and renders the generic error page.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	data := pageData{Error: "Something went wrong. Please try again."}
	if id, ok := IdentityFromCtx(r.Context()); ok {
		data.User = &id
	}
	if rerr := s.render.render(w, http.StatusInternalServerError, "error", data); rerr != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
