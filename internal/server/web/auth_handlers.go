package web

import (
	"errors"
	"net/http"

	"github.com/and161185/task-tracker/internal/errs"
	"github.com/and161185/task-tracker/internal/model"
)

func (s *Server) getRegister(w http.ResponseWriter, r *http.Request) {
	if err := s.render.render(w, http.StatusOK, "register", pageData{}); err != nil {
		s.serverError(w, r, err)
	}
}

func (s *Server) postRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderRegisterError(w, r, "All fields are required")
		return
	}
	id, err := s.auth.Register(r.Context(),
		r.PostFormValue("username"),
		r.PostFormValue("email"),
		r.PostFormValue("password"),
	)
	switch {
	case err == nil:
		s.startSession(w, r, id)
	case errors.Is(err, errs.ErrValidation):
		s.renderRegisterError(w, r, "All fields are required")
	case errors.Is(err, errs.ErrAlreadyExists):
		s.renderRegisterError(w, r, "Username or email already exists")
	default:
		s.serverError(w, r, err)
	}
}

func (s *Server) getLogin(w http.ResponseWriter, r *http.Request) {
	if err := s.render.render(w, http.StatusOK, "login", pageData{}); err != nil {
		s.serverError(w, r, err)
	}
}

func (s *Server) postLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderLoginError(w, r, "Invalid credentials")
		return
	}
	id, err := s.auth.Login(r.Context(),
		r.PostFormValue("email"),
		r.PostFormValue("password"),
		remoteIP(r),
	)
	switch {
	case err == nil:
		s.startSession(w, r, id)
	case errors.Is(err, errs.ErrInvalidCredentials):
		s.renderLoginError(w, r, "Invalid credentials")
	case errors.Is(err, errs.ErrRateLimited):
		s.renderLoginError(w, r, "Too many attempts, try again later")
	default:
		s.serverError(w, r, err)
	}
}

// logout clears the session unconditionally, whether or not one existed.
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// startSession issues a token for the identity, sets the cookie and lands
// the user on the dashboard.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, id model.Identity) {
	token, expiresAt, err := s.sessions.Issue(id)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.setSessionCookie(w, token, expiresAt)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) renderRegisterError(w http.ResponseWriter, r *http.Request, msg string) {
	if err := s.render.render(w, http.StatusOK, "register", pageData{Error: msg}); err != nil {
		s.serverError(w, r, err)
	}
}

func (s *Server) renderLoginError(w http.ResponseWriter, r *http.Request, msg string) {
	if err := s.render.render(w, http.StatusOK, "login", pageData{Error: msg}); err != nil {
		s.serverError(w, r, err)
	}
}
