package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/gorilla/mux"

	"github.com/and161185/task-tracker/internal/errs"
	"github.com/and161185/task-tracker/internal/model"
	"github.com/and161185/task-tracker/internal/service"
)

const dueDateLayout = "2006-01-02"

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromCtx(r.Context())
	counts, err := s.tasks.Counts(r.Context(), id.UserID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	data := pageData{User: &id, Counts: counts}
	if err := s.render.render(w, http.StatusOK, "dashboard", data); err != nil {
		s.serverError(w, r, err)
	}
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromCtx(r.Context())
	list, err := s.tasks.List(r.Context(), id.UserID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	data := pageData{User: &id, Tasks: list}
	if err := s.render.render(w, http.StatusOK, "tasks", data); err != nil {
		s.serverError(w, r, err)
	}
}

func (s *Server) getAddTask(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromCtx(r.Context())
	data := pageData{User: &id, Action: "/tasks/add"}
	if err := s.render.render(w, http.StatusOK, "task_form", data); err != nil {
		s.serverError(w, r, err)
	}
}

func (s *Server) postAddTask(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromCtx(r.Context())
	in, perr := parseTaskForm(r)
	if perr == nil {
		_, perr = s.tasks.Create(r.Context(), id.UserID, in)
	}
	switch {
	case perr == nil:
		http.Redirect(w, r, "/tasks", http.StatusSeeOther)
	case errors.Is(perr, errs.ErrValidation):
		data := pageData{User: &id, Action: "/tasks/add", Error: validationMessage(perr)}
		if err := s.render.render(w, http.StatusOK, "task_form", data); err != nil {
			s.serverError(w, r, err)
		}
	default:
		s.serverError(w, r, perr)
	}
}

func (s *Server) getEditTask(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromCtx(r.Context())
	taskID, ok := taskIDFromRequest(r)
	if !ok {
		http.Redirect(w, r, "/tasks", http.StatusFound)
		return
	}
	t, err := s.tasks.Get(r.Context(), id.UserID, taskID)
	if err != nil {
		// absent and foreign tasks look the same: back to the list
		if errors.Is(err, errs.ErrNotFound) {
			http.Redirect(w, r, "/tasks", http.StatusFound)
			return
		}
		s.serverError(w, r, err)
		return
	}
	data := pageData{User: &id, Task: t, Action: "/tasks/edit/" + t.ID.String()}
	if err := s.render.render(w, http.StatusOK, "task_form", data); err != nil {
		s.serverError(w, r, err)
	}
}

func (s *Server) postEditTask(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromCtx(r.Context())
	taskID, ok := taskIDFromRequest(r)
	if !ok {
		http.Redirect(w, r, "/tasks", http.StatusSeeOther)
		return
	}
	in, err := parseTaskForm(r)
	if err == nil {
		err = s.tasks.Update(r.Context(), id.UserID, taskID, in)
	}
	switch {
	case err == nil:
		http.Redirect(w, r, "/tasks", http.StatusSeeOther)
	case errors.Is(err, errs.ErrNotFound):
		http.Redirect(w, r, "/tasks", http.StatusSeeOther)
	case errors.Is(err, errs.ErrValidation):
		t := &model.Task{ID: taskID, Title: in.Title, Description: in.Description, DueDate: in.DueDate, Status: in.Status}
		data := pageData{User: &id, Task: t, Action: "/tasks/edit/" + taskID.String(), Error: validationMessage(err)}
		if rerr := s.render.render(w, http.StatusOK, "task_form", data); rerr != nil {
			s.serverError(w, r, rerr)
		}
	default:
		s.serverError(w, r, err)
	}
}

// deleteTask is idempotent: missing, foreign and malformed ids all land back
// on the task list with no state change.
func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromCtx(r.Context())
	if taskID, ok := taskIDFromRequest(r); ok {
		if err := s.tasks.Delete(r.Context(), id.UserID, taskID); err != nil {
			s.serverError(w, r, err)
			return
		}
	}
	http.Redirect(w, r, "/tasks", http.StatusSeeOther)
}

func (s *Server) toggleStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromCtx(r.Context())
	taskID, ok := taskIDFromRequest(r)
	if !ok {
		http.Redirect(w, r, "/tasks", http.StatusSeeOther)
		return
	}
	err := s.tasks.ToggleStatus(r.Context(), id.UserID, taskID)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		s.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/tasks", http.StatusSeeOther)
}

func taskIDFromRequest(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.FromString(mux.Vars(r)["id"])
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

func parseTaskForm(r *http.Request) (service.TaskInput, error) {
	if err := r.ParseForm(); err != nil {
		return service.TaskInput{}, errs.ErrValidation
	}
	in := service.TaskInput{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Status:      r.PostFormValue("status"),
	}
	if raw := r.PostFormValue("dueDate"); raw != "" {
		d, err := time.Parse(dueDateLayout, raw)
		if err != nil {
			return in, fmt.Errorf("%w: invalid due date", errs.ErrValidation)
		}
		in.DueDate = &d
	}
	return in, nil
}

// validationMessage turns a wrapped validation error into the form message.
func validationMessage(err error) string {
	if rest, ok := strings.CutPrefix(err.Error(), errs.ErrValidation.Error()+": "); ok {
		return rest
	}
	return "invalid input"
}
