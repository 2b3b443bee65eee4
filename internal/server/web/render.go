package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/and161185/task-tracker/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageData is passed to every template. Pages use the fields they need.
type pageData struct {
	User   *model.Identity
	Error  string
	Tasks  []model.Task
	Task   *model.Task
	Counts model.TaskCounts
	Action string
}

// renderer holds one parsed template set per page, each sharing the layout.
type renderer struct {
	pages map[string]*template.Template
}

func newRenderer() (*renderer, error) {
	names := []string{"register", "login", "dashboard", "tasks", "task_form", "error"}
	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return &renderer{pages: pages}, nil
}

// render executes a page into a buffer first so a template failure can still
// become a clean 500 instead of a half-written body.
func (rd *renderer) render(w http.ResponseWriter, status int, page string, data pageData) error {
	t, ok := rd.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}
