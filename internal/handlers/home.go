package handlers

import (
	"bytes"
	"html/template"
	"net/http"

	svc "github.com/lojf/enrollments/internal/services"
)

// Home renders the enrollment form for the active schema. The page never
// changes at runtime, so it is rendered once up front.
func Home(t *template.Template, schema *svc.Schema) (http.HandlerFunc, error) {
	var buf bytes.Buffer
	data := map[string]any{
		"Title":    "Enrollment Form",
		"Action":   "/enrollments",
		"Controls": schema.Controls,
	}
	if err := t.ExecuteTemplate(&buf, "enrollment_form.tmpl", data); err != nil {
		return nil, err
	}
	page := buf.Bytes()

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(page)
	}, nil
}
