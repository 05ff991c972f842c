package echoapi

import (
	"embed"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

//go:embed templates/*.html
var templateFS embed.FS

// pages rendered inside the layout
var pageTemplates = []string{"page", "login", "error"}

type (
	// view is the data of every rendered page.
	view struct {
		Title   string
		Nav     []navLink
		User    string
		Content interface{}
	}

	navLink struct {
		Label   string
		Href    string
		Current bool
	}

	errorPage struct {
		Code    int
		Status  string
		Message string
	}
)

type renderer struct {
	templates map[string]*template.Template
}

var _ echo.Renderer = (*renderer)(nil)

func newRenderer() (*renderer, error) {
	r := &renderer{templates: make(map[string]*template.Template, len(pageTemplates))}
	for _, name := range pageTemplates {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s template", name)
		}
		r.templates[name] = tmpl
	}
	return r, nil
}

// Render executes the layout of the page name; data is wrapped in a view unless it is one.
func (r *renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return errors.Errorf("template %q not found", name)
	}
	v, ok := data.(view)
	if !ok {
		v = view{Content: data}
	}
	return tmpl.ExecuteTemplate(w, "layout", v)
}
