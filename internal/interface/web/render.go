// Package web renders the dashboard pages from embedded templates.
package web

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/gin-gonic/gin/render"
)

//go:embed templates/*.html
var FS embed.FS

// Pages rendered inside the shared layout.
const (
	PageHome     = "home"
	PageAccount  = "account"
	PageSettings = "settings"
)

// Renderer implements gin's render.HTMLRender with one template set per page,
// each page defining "title" and "content" for the layout.
type Renderer struct {
	pages map[string]*template.Template
}

var _ render.HTMLRender = (*Renderer)(nil)

func funcs() template.FuncMap {
	return template.FuncMap{
		"seq": func(n int) []int {
			out := make([]int, n)
			for i := range out {
				out[i] = i
			}
			return out
		},
	}
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: map[string]*template.Template{}}
	for _, p := range []string{PageHome, PageAccount, PageSettings} {
		t, err := template.New("layout.html").Funcs(funcs()).ParseFS(FS, "templates/layout.html", "templates/"+p+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		r.pages[p] = t
	}
	return r, nil
}

// MustRenderer panics on template errors; templates are embedded so this only
// fails on a broken build.
func MustRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Renderer) Instance(name string, data any) render.Render {
	return render.HTML{Template: r.pages[name], Name: "layout.html", Data: data}
}
