package view

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Layout wraps every page. The page body is placed where the layout calls {{ embed }}.
const Layout = "layout"

// New returns the fiber view engine over the embedded templates.
func New() *html.Engine {
	return newEngine(templatesFS)
}

// newEngine builds the engine over the templates/ directory of fsys.
func newEngine(fsys fs.FS) *html.Engine {
	sub, err := fs.Sub(fsys, "templates")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFuncMap(Funcs())
	return engine
}

// Funcs are the helpers available to every template.
func Funcs() map[string]interface{} {
	return map[string]interface{}{
		"join": strings.Join,
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2006-01-02")
		},
		"delta": Delta,
		"seq": func(n int) []int {
			out := make([]int, n)
			for i := range out {
				out[i] = i
			}
			return out
		},
	}
}

// Delta formats the change from prev to cur as a signed percentage, or "new"
// when there was nothing before.
func Delta(cur, prev int) string {
	switch {
	case prev == 0 && cur == 0:
		return "0%"
	case prev == 0:
		return "new"
	}
	pct := float64(cur-prev) / float64(prev) * 100
	return fmt.Sprintf("%+.0f%%", pct)
}
