package renderer

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/unrolled/render"
)

// New builds the HTML renderer over dir. Every page is wrapped in "layout".
func New(dir string, development bool) *render.Render {
	return render.New(render.Options{
		Directory:     dir,
		Layout:        "layout",
		Extensions:    []string{".html"},
		IsDevelopment: development,
		Funcs:         []template.FuncMap{FuncMap()},
	})
}

func FuncMap() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format("02 Jan 2006 15:04")
		},
		"excerpt": func(s string, n int) string {
			r := []rune(s)
			if len(r) <= n {
				return s
			}
			return strings.TrimSpace(string(r[:n])) + "…"
		},
		"contains": func(ids []string, id string) bool {
			for _, v := range ids {
				if v == id {
					return true
				}
			}
			return false
		},
		"add": func(a, b int) int { return a + b },
		// dict lets a partial receive more than one value.
		"dict": func(pairs ...interface{}) (map[string]interface{}, error) {
			if len(pairs)%2 != 0 {
				return nil, fmt.Errorf("dict needs key/value pairs, got %d args", len(pairs))
			}
			m := make(map[string]interface{}, len(pairs)/2)
			for i := 0; i < len(pairs); i += 2 {
				key, ok := pairs[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict key %v is not a string", pairs[i])
				}
				m[key] = pairs[i+1]
			}
			return m, nil
		},
	}
}
