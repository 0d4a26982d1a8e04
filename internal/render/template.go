package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"takotools.com/tako-web/internal/handlers"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

// Template renders pages with html/template.
type Template struct {
	fsys fs.FS
	dev  bool
	tmpl *template.Template
}

// NewTemplate parses the templates once, unless opts.Dev asks for a reparse
// on every render.
func NewTemplate(opts Options) (*Template, error) {
	var fsys fs.FS
	if opts.Dir != "" {
		fsys = os.DirFS(opts.Dir)
	} else {
		sub, err := fs.Sub(embeddedTemplates, "templates")
		if err != nil {
			return nil, err
		}
		fsys = sub
	}
	t := &Template{fsys: fsys, dev: opts.Dev && opts.Dir != ""}
	tc, err := parseTemplates(fsys)
	if err != nil {
		return nil, err
	}
	t.tmpl = tc
	return t, nil
}

func (t *Template) Name() string { return KindTemplate }

func (t *Template) Home(w io.Writer, vm handlers.HomeData) error {
	return t.execute(w, "base", vm)
}

func (t *Template) Tools(w io.Writer, vm handlers.ToolsData) error {
	return t.execute(w, "base", vm)
}

func (t *Template) ToolsGrid(w io.Writer, vm handlers.GridData) error {
	return t.execute(w, "tools-grid", vm)
}

func (t *Template) Detail(w io.Writer, vm handlers.DetailData) error {
	return t.execute(w, "base", vm)
}

// execute renders into a buffer first so a failing template never leaves a
// half-written page.
func (t *Template) execute(w io.Writer, name string, data any) error {
	tc := t.tmpl
	if t.dev {
		parsed, err := parseTemplates(t.fsys)
		if err != nil {
			return err
		}
		tc = parsed
	}
	var buf bytes.Buffer
	if err := tc.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render: template %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func parseTemplates(fsys fs.FS) (*template.Template, error) {
	funcMap := template.FuncMap{
		"now": time.Now,
		// JSON-LD payloads are produced by json.Marshal, which escapes '<'
		"jsonld": func(s string) template.JS { return template.JS(s) },
	}
	// Recursively discover and parse all .tmpl files. Note: ParseGlob doesn't support **.
	var files []string
	if err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("render: no templates found")
	}
	return template.New("_root").Funcs(funcMap).ParseFS(fsys, files...)
}
