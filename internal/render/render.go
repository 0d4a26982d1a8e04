// Package render turns page view models into HTML. Two renderers share the
// same view models: Template executes html/template partials, DOM fills a
// static HTML shell by element id.
package render

import (
	"fmt"
	"io"
	"strings"

	"takotools.com/tako-web/internal/handlers"
)

// Renderer writes complete pages and the tools grid fragment.
type Renderer interface {
	Name() string
	Home(w io.Writer, vm handlers.HomeData) error
	Tools(w io.Writer, vm handlers.ToolsData) error
	ToolsGrid(w io.Writer, vm handlers.GridData) error
	Detail(w io.Writer, vm handlers.DetailData) error
}

const (
	KindTemplate = "template"
	KindDOM      = "dom"
)

// Options configures renderer construction.
type Options struct {
	// Dir overrides the embedded templates or shells with files on disk.
	Dir string
	// Dev reparses Dir on every render.
	Dev bool
}

// New returns the renderer named by kind.
func New(kind string, opts Options) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindTemplate:
		return NewTemplate(opts)
	case KindDOM:
		return NewDOM(opts)
	default:
		return nil, fmt.Errorf("render: unknown renderer %q", kind)
	}
}
