package nav

import (
	"net/url"
	"path"
	"strings"

	"takotools.com/tako-web/internal/catalog"
)

// Item represents a top-level navigation item. Path is relative to the site
// base and may carry a fragment.
type Item struct {
	Path  string
	Label string
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href   string
	Label  string
	Active bool
}

// Crumb represents a breadcrumb entry.
type Crumb struct {
	Href   string
	Label  string
	Active bool
}

// Main is the navigation shared by the tools listing and detail pages.
var Main = []Item{
	{Path: "index.html#hero", Label: "Home"},
	{Path: "tools/", Label: "Tools"},
	{Path: "index.html#contact", Label: "Contact"},
}

// HomeSections is the home page navigation; section anchors stay on the page.
var HomeSections = []Item{
	{Path: "#what-we-build", Label: "What We Build"},
	{Path: "#use-cases", Label: "Use Cases"},
	{Path: "tools/", Label: "Tools"},
	{Path: "#pricing", Label: "Pricing"},
	{Path: "#contact", Label: "Contact"},
}

// Build renders navigation items with active state given the current path.
// Same-page anchors are emitted verbatim and are never active.
func Build(base *url.URL, items []Item, currentPath string) []RenderedItem {
	if currentPath == "" {
		currentPath = "/"
	}
	out := make([]RenderedItem, 0, len(items))
	for _, it := range items {
		if strings.HasPrefix(it.Path, "#") {
			out = append(out, RenderedItem{Href: it.Path, Label: it.Label})
			continue
		}
		href := catalog.ResolveAsset(base, it.Path)
		out = append(out, RenderedItem{
			Href:   href,
			Label:  it.Label,
			Active: isActive(href, currentPath),
		})
	}
	return out
}

func isActive(href, currentPath string) bool {
	u, err := url.Parse(href)
	if err != nil || u.Fragment != "" {
		return false
	}
	itemPath := u.Path
	if currentPath == itemPath {
		return true
	}
	// "/tools/" matches "/tools" and "/tools/..."
	if strings.HasSuffix(itemPath, "/") && itemPath != "/" {
		return currentPath == strings.TrimSuffix(itemPath, "/") || strings.HasPrefix(currentPath, itemPath)
	}
	return false
}

// Breadcrumbs builds the trail Home > Tools > title. The listing crumb is
// added for any path below the listing or on the detail page; title, when
// set, is the final active crumb.
func Breadcrumbs(l catalog.Linker, currentPath, title string) []Crumb {
	home := l.HomeURL()
	if currentPath == "" {
		currentPath = "/"
	}
	basePath := l.Base().Path
	crumbs := []Crumb{{Href: home, Label: "Home", Active: currentPath == basePath || currentPath == basePath+"index.html"}}
	if crumbs[0].Active {
		return crumbs
	}

	rel := strings.TrimPrefix(path.Clean(currentPath), strings.TrimSuffix(basePath, "/"))
	parts := strings.Split(strings.TrimPrefix(rel, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return crumbs
	}
	crumbs = append(crumbs, Crumb{Href: l.ListURL(), Label: "Tools", Active: title == "" && len(parts) == 1})
	switch {
	case title != "":
		crumbs = append(crumbs, Crumb{Href: currentPath, Label: title, Active: true})
	case len(parts) > 1 && parts[0] == "tools" && parts[1] != "index.html":
		crumbs = append(crumbs, Crumb{Href: currentPath, Label: titleFromSegment(strings.TrimSuffix(parts[1], ".html")), Active: true})
	}
	return crumbs
}

func titleFromSegment(seg string) string {
	if seg == "" {
		return seg
	}
	s := strings.ReplaceAll(seg, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	r := []rune(s)
	r[0] = toUpper(r[0])
	return string(r)
}

func toUpper(r rune) rune {
	// ASCII only is sufficient for slugs here
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}
