package catalog

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	detailPage  = "tool.html"
	listingPage = "tools/"
)

// ParseBase parses the site base location. Paths are treated as directories,
// so "/site" and "/site/" are equivalent.
func ParseBase(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("catalog: parse base %q: %w", raw, err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// Linker computes list and detail page URLs relative to an explicit base.
type Linker struct {
	base *url.URL
}

// NewLinker returns a Linker anchored at base. A nil base means "/".
func NewLinker(base *url.URL) Linker {
	if base == nil {
		base = &url.URL{Path: "/"}
	}
	return Linker{base: base}
}

// Base returns a copy of the base location.
func (l Linker) Base() *url.URL {
	u := *l.base
	return &u
}

func (l Linker) resolve(ref string) *url.URL {
	return l.base.ResolveReference(&url.URL{Path: ref})
}

// HomeURL returns the home page location.
func (l Linker) HomeURL() string { return l.base.String() }

// ListURL returns the tools listing location.
func (l Linker) ListURL() string { return l.resolve(listingPage).String() }

// DetailPath returns the canonical detail page path.
func (l Linker) DetailPath() string { return l.resolve(detailPage).Path }

// DetailURL links to the detail page of slug as seen from current. Listing
// pages (".../tools", ".../tools/index.html") rewrite to ".../tool"; detail
// pages (".../tool", ".../tool.html") keep their path. Any other shape falls
// back to the base detail page. Query and fragment are always replaced.
func (l Linker) DetailURL(current *url.URL, slug string) string {
	if slug == "" {
		return ""
	}
	q := url.Values{}
	q.Set("slug", slug)
	if current != nil {
		if p, ok := detailPathFrom(current.Path); ok {
			u := *current
			u.Path = p
			u.RawPath = ""
			u.RawQuery = q.Encode()
			u.Fragment = ""
			u.RawFragment = ""
			return u.String()
		}
	}
	u := l.resolve(detailPage)
	u.RawQuery = q.Encode()
	return u.String()
}

func detailPathFrom(p string) (string, bool) {
	trimmed := p
	if len(trimmed) > 1 {
		trimmed = strings.TrimSuffix(trimmed, "/")
	}
	switch {
	case strings.HasSuffix(trimmed, "/tools/index.html"):
		return strings.TrimSuffix(trimmed, "/tools/index.html") + "/tool", true
	case strings.HasSuffix(trimmed, "/tools"):
		return strings.TrimSuffix(trimmed, "/tools") + "/tool", true
	case strings.HasSuffix(p, "tool.html"), strings.HasSuffix(p, "tool"):
		return p, true
	}
	return "", false
}

// Canonicalize rewrites current to the canonical detail location for slug.
// It returns false when current is already canonical, in which case no
// history replacement should happen. The path becomes the base detail page
// and the slug parameter is set; other parameters and the fragment survive.
func (l Linker) Canonicalize(current *url.URL, slug string) (*url.URL, bool) {
	if current == nil || slug == "" {
		return nil, false
	}
	u := *current
	changed := false
	if target := l.DetailPath(); u.Path != target {
		u.Path = target
		u.RawPath = ""
		changed = true
	}
	q := u.Query()
	if q.Get("slug") != slug {
		q.Set("slug", slug)
		u.RawQuery = q.Encode()
		changed = true
	}
	if !changed {
		return nil, false
	}
	return &u, true
}
