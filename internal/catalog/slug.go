package catalog

import (
	"net/url"
	"strings"
)

// Location is the navigable location a page is rendered for.
type Location struct {
	Path  string
	Query url.Values
}

// LocationFromURL adapts a request URL. A nil URL yields the root location.
func LocationFromURL(u *url.URL) Location {
	if u == nil {
		return Location{Path: "/", Query: url.Values{}}
	}
	return Location{Path: u.Path, Query: u.Query()}
}

// ResolveSlug determines the active tool slug. A non-empty "slug" query
// parameter wins verbatim; otherwise the segment following "tools" in the
// path is used, minus any ".html" suffix. Dot segments are skipped.
func ResolveSlug(loc Location) (string, bool) {
	if slug := loc.Query.Get("slug"); slug != "" {
		return slug, true
	}
	p := strings.TrimSuffix(loc.Path, "index.html")
	var segments []string
	for _, seg := range strings.Split(p, "/") {
		switch seg {
		case "", ".", "..":
		default:
			segments = append(segments, seg)
		}
	}
	for i, seg := range segments {
		if seg != "tools" {
			continue
		}
		if i+1 < len(segments) {
			if slug := strings.TrimSuffix(segments[i+1], ".html"); slug != "" {
				return slug, true
			}
		}
		return "", false
	}
	return "", false
}
