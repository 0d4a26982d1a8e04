package catalog

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	absoluteAsset = regexp.MustCompile(`(?i)^(?:[a-z]+:|//|data:)`)
	externalHref  = regexp.MustCompile(`(?i)^https?:`)
)

// ResolveAsset resolves an image or asset path against the site base.
// Paths carrying a scheme, "//" or "data:" are returned verbatim; anything
// else is relative to base, never to the page being rendered.
func ResolveAsset(base *url.URL, path string) string {
	if path == "" {
		return ""
	}
	if absoluteAsset.MatchString(path) {
		return path
	}
	if base == nil {
		base = &url.URL{Path: "/"}
	}
	rel, ok := strings.CutPrefix(path, "./")
	if !ok {
		rel = strings.TrimPrefix(path, "/")
	}
	ref, err := url.Parse(rel)
	if err != nil {
		return path
	}
	return base.ResolveReference(ref).String()
}

// IsExternal reports whether href leaves the site over http(s).
func IsExternal(href string) bool { return externalHref.MatchString(href) }

// LinkTarget returns the target and rel attributes for href. External
// links open in a new browsing context with no back-reference.
func LinkTarget(href string) (target, rel string) {
	if IsExternal(href) {
		return "_blank", "noreferrer noopener"
	}
	return "", ""
}
