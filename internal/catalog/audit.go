package catalog

import (
	"math"
	"sort"
	"strconv"
)

// Report summarizes problems in a tools document that pages tolerate but an
// editor should fix.
type Report struct {
	Total int
	// Unslugged holds the positions of records without a slug; they render
	// as cards but have no detail page.
	Unslugged []int
	// Duplicates maps a slug to its record count when it appears more than
	// once. Only the first record is ever reachable.
	Duplicates map[string]int
	// Unpriced lists slugs (or titles) whose price label sorts last.
	Unpriced []string
}

// OK reports whether every record is reachable by its slug.
func (r Report) OK() bool { return len(r.Duplicates) == 0 }

// DuplicateSlugs returns the colliding slugs in lexical order.
func (r Report) DuplicateSlugs() []string {
	out := make([]string, 0, len(r.Duplicates))
	for slug := range r.Duplicates {
		out = append(out, slug)
	}
	sort.Strings(out)
	return out
}

func Audit(tools []Tool) Report {
	r := Report{Total: len(tools)}
	seen := map[string]int{}
	for i, t := range tools {
		if !t.HasSlug() {
			r.Unslugged = append(r.Unslugged, i)
		} else {
			seen[t.Slug]++
		}
		if math.IsInf(ParsePrice(t.Price), 1) {
			r.Unpriced = append(r.Unpriced, auditLabel(t, i))
		}
	}
	for slug, n := range seen {
		if n > 1 {
			if r.Duplicates == nil {
				r.Duplicates = map[string]int{}
			}
			r.Duplicates[slug] = n
		}
	}
	return r
}

func auditLabel(t Tool, i int) string {
	switch {
	case t.HasSlug():
		return t.Slug
	case t.Title != "":
		return t.Title
	default:
		return "#" + strconv.Itoa(i)
	}
}
