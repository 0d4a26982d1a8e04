package catalog

import (
	"cmp"
	"slices"
	"strings"
)

// SortMode selects the listing order.
type SortMode string

const (
	SortFeatured  SortMode = "featured"
	SortPriceAsc  SortMode = "price-asc"
	SortPriceDesc SortMode = "price-desc"
)

// SortModes lists the modes in the order the sort control offers them.
var SortModes = []SortMode{SortFeatured, SortPriceAsc, SortPriceDesc}

// ParseSortMode maps a query value to a mode, defaulting to featured.
func ParseSortMode(v string) SortMode {
	switch SortMode(strings.ToLower(strings.TrimSpace(v))) {
	case SortPriceAsc:
		return SortPriceAsc
	case SortPriceDesc:
		return SortPriceDesc
	default:
		return SortFeatured
	}
}

// Label is the human-readable option text.
func (m SortMode) Label() string {
	switch m {
	case SortPriceAsc:
		return "Price: Low to High"
	case SortPriceDesc:
		return "Price: High to Low"
	default:
		return "Featured"
	}
}

// MaxRelated bounds the related tools shown on a detail page.
const MaxRelated = 3

// View is the resolved catalog for one page render. Listing pages read
// Sorted; detail pages read Current and Related.
type View struct {
	Sort    SortMode
	Sorted  []Tool
	Current *Tool
	Related []Tool
}

// Found reports whether the current slug matched a record.
func (v View) Found() bool { return v.Current != nil }

// Build resolves the catalog view. tools is never reordered.
func Build(tools []Tool, mode SortMode, currentSlug string) View {
	v := View{
		Sort:    mode,
		Sorted:  Sort(tools, mode),
		Related: Related(tools, currentSlug),
	}
	if t, ok := Find(tools, currentSlug); ok {
		v.Current = &t
	}
	return v
}

// Sort returns a sorted copy. Price modes sort stably by ParsePrice; the
// featured mode is a stable partition with featured records first.
func Sort(tools []Tool, mode SortMode) []Tool {
	out := slices.Clone(tools)
	if out == nil {
		out = []Tool{}
	}
	switch mode {
	case SortPriceAsc:
		slices.SortStableFunc(out, func(a, b Tool) int {
			return cmp.Compare(ParsePrice(a.Price), ParsePrice(b.Price))
		})
	case SortPriceDesc:
		slices.SortStableFunc(out, func(a, b Tool) int {
			return cmp.Compare(ParsePrice(b.Price), ParsePrice(a.Price))
		})
	default:
		slices.SortStableFunc(out, func(a, b Tool) int {
			switch {
			case a.Featured == b.Featured:
				return 0
			case a.Featured:
				return -1
			default:
				return 1
			}
		})
	}
	return out
}

// Related returns up to MaxRelated records with a slug other than
// currentSlug, in catalog order.
func Related(tools []Tool, currentSlug string) []Tool {
	out := make([]Tool, 0, MaxRelated)
	for _, t := range tools {
		if len(out) == MaxRelated {
			break
		}
		if t.Slug == "" || t.Slug == currentSlug {
			continue
		}
		out = append(out, t)
	}
	return out
}
