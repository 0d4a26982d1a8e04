package handlers

import (
	"net/url"

	"takotools.com/tako-web/internal/catalog"
	"takotools.com/tako-web/internal/loadstate"
	"takotools.com/tako-web/internal/nav"
	"takotools.com/tako-web/internal/seo"
)

// Listing copy.
const (
	ToolsEyebrow     = "Tools Marketplace"
	ToolsTitle       = "🛠️ Buy Tools & Bots"
	ToolsSubtitle    = "Ready-made internal tools to save your team hours."
	ToolsCopy        = "Browse proven automations, Slack bots, and AI sidekicks your team can start using this week."
	ToolsHeading     = "Shop the latest from Tako"
	ToolsGridSummary = "Every tool is delivered with onboarding, documentation, and live support."
	navCTASubject    = "Tako Tools Marketplace"
)

// ToolsData is the view model for the tools listing page.
type ToolsData struct {
	Layout
	Eyebrow  string
	Hero     string
	Subtitle string
	Copy     string
	Heading  string
	Summary  string
	Grid     GridData
}

// SortOption is one entry of the sort control.
type SortOption struct {
	Value    string
	Label    string
	Selected bool
}

// GridData is the sortable tools grid. The listing page embeds it and the
// grid fragment renders it alone.
type GridData struct {
	Sort        catalog.SortMode
	SortOptions []SortOption
	// FragmentURL is fetched by the sort control to swap the grid in place.
	FragmentURL string
	// ListingURL is the listing location with the active sort applied.
	ListingURL string
	Notice     *Notice
	Cards      []ToolCard
}

// BuildToolsList constructs the listing page view model.
func BuildToolsList(site Site, current *url.URL, tools loadstate.State[[]catalog.Tool], mode catalog.SortMode) ToolsData {
	vm := ToolsData{
		Layout:   newLayout(site, PageTools, current),
		Eyebrow:  ToolsEyebrow,
		Hero:     ToolsTitle,
		Subtitle: ToolsSubtitle,
		Copy:     ToolsCopy,
		Heading:  ToolsHeading,
		Summary:  ToolsGridSummary,
		Grid:     BuildToolsGrid(site, current, tools, mode),
	}
	vm.Title = ToolsEyebrow + " • " + site.name()
	vm.Nav = nav.Build(site.Linker.Base(), nav.Main, vm.Path)
	vm.NavCTA = NewLink(site.ContactHref()+"?subject="+url.PathEscape(navCTASubject), "Talk to Tako")
	vm.Breadcrumbs = nav.Breadcrumbs(site.Linker, vm.Path, "")
	vm.Footer = marketplaceFooter(site)

	listing := site.Linker.ListURL()
	vm.SEO = seo.NewMeta(site.name(), vm.Title, ToolsSubtitle, listing, "")
	vm.SEO.JSONLD = []string{crumbsJSONLD(vm.Breadcrumbs)}
	if len(vm.Grid.Cards) > 0 {
		urls := make([]string, 0, len(vm.Grid.Cards))
		for _, c := range vm.Grid.Cards {
			if c.Slug != "" {
				urls = append(urls, site.Linker.DetailURL(nil, c.Slug))
			}
		}
		vm.SEO.JSONLD = append(vm.SEO.JSONLD, seo.JSON(seo.ItemList(urls)))
	}
	return vm
}

// BuildToolsGrid sorts the catalog and builds its cards. listing is the
// location detail links are computed from; for the fragment endpoint that
// is the listing page, not the fragment URL.
func BuildToolsGrid(site Site, listing *url.URL, tools loadstate.State[[]catalog.Tool], mode catalog.SortMode) GridData {
	g := GridData{
		Sort:        mode,
		SortOptions: make([]SortOption, 0, len(catalog.SortModes)),
		FragmentURL: site.asset("fragments/tools-grid"),
		ListingURL:  listingWithSort(site, mode),
		Notice:      toolsNotice(tools),
	}
	for _, m := range catalog.SortModes {
		g.SortOptions = append(g.SortOptions, SortOption{Value: string(m), Label: m.Label(), Selected: m == mode})
	}
	if items, ok := tools.Data(); ok {
		view := catalog.Build(items, mode, "")
		g.Cards = toolCards(site, listing, view.Sorted)
	}
	return g
}

// listingWithSort is the listing URL carrying the sort, omitted for the
// default order.
func listingWithSort(site Site, mode catalog.SortMode) string {
	u, err := url.Parse(site.Linker.ListURL())
	if err != nil {
		return site.Linker.ListURL()
	}
	if mode != catalog.SortFeatured {
		q := url.Values{}
		q.Set("sort", string(mode))
		u.RawQuery = q.Encode()
	}
	return u.String()
}
