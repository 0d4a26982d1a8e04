package handlers

import (
	"net/url"
	"strings"

	"takotools.com/tako-web/internal/catalog"
	"takotools.com/tako-web/internal/cms"
	"takotools.com/tako-web/internal/nav"
	"takotools.com/tako-web/internal/richtext"
	"takotools.com/tako-web/internal/seo"
)

// Fixed user-visible messages.
const (
	MsgContentFailed = "We're having trouble loading the latest content. Please refresh to try again."
	MsgToolsFailed   = "We're having trouble loading tools right now. Please refresh to try again."
	MsgToolsLoading  = "Loading tools..."
	MsgToolsEmpty    = "No tools are available right now. Check back soon!"
)

// Page identifies which page a view model belongs to.
type Page string

const (
	PageHome   Page = "home"
	PageTools  Page = "tools"
	PageDetail Page = "detail"
)

// Site is the process-wide context every page builder needs.
type Site struct {
	Name      string
	Email     string
	Linker    catalog.Linker
	Rich      *richtext.Sanitizer
	Analytics Analytics
}

// ContactHref is the mailto link used when a record has no destination.
func (s Site) ContactHref() string {
	if strings.TrimSpace(s.Email) == "" {
		return cms.DefaultContactCTALink
	}
	return "mailto:" + s.Email
}

func (s Site) name() string {
	if strings.TrimSpace(s.Name) == "" {
		return "Tako"
	}
	return s.Name
}

func (s Site) asset(p string) string {
	return catalog.ResolveAsset(s.Linker.Base(), p)
}

func (s Site) sanitizer() *richtext.Sanitizer {
	if s.Rich == nil {
		return richtext.New()
	}
	return s.Rich
}

// Link is an anchor with the external link policy applied.
type Link struct {
	Href   string
	Text   string
	Target string
	Rel    string
}

// NewLink builds a Link, setting target and rel for http(s) destinations.
func NewLink(href, text string) Link {
	target, rel := catalog.LinkTarget(href)
	return Link{Href: href, Text: text, Target: target, Rel: rel}
}

// NoticeKind separates status messages so renderers can style them.
type NoticeKind string

const (
	NoticeLoading NoticeKind = "loading"
	NoticeError   NoticeKind = "error"
	NoticeEmpty   NoticeKind = "empty"
)

// Notice is an inline status message replacing a section's content.
type Notice struct {
	Kind    NoticeKind
	Message string
}

// Alert reports whether the notice should be announced as an alert.
func (n Notice) Alert() bool { return n.Kind == NoticeError }

// Footer is the page footer.
type Footer struct {
	Copy    string
	Contact *Link
}

// Layout holds the fields every page shares.
type Layout struct {
	Page        Page
	Title       string
	Lang        string
	SiteName    string
	HomeURL     string
	ToolsURL    string
	LogoURL     string
	StyleURL    string
	SEO         seo.Meta
	Analytics   Analytics
	Path        string
	Nav         []nav.RenderedItem
	NavCTA      Link
	Breadcrumbs []nav.Crumb
	Footer      Footer
	// ReplaceURL, when set, replaces the current history entry in place.
	ReplaceURL string
}

func newLayout(site Site, page Page, current *url.URL) Layout {
	p := "/"
	if current != nil && current.Path != "" {
		p = current.Path
	}
	return Layout{
		Page:      page,
		Lang:      "en",
		SiteName:  site.name(),
		HomeURL:   site.Linker.HomeURL(),
		ToolsURL:  site.Linker.ListURL(),
		LogoURL:   site.asset("assets/tako-logo.svg"),
		StyleURL:  site.asset("assets/styles.css"),
		Analytics: site.Analytics,
		Path:      p,
	}
}

// marketplaceFooter is the footer of the listing and detail pages.
func marketplaceFooter(site Site) Footer {
	contact := NewLink(site.ContactHref(), "Email "+strings.TrimPrefix(site.ContactHref(), "mailto:"))
	return Footer{Copy: "Need something custom?", Contact: &contact}
}

func crumbsJSONLD(crumbs []nav.Crumb) string {
	items := make([]seo.BreadcrumbItem, 0, len(crumbs))
	for _, c := range crumbs {
		items = append(items, seo.BreadcrumbItem{Name: c.Label, Item: c.Href})
	}
	return seo.JSON(seo.BreadcrumbList(items))
}
