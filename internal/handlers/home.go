package handlers

import (
	"net/url"

	"takotools.com/tako-web/internal/catalog"
	"takotools.com/tako-web/internal/cms"
	"takotools.com/tako-web/internal/loadstate"
	"takotools.com/tako-web/internal/nav"
	"takotools.com/tako-web/internal/richtext"
	"takotools.com/tako-web/internal/seo"
)

// HomeData is the view model for the home page.
type HomeData struct {
	Layout
	Hero HeroView
	// ContentError is set when the content document failed to load; the
	// sections below then render their defaults.
	ContentError *Notice
	Capabilities CapabilitiesView
	UseCases     UseCasesView
	HowItWorks   HowItWorksView
	Marketplace  MarketplaceView
	Pricing      PricingView
	Contact      ContactView
}

type HeroView struct {
	Title        string
	Subtitle     string
	CTA          Link
	Note         string
	Illustration string
}

type CapabilitiesView struct {
	Title string
	Items []string
}

type UseCaseCard struct {
	Icon        string
	Title       string
	Description string
}

type UseCasesView struct {
	Title    string
	Subtitle string
	Cards    []UseCaseCard
}

type HomeStep struct {
	Number      int
	Title       string
	Description string
}

type HowItWorksView struct {
	Title    string
	Subtitle string
	Steps    []HomeStep
}

type MarketplaceView struct {
	Title    string
	Subtitle string
	Notice   *Notice
	Cards    []ToolCard
}

type TierView struct {
	Name        string
	Price       string
	Description string
	Features    []string
	Highlight   bool
	CTA         *Link
}

type PricingView struct {
	Title    string
	Subtitle string
	Note     string
	Tiers    []TierView
}

type ContactView struct {
	Title string
	Copy  string
	CTA   Link
	Items []cms.ContactItem
	Links []Link
}

// BuildHome constructs the home page view model from both load states.
// Sections fall back to their defaults unless the content is ready.
func BuildHome(site Site, current *url.URL, content loadstate.State[cms.Document], tools loadstate.State[[]catalog.Tool]) HomeData {
	doc, _ := content.Data()
	hero := doc.HeroOrDefault()

	vm := HomeData{
		Layout: newLayout(site, PageHome, current),
		Hero: HeroView{
			Title:        hero.Title,
			Subtitle:     hero.Subtitle,
			CTA:          NewLink(hero.CTALink, hero.CTAText),
			Note:         hero.Note,
			Illustration: site.asset("assets/octopus.svg"),
		},
		Capabilities: capabilitiesView(doc.Capabilities),
		UseCases:     useCasesView(doc.UseCases),
		HowItWorks:   howItWorksView(doc.HowItWorks),
		Marketplace:  marketplaceView(site, current, doc.Marketplace, tools),
		Pricing:      pricingView(doc.Pricing),
		Contact:      contactView(site, doc.Footer),
	}
	if content.IsFailed() {
		vm.ContentError = &Notice{Kind: NoticeError, Message: MsgContentFailed}
	}

	vm.Title = site.name() + " • " + richtext.PlainText(hero.Title)
	vm.Nav = nav.Build(site.Linker.Base(), nav.HomeSections, vm.Path)
	vm.NavCTA = vm.Hero.CTA
	vm.Breadcrumbs = nav.Breadcrumbs(site.Linker, vm.Path, "")
	vm.Footer = Footer{Copy: doc.FooterCopy()}

	home := site.Linker.HomeURL()
	vm.SEO = seo.NewMeta(site.name(), vm.Title, hero.Subtitle, home, vm.Hero.Illustration)
	vm.SEO.JSONLD = []string{
		seo.JSON(seo.Organization(site.name(), home, vm.LogoURL, site.Email)),
		seo.JSON(seo.WebSite(site.name(), home)),
	}
	return vm
}

func capabilitiesView(c *cms.Capabilities) CapabilitiesView {
	if c == nil {
		return CapabilitiesView{Title: cms.DefaultCapabilitiesName}
	}
	return CapabilitiesView{
		Title: cms.SectionTitle(c.Title, cms.DefaultCapabilitiesName),
		Items: c.Items,
	}
}

func useCasesView(u *cms.UseCases) UseCasesView {
	if u == nil {
		return UseCasesView{Title: cms.DefaultUseCasesTitle}
	}
	v := UseCasesView{
		Title:    cms.SectionTitle(u.Title, cms.DefaultUseCasesTitle),
		Subtitle: u.Subtitle,
		Cards:    make([]UseCaseCard, 0, len(u.Cards)),
	}
	for _, c := range u.Cards {
		v.Cards = append(v.Cards, UseCaseCard{
			Icon:        c.Icon,
			Title:       firstNonEmpty(c.Title, cms.DefaultCardTitle),
			Description: c.Description,
		})
	}
	return v
}

func howItWorksView(h *cms.HowItWorks) HowItWorksView {
	if h == nil {
		return HowItWorksView{Title: cms.DefaultHowItWorksTitle}
	}
	v := HowItWorksView{
		Title:    cms.SectionTitle(h.Title, cms.DefaultHowItWorksTitle),
		Subtitle: h.Subtitle,
		Steps:    make([]HomeStep, 0, len(h.Steps)),
	}
	for i, s := range h.Steps {
		v.Steps = append(v.Steps, HomeStep{
			Number:      i + 1,
			Title:       cms.StepTitle(s.Title, i),
			Description: s.Description,
		})
	}
	return v
}

// marketplaceView lists the catalog in document order; only the listing
// page offers sorting.
func marketplaceView(site Site, current *url.URL, m *cms.Marketplace, tools loadstate.State[[]catalog.Tool]) MarketplaceView {
	v := MarketplaceView{Title: cms.DefaultMarketplaceTitle}
	if m != nil {
		v.Title = cms.SectionTitle(m.Title, cms.DefaultMarketplaceTitle)
		v.Subtitle = m.Subtitle
	}
	v.Notice = toolsNotice(tools)
	if items, ok := tools.Data(); ok {
		v.Cards = toolCards(site, current, items)
	}
	return v
}

func pricingView(p *cms.Pricing) PricingView {
	if p == nil {
		return PricingView{Title: cms.DefaultPricingTitle}
	}
	v := PricingView{
		Title:    cms.SectionTitle(p.Title, cms.DefaultPricingTitle),
		Subtitle: p.Subtitle,
		Note:     p.Note,
		Tiers:    make([]TierView, 0, len(p.Tiers)),
	}
	for _, t := range p.Tiers {
		tier := TierView{
			Name:        t.Name,
			Price:       t.Price,
			Description: t.Description,
			Features:    t.Features,
			Highlight:   t.Highlight,
		}
		if t.CTA != nil {
			l := NewLink(firstNonEmpty(t.CTA.Link, cms.DefaultTierCTALink), firstNonEmpty(t.CTA.Text, cms.DefaultTierCTAText))
			tier.CTA = &l
		}
		v.Tiers = append(v.Tiers, tier)
	}
	return v
}

func contactView(site Site, f *cms.Footer) ContactView {
	v := ContactView{
		Title: cms.DefaultContactTitle,
		CTA:   NewLink(site.ContactHref(), cms.DefaultContactCTAText),
	}
	if f == nil {
		return v
	}
	v.Items = f.Contact
	for _, l := range f.Links {
		v.Links = append(v.Links, NewLink(firstNonEmpty(l.Href, "#"), l.Label))
	}
	if cs := f.ContactSection; cs != nil {
		v.Title = cms.SectionTitle(cs.Title, cms.DefaultContactTitle)
		v.Copy = cs.Copy
		if cs.CTA != nil {
			v.CTA = NewLink(firstNonEmpty(cs.CTA.Link, site.ContactHref()), firstNonEmpty(cs.CTA.Text, cms.DefaultContactCTAText))
		}
	}
	return v
}
