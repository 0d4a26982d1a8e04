package handlers

import (
	"html/template"
	"net/http"
	"net/url"

	"takotools.com/tako-web/internal/catalog"
	"takotools.com/tako-web/internal/cms"
	"takotools.com/tako-web/internal/loadstate"
	"takotools.com/tako-web/internal/nav"
	"takotools.com/tako-web/internal/richtext"
	"takotools.com/tako-web/internal/seo"
)

const metaDescriptionLimit = 160

// DetailData is the view model for the tool detail page. When Tool is nil
// the page renders the not-found view.
type DetailData struct {
	Layout
	Slug string
	Tool *DetailTool
	// Notice explains why Tool is nil when the catalog itself failed.
	Notice *Notice
}

// StatusCode is the HTTP status the page is served with.
func (d DetailData) StatusCode() int {
	switch {
	case d.Tool != nil:
		return http.StatusOK
	case d.Notice != nil:
		return http.StatusServiceUnavailable
	default:
		return http.StatusNotFound
	}
}

type FeatureView struct {
	Icon        string
	Title       string
	Description template.HTML
}

// StepView is one onboarding step. Text is set for steps published as a
// bare string; Title and Description otherwise.
type StepView struct {
	Number      int
	Text        template.HTML
	Title       string
	Description template.HTML
}

type PricingBlock struct {
	Price   string
	Support string
}

type RelatedCard struct {
	Title    string
	Summary  string
	Image    string
	ImageAlt string
	Link     Link
}

type DetailTool struct {
	Slug     string
	Title    string
	Summary  template.HTML
	Image    string
	ImageAlt string
	Tags     []string
	Features []FeatureView
	Steps    []StepView
	VideoURL string
	Benefits []template.HTML
	// Pricing is nil when the record has neither a price nor a checkout URL.
	Pricing    *PricingBlock
	PricingCTA Link
	// PrimaryCTA is shown only for records with a checkout URL.
	PrimaryCTA   *Link
	SecondaryCTA Link
	ContactCTA   Link
	Related      []RelatedCard
}

// BuildToolDetail resolves slug against the catalog and constructs the
// detail page. A found record whose location is not canonical sets
// ReplaceURL so the history entry is rewritten in place.
func BuildToolDetail(site Site, current *url.URL, slug string, tools loadstate.State[[]catalog.Tool]) DetailData {
	vm := DetailData{
		Layout: newLayout(site, PageDetail, current),
		Slug:   slug,
	}
	vm.Nav = nav.Build(site.Linker.Base(), nav.Main, vm.Path)
	vm.NavCTA = NewLink(site.ContactHref(), "Talk to Tako")
	vm.Footer = marketplaceFooter(site)

	items, ok := tools.Data()
	switch {
	case tools.IsFailed():
		vm.Notice = &Notice{Kind: NoticeError, Message: MsgToolsFailed}
	case !ok:
		vm.Notice = &Notice{Kind: NoticeLoading, Message: MsgToolsLoading}
	}
	view := catalog.Build(items, catalog.SortFeatured, slug)
	if !view.Found() {
		vm.Title = "Tool not found • " + site.name()
		vm.Breadcrumbs = nav.Breadcrumbs(site.Linker, vm.Path, "Not found")
		vm.SEO = seo.NewMeta(site.name(), vm.Title, "", "", "").NoIndex()
		return vm
	}

	t := *view.Current
	vm.Tool = buildDetailTool(site, current, t, view.Related)
	if t.Title != "" {
		vm.Title = t.Title + " • " + site.name()
	} else {
		vm.Title = site.name() + " Tool"
	}
	applyDetailCTAs(site, &vm, t)
	if u, changed := site.Linker.Canonicalize(current, t.Slug); changed {
		vm.ReplaceURL = u.String()
	}

	canonical := site.Linker.DetailURL(nil, t.Slug)
	vm.Breadcrumbs = nav.Breadcrumbs(site.Linker, vm.Path, vm.Tool.Title)
	description := richtext.Summary(firstNonEmpty(t.Summary, t.Description), metaDescriptionLimit)
	vm.SEO = seo.NewMeta(site.name(), vm.Title, description, canonical, vm.Tool.Image)
	vm.SEO.OG.Type = "product"
	vm.SEO.JSONLD = []string{
		seo.JSON(seo.Product(t, description, canonical, vm.Tool.Image)),
		crumbsJSONLD(vm.Breadcrumbs),
	}
	return vm
}

func buildDetailTool(site Site, current *url.URL, t catalog.Tool, related []catalog.Tool) *DetailTool {
	rich := site.sanitizer()
	format := richtext.ParseFormat(t.Format)

	d := &DetailTool{
		Slug:     t.Slug,
		Title:    firstNonEmpty(t.Title, "Tool"),
		Summary:  rich.HTML(format, firstNonEmpty(t.Summary, t.Description)),
		Tags:     t.Tags,
		VideoURL: t.VideoURL,
		Benefits: rich.Strings(format, t.Benefits),
	}
	if t.Image != "" {
		d.Image = site.asset(t.Image)
		d.ImageAlt = "Tool visual"
		if t.Title != "" {
			d.ImageAlt = t.Title + " preview"
		}
	}
	for _, f := range t.Features {
		d.Features = append(d.Features, FeatureView{
			Icon:        f.Icon,
			Title:       firstNonEmpty(f.Title, "Feature"),
			Description: rich.HTML(format, f.Description),
		})
	}
	for i, s := range t.HowItWorks {
		step := StepView{Number: i + 1}
		if s.IsText() {
			step.Text = rich.HTML(format, s.Text)
		} else {
			step.Title = cms.StepTitle(s.Title, i)
			step.Description = rich.HTML(format, s.Description)
		}
		d.Steps = append(d.Steps, step)
	}
	if t.Purchasable() {
		d.Pricing = &PricingBlock{Price: t.Price, Support: t.SupportPolicy}
	}
	for _, r := range related {
		card := RelatedCard{
			Title:   firstNonEmpty(r.Title, "Tool"),
			Summary: richtext.PlainText(r.Summary),
			Image:   site.asset(r.Image),
			Link:    NewLink(site.Linker.DetailURL(current, r.Slug), "See features"),
		}
		if card.Image != "" {
			card.ImageAlt = "Related tool"
			if r.Title != "" {
				card.ImageAlt = r.Title + " preview"
			}
		}
		d.Related = append(d.Related, card)
	}
	return d
}

// applyDetailCTAs wires the hero, pricing, contact and nav calls to action.
func applyDetailCTAs(site Site, vm *DetailData, t catalog.Tool) {
	d := vm.Tool
	if t.CheckoutURL != "" {
		l := NewLink(t.CheckoutURL, firstNonEmpty(t.CTAText, "Buy Now"))
		d.PrimaryCTA = &l
	}
	var secondaryHref, secondaryText string
	if t.SecondaryCTA != nil {
		secondaryHref, secondaryText = t.SecondaryCTA.Link, t.SecondaryCTA.Text
	}
	d.SecondaryCTA = NewLink(firstNonEmpty(secondaryHref, t.Link, site.ContactHref()), firstNonEmpty(secondaryText, "Request setup"))
	d.PricingCTA = NewLink(firstNonEmpty(t.CheckoutURL, t.Link, "#"), firstNonEmpty(t.CheckoutCTAText, t.CTAText, "Buy Now"))
	d.ContactCTA = NewLink(firstNonEmpty(t.Link, site.ContactHref()), "Talk to Tako")

	switch {
	case t.Link != "":
		vm.NavCTA = NewLink(t.Link, firstNonEmpty(t.CTAText, "Talk to Tako"))
	case t.CheckoutURL != "":
		vm.NavCTA = NewLink(t.CheckoutURL, firstNonEmpty(t.CTAText, "Buy Now"))
	}
}
