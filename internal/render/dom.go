package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"takotools.com/tako-web/internal/handlers"
)

//go:embed shells/*.html
var embeddedShells embed.FS

const (
	shellHome   = "home.html"
	shellTools  = "tools.html"
	shellDetail = "tool.html"
)

// DOM renders pages by filling static HTML shells element by element. Each
// shell carries one [data-prototype] element per repeated item; it is
// cloned per item and removed afterwards.
type DOM struct {
	fsys   fs.FS
	dev    bool
	shells map[string][]byte
}

// NewDOM loads the shells once, unless opts.Dev asks for a reload on every
// render.
func NewDOM(opts Options) (*DOM, error) {
	var fsys fs.FS
	if opts.Dir != "" {
		fsys = os.DirFS(opts.Dir)
	} else {
		sub, err := fs.Sub(embeddedShells, "shells")
		if err != nil {
			return nil, err
		}
		fsys = sub
	}
	d := &DOM{fsys: fsys, dev: opts.Dev && opts.Dir != "", shells: map[string][]byte{}}
	for _, name := range []string{shellHome, shellTools, shellDetail} {
		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("render: load shell %s: %w", name, err)
		}
		d.shells[name] = b
	}
	return d, nil
}

func (d *DOM) Name() string { return KindDOM }

func (d *DOM) load(name string) (*goquery.Document, error) {
	b := d.shells[name]
	if d.dev {
		fresh, err := fs.ReadFile(d.fsys, name)
		if err != nil {
			return nil, fmt.Errorf("render: load shell %s: %w", name, err)
		}
		b = fresh
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("render: parse shell %s: %w", name, err)
	}
	return doc, nil
}

func (d *DOM) Home(w io.Writer, vm handlers.HomeData) error {
	doc, err := d.load(shellHome)
	if err != nil {
		return err
	}
	fillLayout(doc, vm.Layout)

	setText(byID(doc, "hero-title"), vm.Hero.Title)
	setText(byID(doc, "hero-subtitle"), vm.Hero.Subtitle)
	setLink(byID(doc, "hero-cta"), vm.Hero.CTA)
	if vm.Hero.Note != "" {
		setText(byID(doc, "hero-note"), vm.Hero.Note)
	} else {
		byID(doc, "hero-note").Remove()
	}
	byID(doc, "hero-illustration").SetAttr("src", vm.Hero.Illustration)

	if vm.ContentError != nil {
		fillNotice(byID(doc, "content-error").Find(".notice"), *vm.ContentError)
	} else {
		byID(doc, "content-error").Remove()
	}

	section := byID(doc, "what-we-build")
	setText(section.Find(".section-title"), vm.Capabilities.Title)
	repeat(byID(doc, "capabilities-list"), len(vm.Capabilities.Items), func(i int, li *goquery.Selection) {
		li.SetText(vm.Capabilities.Items[i])
	})

	section = byID(doc, "use-cases")
	fillSectionHeader(section, vm.UseCases.Title, vm.UseCases.Subtitle)
	repeat(byID(doc, "use-case-grid"), len(vm.UseCases.Cards), func(i int, card *goquery.Selection) {
		c := vm.UseCases.Cards[i]
		textOrRemove(card.Find(".card-icon"), c.Icon)
		setText(card.Find("h3"), c.Title)
		textOrRemove(card.Find("p"), c.Description)
	})

	section = byID(doc, "how-it-works")
	fillSectionHeader(section, vm.HowItWorks.Title, vm.HowItWorks.Subtitle)
	repeat(byID(doc, "steps"), len(vm.HowItWorks.Steps), func(i int, step *goquery.Selection) {
		s := vm.HowItWorks.Steps[i]
		setText(step.Find(".step-number"), strconv.Itoa(s.Number))
		setText(step.Find("h3"), s.Title)
		textOrRemove(step.Find("p"), s.Description)
	})

	section = byID(doc, "tool-marketplace")
	fillSectionHeader(section, vm.Marketplace.Title, vm.Marketplace.Subtitle)
	if vm.Marketplace.Notice != nil {
		fillNotice(byID(doc, "marketplace-notice"), *vm.Marketplace.Notice)
	} else {
		byID(doc, "marketplace-notice").Remove()
	}
	fillCards(byID(doc, "tool-grid"), vm.Marketplace.Cards)

	section = byID(doc, "pricing")
	fillSectionHeader(section, vm.Pricing.Title, vm.Pricing.Subtitle)
	repeat(byID(doc, "pricing-grid"), len(vm.Pricing.Tiers), func(i int, card *goquery.Selection) {
		fillTier(card, vm.Pricing.Tiers[i])
	})
	textOrRemove(section.Find(".pricing-note"), vm.Pricing.Note)

	contact := byID(doc, "contact")
	setText(contact.Find(".contact-card h2"), vm.Contact.Title)
	textOrRemove(byID(doc, "contact-copy"), vm.Contact.Copy)
	setLink(byID(doc, "contact-cta"), vm.Contact.CTA)
	repeat(byID(doc, "contact-items"), len(vm.Contact.Items), func(i int, li *goquery.Selection) {
		item := vm.Contact.Items[i]
		li.Find("strong").SetText(item.Label + ":")
		li.Find("span").SetText(item.Value)
	})
	repeat(byID(doc, "footer-links"), len(vm.Contact.Links), func(i int, li *goquery.Selection) {
		setLink(li.Find("a"), vm.Contact.Links[i])
	})

	return writeDocument(w, doc)
}

func (d *DOM) Tools(w io.Writer, vm handlers.ToolsData) error {
	doc, err := d.load(shellTools)
	if err != nil {
		return err
	}
	fillLayout(doc, vm.Layout)

	hero := byID(doc, "tools-hero")
	setText(hero.Find(".tools-hero__eyebrow"), vm.Eyebrow)
	setText(hero.Find(".tools-hero__title"), vm.Hero)
	setText(hero.Find(".tools-hero__subtitle"), vm.Subtitle)
	setText(hero.Find(".tools-hero__copy"), vm.Copy)
	setText(byID(doc, "marketplace-heading"), vm.Heading)
	setText(doc.Find(".tools-marketplace__subtitle"), vm.Summary)

	byID(doc, "sort-form").SetAttr("action", vm.Grid.ListingURL)
	sel := byID(doc, "sort-select")
	sel.SetAttr("hx-get", vm.Grid.FragmentURL)
	repeat(sel, len(vm.Grid.SortOptions), func(i int, opt *goquery.Selection) {
		o := vm.Grid.SortOptions[i]
		opt.SetAttr("value", o.Value)
		opt.SetText(o.Label)
		if o.Selected {
			opt.SetAttr("selected", "")
		}
	})
	fillGrid(byID(doc, "tools-grid"), vm.Grid)

	return writeDocument(w, doc)
}

// ToolsGrid renders only the #tools-grid element of the listing shell.
func (d *DOM) ToolsGrid(w io.Writer, vm handlers.GridData) error {
	doc, err := d.load(shellTools)
	if err != nil {
		return err
	}
	grid := byID(doc, "tools-grid")
	fillGrid(grid, vm)
	out, err := goquery.OuterHtml(grid)
	if err != nil {
		return fmt.Errorf("render: grid fragment: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

func (d *DOM) Detail(w io.Writer, vm handlers.DetailData) error {
	doc, err := d.load(shellDetail)
	if err != nil {
		return err
	}
	fillLayout(doc, vm.Layout)

	t := vm.Tool
	if t == nil {
		// not found: only the error section is left in main
		byID(doc, "tool-hero").Remove()
		doc.Find(".tool-detail-section").Not("#tool-error").Remove()
		if vm.Notice != nil {
			fillNotice(byID(doc, "tool-error-message"), *vm.Notice)
		}
		byID(doc, "tool-error-browse").SetAttr("href", vm.ToolsURL)
		return writeDocument(w, doc)
	}
	byID(doc, "tool-error").Remove()

	setText(byID(doc, "tool-title"), t.Title)
	byID(doc, "tool-summary").SetHtml(string(t.Summary))
	if len(t.Tags) > 0 {
		repeat(byID(doc, "tool-tags"), len(t.Tags), func(i int, tag *goquery.Selection) {
			tag.SetText(t.Tags[i])
		})
	} else {
		byID(doc, "tool-tags").Remove()
	}
	if t.PrimaryCTA != nil {
		setLink(byID(doc, "tool-primary-cta"), *t.PrimaryCTA)
	} else {
		byID(doc, "tool-primary-cta").Remove()
	}
	setLink(byID(doc, "tool-secondary-cta"), t.SecondaryCTA)
	if t.Image != "" {
		byID(doc, "tool-image").SetAttr("src", t.Image).SetAttr("alt", t.ImageAlt)
	} else {
		byID(doc, "tool-media").Remove()
	}

	sectionOrRemove(doc, "tool-features", len(t.Features) > 0, func() {
		repeat(byID(doc, "tool-feature-grid"), len(t.Features), func(i int, card *goquery.Selection) {
			f := t.Features[i]
			textOrRemove(card.Find(".feature-card__icon"), f.Icon)
			setText(card.Find("h3"), f.Title)
			htmlOrRemove(card.Find(".feature-card__body"), string(f.Description))
		})
	})
	sectionOrRemove(doc, "tool-how", len(t.Steps) > 0, func() {
		repeat(byID(doc, "tool-steps"), len(t.Steps), func(i int, li *goquery.Selection) {
			s := t.Steps[i]
			setText(li.Find(".tool-step__number"), strconv.Itoa(s.Number))
			if s.Text != "" {
				li.Find("h3").Remove()
				li.Find(".tool-step__text").SetHtml(string(s.Text))
				return
			}
			setText(li.Find("h3"), s.Title)
			htmlOrRemove(li.Find(".tool-step__text"), string(s.Description))
		})
	})
	sectionOrRemove(doc, "tool-video", t.VideoURL != "", func() {
		byID(doc, "tool-video-embed").SetAttr("src", t.VideoURL)
	})
	sectionOrRemove(doc, "tool-benefits", len(t.Benefits) > 0, func() {
		repeat(byID(doc, "tool-benefits-list"), len(t.Benefits), func(i int, li *goquery.Selection) {
			li.SetHtml(string(t.Benefits[i]))
		})
	})
	sectionOrRemove(doc, "pricing", t.Pricing != nil, func() {
		setText(byID(doc, "tool-price"), t.Pricing.Price)
		textOrRemove(byID(doc, "tool-support"), t.Pricing.Support)
		setLink(byID(doc, "tool-pricing-cta"), t.PricingCTA)
	})
	setText(byID(doc, "tool-contact-title"), "Questions about "+t.Title+"?")
	setLink(byID(doc, "tool-contact"), t.ContactCTA)
	sectionOrRemove(doc, "tool-related", len(t.Related) > 0, func() {
		repeat(byID(doc, "related-grid"), len(t.Related), func(i int, card *goquery.Selection) {
			r := t.Related[i]
			if r.Image != "" {
				card.Find("img").SetAttr("src", r.Image).SetAttr("alt", r.ImageAlt)
			} else {
				card.Find("img").Remove()
			}
			setText(card.Find("h3"), r.Title)
			textOrRemove(card.Find("p"), r.Summary)
			setLink(card.Find("a.btn"), r.Link)
		})
	})

	return writeDocument(w, doc)
}

func fillLayout(doc *goquery.Document, l handlers.Layout) {
	doc.Find("html").SetAttr("lang", l.Lang)
	doc.Find("body").AddClass("page-" + string(l.Page))
	doc.Find("title").SetText(l.Title)
	doc.Find(`link[rel="icon"]`).SetAttr("href", l.LogoURL)
	byID(doc, "stylesheet").SetAttr("href", l.StyleURL)
	doc.Find("head").AppendHtml(headHTML(l))

	doc.Find(".logo-icon").SetAttr("src", l.LogoURL).SetAttr("alt", l.SiteName+" logo")
	doc.Find(".logo-text").SetText(l.SiteName)
	byID(doc, "site-logo").SetAttr("href", l.HomeURL)

	repeat(byID(doc, "nav-links"), len(l.Nav), func(i int, a *goquery.Selection) {
		item := l.Nav[i]
		a.SetAttr("href", item.Href)
		a.SetText(item.Label)
		if item.Active {
			a.SetAttr("aria-current", "page")
		}
	})
	setLink(byID(doc, "nav-cta"), l.NavCTA)

	if len(l.Breadcrumbs) > 1 {
		repeat(byID(doc, "breadcrumbs").Find("ol"), len(l.Breadcrumbs), func(i int, li *goquery.Selection) {
			c := l.Breadcrumbs[i]
			if c.Active {
				li.Find("a").Remove()
				li.Find("span").SetText(c.Label)
				return
			}
			li.Find("span").Remove()
			li.Find("a").SetAttr("href", c.Href).SetText(c.Label)
		})
	} else {
		byID(doc, "breadcrumbs").Remove()
	}

	footer := byID(doc, "footer-copy")
	footer.SetText(l.Footer.Copy)
	if c := l.Footer.Contact; c != nil {
		footer.AppendHtml(" " + anchorHTML(*c))
	}

	if l.ReplaceURL != "" {
		doc.Find("body").AppendHtml(`<script id="replace-url">history.replaceState(null, "", ` + jsString(l.ReplaceURL) + `);</script>`)
	}
}

// headHTML renders the metadata appended to the shell's head.
func headHTML(l handlers.Layout) string {
	var b bytes.Buffer
	meta := func(attr, key, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, `<meta %s="%s" content="%s">`, attr, key, html.EscapeString(value))
	}
	meta("name", "description", l.SEO.Description)
	meta("name", "robots", l.SEO.Robots)
	if l.SEO.Canonical != "" {
		fmt.Fprintf(&b, `<link rel="canonical" href="%s">`, html.EscapeString(l.SEO.Canonical))
	}
	meta("property", "og:title", l.SEO.OG.Title)
	meta("property", "og:description", l.SEO.OG.Description)
	meta("property", "og:type", l.SEO.OG.Type)
	meta("property", "og:url", l.SEO.OG.URL)
	meta("property", "og:image", l.SEO.OG.Image)
	meta("property", "og:site_name", l.SEO.OG.SiteName)
	meta("name", "twitter:card", l.SEO.Twitter.Card)
	for _, ld := range l.SEO.JSONLD {
		// json.Marshal output never contains a raw '<'
		b.WriteString(`<script type="application/ld+json">` + ld + `</script>`)
	}
	a := l.Analytics
	if a.GTMContainerID != "" {
		b.WriteString(`<script>(function(w,d,s,l,i){w[l]=w[l]||[];w[l].push({'gtm.start':new Date().getTime(),event:'gtm.js'});var f=d.getElementsByTagName(s)[0],j=d.createElement(s);j.async=true;j.src='https://www.googletagmanager.com/gtm.js?id='+i;f.parentNode.insertBefore(j,f);})(window,document,'script','dataLayer',` + jsString(a.GTMContainerID) + `);</script>`)
	}
	if a.GA4MeasurementID != "" {
		fmt.Fprintf(&b, `<script async src="https://www.googletagmanager.com/gtag/js?id=%s"></script>`, html.EscapeString(a.GA4MeasurementID))
		b.WriteString(`<script>window.dataLayer=window.dataLayer||[];function gtag(){dataLayer.push(arguments);}gtag('js',new Date());gtag('config',` + jsString(a.GA4MeasurementID) + `,{debug_mode:` + strconv.FormatBool(a.Debug) + `});</script>`)
	}
	return b.String()
}

func fillSectionHeader(section *goquery.Selection, title, subtitle string) {
	setText(section.Find(".section-title"), title)
	textOrRemove(section.Find(".section-subtitle"), subtitle)
}

func fillGrid(grid *goquery.Selection, g handlers.GridData) {
	grid.SetAttr("data-sort", string(g.Sort))
	if g.Notice != nil {
		fillNotice(grid.Find("#tools-notice"), *g.Notice)
	} else {
		grid.Find("#tools-notice").Remove()
	}
	fillCards(grid.Find(".marketplace-grid"), g.Cards)
}

func fillCards(container *goquery.Selection, cards []handlers.ToolCard) {
	if len(cards) == 0 {
		container.Remove()
		return
	}
	repeat(container, len(cards), func(i int, card *goquery.Selection) {
		fillToolCard(card, cards[i])
	})
}

func fillToolCard(card *goquery.Selection, c handlers.ToolCard) {
	card.SetAttr("data-slug", c.Slug)
	if !c.Featured {
		card.Find(".marketplace-card__badge").Remove()
	}
	if c.Image != "" {
		card.Find(".marketplace-card__media img").SetAttr("src", c.Image).SetAttr("alt", c.ImageAlt)
	} else {
		card.Find(".marketplace-card__media").Remove()
	}
	setText(card.Find(".marketplace-card__title"), c.Title)
	textOrRemove(card.Find(".marketplace-card__price"), c.Price)
	textOrRemove(card.Find(".marketplace-card__description"), c.Description)
	setLink(card.Find(`[data-role="primary"]`).RemoveAttr("data-role"), c.Primary)
	secondary := card.Find(`[data-role="secondary"]`).RemoveAttr("data-role")
	if c.Secondary != nil {
		setLink(secondary, *c.Secondary)
	} else {
		secondary.Remove()
	}
}

func fillTier(card *goquery.Selection, t handlers.TierView) {
	if t.Highlight {
		card.AddClass("highlight")
	}
	setText(card.Find("h3"), t.Name)
	textOrRemove(card.Find(".pricing-price"), t.Price)
	textOrRemove(card.Find(".pricing-description"), t.Description)
	if len(t.Features) > 0 {
		features := card.Find(".pricing-features")
		proto := features.Find("li").First().Remove()
		for _, f := range t.Features {
			features.AppendSelection(proto.Clone().SetText(f))
		}
	} else {
		card.Find(".pricing-features").Remove()
	}
	if t.CTA != nil {
		setLink(card.Find("a.btn"), *t.CTA)
	} else {
		card.Find("a.btn").Remove()
	}
}

func fillNotice(p *goquery.Selection, n handlers.Notice) {
	p.SetText(n.Message)
	p.AddClass("notice--" + string(n.Kind))
	if n.Alert() {
		p.SetAttr("role", "alert")
	} else {
		p.RemoveAttr("role")
	}
}

// repeat clones the container's prototype n times, filling each clone, and
// drops the prototype.
func repeat(container *goquery.Selection, n int, fill func(i int, item *goquery.Selection)) {
	proto := container.Find("[data-prototype]").First().Remove()
	proto.RemoveAttr("data-prototype")
	for i := 0; i < n; i++ {
		item := proto.Clone()
		fill(i, item)
		container.AppendSelection(item)
	}
}

func sectionOrRemove(doc *goquery.Document, id string, keep bool, fill func()) {
	if !keep {
		byID(doc, id).Remove()
		return
	}
	fill()
}

func byID(doc *goquery.Document, id string) *goquery.Selection {
	return doc.Find("#" + id)
}

func setText(s *goquery.Selection, text string) { s.SetText(text) }

func textOrRemove(s *goquery.Selection, text string) {
	if text == "" {
		s.Remove()
		return
	}
	s.SetText(text)
}

// htmlOrRemove inserts markup that has already passed the rich text
// sanitizer.
func htmlOrRemove(s *goquery.Selection, markup string) {
	if markup == "" {
		s.Remove()
		return
	}
	s.SetHtml(markup)
}

func setLink(a *goquery.Selection, l handlers.Link) {
	a.SetAttr("href", l.Href)
	a.SetText(l.Text)
	if l.Target != "" {
		a.SetAttr("target", l.Target)
		a.SetAttr("rel", l.Rel)
	} else {
		a.RemoveAttr("target")
		a.RemoveAttr("rel")
	}
}

func anchorHTML(l handlers.Link) string {
	attrs := `href="` + html.EscapeString(l.Href) + `"`
	if l.Target != "" {
		attrs += ` target="` + html.EscapeString(l.Target) + `" rel="` + html.EscapeString(l.Rel) + `"`
	}
	return "<a " + attrs + ">" + html.EscapeString(l.Text) + "</a>"
}

// jsString quotes s as a JavaScript string literal safe inside <script>.
func jsString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}

func writeDocument(w io.Writer, doc *goquery.Document) error {
	var buf bytes.Buffer
	for _, n := range doc.Nodes {
		if err := html.Render(&buf, n); err != nil {
			return fmt.Errorf("render: serialize document: %w", err)
		}
	}
	_, err := buf.WriteTo(w)
	return err
}
