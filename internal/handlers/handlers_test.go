package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"takotools.com/tako-web/internal/catalog"
	"takotools.com/tako-web/internal/cms"
	"takotools.com/tako-web/internal/loadstate"
	"takotools.com/tako-web/internal/richtext"
)

func testSite(t *testing.T) Site {
	t.Helper()
	base, err := catalog.ParseBase("/")
	require.NoError(t, err)
	return Site{
		Name:   "Tako",
		Email:  "hello@takotools.com",
		Linker: catalog.NewLinker(base),
		Rich:   richtext.New(),
	}
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func sampleTools() []catalog.Tool {
	return []catalog.Tool{
		{Slug: "standup-bot", Title: "Standup Bot", Price: "$49", CheckoutURL: "https://buy.example/standup", Featured: false},
		{Slug: "ticket-triage", Title: "Ticket Triage", Price: "$19", Link: "https://tako.example/triage", Featured: true},
		{Slug: "", Title: "Draft"},
		{Slug: "okr-helper", Title: "OKR Helper", Summary: "<b>Goals</b>", SecondaryCTA: &catalog.CTA{Link: "/docs", Text: "Docs"}},
	}
}

func TestToolCardCTAs(t *testing.T) {
	site := testSite(t)
	listing := mustURL(t, "/tools/")
	tools := sampleTools()

	checkout := NewToolCard(site, listing, tools[0])
	assert.Equal(t, "https://buy.example/standup", checkout.Primary.Href)
	assert.Equal(t, "Buy Now", checkout.Primary.Text)
	assert.Equal(t, "_blank", checkout.Primary.Target)
	assert.Equal(t, "noreferrer noopener", checkout.Primary.Rel)
	require.NotNil(t, checkout.Secondary)
	assert.Equal(t, "/tool?slug=standup-bot", checkout.Secondary.Href)
	assert.Equal(t, "See features", checkout.Secondary.Text)
	assert.Empty(t, checkout.Secondary.Target)

	link := NewToolCard(site, listing, tools[1])
	assert.Equal(t, "https://tako.example/triage", link.Primary.Href)
	assert.Equal(t, "Learn More", link.Primary.Text)

	draft := NewToolCard(site, listing, tools[2])
	assert.Equal(t, "#contact", draft.Primary.Href)
	assert.Nil(t, draft.Secondary, "no slug and no secondary cta")
	assert.Equal(t, "Draft", draft.Key())

	custom := NewToolCard(site, listing, tools[3])
	require.NotNil(t, custom.Secondary)
	assert.Equal(t, "/docs", custom.Secondary.Href)
	assert.Equal(t, "Docs", custom.Secondary.Text)

	untitled := NewToolCard(site, listing, catalog.Tool{})
	assert.Equal(t, "Untitled tool", untitled.Title)
	assert.Equal(t, "Tool preview", untitled.ImageAlt)
}

func TestBuildHomeContentFailure(t *testing.T) {
	site := testSite(t)
	vm := BuildHome(site, mustURL(t, "/"),
		loadstate.FailedState[cms.Document]("content: boom"),
		loadstate.ReadyState(sampleTools()))

	require.NotNil(t, vm.ContentError)
	assert.Equal(t, MsgContentFailed, vm.ContentError.Message)
	assert.NotContains(t, vm.ContentError.Message, "boom")
	assert.Equal(t, cms.DefaultHeroTitle, vm.Hero.Title)
	assert.Equal(t, cms.DefaultHeroCTALink, vm.Hero.CTA.Href)
	assert.Equal(t, cms.DefaultCapabilitiesName, vm.Capabilities.Title)
	assert.Equal(t, cms.DefaultFooterCopy, vm.Footer.Copy)
	assert.Equal(t, cms.DefaultContactCTALink, vm.Contact.CTA.Href)

	// tools render independently of the content failure, in document order
	assert.Nil(t, vm.Marketplace.Notice)
	require.Len(t, vm.Marketplace.Cards, 4)
	assert.Equal(t, "standup-bot", vm.Marketplace.Cards[0].Slug)
	assert.Equal(t, "/tool.html?slug=standup-bot", vm.Marketplace.Cards[0].Secondary.Href)
}

func TestBuildHomeContent(t *testing.T) {
	site := testSite(t)
	doc := cms.Document{
		Hero:       &cms.Hero{Title: "Hi", CTALink: "https://cal.example/demo"},
		HowItWorks: &cms.HowItWorks{Steps: []cms.Step{{Title: "Scope"}, {Description: "Ship"}}},
		Pricing: &cms.Pricing{Tiers: []cms.Tier{
			{Name: "Starter", CTA: &cms.Link{}},
			{Name: "Custom"},
		}},
		Footer: &cms.Footer{
			Copy:           "(c) Tako",
			Links:          []cms.FooterLink{{Label: "Blog", Href: "https://blog.example"}, {Label: "Top"}},
			ContactSection: &cms.ContactSection{Title: "Say hi", CTA: &cms.Link{Text: "Write"}},
		},
	}
	vm := BuildHome(site, mustURL(t, "/"), loadstate.ReadyState(doc), loadstate.ReadyState([]catalog.Tool{}))

	assert.Nil(t, vm.ContentError)
	assert.Equal(t, "Hi", vm.Hero.Title)
	assert.Equal(t, cms.DefaultHeroCTAText, vm.Hero.CTA.Text)
	assert.Equal(t, "_blank", vm.NavCTA.Target)
	require.Len(t, vm.HowItWorks.Steps, 2)
	assert.Equal(t, "Step 2", vm.HowItWorks.Steps[1].Title)
	require.Len(t, vm.Pricing.Tiers, 2)
	require.NotNil(t, vm.Pricing.Tiers[0].CTA)
	assert.Equal(t, cms.DefaultTierCTALink, vm.Pricing.Tiers[0].CTA.Href)
	assert.Equal(t, cms.DefaultTierCTAText, vm.Pricing.Tiers[0].CTA.Text)
	assert.Nil(t, vm.Pricing.Tiers[1].CTA)
	assert.Equal(t, "Say hi", vm.Contact.Title)
	assert.Equal(t, "Write", vm.Contact.CTA.Text)
	assert.Equal(t, "mailto:hello@takotools.com", vm.Contact.CTA.Href)
	require.Len(t, vm.Contact.Links, 2)
	assert.Equal(t, "#", vm.Contact.Links[1].Href)

	require.NotNil(t, vm.Marketplace.Notice)
	assert.Equal(t, NoticeEmpty, vm.Marketplace.Notice.Kind)
	assert.Equal(t, MsgToolsEmpty, vm.Marketplace.Notice.Message)
}

func TestBuildToolsListSorts(t *testing.T) {
	site := testSite(t)
	tools := sampleTools()
	vm := BuildToolsList(site, mustURL(t, "/tools/"), loadstate.ReadyState(tools), catalog.SortPriceAsc)

	slugs := make([]string, 0, len(vm.Grid.Cards))
	for _, c := range vm.Grid.Cards {
		slugs = append(slugs, c.Key())
	}
	assert.Equal(t, []string{"ticket-triage", "standup-bot", "Draft", "okr-helper"}, slugs)
	assert.Equal(t, "standup-bot", tools[0].Slug, "input order untouched")
	assert.Equal(t, "/tools/?sort=price-asc", vm.Grid.ListingURL)
	assert.Equal(t, "/fragments/tools-grid", vm.Grid.FragmentURL)

	var selected []string
	for _, o := range vm.Grid.SortOptions {
		if o.Selected {
			selected = append(selected, o.Value)
		}
	}
	assert.Equal(t, []string{"price-asc"}, selected)
	assert.True(t, strings.HasPrefix(vm.NavCTA.Href, "mailto:hello@takotools.com?subject="))
	assert.Equal(t, "Tools Marketplace • Tako", vm.Title)

	featured := BuildToolsGrid(site, mustURL(t, "/tools/"), loadstate.ReadyState(tools), catalog.SortFeatured)
	assert.Equal(t, "ticket-triage", featured.Cards[0].Slug)
	assert.Equal(t, "/tools/", featured.ListingURL)
}

func TestBuildToolsListNotices(t *testing.T) {
	site := testSite(t)
	listing := mustURL(t, "/tools/")

	failed := BuildToolsList(site, listing, loadstate.FailedState[[]catalog.Tool]("tools: 502"), catalog.SortFeatured)
	require.NotNil(t, failed.Grid.Notice)
	assert.Equal(t, MsgToolsFailed, failed.Grid.Notice.Message)
	assert.True(t, failed.Grid.Notice.Alert())
	assert.Empty(t, failed.Grid.Cards)

	var pending loadstate.State[[]catalog.Tool]
	loading := BuildToolsList(site, listing, pending, catalog.SortFeatured)
	require.NotNil(t, loading.Grid.Notice)
	assert.Equal(t, MsgToolsLoading, loading.Grid.Notice.Message)
}

func TestBuildToolDetail(t *testing.T) {
	site := testSite(t)
	tools := append(sampleTools(), catalog.Tool{
		Slug:          "focus",
		Title:         "Focus",
		Summary:       `<p>Deep work <script>alert(1)</script></p>`,
		Price:         "$29/mo",
		SupportPolicy: "Email support",
		Features:      []catalog.Feature{{Icon: "⚡", Description: "<em>Fast</em>"}},
		HowItWorks:    []catalog.Step{{Text: "Install <b>it</b>"}, {Description: "Configure"}},
		Benefits:      []string{"Less noise", ""},
		Link:          "https://tako.example/focus",
		Image:         "./assets/focus.png",
	})

	vm := BuildToolDetail(site, mustURL(t, "/tools/focus"), "focus", loadstate.ReadyState(tools))
	require.NotNil(t, vm.Tool)
	assert.Equal(t, http.StatusOK, vm.StatusCode())
	assert.Equal(t, "Focus • Tako", vm.Title)
	assert.Equal(t, "/tool.html?slug=focus", vm.ReplaceURL)
	assert.NotContains(t, string(vm.Tool.Summary), "script")
	assert.Contains(t, string(vm.Tool.Summary), "Deep work")
	assert.Equal(t, "/assets/focus.png", vm.Tool.Image)
	assert.Equal(t, "Focus preview", vm.Tool.ImageAlt)

	require.Len(t, vm.Tool.Features, 1)
	assert.Equal(t, "Feature", vm.Tool.Features[0].Title)
	require.Len(t, vm.Tool.Steps, 2)
	assert.Equal(t, "Install <b>it</b>", string(vm.Tool.Steps[0].Text))
	assert.Equal(t, "Step 2", vm.Tool.Steps[1].Title)
	assert.Len(t, vm.Tool.Benefits, 1)

	require.NotNil(t, vm.Tool.Pricing)
	assert.Equal(t, "$29/mo", vm.Tool.Pricing.Price)
	assert.Nil(t, vm.Tool.PrimaryCTA, "no checkout url")
	assert.Equal(t, "https://tako.example/focus", vm.Tool.SecondaryCTA.Href)
	assert.Equal(t, "Request setup", vm.Tool.SecondaryCTA.Text)
	assert.Equal(t, "https://tako.example/focus", vm.Tool.PricingCTA.Href)
	assert.Equal(t, "Buy Now", vm.Tool.PricingCTA.Text)
	assert.Equal(t, "https://tako.example/focus", vm.NavCTA.Href)
	assert.Equal(t, "Talk to Tako", vm.NavCTA.Text)

	require.Len(t, vm.Tool.Related, 3)
	assert.Equal(t, "Standup Bot", vm.Tool.Related[0].Title)
	assert.Equal(t, "/tool.html?slug=standup-bot", vm.Tool.Related[0].Link.Href)
	assert.Equal(t, "Goals", vm.Tool.Related[2].Summary)
	assert.Empty(t, vm.Tool.Related[0].ImageAlt, "no image")
}

func TestBuildToolDetailCanonicalAlreadyApplied(t *testing.T) {
	site := testSite(t)
	vm := BuildToolDetail(site, mustURL(t, "/tool.html?slug=standup-bot#pricing"), "standup-bot", loadstate.ReadyState(sampleTools()))
	require.NotNil(t, vm.Tool)
	assert.Empty(t, vm.ReplaceURL)
	require.NotNil(t, vm.Tool.PrimaryCTA)
	assert.Equal(t, "https://buy.example/standup", vm.Tool.PrimaryCTA.Href)
	assert.Equal(t, "https://buy.example/standup", vm.NavCTA.Href)
	assert.Equal(t, "Buy Now", vm.NavCTA.Text)
	assert.Equal(t, "mailto:hello@takotools.com", vm.Tool.ContactCTA.Href)
	assert.Equal(t, "/tool.html?slug=ticket-triage", vm.Tool.Related[0].Link.Href)
}

func TestBuildToolDetailNotFound(t *testing.T) {
	site := testSite(t)

	missing := BuildToolDetail(site, mustURL(t, "/tool.html?slug=nope"), "nope", loadstate.ReadyState(sampleTools()))
	assert.Nil(t, missing.Tool)
	assert.Equal(t, http.StatusNotFound, missing.StatusCode())
	assert.Equal(t, "Tool not found • Tako", missing.Title)
	assert.Equal(t, "noindex", missing.SEO.Robots)
	assert.Empty(t, missing.ReplaceURL)

	noSlug := BuildToolDetail(site, mustURL(t, "/tool.html"), "", loadstate.ReadyState(sampleTools()))
	assert.Nil(t, noSlug.Tool)
	assert.Equal(t, http.StatusNotFound, noSlug.StatusCode())

	failed := BuildToolDetail(site, mustURL(t, "/tool.html?slug=focus"), "focus", loadstate.FailedState[[]catalog.Tool]("tools: timeout"))
	assert.Nil(t, failed.Tool)
	assert.Equal(t, http.StatusServiceUnavailable, failed.StatusCode())
	require.NotNil(t, failed.Notice)
	assert.Equal(t, MsgToolsFailed, failed.Notice.Message)
}
