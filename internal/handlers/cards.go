package handlers

import (
	"net/url"

	"takotools.com/tako-web/internal/catalog"
	"takotools.com/tako-web/internal/loadstate"
	"takotools.com/tako-web/internal/richtext"
)

// ToolCard is one marketplace tile.
type ToolCard struct {
	Slug        string
	Title       string
	Price       string
	Description string
	Featured    bool
	Image       string
	ImageAlt    string
	Primary     Link
	Secondary   *Link
}

// Key identifies the card within a grid.
func (c ToolCard) Key() string {
	if c.Slug != "" {
		return c.Slug
	}
	return c.Title
}

// NewToolCard applies the card CTA rules: primary goes to checkout, the
// record link or the contact anchor; secondary goes to the record's own
// secondary CTA or the detail page.
func NewToolCard(site Site, current *url.URL, t catalog.Tool) ToolCard {
	primaryHref := firstNonEmpty(t.CheckoutURL, t.Link, "#contact")
	primaryLabel := t.CTAText
	if primaryLabel == "" {
		if t.CheckoutURL != "" {
			primaryLabel = "Buy Now"
		} else {
			primaryLabel = "Learn More"
		}
	}
	card := ToolCard{
		Slug:        t.Slug,
		Title:       firstNonEmpty(t.Title, "Untitled tool"),
		Price:       t.Price,
		Description: richtext.PlainText(t.Description),
		Featured:    t.Featured,
		Image:       site.asset(t.Image),
		ImageAlt:    firstNonEmpty(t.Title, "Tool preview"),
		Primary:     NewLink(primaryHref, primaryLabel),
	}

	var secondaryHref, secondaryLabel string
	if t.SecondaryCTA != nil {
		secondaryHref = t.SecondaryCTA.Link
		secondaryLabel = t.SecondaryCTA.Text
	}
	if secondaryHref == "" && t.HasSlug() {
		secondaryHref = site.Linker.DetailURL(current, t.Slug)
	}
	if secondaryLabel == "" && secondaryHref != "" {
		secondaryLabel = "See features"
	}
	if secondaryHref != "" && secondaryLabel != "" {
		l := NewLink(secondaryHref, secondaryLabel)
		card.Secondary = &l
	}
	return card
}

func toolCards(site Site, current *url.URL, tools []catalog.Tool) []ToolCard {
	cards := make([]ToolCard, 0, len(tools))
	for _, t := range tools {
		cards = append(cards, NewToolCard(site, current, t))
	}
	return cards
}

// toolsNotice maps the tools load state to the message shown in place of
// the grid, or nil when the grid has cards.
func toolsNotice(state loadstate.State[[]catalog.Tool]) *Notice {
	switch state.Status() {
	case loadstate.Failed:
		return &Notice{Kind: NoticeError, Message: MsgToolsFailed}
	case loadstate.Loading:
		return &Notice{Kind: NoticeLoading, Message: MsgToolsLoading}
	}
	if tools, _ := state.Data(); len(tools) == 0 {
		return &Notice{Kind: NoticeEmpty, Message: MsgToolsEmpty}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
