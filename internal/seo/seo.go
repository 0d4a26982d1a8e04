package seo

type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
	URL         string
	SiteName    string
}

type Twitter struct {
	Card  string
	Site  string
	Image string
}

// Meta is the head metadata of a rendered page.
type Meta struct {
	Title       string
	Description string
	Canonical   string
	Robots      string
	OG          OpenGraph
	Twitter     Twitter
	JSONLD      []string
}

// NewMeta fills the OpenGraph and Twitter blocks from the page basics.
func NewMeta(siteName, title, description, canonical, image string) Meta {
	card := "summary"
	if image != "" {
		card = "summary_large_image"
	}
	return Meta{
		Title:       title,
		Description: description,
		Canonical:   canonical,
		OG: OpenGraph{
			Title:       title,
			Description: description,
			Image:       image,
			Type:        "website",
			URL:         canonical,
			SiteName:    siteName,
		},
		Twitter: Twitter{Card: card, Image: image},
	}
}

// NoIndex marks the page as excluded from search indexes.
func (m Meta) NoIndex() Meta {
	m.Robots = "noindex"
	return m
}
