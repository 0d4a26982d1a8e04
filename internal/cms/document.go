package cms

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Fixed copy used when the content document omits a field.
const (
	DefaultHeroTitle        = "Internal Tools That Work Like Magic 🐙"
	DefaultHeroSubtitle     = "We build Slack bots, automations, and AI assistants so your team doesn't have to."
	DefaultHeroCTAText      = "Book a Free Demo"
	DefaultHeroCTALink      = "#contact"
	DefaultCapabilitiesName = "What We Build"
	DefaultUseCasesTitle    = "Popular Use Cases"
	DefaultHowItWorksTitle  = "How It Works"
	DefaultMarketplaceTitle = "Buy Tools & Bots"
	DefaultPricingTitle     = "Pricing"
	DefaultContactTitle     = "Ready to talk to Tako?"
	DefaultContactCTAText   = "Book a Free Demo"
	DefaultContactCTALink   = "mailto:hello@takotools.com"
	DefaultTierCTAText      = "Talk to us"
	DefaultTierCTALink      = "#contact"
	DefaultCardTitle        = "Untitled"
	DefaultFooterCopy       = "© Tako. All rights reserved."
)

// Document is the site copy. Every section is optional.
type Document struct {
	Hero         *Hero         `json:"hero" yaml:"hero"`
	Capabilities *Capabilities `json:"capabilities" yaml:"capabilities"`
	UseCases     *UseCases     `json:"useCases" yaml:"useCases"`
	HowItWorks   *HowItWorks   `json:"howItWorks" yaml:"howItWorks"`
	Marketplace  *Marketplace  `json:"marketplace" yaml:"marketplace"`
	Pricing      *Pricing      `json:"pricing" yaml:"pricing"`
	Footer       *Footer       `json:"footer" yaml:"footer"`
}

type Hero struct {
	Title    string `json:"title" yaml:"title"`
	Subtitle string `json:"subtitle" yaml:"subtitle"`
	CTAText  string `json:"ctaText" yaml:"ctaText"`
	CTALink  string `json:"ctaLink" yaml:"ctaLink"`
	Note     string `json:"note" yaml:"note"`
}

type Capabilities struct {
	Title string   `json:"title" yaml:"title"`
	Items []string `json:"items" yaml:"items"`
}

type Card struct {
	Icon        string `json:"icon" yaml:"icon"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

type UseCases struct {
	Title    string `json:"title" yaml:"title"`
	Subtitle string `json:"subtitle" yaml:"subtitle"`
	Cards    []Card `json:"cards" yaml:"cards"`
}

type Step struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

type HowItWorks struct {
	Title    string `json:"title" yaml:"title"`
	Subtitle string `json:"subtitle" yaml:"subtitle"`
	Steps    []Step `json:"steps" yaml:"steps"`
}

type Marketplace struct {
	Title    string `json:"title" yaml:"title"`
	Subtitle string `json:"subtitle" yaml:"subtitle"`
}

// Link is a destination with a label, used by tier and contact CTAs.
type Link struct {
	Link string `json:"link" yaml:"link"`
	Text string `json:"text" yaml:"text"`
}

type Tier struct {
	Name        string   `json:"name" yaml:"name"`
	Price       string   `json:"price" yaml:"price"`
	Description string   `json:"description" yaml:"description"`
	Features    []string `json:"features" yaml:"features"`
	Highlight   bool     `json:"highlight" yaml:"highlight"`
	CTA         *Link    `json:"cta" yaml:"cta"`
}

type Pricing struct {
	Title    string `json:"title" yaml:"title"`
	Subtitle string `json:"subtitle" yaml:"subtitle"`
	Note     string `json:"note" yaml:"note"`
	Tiers    []Tier `json:"tiers" yaml:"tiers"`
}

type ContactItem struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

type FooterLink struct {
	Label    string `json:"label" yaml:"label"`
	Href     string `json:"href" yaml:"href"`
	External bool   `json:"external" yaml:"external"`
}

type ContactSection struct {
	Title string `json:"title" yaml:"title"`
	Copy  string `json:"copy" yaml:"copy"`
	CTA   *Link  `json:"cta" yaml:"cta"`
}

type Footer struct {
	Copy           string          `json:"copy" yaml:"copy"`
	Contact        []ContactItem   `json:"contact" yaml:"contact"`
	Links          []FooterLink    `json:"links" yaml:"links"`
	ContactSection *ContactSection `json:"contactSection" yaml:"contactSection"`
}

// DecodeDocumentJSON parses a content document. Unknown fields are ignored.
func DecodeDocumentJSON(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("cms: decode content document: %w", err)
	}
	return doc, nil
}

// DecodeDocumentYAML is the YAML counterpart of DecodeDocumentJSON.
func DecodeDocumentYAML(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("cms: decode content document: %w", err)
	}
	return doc, nil
}

// HeroOrDefault returns the hero with every empty field defaulted. The note
// has no default.
func (d Document) HeroOrDefault() Hero {
	h := Hero{}
	if d.Hero != nil {
		h = *d.Hero
	}
	h.Title = firstNonEmpty(h.Title, DefaultHeroTitle)
	h.Subtitle = firstNonEmpty(h.Subtitle, DefaultHeroSubtitle)
	h.CTAText = firstNonEmpty(h.CTAText, DefaultHeroCTAText)
	h.CTALink = firstNonEmpty(h.CTALink, DefaultHeroCTALink)
	return h
}

// FooterCopy returns the footer line or the fixed copyright string.
func (d Document) FooterCopy() string {
	if d.Footer == nil {
		return DefaultFooterCopy
	}
	return firstNonEmpty(d.Footer.Copy, DefaultFooterCopy)
}

// SectionTitle returns title or fallback.
func SectionTitle(title, fallback string) string {
	return firstNonEmpty(title, fallback)
}

// StepTitle is the 1-based fallback title for untitled steps.
func StepTitle(title string, index int) string {
	return firstNonEmpty(title, fmt.Sprintf("Step %d", index+1))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
