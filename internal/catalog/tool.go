package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tool is one catalog entry as published in the tools document.
type Tool struct {
	Slug            string    `json:"slug" yaml:"slug"`
	Title           string    `json:"title" yaml:"title"`
	Description     string    `json:"description" yaml:"description"`
	Summary         string    `json:"summary" yaml:"summary"`
	Price           string    `json:"price" yaml:"price"`
	Image           string    `json:"image" yaml:"image"`
	Link            string    `json:"link" yaml:"link"`
	CheckoutURL     string    `json:"checkout_url" yaml:"checkout_url"`
	CTAText         string    `json:"ctaText" yaml:"ctaText"`
	CheckoutCTAText string    `json:"checkoutCtaText" yaml:"checkoutCtaText"`
	SecondaryCTA    *CTA      `json:"secondaryCta" yaml:"secondaryCta"`
	Tags            []string  `json:"tags" yaml:"tags"`
	Features        []Feature `json:"features" yaml:"features"`
	HowItWorks      []Step    `json:"how_it_works" yaml:"how_it_works"`
	Benefits        []string  `json:"benefits" yaml:"benefits"`
	VideoURL        string    `json:"video_url" yaml:"video_url"`
	Featured        bool      `json:"featured" yaml:"featured"`
	SupportPolicy   string    `json:"support_policy" yaml:"support_policy"`
	Format          string    `json:"format" yaml:"format"` // "html" (default) or "markdown"
}

// CTA is a call-to-action destination and label.
type CTA struct {
	Link string `json:"link" yaml:"link"`
	Text string `json:"text" yaml:"text"`
}

// Feature is a highlighted capability on the detail page.
type Feature struct {
	Icon        string `json:"icon" yaml:"icon"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

// Step is an onboarding step. The tools document allows either a bare string
// (stored in Text) or an object with a title and description.
type Step struct {
	Text        string `json:"-" yaml:"-"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

// IsText reports whether the step was published as a bare string.
func (s Step) IsText() bool { return s.Text != "" && s.Title == "" && s.Description == "" }

func (s *Step) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*s = Step{Text: text}
		return nil
	}
	type plain Step
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Step(p)
	return nil
}

func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*s = Step{Text: node.Value}
		return nil
	}
	type plain Step
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = Step(p)
	return nil
}

// HasSlug reports whether the record can be linked to a detail page.
func (t Tool) HasSlug() bool { return strings.TrimSpace(t.Slug) != "" }

// Purchasable reports whether the record carries a direct purchase path.
func (t Tool) Purchasable() bool { return t.Price != "" || t.CheckoutURL != "" }

// DecodeToolsJSON decodes a tools document shaped {"items": [...]}.
// A missing or non-array items field yields an empty catalog.
func DecodeToolsJSON(data []byte) ([]Tool, error) {
	var doc struct {
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: decode tools document: %w", err)
	}
	raw := bytes.TrimSpace(doc.Items)
	if len(raw) == 0 || raw[0] != '[' {
		return []Tool{}, nil
	}
	var items []Tool
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("catalog: decode tool items: %w", err)
	}
	if items == nil {
		items = []Tool{}
	}
	return items, nil
}

// DecodeToolsYAML is the YAML counterpart of DecodeToolsJSON.
func DecodeToolsYAML(data []byte) ([]Tool, error) {
	var doc struct {
		Items yaml.Node `yaml:"items"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: decode tools document: %w", err)
	}
	if doc.Items.Kind != yaml.SequenceNode {
		return []Tool{}, nil
	}
	var items []Tool
	if err := doc.Items.Decode(&items); err != nil {
		return nil, fmt.Errorf("catalog: decode tool items: %w", err)
	}
	if items == nil {
		items = []Tool{}
	}
	return items, nil
}

// Find returns the record whose slug equals slug exactly.
func Find(tools []Tool, slug string) (Tool, bool) {
	if slug == "" {
		return Tool{}, false
	}
	for _, t := range tools {
		if t.Slug == slug {
			return t, true
		}
	}
	return Tool{}, false
}
