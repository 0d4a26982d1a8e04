package seo

import (
	"encoding/json"
	"math"

	"takotools.com/tako-web/internal/catalog"
)

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Organization returns a minimal Organization schema.
func Organization(name, url, logoURL, email string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Organization",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if logoURL != "" {
		m["logo"] = logoURL
	}
	if email != "" {
		m["email"] = email
	}
	return m
}

// WebSite returns a minimal WebSite schema.
func WebSite(name, url string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	return m
}

// BreadcrumbItem maps name and item URL.
type BreadcrumbItem struct {
	Name string
	Item string
}

// BreadcrumbList builds schema.org BreadcrumbList.
func BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
			"item":     it.Item,
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}

// Product returns a product schema payload for a catalog tool. An offer is
// attached only when the price has a numeric value.
func Product(t catalog.Tool, description, url, imageURL string) map[string]any {
	m := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "Product",
		"name":        t.Title,
		"description": description,
	}
	if t.Slug != "" {
		m["sku"] = t.Slug
	}
	if url != "" {
		m["url"] = url
	}
	if imageURL != "" {
		m["image"] = imageURL
	}
	if price := catalog.ParsePrice(t.Price); !math.IsInf(price, 1) {
		offer := map[string]any{
			"@type":         "Offer",
			"price":         price,
			"priceCurrency": "USD",
		}
		if t.CheckoutURL != "" {
			offer["url"] = t.CheckoutURL
		}
		m["offers"] = offer
	}
	return m
}

// ItemList returns an ItemList of detail page URLs.
func ItemList(urls []string) map[string]any {
	el := make([]map[string]any, 0, len(urls))
	for i, u := range urls {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"url":      u,
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "ItemList",
		"itemListElement": el,
	}
}
