package seo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"takotools.com/tako-web/internal/catalog"
)

func TestProductOffer(t *testing.T) {
	priced := Product(catalog.Tool{Slug: "bot", Title: "Bot", Price: "$49/mo", CheckoutURL: "https://buy.example"}, "d", "/tool.html?slug=bot", "")
	offer, ok := priced["offers"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 49.0, offer["price"])
	assert.Equal(t, "https://buy.example", offer["url"])
	assert.Equal(t, "bot", priced["sku"])

	free := Product(catalog.Tool{Title: "Ask us", Price: "Contact sales"}, "", "", "")
	assert.NotContains(t, free, "offers")
	assert.NotContains(t, free, "sku")
}

func TestBreadcrumbListJSON(t *testing.T) {
	out := JSON(BreadcrumbList([]BreadcrumbItem{{Name: "Home", Item: "/"}, {Name: "Tools", Item: "/tools/"}}))
	var decoded struct {
		Type  string `json:"@type"`
		Items []struct {
			Position int    `json:"position"`
			Name     string `json:"name"`
		} `json:"itemListElement"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "BreadcrumbList", decoded.Type)
	require.Len(t, decoded.Items, 2)
	assert.Equal(t, 2, decoded.Items[1].Position)
	assert.Equal(t, "Tools", decoded.Items[1].Name)
}

func TestNewMeta(t *testing.T) {
	m := NewMeta("Tako", "T", "D", "/x", "/img.png")
	assert.Equal(t, "summary_large_image", m.Twitter.Card)
	assert.Equal(t, "/x", m.OG.URL)
	assert.Equal(t, "noindex", m.NoIndex().Robots)
	assert.Empty(t, m.Robots)
}
