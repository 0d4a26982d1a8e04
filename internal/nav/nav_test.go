package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"takotools.com/tako-web/internal/catalog"
)

func linker(t *testing.T, raw string) catalog.Linker {
	t.Helper()
	base, err := catalog.ParseBase(raw)
	require.NoError(t, err)
	return catalog.NewLinker(base)
}

func TestBuildActive(t *testing.T) {
	l := linker(t, "/site/")
	items := Build(l.Base(), Main, "/site/tools/standup-bot")
	require.Len(t, items, 3)
	assert.Equal(t, "/site/index.html#hero", items[0].Href)
	assert.False(t, items[0].Active)
	assert.Equal(t, "/site/tools/", items[1].Href)
	assert.True(t, items[1].Active)
	assert.False(t, items[2].Active)

	items = Build(l.Base(), Main, "/site/tools")
	assert.True(t, items[1].Active)
}

func TestBuildHomeAnchors(t *testing.T) {
	l := linker(t, "/")
	items := Build(l.Base(), HomeSections, "/")
	require.Len(t, items, 5)
	assert.Equal(t, "#what-we-build", items[0].Href)
	assert.Equal(t, "/tools/", items[2].Href)
	for _, it := range items {
		assert.False(t, it.Active, it.Label)
	}
}

func TestBreadcrumbs(t *testing.T) {
	l := linker(t, "/")

	home := Breadcrumbs(l, "/", "")
	require.Len(t, home, 1)
	assert.True(t, home[0].Active)

	list := Breadcrumbs(l, "/tools/", "")
	require.Len(t, list, 2)
	assert.Equal(t, "/tools/", list[1].Href)
	assert.True(t, list[1].Active)

	detail := Breadcrumbs(l, "/tool.html", "Standup Bot")
	require.Len(t, detail, 3)
	assert.False(t, detail[1].Active)
	assert.Equal(t, "Standup Bot", detail[2].Label)
	assert.True(t, detail[2].Active)

	byPath := Breadcrumbs(l, "/tools/ticket-triage.html", "")
	require.Len(t, byPath, 3)
	assert.Equal(t, "Ticket triage", byPath[2].Label)
}
