// Package richtext is the boundary through which catalog rich text reaches a
// page. Everything returned as template.HTML has been sanitized.
package richtext

import (
	"bytes"
	"html/template"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
)

// Format names how a rich text field is authored.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// ParseFormat maps a record's format value to a Format. Anything other than
// markdown (or md) is HTML.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md":
		return FormatMarkdown
	default:
		return FormatHTML
	}
}

// Sanitizer converts and sanitizes rich text. It is safe for concurrent use.
type Sanitizer struct {
	policy *bluemonday.Policy
	md     goldmark.Markdown
}

// New builds a Sanitizer with the UGC policy used for catalog copy.
func New() *Sanitizer {
	return &Sanitizer{
		policy: newPolicy(),
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			// raw HTML is kept here and stripped by the policy afterwards
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
	}
}

func newPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("figure", "figcaption")
	policy.AllowAttrs("class").OnElements("figure", "figcaption", "p", "span", "strong", "em")
	policy.AllowAttrs("loading").OnElements("img")
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	return policy
}

// HTML returns src as sanitized markup. Markdown is rendered first.
func (s *Sanitizer) HTML(format Format, src string) template.HTML {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	if format == FormatMarkdown {
		var buf bytes.Buffer
		if err := s.md.Convert([]byte(src), &buf); err == nil {
			src = buf.String()
		}
	}
	return template.HTML(strings.TrimSpace(s.policy.Sanitize(src)))
}

// Strings applies HTML to each value, dropping values that sanitize to
// nothing.
func (s *Sanitizer) Strings(format Format, values []string) []template.HTML {
	out := make([]template.HTML, 0, len(values))
	for _, v := range values {
		if h := s.HTML(format, v); h != "" {
			out = append(out, h)
		}
	}
	return out
}

// PlainText extracts the visible text of an HTML fragment with whitespace
// collapsed. Script and style contents are skipped.
func PlainText(src string) string {
	if !strings.ContainsAny(src, "<&") {
		return strings.Join(strings.Fields(src), " ")
	}
	z := html.NewTokenizer(strings.NewReader(src))
	var (
		b    strings.Builder
		skip int
	)
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a malformed tail; either way keep what was read
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
				b.WriteByte(' ')
			}
		case html.StartTagToken:
			if isRawTextTag(z) {
				skip++
			}
		case html.EndTagToken:
			if isRawTextTag(z) && skip > 0 {
				skip--
			}
		}
	}
}

func isRawTextTag(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch string(name) {
	case "script", "style", "template":
		return true
	}
	return false
}

// Summary returns at most limit runes of the plain text of src, cut at a
// word boundary with an ellipsis when shortened.
func Summary(src string, limit int) string {
	text := PlainText(src)
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:limit])
	if i := strings.LastIndexByte(cut, ' '); i > limit/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
