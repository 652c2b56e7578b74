package utils

import (
	"bytes"
	"html"
	"html/template"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

const placeholderImage = "/placeholder.svg"

var (
	mdParser = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
			gmhtml.WithXHTML(),
		),
	)
	ugcPolicy   = bluemonday.UGCPolicy()
	plainPolicy = bluemonday.StrictPolicy()
)

func init() {
	ugcPolicy.AllowImages()
	ugcPolicy.AddTargetBlankToFullyQualifiedLinks(true)
	ugcPolicy.RequireNoReferrerOnLinks(true)
}

// RenderMarkdown renders a product description to sanitized HTML. Product
// photos are lazy-loaded and fall back to the placeholder when they 404.
func RenderMarkdown(source string) template.HTML {
	var buf bytes.Buffer
	if err := mdParser.Convert([]byte(source), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}

	sanitized := ugcPolicy.SanitizeBytes(buf.Bytes())
	if !bytes.Contains(sanitized, []byte("<img")) {
		return template.HTML(sanitized)
	}
	return template.HTML(lazyImages(sanitized))
}

// lazyImages sets loading and referrer attributes on every <img>.
func lazyImages(fragment []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(fragment))
	if err != nil {
		return string(fragment)
	}

	doc.Find("img").
		SetAttr("loading", "lazy").
		SetAttr("referrerpolicy", "no-referrer").
		SetAttr("onerror", "this.onerror=null;this.src='"+placeholderImage+"'")

	// 解析器会补全 html/body, 只取片段
	out, err := doc.Find("body").Html()
	if err != nil {
		return string(fragment)
	}
	return out
}

// PlainText strips all markup from short user text such as submission
// names. Entities are decoded so "AT&T" stays "AT&T".
func PlainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(plainPolicy.Sanitize(s)))
}
