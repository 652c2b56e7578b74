package handlers

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"rebuyrnot/internal/services"

	"github.com/gin-gonic/gin"
)

type SEOHandler struct {
	catalog *services.CatalogStore
	siteURL string
}

func NewSEOHandler(catalog *services.CatalogStore, siteURL string) *SEOHandler {
	return &SEOHandler{catalog: catalog, siteURL: strings.TrimRight(siteURL, "/")}
}

// RobotsTxt 返回robots.txt内容
func (h *SEOHandler) RobotsTxt(c *gin.Context) {
	content := fmt.Sprintf(`User-agent: *
Allow: /

# 禁止爬取后台和接口
Disallow: /admin/
Disallow: /api/

Sitemap: %s/sitemap.xml
`, h.siteURL)

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, content)
}

type sitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq"`
	Priority   float64 `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// SitemapXML lists the homepage and every product page.
func (h *SEOHandler) SitemapXML(c *gin.Context) {
	products := h.catalog.List()

	set := urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  make([]sitemapURL, 0, len(products)+1),
	}
	set.URLs = append(set.URLs, sitemapURL{
		Loc:        h.siteURL + "/",
		LastMod:    time.Now().Format("2006-01-02"),
		ChangeFreq: "daily",
		Priority:   1.0,
	})

	for _, p := range products {
		// 新商品权重更高
		priority, freq := 0.6, "weekly"
		if time.Since(p.CreatedAt) < 7*24*time.Hour {
			priority, freq = 0.8, "daily"
		}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        fmt.Sprintf("%s/product/%s", h.siteURL, p.ID),
			LastMod:    p.UpdatedAt.Format("2006-01-02"),
			ChangeFreq: freq,
			Priority:   priority,
		})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		HandleError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", append([]byte(xml.Header), out...))
}
