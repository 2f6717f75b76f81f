package seo

import (
	"encoding/xml"
	"strings"
	"time"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

// SitemapURL is one <url> entry of the sitemap.
type SitemapURL struct {
	Loc        string
	LastMod    time.Time
	ChangeFreq string
	Priority   string
}

type xmlURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type xmlURLSet struct {
	XMLName xml.Name `xml:"urlset"`
	NS      string   `xml:"xmlns,attr"`
	URLs    []xmlURL `xml:"url"`
}

// Sitemap renders the urlset document for the given entries.
func Sitemap(urls []SitemapURL) ([]byte, error) {
	set := xmlURLSet{NS: sitemapNS, URLs: make([]xmlURL, 0, len(urls))}
	for _, u := range urls {
		entry := xmlURL{
			Loc:        u.Loc,
			ChangeFreq: u.ChangeFreq,
			Priority:   u.Priority,
		}
		if !u.LastMod.IsZero() {
			entry.LastMod = u.LastMod.UTC().Format("2006-01-02")
		}
		set.URLs = append(set.URLs, entry)
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

// Robots renders a robots.txt that keeps crawlers out of the checkout and
// cart flows and points them at the sitemap.
func Robots(siteURL string) string {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Disallow: /panier\n")
	b.WriteString("Disallow: /commande\n")
	b.WriteString("Disallow: /confirmation\n")
	b.WriteString("Sitemap: " + strings.TrimRight(siteURL, "/") + "/sitemap.xml\n")
	return b.String()
}
