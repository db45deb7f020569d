package sitemap

import (
	"encoding/xml"
	"strconv"
	"strings"
)

const (
	// Namespace is the sitemaps.org schema namespace.
	Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

	// DefaultSiteURL is used when no site URL is configured.
	DefaultSiteURL = "https://ashwinphilips.com"

	ContentType  = "application/xml; charset=utf-8"
	CacheControl = "public, max-age=3600"
)

// Page is one route of the site.
type Page struct {
	Path       string
	Priority   float64
	ChangeFreq string
}

// Pages lists every route published in the sitemap, in order.
var Pages = []Page{
	{Path: "", Priority: 1.0, ChangeFreq: "weekly"},
	{Path: "work", Priority: 0.9, ChangeFreq: "monthly"},
	{Path: "research", Priority: 0.9, ChangeFreq: "monthly"},
	{Path: "music", Priority: 0.9, ChangeFreq: "monthly"},
	{Path: "projects", Priority: 0.8, ChangeFreq: "monthly"},
	{Path: "about", Priority: 0.7, ChangeFreq: "monthly"},
	{Path: "contact", Priority: 0.6, ChangeFreq: "yearly"},
	{Path: "agents", Priority: 0.5, ChangeFreq: "yearly"},
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	URLs    []url    `xml:"url"`
}

type url struct {
	Loc        string `xml:"loc"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// Render builds the sitemap document for siteURL.
func Render(siteURL string) ([]byte, error) {
	siteURL = strings.TrimRight(siteURL, "/")
	if siteURL == "" {
		siteURL = DefaultSiteURL
	}

	set := urlSet{XMLNS: Namespace, URLs: make([]url, 0, len(Pages))}
	for _, page := range Pages {
		loc := siteURL
		if page.Path != "" {
			loc += "/" + page.Path
		}
		set.URLs = append(set.URLs, url{
			Loc:        loc,
			ChangeFreq: page.ChangeFreq,
			Priority:   strconv.FormatFloat(page.Priority, 'f', -1, 64),
		})
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}
