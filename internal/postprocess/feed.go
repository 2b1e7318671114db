package postprocess

import (
	"encoding/xml"
	"sort"

	"github.com/bengal-ssg/bengal/internal/model"
)

// MaxFeedItems is the hard cap on rss.xml items.
const MaxFeedItems = 20

// RSS is the top-level <rss> element.
type RSS struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel RSSChannel `xml:"channel"`
}

type RSSChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []RSSItem `xml:"item"`
}

type RSSItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	GUID    string `xml:"guid"`
	PubDate string `xml:"pubDate"`
}

// FeedOptions configures feed generation.
type FeedOptions struct {
	BaseURL     string
	Title       string
	Description string
}

// rfc822 is Go's reference layout for RFC822 dates with a numeric zone
// ("+0000" rather than "UTC"), the form RSS feeds expect.
const rfc822 = "Mon, 02 Jan 2006 15:04:05 -0700"

// BuildFeed returns the marshaled rss.xml document for the newest 20
// dated, listable pages (sorted by date descending), or ok=false if no
// page has a date.
func BuildFeed(pages []*model.Page, opts FeedOptions) (data []byte, ok bool, err error) {
	var dated []*model.Page
	for _, p := range pages {
		if p.IsListable() && p.Date != nil {
			dated = append(dated, p)
		}
	}
	if len(dated) == 0 {
		return nil, false, nil
	}

	sort.Slice(dated, func(i, j int) bool { return dated[i].Date.After(*dated[j].Date) })
	if len(dated) > MaxFeedItems {
		dated = dated[:MaxFeedItems]
	}

	feed := RSS{Version: "2.0", Channel: RSSChannel{
		Title:       opts.Title,
		Link:        opts.BaseURL,
		Description: opts.Description,
	}}
	for _, p := range dated {
		link := sitemapLoc(opts.BaseURL, p.Href)
		feed.Channel.Items = append(feed.Channel.Items, RSSItem{
			Title:   p.Title,
			Link:    link,
			GUID:    link,
			PubDate: p.Date.UTC().Format(rfc822),
		})
	}

	out, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return nil, false, err
	}
	return append([]byte(xml.Header), out...), true, nil
}
