// Package feed retrieves the per-entity article stream from RSS sources and
// normalizes each item into an Article.
package feed

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"github.com/ardld/polinews/internal/article"
	"github.com/ardld/polinews/internal/entity"
)

// Source is one entity's feed list from the YAML config.
type Source struct {
	Entity entity.Entity `yaml:"entity"`
	Feeds  []string      `yaml:"feeds"`
}

// SourcesConfig is the YAML config structure:
//
//	sources:
//	  - entity: guvern
//	    feeds:
//	      - https://news.google.com/rss/search?q=...
type SourcesConfig struct {
	Sources []Source `yaml:"sources"`
}

// LoadSources reads the per-entity feed list from a YAML file and rejects
// unknown entity names.
func LoadSources(path string) ([]Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg SourcesConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	for _, s := range cfg.Sources {
		if !entity.Valid(s.Entity) {
			return nil, fmt.Errorf("unknown entity %q in %s", s.Entity, path)
		}
	}
	return cfg.Sources, nil
}

// Fetch downloads and parses all feeds of one source. A failing feed is
// logged and skipped; the others still contribute. Items that fail Article
// validation are rejected here, at ingestion.
func Fetch(ctx context.Context, src Source) []article.Article {
	parser := gofeed.NewParser()
	var out []article.Article
	successCount := 0

	for _, url := range src.Feeds {
		feed, err := parser.ParseURLWithContext(url, ctx)
		if err != nil {
			log.Printf("Error parsing feed %s: %v", url, err)
			continue
		}
		for _, item := range feed.Items {
			a := fromItem(item, feed)
			if err := a.Validate(); err != nil {
				log.Printf("rejected item from %s: %v", url, err)
				continue
			}
			out = append(out, a)
		}
		successCount++
	}

	log.Printf("%s: %d/%d feeds ok, %d articles", src.Entity, successCount, len(src.Feeds), len(out))
	return out
}

func fromItem(item *gofeed.Item, feed *gofeed.Feed) article.Article {
	source := feedSourceName(item, feed)

	date := item.Published
	if date == "" {
		date = item.Updated
	}

	return article.Article{
		Title:     strings.TrimSpace(item.Title),
		Link:      strings.TrimSpace(item.Link),
		Source:    source,
		Date:      date,
		Snippet:   StripHTML(item.Description),
		Thumbnail: itemThumbnail(item),
	}
}

// feedSourceName prefers the item-level source element (Google News sets it
// to the original publisher) over the feed title.
func feedSourceName(item *gofeed.Item, feed *gofeed.Feed) string {
	if item.Custom != nil {
		if s, ok := item.Custom["source"]; ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	if feed != nil && feed.Title != "" {
		return strings.TrimSpace(feed.Title)
	}
	return ""
}

func itemThumbnail(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if strings.HasPrefix(enc.Type, "image/") && enc.URL != "" {
			return enc.URL
		}
	}
	if media, ok := item.Extensions["media"]; ok {
		for _, ext := range media["content"] {
			if u, ok := ext.Attrs["url"]; ok && u != "" {
				return u
			}
		}
		for _, ext := range media["thumbnail"] {
			if u, ok := ext.Attrs["url"]; ok && u != "" {
				return u
			}
		}
	}
	return ""
}

// StripHTML flattens an HTML snippet into plain text.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
