// Package scraper fetches og:image thumbnails for topics whose feed items
// carried none. Best effort only: any failure leaves the topic without a
// thumbnail.
package scraper

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var client = &http.Client{
	Timeout: 15 * time.Second,
}

// ExtractThumbnail loads the article page and returns its og:image (or
// twitter:image) URL.
func ExtractThumbnail(pageURL string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "polinews/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error loading page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error parsing HTML: %w", err)
	}

	for _, sel := range []string{
		`meta[property="og:image"]`,
		`meta[name="og:image"]`,
		`meta[name="twitter:image"]`,
	} {
		if img, ok := doc.Find(sel).First().Attr("content"); ok {
			img = strings.TrimSpace(img)
			if isAbsoluteURL(img) {
				return img, nil
			}
		}
	}
	return "", fmt.Errorf("no og:image found")
}

// ExtractThumbnails resolves thumbnails for up to max page URLs, pausing
// between requests so sites are not hammered. Returns url -> thumbnail for
// the pages that yielded one.
func ExtractThumbnails(urls []string, max int) map[string]string {
	result := make(map[string]string)

	for i, u := range urls {
		if max > 0 && i >= max {
			break
		}

		thumb, err := ExtractThumbnail(u)
		if err != nil {
			log.Printf("⚠️ no thumbnail for %s: %v", u, err)
			continue
		}
		result[u] = thumb
		log.Printf("✅ thumbnail for %s", u)

		// Small pause between requests, don't overload sites
		time.Sleep(500 * time.Millisecond)
	}

	return result
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.IsAbs() && u.Host != ""
}
