// Package article defines the immutable Article record and the identity and
// normalization helpers every dedup stage builds on.
package article

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Article is a single normalized news item. Articles are created once at
// ingestion and never mutated afterwards.
type Article struct {
	Title     string
	Link      string
	Source    string
	Date      string
	Snippet   string
	Thumbnail string
}

// Validate rejects malformed input at ingestion: empty title or a link that is
// not a parseable absolute URL.
func (a Article) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("article has empty title (link=%q)", a.Link)
	}
	u, err := url.Parse(a.Link)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("article %q has invalid link %q", a.Title, a.Link)
	}
	return nil
}

// Query parameter prefixes that never change the document behind a link.
var trackingPrefixes = []string{"utm_", "gclid", "fbclid", "yclid", "mc_cid", "mc_eid"}

// CanonicalURL strips the fragment and known tracking parameters from a link.
// Parameter order and everything else is kept. Unparseable input is returned
// unchanged; the function never fails and is idempotent.
func CanonicalURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		return raw
	}
	u.Fragment = ""
	if u.RawQuery != "" {
		kept := make([]string, 0, 4)
		for _, pair := range strings.Split(u.RawQuery, "&") {
			key := pair
			if i := strings.IndexByte(pair, '='); i >= 0 {
				key = pair[:i]
			}
			if isTrackingKey(key) {
				continue
			}
			kept = append(kept, pair)
		}
		u.RawQuery = strings.Join(kept, "&")
	}
	return u.String()
}

func isTrackingKey(key string) bool {
	lower := strings.ToLower(key)
	for _, p := range trackingPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// Key returns the canonical-URL identity key of the article.
func (a Article) Key() string {
	return CanonicalURL(a.Link)
}

// Signature is the stable per-article fingerprint used in topic signatures:
// a hash of the origin+path component of the canonical URL, so that query
// strings and schemes do not split the same document into two identities.
func (a Article) Signature() string {
	u, err := url.Parse(CanonicalURL(a.Link))
	if err != nil || u.Host == "" {
		return hashString(a.Link)
	}
	return hashString(strings.ToLower(u.Host) + u.Path)
}

// Domain returns the registrable domain of the article's link, falling back to
// the feed-declared source name when the link cannot be parsed.
func (a Article) Domain() string {
	u, err := url.Parse(a.Link)
	if err != nil || u.Host == "" {
		return strings.ToLower(a.Source)
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

func hashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:])
}

var foldTransformer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// FoldText lower-cases the input and strips diacritics, so "Președinție"
// compares equal to "presedintie".
func FoldText(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// NormalizeTitle prepares a title for fuzzy comparison: diacritics folded,
// punctuation dropped, whitespace collapsed.
func NormalizeTitle(title string) string {
	folded := FoldText(title)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// DedupExact folds articles sharing a canonical-URL key into the first
// occurrence, preserving input order.
func DedupExact(items []Article) []Article {
	seen := make(map[string]struct{}, len(items))
	out := make([]Article, 0, len(items))
	for _, a := range items {
		key := a.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}
