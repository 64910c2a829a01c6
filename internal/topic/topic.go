// Package topic defines the Topic (subject) value produced per entity and its
// deterministic content signature.
package topic

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/ardld/polinews/internal/article"
	"github.com/ardld/polinews/internal/entity"
)

// MaxItems caps how many articles a topic may carry.
const MaxItems = 5

// Topic groups up to MaxItems articles about one news event. Items keep
// selection order, not time order. Topics are created by the clusterer and may
// later be mutated by the collapser (items replaced with a merged union) or
// removed entirely when absorbed into another bucket's topic.
type Topic struct {
	Label     string
	TitluRO   string
	SumarRO   string
	Items     []article.Article
	Thumbnail string
}

// New builds a topic from a label and its selected articles, dropping items
// that would duplicate an earlier item's signature and truncating to MaxItems.
// The thumbnail is chosen once: the first item that has one.
func New(label string, items []article.Article) Topic {
	t := Topic{Label: label}
	seen := make(map[string]struct{}, len(items))
	for _, a := range items {
		if len(t.Items) >= MaxItems {
			break
		}
		sig := a.Signature()
		if _, dup := seen[sig]; dup {
			continue
		}
		seen[sig] = struct{}{}
		t.Items = append(t.Items, a)
		if t.Thumbnail == "" && a.Thumbnail != "" {
			t.Thumbnail = a.Thumbnail
		}
	}
	return t
}

// Signature returns the order-independent content key of the topic: a hash of
// the sorted set of item signatures. Permuting Items does not change it, and
// it is stable across runs.
func (t Topic) Signature() string {
	sigs := t.ItemSignatures()
	sort.Strings(sigs)
	h := sha1.Sum([]byte(strings.Join(sigs, "|")))
	return hex.EncodeToString(h[:])
}

// ItemSignatures returns the per-article signatures of the topic's items in
// item order.
func (t Topic) ItemSignatures() []string {
	sigs := make([]string, 0, len(t.Items))
	for _, a := range t.Items {
		sigs = append(sigs, a.Signature())
	}
	return sigs
}

// SignatureSet returns the item signatures as a set.
func (t Topic) SignatureSet() map[string]struct{} {
	set := make(map[string]struct{}, len(t.Items))
	for _, a := range t.Items {
		set[a.Signature()] = struct{}{}
	}
	return set
}

// Text concatenates the topic's generated title, summary, label and item
// titles, for keyword scoring.
func (t Topic) Text() string {
	parts := make([]string, 0, len(t.Items)+3)
	parts = append(parts, t.TitluRO, t.SumarRO, t.Label)
	for _, a := range t.Items {
		parts = append(parts, a.Title)
	}
	return strings.Join(parts, " ")
}

// Domains returns the distinct registrable domains across items, in first-seen
// order, capped at max (<=0 means no cap).
func (t Topic) Domains(max int) []string {
	seen := make(map[string]struct{}, len(t.Items))
	var out []string
	for _, a := range t.Items {
		d := a.Domain()
		if d == "" {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out
}

// Bucket holds the topics assigned to one entity.
type Bucket struct {
	Entity   entity.Entity
	Subjects []Topic
}

// SortBuckets orders buckets by the fixed entity priority order, in place.
func SortBuckets(buckets []Bucket) {
	sort.SliceStable(buckets, func(i, j int) bool {
		return entity.Rank(buckets[i].Entity) < entity.Rank(buckets[j].Entity)
	})
}
