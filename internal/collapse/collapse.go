// Package collapse merges topics that were discovered independently for
// different entities but describe the same real-world event, and files each
// merged topic under the single entity that best matches its content.
//
// The collapser runs after all per-entity clustering has finished and mutates
// the entity buckets in place, single-threaded. Two stages: a deterministic
// exact-signature + overlap union-find stage that alone guarantees the
// no-duplicate invariant, and an optional collaborator stage that catches
// same-event topics with zero article overlap.
package collapse

import (
	"context"
	"log"
	"sort"
	"strings"

	"github.com/ardld/polinews/internal/article"
	"github.com/ardld/polinews/internal/entity"
	"github.com/ardld/polinews/internal/gemini"
	"github.com/ardld/polinews/internal/metrics"
	"github.com/ardld/polinews/internal/topic"
)

// Collaborator is the cross-entity merge collaborator; *gemini.Client
// satisfies it.
type Collaborator interface {
	MergeTopics(ctx context.Context, items []gemini.MergeInput) [][]int
}

type Collapser struct {
	// MinOverlap is how many articles two topics must share before they are
	// considered the same story. One shared article is treated as coincidence.
	MinOverlap int
	// Collab runs the optional semantic merge stage; nil skips it.
	Collab Collaborator
	// SampleLimit bounds how many topics are submitted to the collaborator.
	SampleLimit int
}

func New(minOverlap int, collab Collaborator, sampleLimit int) *Collapser {
	if minOverlap < 1 {
		minOverlap = 2
	}
	if sampleLimit <= 0 {
		sampleLimit = 24
	}
	return &Collapser{
		MinOverlap:  minOverlap,
		Collab:      collab,
		SampleLimit: sampleLimit,
	}
}

// Collapse runs both stages and returns the final buckets sorted by entity
// priority. Empty buckets are kept so every configured entity appears in the
// report.
func (c *Collapser) Collapse(ctx context.Context, buckets []topic.Bucket) []topic.Bucket {
	buckets = c.collapseBySignature(buckets)
	buckets = c.collapseSemantically(ctx, buckets)
	// The semantic stage builds unions too, so its output goes through the
	// overlap merge once more before the no-shared-articles guarantee holds.
	buckets = c.collapseBySignature(buckets)
	topic.SortBuckets(buckets)
	return buckets
}

// ref addresses one topic inside the current bucket slice.
type ref struct {
	b, t int
}

// collapseBySignature implements the exact-signature + overlap union-find
// stage. This stage alone guarantees that no two surviving topics share
// MinOverlap or more articles.
//
// Absorbing a component replaces the owner topic's items with the union of
// its members, and that union can reach MinOverlap with a topic that had no
// edge to any individual member. One pass is therefore not enough: the
// merge runs again over the updated article sets until a full pass merges
// nothing. Every merging pass removes at least one topic, so the loop
// terminates.
func (c *Collapser) collapseBySignature(buckets []topic.Bucket) []topic.Bucket {
	for {
		var merged bool
		buckets, merged = c.mergeOverlapsOnce(buckets)
		if !merged {
			break
		}
	}

	// Defensive pass: any topic whose signature duplicates one already kept
	// (in priority order, across buckets) is dropped.
	return dropDuplicateSignatures(buckets)
}

// mergeOverlapsOnce runs a single union-find merge over the current topic
// article sets and reports whether anything was absorbed.
func (c *Collapser) mergeOverlapsOnce(buckets []topic.Bucket) ([]topic.Bucket, bool) {
	// 1-2. Group all (entity, topic) refs by exact signature; identical
	// signatures are trivially the same story.
	var sigOrder []string
	sigRefs := make(map[string][]ref)
	sigSet := make(map[string]map[string]struct{})

	for b := range buckets {
		for t := range buckets[b].Subjects {
			sig := buckets[b].Subjects[t].Signature()
			if _, seen := sigRefs[sig]; !seen {
				sigOrder = append(sigOrder, sig)
				sigSet[sig] = buckets[b].Subjects[t].SignatureSet()
			}
			sigRefs[sig] = append(sigRefs[sig], ref{b, t})
		}
	}

	// 3-4. Connect signatures whose article sets overlap in at least
	// MinOverlap articles, then take connected components as merge buckets.
	uf := newUnionFind(len(sigOrder))
	for i := 0; i < len(sigOrder); i++ {
		for j := i + 1; j < len(sigOrder); j++ {
			if setOverlap(sigSet[sigOrder[i]], sigSet[sigOrder[j]]) >= c.MinOverlap {
				uf.union(i, j)
			}
		}
	}

	componentRefs := make(map[int][]ref)
	var componentOrder []int
	for i, sig := range sigOrder {
		root := uf.find(i)
		if _, seen := componentRefs[root]; !seen {
			componentOrder = append(componentOrder, root)
		}
		componentRefs[root] = append(componentRefs[root], sigRefs[sig]...)
	}

	// 5-6. Merge every multi-member component into its owner entity's topic.
	deleted := make(map[ref]bool)
	for _, root := range componentOrder {
		refs := componentRefs[root]
		if len(refs) < 2 {
			continue
		}
		c.absorb(buckets, refs, deleted)
	}

	return rebuild(buckets, deleted), len(deleted) > 0
}

// absorb merges all referenced topics into the one owned by the scored-best
// entity and marks the rest deleted.
func (c *Collapser) absorb(buckets []topic.Bucket, refs []ref, deleted map[ref]bool) {
	live := make([]ref, 0, len(refs))
	for _, r := range refs {
		if !deleted[r] {
			live = append(live, r)
		}
	}
	refs = live
	if len(refs) < 2 {
		return
	}

	// Score the concatenated textual content of all members against each
	// entity's keyword signature to pick the owner.
	var text strings.Builder
	members := make([]entity.Entity, 0, len(refs))
	for _, r := range refs {
		text.WriteString(buckets[r.b].Subjects[r.t].Text())
		text.WriteString(" ")
		members = append(members, buckets[r.b].Entity)
	}
	owner := entity.PickOwnerAmong(article.FoldText(text.String()), members)

	ownerRef := refs[0]
	for _, r := range refs {
		if buckets[r.b].Entity == owner {
			ownerRef = r
			break
		}
	}

	// Union of all member articles, deduplicated by signature, first-seen
	// order across members, truncated to the topic item cap.
	seen := make(map[string]struct{})
	var merged []article.Article
	for _, r := range refs {
		for _, a := range buckets[r.b].Subjects[r.t].Items {
			sig := a.Signature()
			if _, dup := seen[sig]; dup {
				continue
			}
			seen[sig] = struct{}{}
			if len(merged) < topic.MaxItems {
				merged = append(merged, a)
			}
		}
	}

	ownerTopic := &buckets[ownerRef.b].Subjects[ownerRef.t]
	ownerTopic.Items = merged
	if ownerTopic.Thumbnail == "" {
		for _, a := range merged {
			if a.Thumbnail != "" {
				ownerTopic.Thumbnail = a.Thumbnail
				break
			}
		}
	}

	for _, r := range refs {
		if r == ownerRef {
			continue
		}
		deleted[r] = true
		metrics.Global.IncrementTopicsCollapsed()
		log.Printf("topic absorbed into %s: %q <- %q (%s)",
			owner, ownerTopic.Label, buckets[r.b].Subjects[r.t].Label, buckets[r.b].Entity)
	}
}

// collapseSemantically submits a bounded sample of the remaining topics to the
// merge collaborator and applies the same owner-scoring and absorption rule to
// whatever groups come back. On any collaborator failure the stage is a no-op.
func (c *Collapser) collapseSemantically(ctx context.Context, buckets []topic.Bucket) []topic.Bucket {
	if c.Collab == nil {
		return buckets
	}

	var sample []ref
	for b := range buckets {
		for t := range buckets[b].Subjects {
			if len(sample) >= c.SampleLimit {
				break
			}
			sample = append(sample, ref{b, t})
		}
	}
	if len(sample) < 2 {
		return buckets
	}

	inputs := make([]gemini.MergeInput, len(sample))
	for i, r := range sample {
		t := buckets[r.b].Subjects[r.t]
		title := t.TitluRO
		if title == "" {
			title = t.Label
		}
		titles := make([]string, 0, len(t.Items))
		for _, a := range t.Items {
			titles = append(titles, a.Title)
		}
		inputs[i] = gemini.MergeInput{
			Index:      i,
			Entity:     string(buckets[r.b].Entity),
			Title:      title,
			Summary:    t.SumarRO,
			ItemTitles: titles,
			Domains:    t.Domains(6),
		}
	}

	groups := c.Collab.MergeTopics(ctx, inputs)
	if len(groups) == 0 {
		return buckets
	}

	deleted := make(map[ref]bool)
	for _, group := range groups {
		refs := make([]ref, 0, len(group))
		for _, i := range group {
			if i >= 0 && i < len(sample) {
				refs = append(refs, sample[i])
			}
		}
		if len(refs) < 2 {
			continue
		}
		c.absorb(buckets, refs, deleted)
	}

	return dropDuplicateSignatures(rebuild(buckets, deleted))
}

// rebuild produces new buckets without the deleted topics.
func rebuild(buckets []topic.Bucket, deleted map[ref]bool) []topic.Bucket {
	if len(deleted) == 0 {
		return buckets
	}
	out := make([]topic.Bucket, len(buckets))
	for b := range buckets {
		out[b].Entity = buckets[b].Entity
		for t := range buckets[b].Subjects {
			if deleted[ref{b, t}] {
				continue
			}
			out[b].Subjects = append(out[b].Subjects, buckets[b].Subjects[t])
		}
	}
	return out
}

// dropDuplicateSignatures keeps the first topic per signature, scanning
// buckets in entity priority order so higher-priority entities win ties.
func dropDuplicateSignatures(buckets []topic.Bucket) []topic.Bucket {
	order := make([]int, 0, len(buckets))
	for b := range buckets {
		order = append(order, b)
	}
	sort.SliceStable(order, func(i, j int) bool {
		return entity.Rank(buckets[order[i]].Entity) < entity.Rank(buckets[order[j]].Entity)
	})

	kept := make(map[string]bool)
	out := make([]topic.Bucket, len(buckets))
	for _, b := range order {
		out[b].Entity = buckets[b].Entity
		for _, t := range buckets[b].Subjects {
			sig := t.Signature()
			if kept[sig] {
				continue
			}
			kept[sig] = true
			out[b].Subjects = append(out[b].Subjects, t)
		}
	}
	return out
}

func setOverlap(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}
