// Package dedup removes near-duplicate articles that exact canonical-URL
// dedup misses. Two sequential passes: an optional vector-similarity pass and
// an always-on same-domain fuzzy-title pass. Both are greedy "first wins":
// the earliest article of a duplicate cluster survives.
package dedup

import (
	"context"
	"log"
	"math"
	"time"

	"github.com/xrash/smetrics"

	"github.com/ardld/polinews/internal/article"
	"github.com/ardld/polinews/internal/cache"
	"github.com/ardld/polinews/internal/metrics"
)

// Embedder is the embedding collaborator. A nil Embedder skips the vector
// pass entirely.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type Options struct {
	VectorThreshold float64 // cosine similarity at or above which an article is a duplicate
	TitleThreshold  float64 // Jaro-Winkler score above which same-domain titles collide
	BatchSize       int
	CacheTTL        time.Duration
}

const snippetEmbedRunes = 400

// Similar runs both similarity passes over an exact-deduplicated list and
// returns the survivors in input order. Re-running it on its own output is a
// no-op.
func Similar(ctx context.Context, items []article.Article, embedder Embedder, store *cache.Cache, opts Options) []article.Article {
	out := vectorPass(ctx, items, embedder, store, opts)
	return titlePass(out, opts.TitleThreshold)
}

// embedded pairs an article with its transient vector. The vector lives only
// inside this package; the Article itself is never mutated.
type embedded struct {
	art article.Article
	vec []float32 // nil when the embedding collaborator failed for this article
}

// vectorPass drops every article whose vector is within VectorThreshold of an
// already-kept article's vector. Articles without a vector (collaborator
// unavailable, batch failure) are always kept and never compared.
func vectorPass(ctx context.Context, items []article.Article, embedder Embedder, store *cache.Cache, opts Options) []article.Article {
	if embedder == nil || len(items) < 2 {
		return items
	}
	if opts.VectorThreshold <= 0 {
		opts.VectorThreshold = 0.90
	}

	candidates := embedAll(ctx, items, embedder, store, opts)

	kept := make([]embedded, 0, len(candidates))
	out := make([]article.Article, 0, len(candidates))
	for _, c := range candidates {
		if c.vec != nil && isVectorDuplicate(c.vec, kept, opts.VectorThreshold) {
			metrics.Global.IncrementDuplicatesVector()
			log.Printf("vector duplicate dropped: %s", c.art.Title)
			continue
		}
		kept = append(kept, c)
		out = append(out, c.art)
	}
	return out
}

func isVectorDuplicate(vec []float32, kept []embedded, threshold float64) bool {
	for _, k := range kept {
		if k.vec == nil {
			continue
		}
		if cosine(vec, k.vec) >= threshold {
			return true
		}
	}
	return false
}

// embedAll fills vectors in bounded batches. A failed batch degrades its
// articles to vec=nil; other batches proceed.
func embedAll(ctx context.Context, items []article.Article, embedder Embedder, store *cache.Cache, opts Options) []embedded {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = 16
	}

	candidates := make([]embedded, len(items))
	texts := make([]string, len(items))
	for i, a := range items {
		candidates[i] = embedded{art: a}
		texts[i] = embedText(a)
	}

	// Collect cache misses first so repeated runs embed nothing.
	missIdx := make([]int, 0, len(items))
	for i, t := range texts {
		if store != nil {
			if v, ok := store.Get(cache.KeyForText(t)); ok {
				if vec, ok := v.([]float32); ok {
					candidates[i].vec = vec
					continue
				}
			}
		}
		missIdx = append(missIdx, i)
	}

	for start := 0; start < len(missIdx); start += batchSize {
		end := start + batchSize
		if end > len(missIdx) {
			end = len(missIdx)
		}
		batch := missIdx[start:end]

		batchTexts := make([]string, len(batch))
		for j, i := range batch {
			batchTexts[j] = texts[i]
		}

		vectors, err := embedder.EmbedBatch(ctx, batchTexts)
		if err != nil || len(vectors) != len(batch) {
			metrics.Global.IncrementCollaboratorErrors()
			log.Printf("⚠️ embedding batch failed (%d articles kept without vectors): %v", len(batch), err)
			continue
		}
		for j, i := range batch {
			candidates[i].vec = vectors[j]
			if store != nil && opts.CacheTTL > 0 {
				store.Set(cache.KeyForText(texts[i]), vectors[j], opts.CacheTTL)
			}
		}
	}
	return candidates
}

func embedText(a article.Article) string {
	text := a.Title
	if a.Snippet != "" {
		snippet := a.Snippet
		if runes := []rune(snippet); len(runes) > snippetEmbedRunes {
			snippet = string(runes[:snippetEmbedRunes])
		}
		text += "\n" + snippet
	}
	return text
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// titlePass drops an article when its normalized title is close to that of an
// already-kept article from the same registrable domain. Cross-domain titles
// are never compared here: same-story-different-domain duplicates belong to
// the vector pass or the cross-entity collapser.
func titlePass(items []article.Article, threshold float64) []article.Article {
	if threshold <= 0 {
		threshold = 0.92
	}

	type keptTitle struct {
		domain string
		norm   string
	}

	kept := make([]keptTitle, 0, len(items))
	out := make([]article.Article, 0, len(items))
	for _, a := range items {
		domain := a.Domain()
		norm := article.NormalizeTitle(a.Title)

		dup := false
		for _, k := range kept {
			if k.domain != domain {
				continue
			}
			if smetrics.JaroWinkler(norm, k.norm, 0.7, 4) > threshold {
				dup = true
				break
			}
		}
		if dup {
			metrics.Global.IncrementDuplicatesTitle()
			log.Printf("title duplicate dropped (%s): %s", domain, a.Title)
			continue
		}

		kept = append(kept, keptTitle{domain: domain, norm: norm})
		out = append(out, a)
	}
	return out
}
