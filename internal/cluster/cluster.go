// Package cluster produces per-entity topics out of a deduplicated article
// list by delegating grouping semantics to the clustering collaborator and
// validating whatever comes back.
package cluster

import (
	"context"
	"log"
	"time"

	"github.com/ardld/polinews/internal/article"
	"github.com/ardld/polinews/internal/cache"
	"github.com/ardld/polinews/internal/entity"
	"github.com/ardld/polinews/internal/gemini"
	"github.com/ardld/polinews/internal/metrics"
	"github.com/ardld/polinews/internal/topic"
)

// Collaborator is the clustering collaborator; *gemini.Client satisfies it.
type Collaborator interface {
	ClusterArticles(ctx context.Context, entityName string, items []gemini.ClusterInput, maxGroups, maxItems int) []gemini.ClusterGroup
}

type Clusterer struct {
	collab    Collaborator
	store     *cache.Cache
	ttl       time.Duration
	maxGroups int
	maxItems  int
}

func New(collab Collaborator, store *cache.Cache, ttl time.Duration, maxGroups, maxItems int) *Clusterer {
	if maxGroups <= 0 {
		maxGroups = 3
	}
	if maxItems <= 0 || maxItems > topic.MaxItems {
		maxItems = topic.MaxItems
	}
	return &Clusterer{
		collab:    collab,
		store:     store,
		ttl:       ttl,
		maxGroups: maxGroups,
		maxItems:  maxItems,
	}
}

// Cluster groups the entity's articles into at most maxGroups topics. "No
// topics" is a valid outcome: the collaborator being down, returning garbage,
// or finding nothing all yield an empty slice. Results are cached per exact
// (entity, article-URL-set), so identical reruns cost nothing.
func (c *Clusterer) Cluster(ctx context.Context, ent entity.Entity, articles []article.Article) []topic.Topic {
	if len(articles) == 0 || c.collab == nil {
		return nil
	}

	urls := make([]string, len(articles))
	for i, a := range articles {
		urls[i] = a.Key()
	}
	key := cache.KeyForArticleSet(string(ent), urls)

	if c.store != nil {
		if v, ok := c.store.Get(key); ok {
			if topics, ok := v.([]topic.Topic); ok {
				log.Printf("cluster cache hit for %s (%d topics)", ent, len(topics))
				return topics
			}
		}
	}

	inputs := make([]gemini.ClusterInput, len(articles))
	for i, a := range articles {
		inputs[i] = gemini.ClusterInput{
			Index:  i,
			Title:  a.Title,
			Source: a.Source,
			Link:   a.Link,
			Date:   a.Date,
		}
	}

	groups := c.collab.ClusterArticles(ctx, string(ent), inputs, c.maxGroups, c.maxItems)

	topics := make([]topic.Topic, 0, len(groups))
	for _, g := range groups {
		items := make([]article.Article, 0, len(g.Indices))
		for _, idx := range g.Indices {
			// indices already validated by the collaborator wrapper, but the
			// bound is re-checked here so a bad cache entry cannot panic
			if idx < 0 || idx >= len(articles) {
				continue
			}
			items = append(items, articles[idx])
		}
		if len(items) == 0 {
			continue
		}
		t := topic.New(g.Label, items)
		topics = append(topics, t)
	}

	metrics.Global.AddTopicsClustered(len(topics))
	if c.store != nil && c.ttl > 0 {
		c.store.Set(key, topics, c.ttl)
	}
	return topics
}
