package cluster

import (
	"context"
	"testing"
	"time"

	"github.com/ardld/polinews/internal/article"
	"github.com/ardld/polinews/internal/cache"
	"github.com/ardld/polinews/internal/entity"
	"github.com/ardld/polinews/internal/gemini"
)

type fakeCollab struct {
	groups []gemini.ClusterGroup
	calls  int
}

func (f *fakeCollab) ClusterArticles(ctx context.Context, entityName string, items []gemini.ClusterInput, maxGroups, maxItems int) []gemini.ClusterGroup {
	f.calls++
	return f.groups
}

func testArticles() []article.Article {
	return []article.Article{
		{Title: "Guvernul adoptă bugetul", Link: "https://hotnews.ro/1"},
		{Title: "Buget adoptat de executiv", Link: "https://digi24.ro/2"},
		{Title: "Remaniere în discuție", Link: "https://g4media.ro/3"},
	}
}

func TestCluster_BuildsTopicsFromGroups(t *testing.T) {
	collab := &fakeCollab{groups: []gemini.ClusterGroup{
		{Label: "bugetul de stat", Indices: []int{0, 1}},
		{Label: "remanierea", Indices: []int{2}},
	}}
	c := New(collab, nil, 0, 3, 5)

	topics := c.Cluster(context.Background(), entity.Government, testArticles())
	if len(topics) != 2 {
		t.Fatalf("got %d topics, want 2", len(topics))
	}
	if topics[0].Label != "bugetul de stat" || len(topics[0].Items) != 2 {
		t.Errorf("first topic = %q with %d items", topics[0].Label, len(topics[0].Items))
	}
}

func TestCluster_DropsOutOfRangeIndices(t *testing.T) {
	collab := &fakeCollab{groups: []gemini.ClusterGroup{
		{Label: "valid", Indices: []int{0, 99, -1}},
		{Label: "all invalid", Indices: []int{42}},
	}}
	c := New(collab, nil, 0, 3, 5)

	topics := c.Cluster(context.Background(), entity.Government, testArticles())
	if len(topics) != 1 {
		t.Fatalf("got %d topics, want 1", len(topics))
	}
	if len(topics[0].Items) != 1 || topics[0].Items[0].Link != "https://hotnews.ro/1" {
		t.Errorf("invalid indices leaked into topic items: %v", topics[0].Items)
	}
}

func TestCluster_CollaboratorFailureYieldsNoTopics(t *testing.T) {
	collab := &fakeCollab{groups: nil}
	c := New(collab, nil, 0, 3, 5)

	topics := c.Cluster(context.Background(), entity.Government, testArticles())
	if len(topics) != 0 {
		t.Errorf("got %d topics from a failed collaborator, want 0", len(topics))
	}
}

func TestCluster_EmptyInputSkipsCollaborator(t *testing.T) {
	collab := &fakeCollab{}
	c := New(collab, nil, 0, 3, 5)

	if topics := c.Cluster(context.Background(), entity.Government, nil); topics != nil {
		t.Errorf("got topics for empty input: %v", topics)
	}
	if collab.calls != 0 {
		t.Errorf("collaborator called %d times for empty input", collab.calls)
	}
}

func TestCluster_ResultIsCachedPerArticleSet(t *testing.T) {
	collab := &fakeCollab{groups: []gemini.ClusterGroup{
		{Label: "bugetul", Indices: []int{0, 1}},
	}}
	store := cache.New()
	c := New(collab, store, time.Hour, 3, 5)

	arts := testArticles()
	first := c.Cluster(context.Background(), entity.Government, arts)
	second := c.Cluster(context.Background(), entity.Government, arts)

	if collab.calls != 1 {
		t.Errorf("collaborator called %d times for identical input, want 1", collab.calls)
	}
	if len(first) != len(second) {
		t.Errorf("cached result differs: %d vs %d topics", len(first), len(second))
	}

	// A different entity with the same articles is a different cache key.
	c.Cluster(context.Background(), entity.Parliament, arts)
	if collab.calls != 2 {
		t.Errorf("collaborator called %d times after entity change, want 2", collab.calls)
	}
}
