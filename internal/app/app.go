// Package app wires the whole pipeline together: fetch, filter, dedup,
// cluster, collapse, summarize, persist.
package app

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ardld/polinews/internal/article"
	"github.com/ardld/polinews/internal/cache"
	"github.com/ardld/polinews/internal/cluster"
	"github.com/ardld/polinews/internal/collapse"
	"github.com/ardld/polinews/internal/config"
	"github.com/ardld/polinews/internal/dedup"
	"github.com/ardld/polinews/internal/entity"
	"github.com/ardld/polinews/internal/feed"
	"github.com/ardld/polinews/internal/gemini"
	"github.com/ardld/polinews/internal/logger"
	"github.com/ardld/polinews/internal/metrics"
	"github.com/ardld/polinews/internal/ratelimit"
	"github.com/ardld/polinews/internal/report"
	"github.com/ardld/polinews/internal/retry"
	"github.com/ardld/polinews/internal/scraper"
	"github.com/ardld/polinews/internal/topic"
)

// Run executes one full pipeline pass. Configuration problems are fatal here,
// before any work starts; everything after startup degrades instead of dying.
func Run() {
	logger.Init()
	start := time.Now()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	logger.Info("pipeline starting",
		"window_hours", cfg.WindowHours,
		"timezone", cfg.Timezone,
		"min_topic_overlap", cfg.MinTopicOverlap)

	sources, err := feed.LoadSources(cfg.SourcesConfigPath)
	if err != nil {
		log.Fatalf("failed to load sources config: %v", err)
	}

	ctx := context.Background()

	client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey,
		gemini.WithLimiter(ratelimit.New(cfg.MaxAICalls, cfg.AICallWindow)),
		gemini.WithRetry(retry.Config{
			MaxAttempts: cfg.RetryAttempts,
			Delay:       cfg.RetryDelay,
			Backoff:     true,
		}),
		gemini.WithOpenAIFallback(cfg.OpenAIAPIKey),
	)
	if err != nil {
		log.Fatalf("failed to create Gemini client: %v", err)
	}
	defer client.Close()

	store := cache.New()
	ttl := time.Duration(cfg.CacheTTLHours) * time.Hour
	clusterer := cluster.New(client, store, ttl, cfg.MaxTopicsPerEntity, topic.MaxItems)

	buckets := collectBuckets(ctx, cfg, sources, client, store, clusterer)

	collapser := collapse.New(cfg.MinTopicOverlap, client, cfg.MergeSampleLimit)
	buckets = collapser.Collapse(ctx, buckets)

	fillSummaries(ctx, client, buckets)
	fillThumbnails(buckets, cfg.ThumbnailFetchMax)

	r := report.Build(buckets, cfg.Timezone, cfg.WindowHours)
	if err := report.WriteFile(r, cfg.ReportPath); err != nil {
		metrics.Global.SetError(err.Error())
		log.Fatalf("failed to write report: %v", err)
	}
	log.Printf("✅ report written to %s (%d entities)", cfg.ReportPath, len(r.Entities))

	if cfg.DatabaseURL != "" {
		saveToPostgres(r, cfg.DatabaseURL)
	}

	metrics.Global.RecordProcessingTime(time.Since(start))
	metrics.Global.SetLastRun()
	logger.Info("pipeline finished", "duration", time.Since(start).Round(time.Millisecond).String())
}

// collectBuckets runs the per-entity half of the pipeline concurrently. Each
// entity is independent until the collapse stage, so one goroutine per source
// is safe; results land in a fixed slot to keep bucket order stable.
func collectBuckets(ctx context.Context, cfg *config.Config, sources []feed.Source, embedder dedup.Embedder, store *cache.Cache, clusterer *cluster.Clusterer) []topic.Bucket {
	loc := cfg.Location()
	now := time.Now().In(loc)
	window := time.Duration(cfg.WindowHours) * time.Hour

	results := make([][]topic.Topic, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			articles := fetchEntity(gctx, cfg, src)
			articles = filterRecent(articles, now, window, loc, src.Entity)

			before := len(articles)
			articles = article.DedupExact(articles)
			metrics.Global.AddDuplicatesExact(before - len(articles))

			if len(articles) > cfg.MaxArticlesPerEntity {
				articles = articles[:cfg.MaxArticlesPerEntity]
			}

			articles = dedup.Similar(gctx, articles, embedder, store, dedup.Options{
				VectorThreshold: cfg.VectorThreshold,
				TitleThreshold:  cfg.TitleThreshold,
				BatchSize:       cfg.EmbedBatchSize,
				CacheTTL:        time.Duration(cfg.CacheTTLHours) * time.Hour,
			})
			metrics.Global.AddArticlesKept(len(articles))

			results[i] = clusterer.Cluster(gctx, src.Entity, articles)
			return nil
		})
	}
	// Workers never return errors, only log them.
	_ = g.Wait()

	buckets := make([]topic.Bucket, 0, len(sources))
	for i, src := range sources {
		buckets = append(buckets, topic.Bucket{
			Entity:   src.Entity,
			Subjects: results[i],
		})
	}
	return buckets
}

func fetchEntity(ctx context.Context, cfg *config.Config, src feed.Source) []article.Article {
	fetchCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()
	articles := feed.Fetch(fetchCtx, src)
	metrics.Global.AddArticlesFetched(len(articles))
	return articles
}

func filterRecent(articles []article.Article, now time.Time, window time.Duration, loc *time.Location, ent entity.Entity) []article.Article {
	kept := make([]article.Article, 0, len(articles))
	for _, a := range articles {
		if article.WithinWindow(a.Date, now, window, loc) {
			kept = append(kept, a)
		}
	}
	log.Printf("[%s] %d of %d articles inside the %s window", ent, len(kept), len(articles), window)
	return kept
}

// fillSummaries asks the collaborator for a Romanian title and summary for
// every topic that has none. Failures leave the topic with its cluster label.
func fillSummaries(ctx context.Context, client *gemini.Client, buckets []topic.Bucket) {
	for bi := range buckets {
		for ti := range buckets[bi].Subjects {
			t := &buckets[bi].Subjects[ti]
			if t.TitluRO != "" || len(t.Items) == 0 {
				continue
			}

			headlines := make([]gemini.Headline, 0, len(t.Items))
			for _, a := range t.Items {
				headlines = append(headlines, gemini.Headline{Title: a.Title, Snippet: a.Snippet})
			}

			ts := client.TitleSummary(ctx, headlines)
			t.TitluRO = ts.Titlu
			t.SumarRO = ts.Sumar
		}
	}
}

// fillThumbnails scrapes og:image for topics that got no thumbnail from their
// feed items, bounded by max page fetches per run.
func fillThumbnails(buckets []topic.Bucket, max int) {
	if max <= 0 {
		return
	}

	var links []string
	for _, b := range buckets {
		for _, t := range b.Subjects {
			if t.Thumbnail == "" && len(t.Items) > 0 {
				links = append(links, t.Items[0].Link)
			}
		}
	}
	if len(links) == 0 {
		return
	}

	found := scraper.ExtractThumbnails(links, max)
	if len(found) == 0 {
		return
	}

	for bi := range buckets {
		for ti := range buckets[bi].Subjects {
			t := &buckets[bi].Subjects[ti]
			if t.Thumbnail == "" && len(t.Items) > 0 {
				if thumb, ok := found[t.Items[0].Link]; ok {
					t.Thumbnail = thumb
				}
			}
		}
	}
}

// reportRetention bounds how long report history is kept in Postgres.
const reportRetention = 30 * 24 * time.Hour

func saveToPostgres(r report.Report, databaseURL string) {
	pg, err := report.NewPostgresStore(databaseURL)
	if err != nil {
		log.Printf("⚠️ Postgres unavailable, skipping report history: %v", err)
		return
	}
	defer pg.Close()

	if err := pg.Save(r); err != nil {
		log.Printf("⚠️ failed to save report to Postgres: %v", err)
		return
	}
	log.Println("✅ report saved to Postgres")

	if err := pg.Cleanup(reportRetention); err != nil {
		log.Printf("⚠️ failed to clean up old reports: %v", err)
	}
}
