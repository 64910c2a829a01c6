package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	ArticlesFetched    int64
	ArticlesKept       int64
	DuplicatesExact    int64
	DuplicatesVector   int64
	DuplicatesTitle    int64
	TopicsClustered    int64
	TopicsCollapsed    int64
	CollaboratorErrors int64

	// Timings
	LastProcessingTime    time.Duration
	TotalProcessingTime   time.Duration
	AverageProcessingTime time.Duration
	ProcessingCount       int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddArticlesFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesFetched += int64(n)
}

func (m *Metrics) AddArticlesKept(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesKept += int64(n)
}

func (m *Metrics) AddDuplicatesExact(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesExact += int64(n)
}

func (m *Metrics) IncrementDuplicatesVector() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesVector++
}

func (m *Metrics) IncrementDuplicatesTitle() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesTitle++
}

func (m *Metrics) AddTopicsClustered(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TopicsClustered += int64(n)
}

func (m *Metrics) IncrementTopicsCollapsed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TopicsCollapsed++
}

func (m *Metrics) IncrementCollaboratorErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CollaboratorErrors++
}

func (m *Metrics) RecordProcessingTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastProcessingTime = duration
	m.TotalProcessingTime += duration
	m.ProcessingCount++

	if m.ProcessingCount > 0 {
		m.AverageProcessingTime = m.TotalProcessingTime / time.Duration(m.ProcessingCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"articles_fetched":           m.ArticlesFetched,
		"articles_kept":              m.ArticlesKept,
		"duplicates_exact":           m.DuplicatesExact,
		"duplicates_vector":          m.DuplicatesVector,
		"duplicates_title":           m.DuplicatesTitle,
		"topics_clustered":           m.TopicsClustered,
		"topics_collapsed":           m.TopicsCollapsed,
		"collaborator_errors":        m.CollaboratorErrors,
		"last_processing_time_ms":    m.LastProcessingTime.Milliseconds(),
		"average_processing_time_ms": m.AverageProcessingTime.Milliseconds(),
		"last_run_time":              m.LastRunTime.Format(time.RFC3339),
		"last_error_time":            m.LastErrorTime.Format(time.RFC3339),
		"last_error":                 m.LastError,
		"is_healthy":                 m.IsHealthy,
	}
}
