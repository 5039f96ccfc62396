package service

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsSnapshot is a plain summary of the recorded commits.
type MetricsSnapshot struct {
	Commits                 uint64
	CommitFailures          uint64
	AverageCommitDurationMs float64
	Goroutines              int
	GeneratedAt             time.Time
}

// MetricsService encapsulates Prometheus instrumentation of repository commits.
// The process has no network endpoint, so the registry is dumped to a
// node-exporter textfile instead of being scraped.
type MetricsService struct {
	registry       *prometheus.Registry
	commitDuration *prometheus.HistogramVec
	commitsTotal   *prometheus.CounterVec
	commitFailures *prometheus.CounterVec
	records        *prometheus.GaugeVec

	commitCount         uint64
	failureCount        uint64
	commitDurationTotal uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	commitDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cams_repository_commit_duration_seconds",
		Help:    "Duration of repository flushes to storage in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"repository"})

	commitsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cams_repository_commits_total",
		Help: "Total number of repository flushes",
	}, []string{"repository"})

	commitFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cams_repository_commit_failures_total",
		Help: "Total number of repository flushes that failed to persist",
	}, []string{"repository"})

	records := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "cams_repository_records",
		Help: "Number of records held by a repository",
	}, []string{"repository"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(commitDuration, commitsTotal, commitFailures, records, goroutines)

	return &MetricsService{
		registry:       registry,
		commitDuration: commitDuration,
		commitsTotal:   commitsTotal,
		commitFailures: commitFailures,
		records:        records,
	}
}

// Registry exposes the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveCommit records one repository flush.
func (m *MetricsService) ObserveCommit(repository string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.commitDuration.WithLabelValues(repository).Observe(duration.Seconds())
	m.commitsTotal.WithLabelValues(repository).Inc()
	atomic.AddUint64(&m.commitCount, 1)
	atomic.AddUint64(&m.commitDurationTotal, uint64(duration.Nanoseconds()))
	if err != nil {
		m.commitFailures.WithLabelValues(repository).Inc()
		atomic.AddUint64(&m.failureCount, 1)
	}
}

// SetRecordCount publishes the size of a repository.
func (m *MetricsService) SetRecordCount(repository string, count int) {
	if m == nil {
		return
	}
	m.records.WithLabelValues(repository).Set(float64(count))
}

// Snapshot returns aggregated commit statistics.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	commits := atomic.LoadUint64(&m.commitCount)
	total := atomic.LoadUint64(&m.commitDurationTotal)

	var avgMs float64
	if commits > 0 {
		avgMs = float64(total) / float64(commits) / float64(time.Millisecond)
	}
	return MetricsSnapshot{
		Commits:                 commits,
		CommitFailures:          atomic.LoadUint64(&m.failureCount),
		AverageCommitDurationMs: avgMs,
		Goroutines:              runtime.NumGoroutine(),
		GeneratedAt:             time.Now().UTC(),
	}
}

// WriteTextfile dumps the registry in the text exposition format.
func (m *MetricsService) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("prepare metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
