// Package metrics exports blendview's observability hooks as Prometheus
// collectors.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/blendview/pkg/observability"
)

const namespace = "blendview"

// Metrics implements every hook interface in package observability.
type Metrics struct {
	Refreshes       *prometheus.CounterVec
	RefreshDuration prometheus.Histogram
	SnapshotNodes   prometheus.Gauge
	LayoutDuration  prometheus.Histogram
	Polls           *prometheus.CounterVec
	Renders         *prometheus.CounterVec
	RenderDuration  *prometheus.HistogramVec
	RenderBytes     *prometheus.HistogramVec
	CacheRequests   *prometheus.CounterVec
	CacheBytes      *prometheus.CounterVec
	Graphs          prometheus.Gauge
	GraphEvents     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg uses
// the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Refreshes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_refreshes_total",
			Help:      "Snapshot rebuilds, labelled by outcome.",
		}, []string{"status"}),
		RefreshDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_refresh_duration_seconds",
			Help:      "Time to walk a live graph into a snapshot.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		SnapshotNodes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_nodes",
			Help:      "Node count of the most recent snapshot.",
		}),
		LayoutDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_duration_seconds",
			Help:      "Time to lay out one snapshot.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		Polls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "Polls, labelled by the display state they ended in.",
		}, []string{"state"}),
		Renders: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Artifact renders, labelled by format and outcome.",
		}, []string{"format", "status"}),
		RenderDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time to render one artifact.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"format"}),
		RenderBytes: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_bytes",
			Help:      "Size of rendered artifacts.",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 8),
		}, []string{"format"}),
		CacheRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Cache lookups, labelled by key type and result.",
		}, []string{"key_type", "result"}),
		CacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache.",
		}, []string{"key_type"}),
		Graphs: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graphs",
			Help:      "Graphs currently in the roster.",
		}),
		GraphEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graph_events_total",
			Help:      "Roster changes, labelled by event.",
		}, []string{"event"}),
	}
}

// Install registers m as the process-wide hooks.
func (m *Metrics) Install() {
	observability.SetInspectHooks(m)
	observability.SetRenderHooks(m)
	observability.SetCacheHooks(m)
	observability.SetRosterHooks(m)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) OnRefresh(_ context.Context, _ string, nodeCount int, d time.Duration, err error) {
	m.Refreshes.WithLabelValues(status(err)).Inc()
	m.RefreshDuration.Observe(d.Seconds())
	if err == nil {
		m.SnapshotNodes.Set(float64(nodeCount))
	}
}

func (m *Metrics) OnLayout(_ context.Context, _ int, d time.Duration, _ error) {
	m.LayoutDuration.Observe(d.Seconds())
}

func (m *Metrics) OnPoll(_ context.Context, state string) {
	m.Polls.WithLabelValues(state).Inc()
}

func (m *Metrics) OnRender(_ context.Context, format string, size int, d time.Duration, err error) {
	m.Renders.WithLabelValues(format, status(err)).Inc()
	if err != nil {
		return
	}
	m.RenderDuration.WithLabelValues(format).Observe(d.Seconds())
	m.RenderBytes.WithLabelValues(format).Observe(float64(size))
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.CacheRequests.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheRequests.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.CacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnGraphRegistered(_ context.Context, total int) {
	m.Graphs.Set(float64(total))
	m.GraphEvents.WithLabelValues("registered").Inc()
}

func (m *Metrics) OnGraphUnregistered(_ context.Context, total int) {
	m.Graphs.Set(float64(total))
	m.GraphEvents.WithLabelValues("unregistered").Inc()
}

var (
	_ observability.InspectHooks = (*Metrics)(nil)
	_ observability.RenderHooks  = (*Metrics)(nil)
	_ observability.CacheHooks   = (*Metrics)(nil)
	_ observability.RosterHooks  = (*Metrics)(nil)
)
