// Package metrics exposes the pipeline's prometheus counters/gauges. It is
// an ambient concern (SPEC_FULL.md AMBIENT STACK / DOMAIN STACK): the core
// has no served HTTP API (spec §1 Non-goals), but a debug-only promhttp
// listener can be enabled for operational visibility during a run, mirroring
// the teacher's observability posture without adding the out-of-scope API
// layer.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles the counters the pipeline updates during a run.
type Registry struct {
	reg *prometheus.Registry

	QuotaUsed        prometheus.Gauge
	RequestsTotal    *prometheus.CounterVec
	MatchesPerOpening prometheus.Histogram
	VideosEnriched   prometheus.Counter
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
}

// New builds a fresh metrics registry, isolated per run so concurrent tests
// or pipelines don't collide on global collector state.
func New() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		reg: reg,
		QuotaUsed: factory.NewGauge(prometheus.GaugeOpts{
			Name: "video_indexer_quota_used",
			Help: "Quota units consumed so far in this run.",
		}),
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "video_indexer_upstream_requests_total",
			Help: "Upstream calls by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		MatchesPerOpening: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "video_indexer_matches_per_opening",
			Help:    "Number of matched videos kept per opening.",
			Buckets: prometheus.LinearBuckets(0, 1, 11),
		}),
		VideosEnriched: factory.NewCounter(prometheus.CounterOpts{
			Name: "video_indexer_videos_enriched_total",
			Help: "Unique videos enriched (cache hit or miss).",
		}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "video_indexer_cache_hits_total",
			Help: "Enrichment cache hits.",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "video_indexer_cache_misses_total",
			Help: "Enrichment cache misses.",
		}),
	}
}

// Serve starts a promhttp listener on addr until ctx is cancelled. Intended
// for the CLI's optional --metrics-addr flag.
func (r *Registry) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}
