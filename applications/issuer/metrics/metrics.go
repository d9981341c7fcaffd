// Package metrics exposes issuer counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sheetdrop_issuer"

type Metrics struct {
	IssuedURLs      prometheus.Counter
	UploadedObjects prometheus.Counter
	UploadedBytes   prometheus.Counter
	RejectedPuts    *prometheus.CounterVec
	SyncRuns        prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		IssuedURLs: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "issued_urls_total",
			Help:      "Presigned upload URLs handed out.",
		}),
		UploadedObjects: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploaded_objects_total",
			Help:      "Objects stored through the object endpoint.",
		}),
		UploadedBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploaded_bytes_total",
			Help:      "Bytes stored through the object endpoint.",
		}),
		RejectedPuts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_puts_total",
			Help:      "PUT requests refused, by HTTP status.",
		}, []string{"status"}),
		SyncRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_runs_total",
			Help:      "Sync runs triggered.",
		}),
	}
}
