// Package metrics provides Prometheus metrics for the workspace store.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Store operations
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syftui_operations_total",
			Help: "Total number of workspace operations",
		},
		[]string{"operation", "status"},
	)

	backendCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "syftui_backend_call_duration_seconds",
			Help:    "Backend call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "call"},
	)

	historyTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syftui_history_total",
			Help: "Total undo and redo requests",
		},
		[]string{"action"},
	)

	conflictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syftui_conflicts_total",
			Help: "Name conflicts detected by move, copy and paste",
		},
		[]string{"resolution"},
	)

	// Tree metrics
	treeSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "syftui_tree_size",
			Help: "Number of files and folders in the workspace tree",
		},
	)

	refreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "syftui_refresh_duration_seconds",
			Help:    "Time to reload the tree from the backend",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Upload metrics
	uploadBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "syftui_upload_bytes_total",
			Help: "Total bytes uploaded",
		},
	)

	uploadsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "syftui_uploads_active",
			Help: "Number of uploads in progress",
		},
	)

	// Sync simulation
	syncTracked = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "syftui_sync_tracked_items",
			Help: "Items with a pending or syncing status",
		},
	)

	subscribersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "syftui_subscribers_active",
			Help: "Number of change feed subscribers",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordOperation counts a store operation by kind and outcome.
func RecordOperation(op string, err error) {
	operationsTotal.WithLabelValues(op, statusLabel(err)).Inc()
}

// RecordBackendCall records the latency of one backend call.
func RecordBackendCall(backend, call string, duration time.Duration) {
	backendCallDuration.WithLabelValues(backend, call).Observe(duration.Seconds())
}

// RecordHistory counts an undo or redo.
func RecordHistory(action string) {
	historyTotal.WithLabelValues(action).Inc()
}

// RecordConflict counts a resolved conflict.
func RecordConflict(resolution string) {
	conflictsTotal.WithLabelValues(resolution).Inc()
}

// SetTreeSize sets the node count of the current tree.
func SetTreeSize(n int) {
	treeSize.Set(float64(n))
}

// RecordRefresh records a reload from the backend.
func RecordRefresh(duration time.Duration) {
	refreshDuration.Observe(duration.Seconds())
}

// RecordUploadBytes adds transferred upload bytes.
func RecordUploadBytes(n int64) {
	uploadBytes.Add(float64(n))
}

// UploadStarted increments the active upload gauge.
func UploadStarted() {
	uploadsActive.Inc()
}

// UploadFinished decrements the active upload gauge.
func UploadFinished() {
	uploadsActive.Dec()
}

// SetSyncTracked sets the number of items the sync simulator follows.
func SetSyncTracked(n int) {
	syncTracked.Set(float64(n))
}

// SetSubscribers sets the number of change feed subscribers.
func SetSubscribers(n int) {
	subscribersActive.Set(float64(n))
}
