package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pipelinesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vidforge",
		Name:      "pipelines_total",
		Help:      "Completed pipeline executions by terminal state.",
	}, []string{"state"})

	pipelineDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vidforge",
		Name:      "pipeline_duration_seconds",
		Help:      "Wall-clock duration of pipeline executions.",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
	}, []string{"state"})

	activePipelines = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "vidforge",
		Name:      "active_pipelines",
		Help:      "Pipelines currently executing.",
	})

	artifactFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vidforge",
		Name:      "artifact_failures_total",
		Help:      "Failed artifact operations by kind.",
	}, []string{"kind"})

	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vidforge",
		Name:      "uploads_total",
		Help:      "Upload requests by outcome.",
	}, []string{"outcome"})
)

// PipelineStarted marks a pipeline as in flight.
func PipelineStarted() {
	activePipelines.Inc()
}

// PipelineFinished marks a pipeline as no longer in flight.
func PipelineFinished() {
	activePipelines.Dec()
}

// ObservePipeline records a terminal pipeline state and its duration.
func ObservePipeline(state string, elapsed time.Duration) {
	pipelinesTotal.WithLabelValues(state).Inc()
	pipelineDuration.WithLabelValues(state).Observe(elapsed.Seconds())
}

// ArtifactFailed counts one failed artifact operation.
func ArtifactFailed(kind string) {
	artifactFailures.WithLabelValues(kind).Inc()
}

// UploadResult counts one upload request outcome (committed, rejected,
// failed, busy).
func UploadResult(outcome string) {
	uploadsTotal.WithLabelValues(outcome).Inc()
}
