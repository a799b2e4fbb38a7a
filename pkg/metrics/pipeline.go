package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics records the product media pipeline: staging, per-file
// uploads, and submission outcomes.
type PipelineMetrics struct {
	stagedImages   prometheus.Counter
	uploadDuration *prometheus.HistogramVec
	submissions    *prometheus.CounterVec
}

// NewPipelineMetrics registers the pipeline metrics on the provided registerer.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	if reg == nil {
		return &PipelineMetrics{}
	}
	stagedImages := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "staged_images_total",
		Help: "Number of images accepted into draft staging sets.",
	})
	uploadDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "media_upload_duration_seconds",
		Help:    "Duration of individual object-storage uploads in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "product_submissions_total",
		Help: "Product submission attempts by terminal outcome.",
	}, []string{"outcome"})
	reg.MustRegister(stagedImages, uploadDuration, submissions)
	return &PipelineMetrics{
		stagedImages:   stagedImages,
		uploadDuration: uploadDuration,
		submissions:    submissions,
	}
}

// AddStagedImages counts images appended to a staging set.
func (p *PipelineMetrics) AddStagedImages(count int) {
	if p == nil || p.stagedImages == nil || count <= 0 {
		return
	}
	p.stagedImages.Add(float64(count))
}

// ObserveUpload records one object-storage upload.
func (p *PipelineMetrics) ObserveUpload(outcome string, duration time.Duration) {
	if p == nil || p.uploadDuration == nil {
		return
	}
	p.uploadDuration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncSubmission counts one terminal submission outcome.
func (p *PipelineMetrics) IncSubmission(outcome string) {
	if p == nil || p.submissions == nil {
		return
	}
	p.submissions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return strings.ReplaceAll(value, " ", "_")
}
