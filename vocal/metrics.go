package vocal

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the Prometheus collectors updated by an Analyzer.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Analyses          *prometheus.CounterVec
	AnalysisDuration  prometheus.Histogram
	FramesProcessed   prometheus.Counter
	SegmentsPerBuffer prometheus.Histogram
	VocalConfidence   prometheus.Histogram
	NonFiniteSamples  prometheus.Counter
}

// NewMetrics creates the vocal analyzer metrics and registers them with reg.
// A nil reg creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Analyses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vocal_analyses_total",
			Help: "Total number of analysed buffers by outcome",
		}, []string{"result"}),
		AnalysisDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "vocal_analysis_duration_seconds",
			Help:    "Wall time spent analysing one buffer",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		}),
		FramesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "vocal_frames_processed_total",
			Help: "Total number of analysis frames processed",
		}),
		SegmentsPerBuffer: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "vocal_segments_per_buffer",
			Help:    "Number of vocal segments found per buffer",
			Buckets: prometheus.LinearBuckets(0, 5, 11),
		}),
		VocalConfidence: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "vocal_confidence",
			Help:    "Overall vocal confidence per buffer",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11), // 0.0 to 1.0
		}),
		NonFiniteSamples: factory.NewCounter(prometheus.CounterOpts{
			Name: "vocal_nonfinite_samples_total",
			Help: "Total number of NaN or infinite input samples replaced with silence",
		}),
	}
}

func (m *Metrics) observe(features *VocalFeatures, frames int, elapsed time.Duration) {
	if m == nil {
		return
	}

	result := "no_vocals"
	if features.HasVocals {
		result = "vocals"
	}

	m.Analyses.WithLabelValues(result).Inc()
	m.AnalysisDuration.Observe(elapsed.Seconds())
	m.FramesProcessed.Add(float64(frames))
	m.SegmentsPerBuffer.Observe(float64(len(features.VocalSegments)))
	m.VocalConfidence.Observe(features.VocalConfidence)
}

func (m *Metrics) nonFinite(count int) {
	if m == nil {
		return
	}
	m.NonFiniteSamples.Add(float64(count))
}
