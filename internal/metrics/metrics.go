// Package metrics defines the Prometheus instrumentation exposed at
// /metrics on the control surface.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the recorder.
type Metrics struct {
	// Capture metrics
	RecordingsStarted prometheus.Counter
	RecordingActive   prometheus.Gauge
	ChunksCaptured    prometheus.Counter
	ReadFaults        prometheus.Counter

	// Persistence metrics
	RecordingsSaved prometheus.Counter
	SaveFailures    prometheus.Counter

	// Transcription metrics
	Transcriptions        *prometheus.CounterVec
	TranscriptionDuration prometheus.Histogram
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		RecordingsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voicescribe_recordings_started_total",
			Help: "Total number of recording sessions started",
		}),
		RecordingActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "voicescribe_recording_active",
			Help: "1 while a capture session is active",
		}),
		ChunksCaptured: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voicescribe_chunks_captured_total",
			Help: "Total number of PCM chunks read from the input device",
		}),
		ReadFaults: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voicescribe_capture_read_faults_total",
			Help: "Total number of transient device read faults",
		}),
		RecordingsSaved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voicescribe_recordings_saved_total",
			Help: "Total number of recordings persisted to disk",
		}),
		SaveFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voicescribe_save_failures_total",
			Help: "Total number of failed persistence attempts",
		}),
		Transcriptions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "voicescribe_transcriptions_total",
			Help: "Total number of finished transcriptions by outcome",
		}, []string{"outcome"}),
		TranscriptionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "voicescribe_transcription_duration_seconds",
			Help:    "Wall-clock duration of transcription requests",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~2 minutes
		}),
	}
}

// ChunkCaptured implements audio.CaptureStats.
func (m *Metrics) ChunkCaptured() {
	m.ChunksCaptured.Inc()
}

// ReadFault implements audio.CaptureStats.
func (m *Metrics) ReadFault() {
	m.ReadFaults.Inc()
}

// RecordingStarted marks the beginning of a capture session.
func (m *Metrics) RecordingStarted() {
	m.RecordingsStarted.Inc()
	m.RecordingActive.Set(1)
}

// RecordingStopped marks the end of a capture session.
func (m *Metrics) RecordingStopped() {
	m.RecordingActive.Set(0)
}

// RecordingSaved counts a persisted recording.
func (m *Metrics) RecordingSaved() {
	m.RecordingsSaved.Inc()
}

// SaveFailed counts a failed persistence attempt.
func (m *Metrics) SaveFailed() {
	m.SaveFailures.Inc()
}

// TranscriptionFinished implements transcribe.Stats.
func (m *Metrics) TranscriptionFinished(outcome string, seconds float64) {
	m.Transcriptions.WithLabelValues(outcome).Inc()
	m.TranscriptionDuration.Observe(seconds)
}
