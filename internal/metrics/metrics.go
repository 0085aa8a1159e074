package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Gauges
var (
	StreamRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hz_speaker_stream_running",
		Help: "1 while the output stream is running",
	})
	Frequency = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hz_speaker_frequency_hz",
		Help: "Currently published tone frequency",
	})
	Volume = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hz_speaker_volume",
		Help: "Currently published tone volume fraction",
	})
)

// Counters
var (
	CallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hz_speaker_callbacks_total",
		Help: "Total device render callbacks served",
	})
	FramesRenderedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hz_speaker_frames_rendered_total",
		Help: "Total sample frames handed to the device",
	})
	StreamStartsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hz_speaker_stream_starts_total",
		Help: "Stream start attempts by outcome",
	}, []string{"outcome"})
	StreamFaultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hz_speaker_stream_faults_total",
		Help: "Runtime stream faults by source",
	}, []string{"source"})
	FaultsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hz_speaker_faults_dropped_total",
		Help: "Faults discarded because the diagnostic channel was full",
	})
	ParameterUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hz_speaker_parameter_updates_total",
		Help: "Parameter updates by outcome",
	}, []string{"outcome"})
	PresetOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hz_speaker_preset_ops_total",
		Help: "Preset save/load operations by op and outcome",
	}, []string{"op", "outcome"})
	MonitorDropsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hz_speaker_monitor_drops_total",
		Help: "Rendered blocks not captured by the monitor because a reader held it",
	})
)

// Histograms
var (
	CallbackDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hz_speaker_callback_duration_us",
		Help:    "Render callback duration in microseconds",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 5000},
	})
)
