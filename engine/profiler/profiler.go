package profiler

import (
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "oxyanim"

// Profiler tracks tick rate, tick cost and memory statistics for performance monitoring.
// Every measurement is exported as a prometheus metric; a summary is also logged at a configurable
// interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	now    func() time.Time
	logger *slog.Logger

	registry      *prometheus.Registry
	ticks         prometheus.Counter
	tickDuration  *prometheus.HistogramVec
	missingTracks *prometheus.GaugeVec
	bakedFrames   prometheus.Counter
	tickRate      prometheus.Gauge
	heapBytes     prometheus.Gauge
	gcPause       prometheus.Gauge
}

// ProfilerOption is a functional option for configuring a Profiler.
type ProfilerOption func(*Profiler)

// WithInterval sets how often Tick logs a summary.
//
// Parameters:
//   - d: the interval; values <= 0 keep the default of one second
//
// Returns:
//   - ProfilerOption: a function that applies the interval option to a profiler
func WithInterval(d time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithLogger sets the logger summaries are written to.
func WithLogger(logger *slog.Logger) ProfilerOption {
	return func(p *Profiler) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClock replaces time.Now, for deterministic summaries.
func WithClock(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		if now != nil {
			p.now = now
		}
	}
}

// NewProfiler creates a new Profiler with its own prometheus registry.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options for profiler configuration
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
		logger:         slog.Default(),
		registry:       prometheus.NewRegistry(),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Engine ticks executed.",
		}),
		tickDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_tick_seconds",
			Help:      "Time spent advancing and resolving one document.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 12),
		}, []string{"document"}),
		missingTracks: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "missing_tracks",
			Help:      "Timeline rows whose entity no longer resolves.",
		}, []string{"document"}),
		bakedFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "baked_frames_total",
			Help:      "Frames evaluated by bake jobs.",
		}),
		tickRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tick_rate_hz",
			Help:      "Ticks per second over the last summary interval.",
		}),
		heapBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "heap_alloc_bytes",
			Help:      "Bytes of allocated heap objects at the last summary.",
		}),
		gcPause: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "gc_max_pause_seconds",
			Help:      "Longest GC pause over the last summary interval.",
		}),
	}

	for _, opt := range options {
		opt(p)
	}

	p.registry.MustRegister(p.ticks, p.tickDuration, p.missingTracks, p.bakedFrames, p.tickRate, p.heapBytes, p.gcPause)
	p.lastTime = p.now()
	return p
}

// Registry returns the registry holding the profiler's metrics.
func (p *Profiler) Registry() *prometheus.Registry {
	return p.registry
}

// Handler returns an HTTP handler serving the profiler's metrics in the prometheus text format.
func (p *Profiler) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// ObserveTick records the time one document took to tick.
//
// Parameters:
//   - document: the document name
//   - d: the elapsed time
func (p *Profiler) ObserveTick(document string, d time.Duration) {
	p.tickDuration.WithLabelValues(document).Observe(d.Seconds())
}

// SetMissingTracks records how many rows of a document reference missing entities.
func (p *Profiler) SetMissingTracks(document string, n int) {
	p.missingTracks.WithLabelValues(document).Set(float64(n))
}

// AddBakedFrames counts frames evaluated by a bake job.
func (p *Profiler) AddBakedFrames(n int) {
	p.bakedFrames.Add(float64(n))
}

// Tick should be called once per engine tick to track tick timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: tick rate, heap usage, allocation rate, GC count/pause times, total memory.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.ticks.Inc()
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return false
	}

	rate := float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024

	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	// PauseNs is a circular buffer of the last 256 GC pauses.
	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			pause := p.memStats.PauseNs[i%256] / 1000
			if pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	p.tickRate.Set(rate)
	p.heapBytes.Set(float64(p.memStats.Alloc))
	p.gcPause.Set(float64(maxPauseUs) / 1e6)

	p.logger.Info("profiler",
		"tick_rate", rate,
		"heap_mb", allocMB,
		"alloc_rate_mb_s", allocRateMB,
		"gc", gcCount,
		"gc_last_us", lastPauseUs,
		"gc_max_us", maxPauseUs,
		"sys_mb", sysMB,
	)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
