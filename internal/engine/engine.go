package engine

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/emailuser9812-ship-it/HZ-speaker/internal/device"
	"github.com/emailuser9812-ship-it/HZ-speaker/internal/metrics"
	"github.com/emailuser9812-ship-it/HZ-speaker/internal/ringbuffer"
	"github.com/emailuser9812-ship-it/HZ-speaker/internal/synth"
)

const (
	DefaultBufferFrames = 512

	// faultQueueSize bounds the diagnostic channel; faults beyond it are counted and dropped.
	faultQueueSize = 16
)

var (
	ErrDeviceUnavailable = errors.New("audio device unavailable")
	ErrStreamFault       = errors.New("stream fault")
)

// Fault is a non-fatal problem observed while the stream was running.
type Fault struct {
	Err  error
	Time time.Time
}

// Status is a point-in-time view of the engine for display.
type Status struct {
	Running        bool         `json:"running"`
	Backend        string       `json:"backend"`
	SampleRate     int          `json:"sampleRate"`
	BufferFrames   int          `json:"bufferFrames"`
	FramesRendered uint64       `json:"framesRendered"`
	Phase          float64      `json:"phase"`
	Parameters     synth.Params `json:"parameters"`
	MonitorSeconds float64      `json:"monitorSeconds,omitempty"`
}

// Options configures a new Engine. Zero values select defaults.
type Options struct {
	BufferFrames int
	Initial      synth.Params
	// Monitor, when set, receives a copy of every rendered block.
	Monitor *ringbuffer.RingBuffer
}

// Engine bridges the synthesizer to a live output stream.
//
// Two goroutines touch it: the control side (Start, Stop, Set*) and the
// device callback (render). The callback never takes a lock: parameters
// are an atomically published immutable snapshot and the phase cursor is
// written only by the callback.
type Engine struct {
	dev          device.Device
	logger       *zap.Logger
	bufferFrames int
	monitor      *ringbuffer.RingBuffer

	params atomic.Pointer[synth.Params]
	phase  atomic.Uint64 // math.Float64bits of the synth.Phase cursor
	frames atomic.Uint64

	active   atomic.Bool
	inflight atomic.Int32

	mu     sync.Mutex // serializes Start/Stop
	stream device.Stream

	faults chan Fault
}

// New creates a stopped engine that will stream to dev.
func New(dev device.Device, logger *zap.Logger, opts Options) (*Engine, error) {
	initial := opts.Initial
	if initial == (synth.Params{}) {
		initial = synth.DefaultParams()
	}
	if err := initial.Validate(); err != nil {
		return nil, fmt.Errorf("initial parameters: %w", err)
	}
	frames := opts.BufferFrames
	if frames <= 0 {
		frames = DefaultBufferFrames
	}

	e := &Engine{
		dev:          dev,
		logger:       logger.With(zap.String("component", "engine"), zap.String("backend", dev.Name())),
		bufferFrames: frames,
		monitor:      opts.Monitor,
		faults:       make(chan Fault, faultQueueSize),
	}
	e.params.Store(&initial)
	publishGauges(initial)
	return e, nil
}

// Start opens the device stream and begins producing audio from phase 0.
// It is a no-op while running. On failure the engine stays stopped with its
// phase, frame count and monitor contents untouched, and the error wraps
// ErrDeviceUnavailable.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stream != nil {
		return nil
	}

	cfg := device.Config{SampleRate: synth.SampleRate, BufferFrames: e.bufferFrames}
	stream, err := e.dev.Open(cfg, e.render, e.deviceFault)
	if err != nil {
		metrics.StreamStartsTotal.WithLabelValues("unavailable").Inc()
		e.logger.Warn("open device failed", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}

	// Callbacks begin with stream.Start, so the cursor must be rewound and
	// the callback armed before it. A callback that finds the engine
	// inactive ends the stream.
	prevPhase, prevFrames := e.phase.Load(), e.frames.Load()
	e.phase.Store(0)
	e.frames.Store(0)
	e.active.Store(true)
	if err := stream.Start(); err != nil {
		e.active.Store(false)
		e.drain()
		stream.Close()
		e.phase.Store(prevPhase)
		e.frames.Store(prevFrames)
		metrics.StreamStartsTotal.WithLabelValues("unavailable").Inc()
		e.logger.Warn("start device failed", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}

	// A failed Start keeps the previous capture.
	if e.monitor != nil {
		e.monitor.Reset()
	}

	e.stream = stream
	metrics.StreamStartsTotal.WithLabelValues("started").Inc()
	metrics.StreamRunning.Set(1)
	e.logger.Info("stream started",
		zap.Int("sampleRate", cfg.SampleRate),
		zap.Int("bufferFrames", cfg.BufferFrames),
	)
	return nil
}

// Stop invalidates the render callback, waits for an in-flight callback to
// return, then closes the device. It is a no-op while stopped. The engine is
// stopped when Stop returns even if closing the device reported an error.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stream == nil {
		return nil
	}

	e.active.Store(false)
	e.drain()
	err := e.stream.Close()
	e.stream = nil
	metrics.StreamRunning.Set(0)

	e.logger.Info("stream stopped",
		zap.Uint64("framesRendered", e.frames.Load()),
		zap.Float64("phase", float64(e.Phase())),
	)
	if err != nil {
		e.logger.Warn("close device failed", zap.Error(err))
		return fmt.Errorf("%w: close: %w", ErrStreamFault, err)
	}
	return nil
}

// drain waits until no render call is executing. Callbacks that begin after
// active was cleared return silence immediately, so this is short.
func (e *Engine) drain() {
	for e.inflight.Load() > 0 {
		runtime.Gosched()
	}
}

// Running reports whether the stream is open.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stream != nil
}

// render is the device callback.
func (e *Engine) render(out []float32) device.Signal {
	e.inflight.Add(1)
	defer e.inflight.Add(-1)

	if !e.active.Load() {
		clear(out)
		return device.Complete
	}
	if len(out) == 0 {
		return device.Continue
	}

	start := time.Now()
	p := e.params.Load()
	phase := synth.Phase(math.Float64frombits(e.phase.Load()))

	next, err := synth.Synthesize(out, *p, synth.SampleRate, phase)
	if err != nil {
		clear(out)
		e.report("synth", err)
		return device.Continue
	}
	e.phase.Store(math.Float64bits(float64(next)))
	e.frames.Add(uint64(len(out)))

	if e.monitor != nil && !e.monitor.TryWrite(out) {
		metrics.MonitorDropsTotal.Inc()
	}

	metrics.CallbacksTotal.Inc()
	metrics.FramesRenderedTotal.Add(float64(len(out)))
	metrics.CallbackDuration.Observe(float64(time.Since(start).Microseconds()))
	return device.Continue
}

func (e *Engine) deviceFault(err error) {
	e.report("device", err)
}

// report queues a fault without blocking; a full queue drops it.
func (e *Engine) report(source string, err error) {
	metrics.StreamFaultsTotal.WithLabelValues(source).Inc()
	f := Fault{Err: fmt.Errorf("%w: %s: %w", ErrStreamFault, source, err), Time: time.Now()}
	select {
	case e.faults <- f:
	default:
		metrics.FaultsDroppedTotal.Inc()
	}
}

// Faults delivers runtime stream faults. The channel is never closed.
func (e *Engine) Faults() <-chan Fault {
	return e.faults
}

// Phase returns the phase cursor. After Stop it holds the last value reached.
func (e *Engine) Phase() synth.Phase {
	return synth.Phase(math.Float64frombits(e.phase.Load()))
}

// FramesRendered returns the number of frames produced since the last Start.
func (e *Engine) FramesRendered() uint64 {
	return e.frames.Load()
}

// Status returns a snapshot of lifecycle, cursor and parameters.
func (e *Engine) Status() Status {
	st := Status{
		Running:        e.Running(),
		Backend:        e.dev.Name(),
		SampleRate:     synth.SampleRate,
		BufferFrames:   e.bufferFrames,
		FramesRendered: e.FramesRendered(),
		Phase:          float64(e.Phase()),
		Parameters:     e.Parameters(),
	}
	if e.monitor != nil {
		st.MonitorSeconds = e.monitor.Available()
	}
	return st
}
