package device

import (
	"fmt"
	"sync"
	"time"

	"github.com/jfreymuth/pulse"
	"go.uber.org/zap"
)

// underflowPoll is how often a running PulseAudio stream is checked for underflows.
const underflowPoll = 250 * time.Millisecond

// Pulse plays through a native PulseAudio (or pipewire-pulse) connection.
type Pulse struct {
	appName string
	logger  *zap.Logger
}

func NewPulse(appName string, logger *zap.Logger) *Pulse {
	return &Pulse{appName: appName, logger: logger}
}

func (d *Pulse) Name() string { return BackendPulse }

func (d *Pulse) Open(cfg Config, render RenderFunc, fault FaultFunc) (Stream, error) {
	client, err := pulse.NewClient(pulse.ClientApplicationName(d.appName))
	if err != nil {
		return nil, fmt.Errorf("%w: pulse connect: %v", ErrUnavailable, err)
	}

	s := &pulseStream{
		client: client,
		render: render,
		fault:  fault,
		logger: d.logger,
		done:   make(chan struct{}),
	}

	latency := 2 * float64(cfg.BufferFrames) / float64(cfg.SampleRate)
	stream, err := client.NewPlayback(pulse.Float32Reader(s.read),
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(cfg.SampleRate),
		pulse.PlaybackLatency(latency),
	)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: pulse playback: %v", ErrUnavailable, err)
	}
	s.stream = stream
	return s, nil
}

type pulseStream struct {
	client *pulse.Client
	stream *pulse.PlaybackStream
	render RenderFunc
	fault  FaultFunc
	logger *zap.Logger

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func (s *pulseStream) read(out []float32) (int, error) {
	if s.render(out) == Complete {
		return len(out), pulse.EndOfData
	}
	return len(out), nil
}

func (s *pulseStream) Start() error {
	s.stream.Start()
	if err := s.stream.Error(); err != nil {
		return fmt.Errorf("%w: pulse start: %v", ErrUnavailable, err)
	}
	s.wg.Add(1)
	go s.watch()
	return nil
}

// watch reports underflows and stream errors while the stream runs.
func (s *pulseStream) watch() {
	defer s.wg.Done()
	ticker := time.NewTicker(underflowPoll)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if s.stream.Underflow() {
				s.fault(ErrUnderflow)
			}
			if err := s.stream.Error(); err != nil {
				s.fault(fmt.Errorf("pulse stream: %w", err))
			}
		}
	}
}

func (s *pulseStream) Close() error {
	s.stopOnce.Do(func() { close(s.done) })
	s.wg.Wait()
	s.stream.Stop()
	s.stream.Close()
	s.client.Close()
	s.logger.Debug("pulse stream closed")
	return nil
}
