//go:build !headless

package device

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"
)

// PortAudio plays through the default PortAudio output device.
type PortAudio struct {
	logger *zap.Logger
}

func NewPortAudio(logger *zap.Logger) *PortAudio {
	return &PortAudio{logger: logger}
}

func (d *PortAudio) Name() string { return BackendPortAudio }

func (d *PortAudio) Open(cfg Config, render RenderFunc, fault FaultFunc) (Stream, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: portaudio init: %v", ErrUnavailable, err)
	}

	s := &paStream{render: render, fault: fault}
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(cfg.SampleRate), cfg.BufferFrames, s.process)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("%w: portaudio open: %v", ErrUnavailable, err)
	}
	s.stream = stream
	d.logger.Debug("portaudio stream opened", zap.Int("bufferFrames", cfg.BufferFrames))
	return s, nil
}

type paStream struct {
	stream *portaudio.Stream
	render RenderFunc
	fault  FaultFunc
}

// process runs on PortAudio's callback thread. The Go binding has no way to
// return paComplete, so a Complete signal just yields silence until Close.
func (s *paStream) process(out []float32, _ portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
	if flags&portaudio.OutputUnderflow != 0 {
		s.fault(ErrUnderflow)
	}
	if s.render(out) == Complete {
		clear(out)
	}
}

func (s *paStream) Start() error {
	if err := s.stream.Start(); err != nil {
		return fmt.Errorf("%w: portaudio start: %v", ErrUnavailable, err)
	}
	return nil
}

// Close stops the stream (PortAudio waits for the running callback) and
// releases the library.
func (s *paStream) Close() error {
	stopErr := s.stream.Stop()
	closeErr := s.stream.Close()
	portaudio.Terminate()
	if stopErr != nil {
		return stopErr
	}
	return closeErr
}
