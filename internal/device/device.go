// Package device abstracts the audio output stream: an output-only, mono,
// float32 device that pulls samples through a registered callback.
package device

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/emailuser9812-ship-it/HZ-speaker/internal/pcm"
)

// Signal is the render callback's verdict on whether the stream should keep pulling.
type Signal int

const (
	Continue Signal = iota
	Complete
)

// RenderFunc fills out with the next len(out) samples. It runs on the
// backend's audio goroutine and must not block.
type RenderFunc func(out []float32) Signal

// FaultFunc receives runtime problems the backend detects while streaming.
// It may be called from the audio goroutine and must not block.
type FaultFunc func(err error)

var (
	ErrUnknownBackend = errors.New("unknown audio backend")
	ErrUnavailable    = errors.New("audio backend unavailable")
	ErrUnderflow      = errors.New("output underflow")
)

// Config describes the stream to open.
type Config struct {
	SampleRate   int
	BufferFrames int
}

// Stream is an opened device stream.
type Stream interface {
	// Start begins callback invocation.
	Start() error
	// Close stops callback invocation and releases the device.
	Close() error
}

// Device opens output streams.
type Device interface {
	Name() string
	Open(cfg Config, render RenderFunc, fault FaultFunc) (Stream, error)
}

// Backend names accepted by New.
const (
	BackendOto       = "oto"
	BackendPulse     = "pulse"
	BackendPortAudio = "portaudio"
	BackendNull      = "null"
)

// New returns the device for a backend name.
func New(name string, logger *zap.Logger) (Device, error) {
	logger = logger.With(zap.String("backend", name))
	switch name {
	case BackendOto:
		return NewOto(logger), nil
	case BackendPulse:
		return NewPulse("hz-speaker", logger), nil
	case BackendPortAudio:
		return NewPortAudio(logger), nil
	case BackendNull:
		return NewNull(nil), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
}

// renderBytes adapts a float32 RenderFunc to byte-oriented pull APIs that
// expect float32le frames. scratch is grown only when p exceeds it.
func renderBytes(render RenderFunc, scratch *[]float32, p []byte) Signal {
	frames := len(p) / 4
	if frames == 0 {
		clear(p)
		return Continue
	}
	if cap(*scratch) < frames {
		*scratch = make([]float32, frames)
	}
	buf := (*scratch)[:frames]
	sig := render(buf)
	pcm.Float32ToBytesInto(buf, p)
	clear(p[frames*4:])
	return sig
}
