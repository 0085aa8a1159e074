//go:build headless

package device

import (
	"fmt"

	"go.uber.org/zap"
)

// Headless builds carry no cgo audio backends; Open always fails so the
// engine reports the device as unavailable.

type Oto struct{}

func NewOto(*zap.Logger) *Oto { return &Oto{} }

func (d *Oto) Name() string { return BackendOto }

func (d *Oto) Open(Config, RenderFunc, FaultFunc) (Stream, error) {
	return nil, fmt.Errorf("%w: oto not built (headless)", ErrUnavailable)
}

type PortAudio struct{}

func NewPortAudio(*zap.Logger) *PortAudio { return &PortAudio{} }

func (d *PortAudio) Name() string { return BackendPortAudio }

func (d *PortAudio) Open(Config, RenderFunc, FaultFunc) (Stream, error) {
	return nil, fmt.Errorf("%w: portaudio not built (headless)", ErrUnavailable)
}
