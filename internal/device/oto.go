//go:build !headless

package device

import (
	"fmt"
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"
	"go.uber.org/zap"
)

// Oto plays through ebitengine/oto. oto permits a single context per
// process, so the context is created on first Open and reused afterwards.
type Oto struct {
	logger *zap.Logger

	once sync.Once
	ctx  *oto.Context
	rate int
	err  error
}

func NewOto(logger *zap.Logger) *Oto {
	return &Oto{logger: logger}
}

func (d *Oto) Name() string { return BackendOto }

func (d *Oto) context(cfg Config) (*oto.Context, error) {
	d.once.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   cfg.SampleRate,
			ChannelCount: 1,
			Format:       oto.FormatFloat32LE,
		})
		if err != nil {
			d.err = fmt.Errorf("%w: oto context: %v", ErrUnavailable, err)
			return
		}
		<-ready
		d.ctx = ctx
		d.rate = cfg.SampleRate
		d.logger.Info("oto context ready", zap.Int("sampleRate", cfg.SampleRate))
	})
	if d.err != nil {
		return nil, d.err
	}
	if d.rate != cfg.SampleRate {
		return nil, fmt.Errorf("%w: oto context fixed at %d Hz, requested %d Hz", ErrUnavailable, d.rate, cfg.SampleRate)
	}
	return d.ctx, nil
}

func (d *Oto) Open(cfg Config, render RenderFunc, fault FaultFunc) (Stream, error) {
	ctx, err := d.context(cfg)
	if err != nil {
		return nil, err
	}
	s := &otoStream{
		render:  render,
		fault:   fault,
		scratch: make([]float32, cfg.BufferFrames),
	}
	s.player = ctx.NewPlayer(s)
	s.player.SetBufferSize(cfg.BufferFrames * 4)
	return s, nil
}

type otoStream struct {
	player  *oto.Player
	render  RenderFunc
	fault   FaultFunc
	scratch []float32 // only touched from oto's read goroutine
}

// Read is called by oto's mixer goroutine whenever the player needs data.
func (s *otoStream) Read(p []byte) (int, error) {
	if renderBytes(s.render, &s.scratch, p) == Complete {
		return len(p), io.EOF
	}
	return len(p), nil
}

func (s *otoStream) Start() error {
	s.player.Play()
	if err := s.player.Err(); err != nil {
		return fmt.Errorf("%w: oto play: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *otoStream) Close() error {
	if err := s.player.Err(); err != nil {
		s.fault(err)
	}
	s.player.Pause()
	return s.player.Close()
}
