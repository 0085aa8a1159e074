package device

import (
	"sync"
	"time"
)

// Null is a software-clocked device for hosts without audio hardware. It
// pulls one buffer per buffer period and passes it to Sink when set.
type Null struct {
	Sink func(block []float32)
}

func NewNull(sink func([]float32)) *Null {
	return &Null{Sink: sink}
}

func (d *Null) Name() string { return BackendNull }

func (d *Null) Open(cfg Config, render RenderFunc, _ FaultFunc) (Stream, error) {
	period := time.Duration(float64(time.Second) * float64(cfg.BufferFrames) / float64(cfg.SampleRate))
	return &nullStream{
		render: render,
		sink:   d.Sink,
		buf:    make([]float32, cfg.BufferFrames),
		period: period,
		done:   make(chan struct{}),
	}, nil
}

type nullStream struct {
	render RenderFunc
	sink   func([]float32)
	buf    []float32
	period time.Duration

	done      chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

func (s *nullStream) Start() error {
	s.startOnce.Do(func() {
		s.wg.Add(1)
		go s.loop()
	})
	return nil
}

func (s *nullStream) loop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			sig := s.render(s.buf)
			if s.sink != nil {
				s.sink(s.buf)
			}
			if sig == Complete {
				return
			}
		}
	}
}

// Close stops the clock and waits for an in-progress render to return.
func (s *nullStream) Close() error {
	s.stopOnce.Do(func() { close(s.done) })
	s.wg.Wait()
	return nil
}
