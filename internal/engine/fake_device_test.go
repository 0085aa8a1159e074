package engine

import (
	"sync"
	"sync/atomic"

	"github.com/emailuser9812-ship-it/HZ-speaker/internal/device"
)

// fakeDevice hands the test direct control over when render runs.
type fakeDevice struct {
	openErr  error
	startErr error

	mu      sync.Mutex
	opens   int
	closes  int
	streams []*fakeStream
}

func (d *fakeDevice) Name() string { return "fake" }

func (d *fakeDevice) Open(cfg device.Config, render device.RenderFunc, fault device.FaultFunc) (device.Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.openErr != nil {
		return nil, d.openErr
	}
	d.opens++
	s := &fakeStream{dev: d, cfg: cfg, render: render, fault: fault}
	d.streams = append(d.streams, s)
	return s, nil
}

func (d *fakeDevice) last() *fakeStream {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.streams[len(d.streams)-1]
}

func (d *fakeDevice) counts() (opens, closes int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opens, d.closes
}

type fakeStream struct {
	dev    *fakeDevice
	cfg    device.Config
	render device.RenderFunc
	fault  device.FaultFunc

	closed atomic.Bool
	quit   atomic.Bool
	wg     sync.WaitGroup
}

func (s *fakeStream) Start() error {
	return s.dev.startErr
}

// Close deliberately does not wait for spin: the engine alone must keep
// render from producing audio once Stop has begun closing the stream.
func (s *fakeStream) Close() error {
	s.closed.Store(true)
	s.dev.mu.Lock()
	s.dev.closes++
	s.dev.mu.Unlock()
	return nil
}

// pull runs one callback the way a device thread would.
func (s *fakeStream) pull(n int) ([]float32, device.Signal) {
	out := make([]float32, n)
	sig := s.render(out)
	return out, sig
}

// spin drives render from its own goroutine until halt, counting callbacks
// that were started after Close began yet still produced audio.
func (s *fakeStream) spin(frames int, violations *atomic.Int32) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		buf := make([]float32, frames)
		for !s.quit.Load() {
			closedBefore := s.closed.Load()
			if s.render(buf) == device.Continue && closedBefore {
				violations.Add(1)
			}
		}
	}()
}

func (s *fakeStream) halt() {
	s.quit.Store(true)
	s.wg.Wait()
}
