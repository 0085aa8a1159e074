package device

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestNewUnknownBackend(t *testing.T) {
	_, err := New("jack", zaptest.NewLogger(t))
	if !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("expected ErrUnknownBackend, got %v", err)
	}
}

func TestNewKnownBackends(t *testing.T) {
	for _, name := range []string{BackendOto, BackendPulse, BackendPortAudio, BackendNull} {
		d, err := New(name, zaptest.NewLogger(t))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if d.Name() != name {
			t.Errorf("expected name %q, got %q", name, d.Name())
		}
	}
}

func TestNullDevicePullsBlocks(t *testing.T) {
	var mu sync.Mutex
	var blocks int
	dev := NewNull(func(b []float32) {
		mu.Lock()
		defer mu.Unlock()
		if len(b) == 64 && b[0] == 0.25 {
			blocks++
		}
	})

	var calls atomic.Int32
	s, err := dev.Open(Config{SampleRate: 44100, BufferFrames: 64}, func(out []float32) Signal {
		calls.Add(1)
		for i := range out {
			out[i] = 0.25
		}
		return Continue
	}, func(error) {})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 5 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	after := calls.Load()
	if after < 5 {
		t.Fatalf("expected at least 5 callbacks, got %d", after)
	}
	time.Sleep(20 * time.Millisecond)
	if calls.Load() != after {
		t.Error("callback invoked after Close returned")
	}

	mu.Lock()
	defer mu.Unlock()
	if blocks != int(after) {
		t.Errorf("sink saw %d blocks, render ran %d times", blocks, after)
	}

	// Close is idempotent
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNullDeviceStopsOnComplete(t *testing.T) {
	var calls atomic.Int32
	s, _ := NewNull(nil).Open(Config{SampleRate: 44100, BufferFrames: 32}, func([]float32) Signal {
		calls.Add(1)
		return Complete
	}, func(error) {})
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.Close()
	if n := calls.Load(); n != 1 {
		t.Errorf("expected exactly one callback, got %d", n)
	}
}

func TestRenderBytes(t *testing.T) {
	var scratch []float32
	p := make([]byte, 10) // two frames plus a stray pair of bytes
	for i := range p {
		p[i] = 0xff
	}
	sig := renderBytes(func(out []float32) Signal {
		if len(out) != 2 {
			t.Fatalf("expected 2 frames, got %d", len(out))
		}
		out[0], out[1] = 1, -0.5
		return Complete
	}, &scratch, p)

	if sig != Complete {
		t.Errorf("expected Complete, got %v", sig)
	}
	f0 := math.Float32frombits(uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16 | uint32(p[3])<<24)
	f1 := math.Float32frombits(uint32(p[4]) | uint32(p[5])<<8 | uint32(p[6])<<16 | uint32(p[7])<<24)
	if f0 != 1 || f1 != -0.5 {
		t.Errorf("unexpected samples %f %f", f0, f1)
	}
	if p[8] != 0 || p[9] != 0 {
		t.Error("trailing partial frame not zeroed")
	}
	if cap(scratch) < 2 {
		t.Error("scratch not grown")
	}
}

func TestRenderBytesTinyBuffer(t *testing.T) {
	var scratch []float32
	p := []byte{1, 2}
	called := false
	sig := renderBytes(func([]float32) Signal { called = true; return Complete }, &scratch, p)
	if called || sig != Continue || p[0] != 0 {
		t.Error("sub-frame buffer should be silenced without rendering")
	}
}
