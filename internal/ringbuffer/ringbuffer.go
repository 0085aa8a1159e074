package ringbuffer

import "sync"

// RingBuffer holds a fixed-duration circular buffer of mono float32 samples.
// It is safe for concurrent use from a single writer and any number of readers.
type RingBuffer struct {
	mu         sync.Mutex
	buf        []float32
	writePos   int
	capacity   int
	sampleRate int
	written    int // total samples ever written (for tracking fill level)
}

// New creates a ring buffer that holds the specified number of seconds of audio.
func New(seconds, sampleRate int) *RingBuffer {
	cap := seconds * sampleRate
	if cap < 1 {
		cap = 1
	}
	return &RingBuffer{
		buf:        make([]float32, cap),
		capacity:   cap,
		sampleRate: sampleRate,
	}
}

// TryWrite appends samples, overwriting the oldest data when full. It never
// blocks the audio callback: if a reader currently holds the buffer it
// returns false and the block is not recorded.
func (rb *RingBuffer) TryWrite(samples []float32) bool {
	if !rb.mu.TryLock() {
		return false
	}
	defer rb.mu.Unlock()
	rb.write(samples)
	return true
}

func (rb *RingBuffer) write(samples []float32) {
	if len(samples) > rb.capacity {
		rb.written += len(samples) - rb.capacity
		samples = samples[len(samples)-rb.capacity:]
	}
	for len(samples) > 0 {
		n := copy(rb.buf[rb.writePos:], samples)
		samples = samples[n:]
		rb.writePos = (rb.writePos + n) % rb.capacity
		rb.written += n
	}
}

// Reset discards all buffered samples.
func (rb *RingBuffer) Reset() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.writePos = 0
	rb.written = 0
}

// SnapshotInto copies the last n samples into dst and returns the used
// portion. Fewer samples come back when less has been written or dst is short.
func (rb *RingBuffer) SnapshotInto(n int, dst []float32) []float32 {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	n = rb.clamp(n)
	if n > len(dst) {
		n = len(dst)
	}
	rb.copyLast(dst[:n])
	return dst[:n]
}

func (rb *RingBuffer) clamp(n int) int {
	if n < 0 {
		return 0
	}
	if n > rb.capacity {
		n = rb.capacity
	}
	available := rb.written
	if available > rb.capacity {
		available = rb.capacity
	}
	if n > available {
		n = available
	}
	return n
}

func (rb *RingBuffer) copyLast(out []float32) {
	requested := len(out)
	start := (rb.writePos - requested + rb.capacity) % rb.capacity

	if start+requested <= rb.capacity {
		copy(out, rb.buf[start:start+requested])
	} else {
		first := rb.capacity - start
		copy(out[:first], rb.buf[start:])
		copy(out[first:], rb.buf[:requested-first])
	}
}

// Available returns the number of seconds of audio currently stored.
func (rb *RingBuffer) Available() float64 {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	available := rb.written
	if available > rb.capacity {
		available = rb.capacity
	}
	return float64(available) / float64(rb.sampleRate)
}
