package pcm

import "sync"

// MaxExportSamples bounds a single monitor export (10 s at 44.1 kHz).
const MaxExportSamples = 10 * 44100

// ExportBuffers holds pre-allocated buffers for the monitor snapshot→int16→bytes pipeline.
// Used via sync.Pool so repeated monitor requests do not allocate.
type ExportBuffers struct {
	Samples []float32 // cap: MaxExportSamples
	Int16   []int16   // cap: MaxExportSamples
	Bytes   []byte    // cap: MaxExportSamples*2
}

var exportPool = sync.Pool{
	New: func() interface{} {
		return &ExportBuffers{
			Samples: make([]float32, MaxExportSamples),
			Int16:   make([]int16, MaxExportSamples),
			Bytes:   make([]byte, MaxExportSamples*2),
		}
	},
}

// AcquireExportBuffers gets a set of buffers from the pool.
func AcquireExportBuffers() *ExportBuffers {
	return exportPool.Get().(*ExportBuffers)
}

// ReleaseExportBuffers returns buffers to the pool.
func ReleaseExportBuffers(b *ExportBuffers) {
	exportPool.Put(b)
}

// EncodeS16LE converts float samples to s16le bytes using b's scratch space.
// The returned slice aliases b and is valid until b is released.
func (b *ExportBuffers) EncodeS16LE(samples []float32) []byte {
	ints := FloatToInt16Into(samples, b.Int16)
	return Int16ToBytesInto(ints, b.Bytes)
}
