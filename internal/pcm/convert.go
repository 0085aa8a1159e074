package pcm

import (
	"encoding/binary"
	"math"
)

// FloatToInt16Into converts float32 samples in [-1, 1] to int16 in dst,
// clipping out-of-range values. dst must have capacity >= len(in).
func FloatToInt16Into(in []float32, dst []int16) []int16 {
	dst = dst[:len(in)]
	for i, s := range in {
		dst[i] = floatToInt16(s)
	}
	return dst
}

func floatToInt16(s float32) int16 {
	switch {
	case s != s: // NaN
		return 0
	case s >= 1:
		return math.MaxInt16
	case s <= -1:
		return -math.MaxInt16
	}
	return int16(math.Round(float64(s) * math.MaxInt16))
}

// Int16ToBytesInto writes s16le bytes into dst, avoiding allocation.
// dst must have capacity >= len(samples)*2. Returns the used portion.
func Int16ToBytesInto(samples []int16, dst []byte) []byte {
	dst = dst[:len(samples)*2]
	for i, s := range samples {
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(s))
	}
	return dst
}

// Float32ToBytesInto writes float32le bytes into dst, the layout oto expects
// for FormatFloat32LE. dst must have capacity >= len(samples)*4.
func Float32ToBytesInto(samples []float32, dst []byte) []byte {
	dst = dst[:len(samples)*4]
	for i, s := range samples {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(s))
	}
	return dst
}
