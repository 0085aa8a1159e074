package synth

import (
	"errors"
	"fmt"
	"math"
)

const (
	// SampleRate is the fixed output rate of the device stream.
	SampleRate = 44100

	// MaxFrequency is the top of the frequency control range.
	MaxFrequency = 300000.0

	DefaultFrequency = 440.0
	DefaultVolume    = 0.5
)

var (
	ErrInvalidParameter    = errors.New("invalid parameter")
	ErrUnsupportedWaveform = errors.New("unsupported waveform")
)

// Params is the tone the engine should currently produce. Values are copied
// on publish and never mutated afterwards.
type Params struct {
	Frequency float64  `json:"frequency"`
	Volume    float64  `json:"volume"`
	Wave      WaveKind `json:"wave"`
}

// DefaultParams returns the power-on tone: 440 Hz sine at half volume.
func DefaultParams() Params {
	return Params{Frequency: DefaultFrequency, Volume: DefaultVolume, Wave: Sine}
}

// Validate checks every field and reports the first violation as ErrInvalidParameter.
func (p Params) Validate() error {
	if err := ValidateFrequency(p.Frequency); err != nil {
		return err
	}
	if err := ValidateVolume(p.Volume); err != nil {
		return err
	}
	if !p.Wave.Valid() {
		return fmt.Errorf("%w: unknown wave %s", ErrInvalidParameter, p.Wave)
	}
	return nil
}

// ValidateFrequency accepts finite frequencies in (0, MaxFrequency].
func ValidateFrequency(hz float64) error {
	if math.IsNaN(hz) || hz <= 0 || hz > MaxFrequency {
		return fmt.Errorf("%w: frequency %g Hz outside (0, %g]", ErrInvalidParameter, hz, MaxFrequency)
	}
	return nil
}

// ValidateVolume accepts fractions in [0, 1].
func ValidateVolume(v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("%w: volume %g outside [0, 1]", ErrInvalidParameter, v)
	}
	return nil
}

// Phase is the synthesis cursor expressed in cycles of the waveform elapsed
// since an arbitrary origin. Only its fractional part affects the output.
type Phase float64

// Synthesize fills dst with len(dst) samples of the requested tone starting
// at phase start, and returns the phase at which the next block must begin.
// It allocates nothing and holds no state, so it is safe to call from an
// audio callback.
func Synthesize(dst []float32, p Params, sampleRate int, start Phase) (Phase, error) {
	if len(dst) == 0 {
		return start, fmt.Errorf("%w: empty block", ErrInvalidParameter)
	}
	if sampleRate <= 0 {
		return start, fmt.Errorf("%w: sample rate %d", ErrInvalidParameter, sampleRate)
	}
	if err := ValidateFrequency(p.Frequency); err != nil {
		return start, err
	}
	if err := ValidateVolume(p.Volume); err != nil {
		return start, err
	}

	var wave func(float64) float64
	switch p.Wave {
	case Sine:
		wave = sine
	case Square:
		wave = square
	case Triangle:
		wave = triangle
	case Sawtooth:
		wave = sawtooth
	default:
		return start, fmt.Errorf("%w: %s", ErrUnsupportedWaveform, p.Wave)
	}

	inc := p.Frequency / float64(sampleRate)
	base := float64(start) - math.Floor(float64(start))
	for i := range dst {
		dst[i] = float32(wave(base+float64(i)*inc) * p.Volume)
	}
	return start + Phase(float64(len(dst))*inc), nil
}

// Generate is the allocating form of Synthesize.
func Generate(n int, p Params, sampleRate int, start Phase) ([]float32, Phase, error) {
	if n <= 0 {
		return nil, start, fmt.Errorf("%w: sample count %d", ErrInvalidParameter, n)
	}
	out := make([]float32, n)
	next, err := Synthesize(out, p, sampleRate, start)
	if err != nil {
		return nil, start, err
	}
	return out, next, nil
}

func sine(x float64) float64 {
	return math.Sin(2 * math.Pi * x)
}

// square is sign(sin(2πx)) evaluated on the cycle position, so exact zero
// crossings yield 0 instead of the ±1e-16 residue math.Sin leaves at π.
func square(x float64) float64 {
	f := x - math.Floor(x)
	switch {
	case f == 0 || f == 0.5:
		return 0
	case f < 0.5:
		return 1
	default:
		return -1
	}
}

func triangle(x float64) float64 {
	return 2*math.Abs(2*(x-math.Floor(0.5+x))) - 1
}

func sawtooth(x float64) float64 {
	return 2 * (x - math.Floor(0.5+x))
}
