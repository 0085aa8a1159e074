package synth

import "fmt"

// WaveKind selects the periodic waveform shape. The zero value is not a valid kind.
type WaveKind uint8

const (
	Sine WaveKind = iota + 1
	Square
	Triangle
	Sawtooth
)

var waveNames = map[WaveKind]string{
	Sine:     "sine",
	Square:   "square",
	Triangle: "triangle",
	Sawtooth: "sawtooth",
}

// WaveKinds lists every supported kind in selector order.
func WaveKinds() []WaveKind {
	return []WaveKind{Sine, Square, Triangle, Sawtooth}
}

// ParseWaveKind maps a wave name ("sine", "square", "triangle", "sawtooth") to its kind.
func ParseWaveKind(name string) (WaveKind, error) {
	for k, n := range waveNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown wave %q", ErrInvalidParameter, name)
}

// Valid reports whether k is one of the defined kinds.
func (k WaveKind) Valid() bool {
	_, ok := waveNames[k]
	return ok
}

func (k WaveKind) String() string {
	if n, ok := waveNames[k]; ok {
		return n
	}
	return fmt.Sprintf("WaveKind(%d)", uint8(k))
}

// MarshalText encodes the kind by name so JSON documents carry "sine" rather than a number.
func (k WaveKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedWaveform, k)
	}
	return []byte(waveNames[k]), nil
}

func (k *WaveKind) UnmarshalText(text []byte) error {
	parsed, err := ParseWaveKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
