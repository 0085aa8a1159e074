// Package preset persists tone parameters as small JSON documents with
// exactly three keys: frequency, volume and wave.
package preset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/emailuser9812-ship-it/HZ-speaker/internal/synth"
)

var (
	ErrNotFound = errors.New("preset not found")
	ErrInvalid  = errors.New("preset invalid")
)

// Preset is the on-disk form of synth.Params.
type Preset struct {
	Frequency float64 `json:"frequency"`
	Volume    float64 `json:"volume"`
	Wave      string  `json:"wave"`
}

// document mirrors Preset with pointers so missing keys can be told apart from zeros.
type document struct {
	Frequency *float64 `json:"frequency"`
	Volume    *float64 `json:"volume"`
	Wave      *string  `json:"wave"`
}

// FromParams converts live parameters to a preset.
func FromParams(p synth.Params) Preset {
	return Preset{Frequency: p.Frequency, Volume: p.Volume, Wave: p.Wave.String()}
}

// Params converts the preset to validated synth parameters.
func (p Preset) Params() (synth.Params, error) {
	kind, err := synth.ParseWaveKind(p.Wave)
	if err != nil {
		return synth.Params{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	params := synth.Params{Frequency: p.Frequency, Volume: p.Volume, Wave: kind}
	if err := params.Validate(); err != nil {
		return synth.Params{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return params, nil
}

// Decode reads one preset document. Unknown keys, missing keys, trailing
// data and out-of-range values all fail with ErrInvalid.
func Decode(r io.Reader) (Preset, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return Preset{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return Preset{}, fmt.Errorf("%w: trailing data after document", ErrInvalid)
	}

	switch {
	case doc.Frequency == nil:
		return Preset{}, fmt.Errorf("%w: missing frequency", ErrInvalid)
	case doc.Volume == nil:
		return Preset{}, fmt.Errorf("%w: missing volume", ErrInvalid)
	case doc.Wave == nil:
		return Preset{}, fmt.Errorf("%w: missing wave", ErrInvalid)
	}

	p := Preset{Frequency: *doc.Frequency, Volume: *doc.Volume, Wave: *doc.Wave}
	if _, err := p.Params(); err != nil {
		return Preset{}, err
	}
	return p, nil
}

// Encode writes p as an indented JSON document.
func Encode(w io.Writer, p Preset) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}
