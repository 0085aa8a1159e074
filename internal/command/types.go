package command

import "encoding/json"

// Command types accepted by the control surface.
const (
	TypeSetFrequency  = "set.frequency"
	TypeSetVolume     = "set.volume"
	TypeSetWaveform   = "set.waveform"
	TypeSetParameters = "set.parameters"
	TypeStart         = "engine.start"
	TypeStop          = "engine.stop"
	TypePresetSave    = "preset.save"
	TypePresetLoad    = "preset.load"
)

// Envelope is the top-level wrapper for all command messages.
type Envelope struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Setter payloads use pointers so an absent key is told apart from zero;
// a zero volume is a valid request, a missing one is not.

// SetFrequency is the payload for set.frequency commands.
type SetFrequency struct {
	Hz *float64 `json:"hz"`
}

// SetVolume is the payload for set.volume commands.
type SetVolume struct {
	Fraction *float64 `json:"fraction"`
}

// SetWaveform is the payload for set.waveform commands.
type SetWaveform struct {
	Wave *string `json:"wave"`
}

// SetParameters is the payload for set.parameters commands. All three keys
// are required.
type SetParameters struct {
	Frequency *float64 `json:"frequency"`
	Volume    *float64 `json:"volume"`
	Wave      *string  `json:"wave"`
}

// PresetRef names a preset for preset.save and preset.load. An empty name
// selects the default preset.
type PresetRef struct {
	Name string `json:"name,omitempty"`
}

// Reply answers one dispatched envelope.
type Reply struct {
	Type      string      `json:"type"`
	ID        string      `json:"id,omitempty"`
	Timestamp int64       `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// EventError is the payload for error replies.
type EventError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
