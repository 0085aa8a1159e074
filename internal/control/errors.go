package control

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/emailuser9812-ship-it/HZ-speaker/internal/command"
	"github.com/emailuser9812-ship-it/HZ-speaker/internal/engine"
	"github.com/emailuser9812-ship-it/HZ-speaker/internal/preset"
	"github.com/emailuser9812-ship-it/HZ-speaker/internal/synth"
)

// Error codes returned in {"code","message"} bodies.
const (
	CodeInvalidParameter    = "INVALID_PARAMETER"
	CodeUnsupportedWaveform = "UNSUPPORTED_WAVEFORM"
	CodeDeviceUnavailable   = "DEVICE_UNAVAILABLE"
	CodeStreamFault         = "STREAM_FAULT"
	CodePresetNotFound      = "PRESET_NOT_FOUND"
	CodePresetInvalid       = "PRESET_INVALID"
	CodeUnknownCommand      = "UNKNOWN_COMMAND"
	CodeBadRequest          = "BAD_REQUEST"
	CodeMonitorDisabled     = "MONITOR_DISABLED"
	CodeInternal            = "INTERNAL"
)

// classify maps an error to its HTTP status and wire code.
func classify(err error) (int, string) {
	// Preset errors also wrap the synth sentinel that caused them.
	switch {
	case errors.Is(err, preset.ErrNotFound):
		return http.StatusNotFound, CodePresetNotFound
	case errors.Is(err, preset.ErrInvalid):
		return http.StatusBadRequest, CodePresetInvalid
	case errors.Is(err, synth.ErrInvalidParameter):
		return http.StatusBadRequest, CodeInvalidParameter
	case errors.Is(err, synth.ErrUnsupportedWaveform):
		return http.StatusBadRequest, CodeUnsupportedWaveform
	case errors.Is(err, engine.ErrDeviceUnavailable):
		return http.StatusServiceUnavailable, CodeDeviceUnavailable
	case errors.Is(err, engine.ErrStreamFault):
		return http.StatusInternalServerError, CodeStreamFault
	case errors.Is(err, command.ErrUnknownCommand):
		return http.StatusBadRequest, CodeUnknownCommand
	case errors.Is(err, command.ErrBadPayload):
		return http.StatusBadRequest, CodeBadRequest
	}
	return http.StatusInternalServerError, CodeInternal
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeJSON(w, status, command.EventError{Code: code, Message: err.Error()})
}
