package control

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/emailuser9812-ship-it/HZ-speaker/internal/command"
	"github.com/emailuser9812-ship-it/HZ-speaker/internal/preset"
	"github.com/emailuser9812-ship-it/HZ-speaker/internal/synth"
)

// savedPreset answers preset.save.
type savedPreset struct {
	Name   string        `json:"name"`
	Preset preset.Preset `json:"preset"`
}

func (s *Server) registerCommands() {
	s.router.Register(command.TypeSetFrequency, s.cmdSetFrequency)
	s.router.Register(command.TypeSetVolume, s.cmdSetVolume)
	s.router.Register(command.TypeSetWaveform, s.cmdSetWaveform)
	s.router.Register(command.TypeSetParameters, s.cmdSetParameters)
	s.router.Register(command.TypeStart, s.cmdStart)
	s.router.Register(command.TypeStop, s.cmdStop)
	s.router.Register(command.TypePresetSave, s.cmdPresetSave)
	s.router.Register(command.TypePresetLoad, s.cmdPresetLoad)
}

func (s *Server) cmdSetFrequency(_ string, payload json.RawMessage) (interface{}, error) {
	var req command.SetFrequency
	if err := command.Decode(payload, &req); err != nil {
		return nil, err
	}
	if req.Hz == nil {
		return nil, command.Missing("hz")
	}
	if err := s.eng.SetFrequency(*req.Hz); err != nil {
		return nil, err
	}
	return s.eng.Parameters(), nil
}

func (s *Server) cmdSetVolume(_ string, payload json.RawMessage) (interface{}, error) {
	var req command.SetVolume
	if err := command.Decode(payload, &req); err != nil {
		return nil, err
	}
	if req.Fraction == nil {
		return nil, command.Missing("fraction")
	}
	if err := s.eng.SetVolume(*req.Fraction); err != nil {
		return nil, err
	}
	return s.eng.Parameters(), nil
}

func (s *Server) cmdSetWaveform(_ string, payload json.RawMessage) (interface{}, error) {
	var req command.SetWaveform
	if err := command.Decode(payload, &req); err != nil {
		return nil, err
	}
	if req.Wave == nil {
		return nil, command.Missing("wave")
	}
	kind, err := synth.ParseWaveKind(*req.Wave)
	if err != nil {
		return nil, err
	}
	if err := s.eng.SetWaveform(kind); err != nil {
		return nil, err
	}
	return s.eng.Parameters(), nil
}

func (s *Server) cmdSetParameters(_ string, payload json.RawMessage) (interface{}, error) {
	var req command.SetParameters
	if err := command.Decode(payload, &req); err != nil {
		return nil, err
	}
	switch {
	case req.Frequency == nil:
		return nil, command.Missing("frequency")
	case req.Volume == nil:
		return nil, command.Missing("volume")
	case req.Wave == nil:
		return nil, command.Missing("wave")
	}
	kind, err := synth.ParseWaveKind(*req.Wave)
	if err != nil {
		return nil, err
	}
	if err := s.eng.SetParameters(synth.Params{Frequency: *req.Frequency, Volume: *req.Volume, Wave: kind}); err != nil {
		return nil, err
	}
	return s.eng.Parameters(), nil
}

func (s *Server) cmdStart(_ string, _ json.RawMessage) (interface{}, error) {
	if err := s.eng.Start(); err != nil {
		return nil, err
	}
	return s.eng.Status(), nil
}

func (s *Server) cmdStop(_ string, _ json.RawMessage) (interface{}, error) {
	if err := s.eng.Stop(); err != nil {
		return nil, err
	}
	return s.eng.Status(), nil
}

func (s *Server) cmdPresetSave(_ string, payload json.RawMessage) (interface{}, error) {
	name, err := presetName(payload)
	if err != nil {
		return nil, err
	}
	return s.savePresetNamed(name)
}

func (s *Server) cmdPresetLoad(_ string, payload json.RawMessage) (interface{}, error) {
	name, err := presetName(payload)
	if err != nil {
		return nil, err
	}
	return s.loadPresetNamed(name)
}

// presetName reads an optional PresetRef; an absent payload or name selects
// the default preset.
func presetName(payload json.RawMessage) (string, error) {
	var ref command.PresetRef
	if len(payload) > 0 && string(payload) != "null" {
		if err := command.Decode(payload, &ref); err != nil {
			return "", err
		}
	}
	if ref.Name == "" {
		return preset.DefaultName, nil
	}
	return ref.Name, nil
}

func (s *Server) savePresetNamed(name string) (savedPreset, error) {
	p := s.eng.Parameters()
	if err := s.presets.Save(name, p); err != nil {
		return savedPreset{}, err
	}
	return savedPreset{Name: name, Preset: preset.FromParams(p)}, nil
}

// loadPresetNamed applies a stored preset. Live parameters are untouched
// unless the document loads and validates completely.
func (s *Server) loadPresetNamed(name string) (synth.Params, error) {
	p, err := s.presets.Load(name)
	if err != nil {
		return synth.Params{}, err
	}
	if err := s.eng.SetParameters(p); err != nil {
		return synth.Params{}, err
	}
	s.logger.Info("preset applied",
		zap.String("name", name),
		zap.Float64("frequency", p.Frequency),
		zap.Float64("volume", p.Volume),
		zap.Stringer("wave", p.Wave),
	)
	return p, nil
}
