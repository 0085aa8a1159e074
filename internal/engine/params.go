package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/emailuser9812-ship-it/HZ-speaker/internal/metrics"
	"github.com/emailuser9812-ship-it/HZ-speaker/internal/synth"
)

// Parameters returns the snapshot the callback currently reads.
func (e *Engine) Parameters() synth.Params {
	return *e.params.Load()
}

// SetParameters validates p and publishes it as a whole. On error the
// previous parameters stay in effect.
func (e *Engine) SetParameters(p synth.Params) error {
	if err := p.Validate(); err != nil {
		return e.rejected(err)
	}
	e.params.Store(&p)
	e.accepted(p)
	return nil
}

// SetFrequency replaces only the frequency.
func (e *Engine) SetFrequency(hz float64) error {
	if err := synth.ValidateFrequency(hz); err != nil {
		return e.rejected(err)
	}
	e.update(func(p *synth.Params) { p.Frequency = hz })
	return nil
}

// SetVolume replaces only the volume.
func (e *Engine) SetVolume(fraction float64) error {
	if err := synth.ValidateVolume(fraction); err != nil {
		return e.rejected(err)
	}
	e.update(func(p *synth.Params) { p.Volume = fraction })
	return nil
}

// SetWaveform replaces only the wave kind.
func (e *Engine) SetWaveform(kind synth.WaveKind) error {
	if !kind.Valid() {
		return e.rejected(fmt.Errorf("%w: unknown wave %s", synth.ErrInvalidParameter, kind))
	}
	e.update(func(p *synth.Params) { p.Wave = kind })
	return nil
}

// update publishes a modified copy of the current snapshot. Concurrent
// single-field setters retry instead of overwriting each other's field.
func (e *Engine) update(fn func(p *synth.Params)) {
	for {
		old := e.params.Load()
		next := *old
		fn(&next)
		if e.params.CompareAndSwap(old, &next) {
			e.accepted(next)
			return
		}
	}
}

func (e *Engine) accepted(p synth.Params) {
	metrics.ParameterUpdatesTotal.WithLabelValues("accepted").Inc()
	publishGauges(p)
	e.logger.Debug("parameters updated",
		zap.Float64("frequency", p.Frequency),
		zap.Float64("volume", p.Volume),
		zap.Stringer("wave", p.Wave),
	)
}

func (e *Engine) rejected(err error) error {
	metrics.ParameterUpdatesTotal.WithLabelValues("rejected").Inc()
	e.logger.Debug("parameters rejected", zap.Error(err))
	return err
}

func publishGauges(p synth.Params) {
	metrics.Frequency.Set(p.Frequency)
	metrics.Volume.Set(p.Volume)
}
