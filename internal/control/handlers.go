package control

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/emailuser9812-ship-it/HZ-speaker/internal/command"
	"github.com/emailuser9812-ship-it/HZ-speaker/internal/middleware"
	"github.com/emailuser9812-ship-it/HZ-speaker/internal/pcm"
	"github.com/emailuser9812-ship-it/HZ-speaker/internal/synth"
)

const (
	maxBodyBytes     = 64 << 10
	defaultMonitorMS = 1000
	// maxMonitorMS is the longest window the export buffers can hold.
	maxMonitorMS = pcm.MaxExportSamples * 1000 / synth.SampleRate

	headerSampleRate   = "X-Sample-Rate"
	headerSampleFormat = "X-Sample-Format"
)

// Health handles GET /healthz.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.eng.Status())
}

func (s *Server) parameters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.eng.Parameters())
}

// invoke serves a command handler over HTTP, passing the request body as
// the command payload.
func (s *Server) invoke(h command.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			writeError(w, fmt.Errorf("%w: read body: %v", command.ErrBadPayload, err))
			return
		}
		result, err := h(middleware.GetRequestID(r.Context()), body)
		if err != nil {
			s.logger.Debug("request rejected", zap.String("path", r.URL.Path), zap.Error(err))
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) listPresets(w http.ResponseWriter, r *http.Request) {
	names, err := s.presets.List()
	if err != nil {
		writeError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"presets": names})
}

// savePreset handles POST /v1/presets/{name}.
func (s *Server) savePreset(w http.ResponseWriter, r *http.Request) {
	saved, err := s.savePresetNamed(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// loadPreset handles POST /v1/presets/{name}/load.
func (s *Server) loadPreset(w http.ResponseWriter, r *http.Request) {
	p, err := s.loadPresetNamed(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// monitorPCM handles GET /v1/monitor?ms=N: the most recent N milliseconds
// of output as mono s16le at the engine rate.
func (s *Server) monitorPCM(w http.ResponseWriter, r *http.Request) {
	if s.monitor == nil {
		writeJSON(w, http.StatusNotFound, command.EventError{Code: CodeMonitorDisabled, Message: "output monitor disabled"})
		return
	}

	ms := defaultMonitorMS
	if v := r.URL.Query().Get("ms"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, fmt.Errorf("%w: ms must be a positive integer, got %q", synth.ErrInvalidParameter, v))
			return
		}
		ms = min(n, maxMonitorMS)
	}
	samples := ms * synth.SampleRate / 1000

	bufs := pcm.AcquireExportBuffers()
	defer pcm.ReleaseExportBuffers(bufs)

	snap := s.monitor.SnapshotInto(samples, bufs.Samples)
	data := bufs.EncodeS16LE(snap)

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set(headerSampleRate, strconv.Itoa(synth.SampleRate))
	w.Header().Set(headerSampleFormat, "s16le")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// commandTypes handles GET /v1/commands.
func (s *Server) commandTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"types": s.router.Types()})
}

// commands handles POST /v1/commands with a single command envelope.
func (s *Server) commands(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, fmt.Errorf("%w: read body: %v", command.ErrBadPayload, err))
		return
	}

	env, result, err := s.router.Dispatch(raw)
	if err != nil {
		status, code := classify(err)
		s.logger.Debug("command rejected", zap.String("type", env.Type), zap.String("id", env.ID), zap.Error(err))
		writeJSON(w, status, command.Reply{
			Type:      "error",
			ID:        env.ID,
			Timestamp: time.Now().UnixMilli(),
			Payload:   command.EventError{Code: code, Message: err.Error()},
		})
		return
	}

	writeJSON(w, http.StatusOK, command.Reply{
		Type:      env.Type + ".ok",
		ID:        env.ID,
		Timestamp: time.Now().UnixMilli(),
		Payload:   result,
	})
}
