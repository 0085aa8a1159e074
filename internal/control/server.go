// Package control exposes the tone engine over HTTP: a REST surface for
// parameters, lifecycle, presets and the output monitor, plus a JSON
// command endpoint that accepts the same operations as envelopes.
package control

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/emailuser9812-ship-it/HZ-speaker/internal/command"
	"github.com/emailuser9812-ship-it/HZ-speaker/internal/engine"
	"github.com/emailuser9812-ship-it/HZ-speaker/internal/middleware"
	"github.com/emailuser9812-ship-it/HZ-speaker/internal/preset"
	"github.com/emailuser9812-ship-it/HZ-speaker/internal/ringbuffer"
	"github.com/emailuser9812-ship-it/HZ-speaker/internal/synth"
)

// Engine is the part of *engine.Engine the control surface drives.
type Engine interface {
	Parameters() synth.Params
	SetParameters(p synth.Params) error
	SetFrequency(hz float64) error
	SetVolume(fraction float64) error
	SetWaveform(kind synth.WaveKind) error
	Start() error
	Stop() error
	Status() engine.Status
}

// Options configures a Server.
type Options struct {
	Engine  Engine
	Presets *preset.Store
	// Monitor is the engine's output ring; nil disables /v1/monitor.
	Monitor *ringbuffer.RingBuffer
	// Token, when set, is required as a bearer token on /v1 routes.
	Token  string
	Logger *zap.Logger
}

// Server owns the HTTP routes and the command router.
type Server struct {
	eng     Engine
	presets *preset.Store
	monitor *ringbuffer.RingBuffer
	token   string
	logger  *zap.Logger
	router  *command.Router
}

// New creates a server and registers every command type.
func New(opts Options) *Server {
	logger := opts.Logger.With(zap.String("component", "control"))
	s := &Server{
		eng:     opts.Engine,
		presets: opts.Presets,
		monitor: opts.Monitor,
		token:   opts.Token,
		logger:  logger,
		router:  command.NewRouter(logger),
	}
	s.registerCommands()
	return s
}

// Handler returns the chi router serving the full API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposedHeaders:   []string{headerSampleRate, headerSampleFormat},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Auth(s.token))

		r.Get("/status", s.status)
		r.Get("/parameters", s.parameters)
		r.Put("/parameters", s.invoke(s.cmdSetParameters))
		r.Put("/frequency", s.invoke(s.cmdSetFrequency))
		r.Put("/volume", s.invoke(s.cmdSetVolume))
		r.Put("/waveform", s.invoke(s.cmdSetWaveform))
		r.Post("/start", s.invoke(s.cmdStart))
		r.Post("/stop", s.invoke(s.cmdStop))

		r.Route("/presets", func(r chi.Router) {
			r.Get("/", s.listPresets)
			r.Route("/{name}", func(r chi.Router) {
				r.Post("/", s.savePreset)
				r.Post("/load", s.loadPreset)
			})
		})

		r.Get("/monitor", s.monitorPCM)
		r.Get("/commands", s.commandTypes)
		r.Post("/commands", s.commands)
	})
	return r
}
