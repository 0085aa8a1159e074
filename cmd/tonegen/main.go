package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/emailuser9812-ship-it/HZ-speaker/internal/config"
	"github.com/emailuser9812-ship-it/HZ-speaker/internal/control"
	"github.com/emailuser9812-ship-it/HZ-speaker/internal/device"
	"github.com/emailuser9812-ship-it/HZ-speaker/internal/engine"
	"github.com/emailuser9812-ship-it/HZ-speaker/internal/preset"
	"github.com/emailuser9812-ship-it/HZ-speaker/internal/ringbuffer"
	"github.com/emailuser9812-ship-it/HZ-speaker/internal/synth"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger config depends on cfg, so fall back to a production logger here.
		logger, _ := zap.NewProduction()
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	var logger *zap.Logger
	if cfg.LogDev {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("tonegen starting",
		zap.String("listen", cfg.ListenAddr),
		zap.String("backend", cfg.Backend),
		zap.Int("bufferFrames", cfg.BufferFrames),
		zap.String("presetDir", cfg.PresetDir),
		zap.Int("monitorSec", cfg.MonitorSec),
	)

	dev, err := device.New(cfg.Backend, logger)
	if err != nil {
		logger.Fatal("failed to select audio backend", zap.Error(err))
	}

	var monitor *ringbuffer.RingBuffer
	if cfg.MonitorSec > 0 {
		monitor = ringbuffer.New(cfg.MonitorSec, synth.SampleRate)
	}

	eng, err := engine.New(dev, logger, engine.Options{
		BufferFrames: cfg.BufferFrames,
		Initial:      cfg.Initial,
		Monitor:      monitor,
	})
	if err != nil {
		logger.Fatal("failed to create engine", zap.Error(err))
	}

	if cfg.Autostart {
		if err := eng.Start(); err != nil {
			// The API stays up so the stream can be started once a device appears.
			logger.Warn("autostart failed", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr: cfg.ListenAddr,
		Handler: control.New(control.Options{
			Engine:  eng,
			Presets: preset.NewStore(cfg.PresetDir, logger),
			Monitor: monitor,
			Token:   cfg.ControlToken,
			Logger:  logger,
		}).Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 20 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("control API listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case f := <-eng.Faults():
				logger.Warn("stream fault", zap.Error(f.Err), zap.Time("at", f.Time))
			}
		}
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		if err := eng.Stop(); err != nil {
			logger.Warn("stop engine", zap.Error(err))
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("tonegen exited with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}
