// scribed serves local speech-to-text (and text-to-speech) inference
// behind an HTTP API, loading pre-downloaded model artifacts at startup.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ekisa-team/scribe/internal/backend/piper"
	"github.com/ekisa-team/scribe/internal/backend/whispercpp"
	"github.com/ekisa-team/scribe/internal/config"
	"github.com/ekisa-team/scribe/internal/env"
	"github.com/ekisa-team/scribe/internal/logger"
	"github.com/ekisa-team/scribe/internal/model"
	httpserver "github.com/ekisa-team/scribe/internal/server/http"
	"github.com/ekisa-team/scribe/internal/service"
)

func main() {
	var (
		flagHTTPPort = flag.Int("http-port", 0, "HTTP port to listen on (overrides SCRIBE_SERVER_HTTP_PORT)")
		flagOverlay  = flag.String("config", "", "Path to the optional tunables overlay (YAML)")
		flagLogFile  = flag.String("log-file", "logs/scribed.log", "Path to the rotating log file")
	)
	flag.Parse()

	environment := env.FromEnv()

	slog.SetDefault(
		logger.New(environment,
			logger.WithLogToFile(true),
			logger.WithLogFile(*flagLogFile),
		),
	)

	settings := config.FromEnv()
	if *flagHTTPPort > 0 {
		settings.HTTPPort = *flagHTTPPort
	}

	tunables := tunablesProvider(*flagOverlay, settings.ForwardURL)
	if tunables == nil {
		os.Exit(1)
	}

	registry := model.Discover(settings.ModelRoot)
	defaultAlias, err := registry.ResolveDefault(settings.DefaultModelPath)
	if err != nil {
		slog.Error("Default model is unavailable", "path", settings.DefaultModelPath, "error", err)
		os.Exit(1)
	}

	recognizer := whispercpp.New(settings.WhisperServerBin, settings.Device, settings.ComputeType)
	cache := model.NewCache(recognizer)

	store := service.NewResponseStore(tunables().HistorySize)
	forwarder := service.NewForwarder()
	transcriber := service.NewTranscriber(registry, cache, store, forwarder, tunables, tunables().MaxWorkers)

	var synthesizer *service.Synthesizer
	if voice, err := piper.New(settings.PiperBin); err != nil {
		slog.Warn("Speech synthesis disabled", "bin", settings.PiperBin, "error", err)
	} else {
		synthesizer = service.NewSynthesizer(voice, tunables)
	}

	srv := httpserver.New(settings.HTTPPort, httpserver.Dependencies{
		Registry:    registry,
		Cache:       cache,
		Transcriber: transcriber,
		Synthesizer: synthesizer,
		Store:       store,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fatal := make(chan error, 2)

	go func() {
		slog.Info("HTTP server listening", "addr", srv.Addr, "env", environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal <- err
		}
	}()

	// Load every registered model eagerly; request handlers never load.
	// A failed sibling is only a warning, a failed default is fatal.
	go func() {
		failures := cache.LoadAll(ctx, registry)
		if _, ok := cache.TryGet(settings.DefaultModelPath); !ok {
			fatal <- fmt.Errorf("default model %q failed to load", defaultAlias)
			return
		}
		slog.Info("Startup model loading complete",
			"models", len(registry.Aliases()), "failures", len(failures))
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		slog.Info("Shutting down")
	case err := <-fatal:
		slog.Error("Fatal error", "error", err)
		exitCode = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Failed to shut down HTTP server", "error", err)
	}
	if err := cache.Close(); err != nil {
		slog.Error("Failed to close model cache", "error", err)
	}
	if err := recognizer.Close(); err != nil {
		slog.Error("Failed to close recognizer", "error", err)
	}

	os.Exit(exitCode)
}

// tunablesProvider wires the overlay watcher when a file is given and
// falls back to static defaults otherwise. An overlay forward URL takes
// precedence over the environment one. Returns nil on a broken overlay.
func tunablesProvider(path, envForwardURL string) service.TunablesProvider {
	if path == "" {
		defaults := config.DefaultTunables()
		defaults.ForwardURL = envForwardURL
		return func() *config.Tunables { return defaults }
	}

	watcher, err := config.NewWatcher(path, func(_ *config.Tunables, err error) {
		if err != nil {
			slog.Error("Failed to reload tunables", "error", err)
		}
	})
	if err != nil {
		slog.Error("Failed to load tunables overlay", "path", path, "error", err)
		return nil
	}

	slog.Info("Tunables overlay loaded", "path", path)
	return func() *config.Tunables {
		tun := watcher.Snapshot()
		if tun.ForwardURL == "" && envForwardURL != "" {
			clone := *tun
			clone.ForwardURL = envForwardURL
			return &clone
		}
		return tun
	}
}
