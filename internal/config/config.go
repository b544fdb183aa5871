// Package config resolves process settings from the environment and an
// optional YAML overlay for runtime tunables.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/ekisa-team/scribe/internal/envvar"
	"github.com/ekisa-team/scribe/internal/xfs"
)

// Settings holds deployment-shaped configuration. These values are read
// once at startup from the environment; changing them requires a restart.
type Settings struct {
	// ModelRoot is the directory whose immediate subdirectories are
	// candidate speech-to-text models.
	ModelRoot string

	// DefaultModelName is the alias of the mandatory default model.
	DefaultModelName string

	// DefaultModelPath is the resolved path of the default model artifact.
	DefaultModelPath string

	// Device is the execution device preference: auto, cpu or cuda.
	Device string

	// ComputeType overrides the numeric precision (int8, float16, ...).
	// Empty means resolve from the device.
	ComputeType string

	// HTTPPort is the port the HTTP server listens on.
	HTTPPort int

	// ForwardURL, when non-empty, is where transcription results are
	// relayed after completion. The YAML overlay takes precedence.
	ForwardURL string

	// WhisperServerBin is the path of the whisper-server binary.
	WhisperServerBin string

	// PiperBin is the path of the piper binary.
	PiperBin string
}

// FromEnv builds Settings from the process environment, applying defaults
// for anything unset.
func FromEnv() Settings {
	root := xfs.Resolve(getenv(envvar.ScribeModelRoot, DefaultModelRoot))
	name := getenv(envvar.ScribeDefaultModel, DefaultModelName)

	path := os.Getenv(envvar.ScribeModel)
	if path == "" {
		path = filepath.Join(root, name)
	}

	return Settings{
		ModelRoot:        root,
		DefaultModelName: name,
		DefaultModelPath: xfs.Resolve(path),
		Device:           getenv(envvar.ScribeDevice, "auto"),
		ComputeType:      os.Getenv(envvar.ScribeComputeType),
		HTTPPort:         getenvInt(envvar.ScribeServerHTTPPort, DefaultHTTPPort),
		ForwardURL:       os.Getenv(envvar.ScribeForwardURL),
		WhisperServerBin: getenv(envvar.ScribeWhisperServerBin, "whisper-server"),
		PiperBin:         getenv(envvar.ScribePiperBin, "piper"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
