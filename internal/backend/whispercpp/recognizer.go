// Package whispercpp implements the speech-to-text capability on top of a
// whisper-server sidecar process, one per loaded model.
package whispercpp

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ekisa-team/scribe/internal/backend"
)

const (
	// RecognizerName identifies this capability in server keys and logs.
	RecognizerName = "whisper.cpp"

	// basePort is the first sidecar port; each loaded model gets the next one.
	basePort = 8090
)

// Recognizer starts one whisper-server process per loaded model artifact
// and answers inference over its HTTP API.
type Recognizer struct {
	binPath     string
	servers     *backend.ServerManager
	client      *http.Client
	device      string
	computeType string
}

// New creates a Recognizer. The device preference and compute override are
// resolved once here; every instance loaded through this Recognizer shares
// them.
func New(binPath, devicePreference, computeOverride string) *Recognizer {
	device := backend.ResolveDevice(devicePreference)

	return &Recognizer{
		binPath:     binPath,
		servers:     backend.NewServerManager(basePort),
		device:      device,
		computeType: backend.ResolveComputeType(device, computeOverride),
		client: &http.Client{
			Timeout: 5 * time.Minute, // Transcription can take longer
		},
	}
}

// Device implements backend.Recognizer.
func (r *Recognizer) Device() string {
	return r.device
}

// ComputeType implements backend.Recognizer.
func (r *Recognizer) ComputeType() string {
	return r.computeType
}

// Load implements backend.Recognizer: it locates the model weights inside
// the artifact directory, starts a sidecar on a dedicated port and waits
// until it is ready. The returned instance owns the sidecar.
func (r *Recognizer) Load(ctx context.Context, path string) (backend.Instance, error) {
	modelFile, err := resolveModelFile(path)
	if err != nil {
		return nil, fmt.Errorf("whispercpp: %w", err)
	}

	port := r.servers.NextPort()

	args := []string{
		"--model", modelFile,
		"--port", fmt.Sprintf("%d", port),
		"--host", "127.0.0.1",
	}
	if r.device == "cpu" {
		args = append(args, "--no-gpu")
	}

	if err := r.servers.StartServer(backend.ServerConfig{
		Name:       RecognizerName,
		BinPath:    r.binPath,
		Args:       args,
		Port:       port,
		HealthPath: "/", // whisper-server has no dedicated health endpoint
	}); err != nil {
		return nil, fmt.Errorf("whispercpp: failed to start sidecar: %w", err)
	}

	return &instance{
		recognizer: r,
		port:       port,
		modelPath:  path,
	}, nil
}

// Close implements backend.Recognizer.
func (r *Recognizer) Close() error {
	r.servers.StopAll()
	return nil
}

// resolveModelFile locates the weights file inside a model artifact
// directory. A path that is already a file is used verbatim.
func resolveModelFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("model artifact not found: %w", err)
	}
	if !info.IsDir() {
		return path, nil
	}

	for _, pattern := range []string{"*.bin", "*.gguf"} {
		matches, err := filepath.Glob(filepath.Join(path, pattern))
		if err != nil {
			return "", err
		}
		if len(matches) > 0 {
			return matches[0], nil
		}
	}

	return "", fmt.Errorf("no model weights (*.bin, *.gguf) under %s", path)
}
