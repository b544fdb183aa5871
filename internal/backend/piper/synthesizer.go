// Package piper implements text-to-speech synthesis via the piper CLI.
package piper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ekisa-team/scribe/internal/backend"
	"github.com/ekisa-team/scribe/internal/mapsafe"
)

// Synthesizer turns text into WAV audio by invoking piper once per call.
// Piper keeps no state between invocations, so there is nothing to cache.
type Synthesizer struct {
	executor *backend.Executor
	tempDir  string
}

// New creates a Synthesizer for the piper binary at binPath.
func New(binPath string) (*Synthesizer, error) {
	executor, err := backend.NewExecutor(binPath, 30*time.Second)
	if err != nil {
		return nil, err
	}

	return &Synthesizer{
		executor: executor,
		tempDir:  os.TempDir(),
	}, nil
}

// Synthesize renders text with the voice model at modelPath and returns
// the WAV bytes. parameters carries optional voice-specific knobs.
func (s *Synthesizer) Synthesize(ctx context.Context, text, modelPath string, parameters map[string]any) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("piper: text to synthesize is empty")
	}

	// Piper outputs to a file; this is a limitation of its CLI interface.
	outputFile := filepath.Join(s.tempDir, fmt.Sprintf("piper_%s.wav", uuid.NewString()))
	defer os.Remove(outputFile)

	args := buildArgs(modelPath, outputFile, parameters)

	// Piper reads text from stdin
	_, stderr, err := s.executor.Execute(ctx, args, strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("piper: execution failed: %w\nstderr: %s", err, stderr)
	}

	audioData, err := os.ReadFile(outputFile)
	if err != nil {
		return nil, fmt.Errorf("piper: failed to read audio file: %w", err)
	}

	return audioData, nil
}

// buildArgs builds piper command-line arguments.
func buildArgs(modelPath, outputFile string, parameters map[string]any) []string {
	args := []string{
		"--model", modelPath,
		"--output_file", outputFile,
	}

	if parameters == nil {
		return args
	}

	if v := mapsafe.Get(parameters, "speaker_id", -1); v >= 0 {
		args = append(args, "--speaker", fmt.Sprintf("%d", v))
	}

	if v := mapsafe.Get(parameters, "length_scale", 0.0); v > 0 {
		args = append(args, "--length_scale", fmt.Sprintf("%.2f", v))
	}

	if v := mapsafe.Get(parameters, "noise_scale", 0.0); v > 0 {
		args = append(args, "--noise_scale", fmt.Sprintf("%.2f", v))
	}

	if v := mapsafe.Get(parameters, "noise_w", 0.0); v > 0 {
		args = append(args, "--noise_w", fmt.Sprintf("%.2f", v))
	}

	if v := mapsafe.Get(parameters, "sentence_silence", 0.0); v > 0 {
		args = append(args, "--sentence_silence", fmt.Sprintf("%.2f", v))
	}

	return args
}
