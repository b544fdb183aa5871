// Package backend defines the inference capability consumed by the
// transcription service and the process plumbing shared by its
// implementations. Model files themselves are opaque to this layer.
package backend

import (
	"context"
	"os/exec"

	"github.com/ekisa-team/scribe/internal/stt"
)

// Recognizer is the speech-to-text capability: it turns a model artifact
// path into a loaded Instance. Device and compute precision are fixed per
// Recognizer, so one Recognizer maps to one cache key dimension.
type Recognizer interface {
	// Load loads the model artifact at path. Loading is expensive
	// (tens of seconds for large models) and must only happen once per
	// artifact; callers are expected to cache the returned Instance.
	Load(ctx context.Context, path string) (Instance, error)

	// Device returns the resolved execution device (cpu or cuda).
	Device() string

	// ComputeType returns the resolved numeric precision.
	ComputeType() string

	// Close releases all resources held by loaded instances.
	Close() error
}

// Instance is one loaded model. Implementations must tolerate concurrent
// Transcribe calls; serializing internally is acceptable.
type Instance interface {
	// Transcribe runs blocking inference over the audio file at
	// audioPath and returns a lazy segment stream plus run metadata.
	Transcribe(ctx context.Context, audioPath string, opts stt.Options) (stt.SegmentStream, *stt.Info, error)

	// Close releases the instance.
	Close() error
}

// ResolveDevice maps the device preference to a concrete device. "auto"
// picks cuda when an NVIDIA driver is reachable, cpu otherwise.
func ResolveDevice(preference string) string {
	if preference != "" && preference != "auto" {
		return preference
	}

	if _, err := exec.LookPath("nvidia-smi"); err == nil {
		return "cuda"
	}
	return "cpu"
}

// ResolveComputeType maps a device plus optional override to a concrete
// precision: float32 on cpu, float16 on gpu.
func ResolveComputeType(device, override string) string {
	if override != "" {
		return override
	}
	if device == "cpu" {
		return "float32"
	}
	return "float16"
}
