package config

import "runtime"

const (
	// DefaultModelRoot is where models are discovered when SCRIBE_MODEL_ROOT is unset.
	DefaultModelRoot = "./models/stt"

	// DefaultModelName is the default model alias when SCRIBE_DEFAULT_MODEL is unset.
	DefaultModelName = "whisper-medium"

	// DefaultHTTPPort is the port the HTTP server binds when unset.
	DefaultHTTPPort = 8000

	// DefaultHistorySize bounds the response history buffer.
	DefaultHistorySize = 20

	// DefaultBeamSize is the decoder beam width used when not overridden.
	DefaultBeamSize = 5

	// DefaultBestOf is the number of decoding candidates kept.
	DefaultBestOf = 5

	// DefaultTTSLanguage selects the voice when a synthesis request names none.
	DefaultTTSLanguage = "fr"
)

// DefaultMaxWorkers bounds concurrent inference calls.
var DefaultMaxWorkers = runtime.NumCPU()
