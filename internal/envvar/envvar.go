package envvar

const (
	// ScribeEnv is the environment variable used to determine the environment
	ScribeEnv = "SCRIBE_ENV"

	// ScribeServerHTTPPort is the environment variable used to determine the HTTP port
	ScribeServerHTTPPort = "SCRIBE_SERVER_HTTP_PORT"

	// ScribeModelRoot is the environment variable pointing at the model artifact root
	ScribeModelRoot = "SCRIBE_MODEL_ROOT"

	// ScribeDefaultModel is the environment variable naming the default model alias
	ScribeDefaultModel = "SCRIBE_DEFAULT_MODEL"

	// ScribeModel is the environment variable overriding the full default model path
	ScribeModel = "SCRIBE_MODEL"

	// ScribeDevice is the environment variable forcing the execution device (auto/cpu/cuda)
	ScribeDevice = "SCRIBE_DEVICE"

	// ScribeComputeType is the environment variable overriding the compute precision
	ScribeComputeType = "SCRIBE_COMPUTE_TYPE"

	// ScribeForwardURL is the environment variable with an optional URL results are relayed to
	ScribeForwardURL = "SCRIBE_FORWARD_URL"

	// ScribeWhisperServerBin is the environment variable locating the whisper-server binary
	ScribeWhisperServerBin = "SCRIBE_WHISPER_SERVER_BIN"

	// ScribePiperBin is the environment variable locating the piper binary
	ScribePiperBin = "SCRIBE_PIPER_BIN"
)
