package config

// Tunables holds runtime-adjustable configuration loaded from the optional
// YAML overlay. Unlike Settings, tunables are hot-reloaded by the Watcher;
// model root and default model changes still require a restart because the
// registry is immutable once discovered.
type Tunables struct {
	Version     string           `json:"version"                yaml:"version"`
	HistorySize int              `json:"history_size,omitempty" yaml:"history_size,omitempty"`
	ForwardURL  string           `json:"forward_url,omitempty"  yaml:"forward_url,omitempty"`
	MaxWorkers  int              `json:"max_workers,omitempty"  yaml:"max_workers,omitempty"`
	Transcribe  TranscribeConfig `json:"transcribe,omitempty"   yaml:"transcribe,omitempty"`
	TTS         TTSConfig        `json:"tts,omitempty"          yaml:"tts,omitempty"`
}

// TranscribeConfig holds default decoding parameters for transcription.
type TranscribeConfig struct {
	BeamSize    int     `json:"beam_size,omitempty"   yaml:"beam_size,omitempty"`
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	BestOf      int     `json:"best_of,omitempty"     yaml:"best_of,omitempty"`
}

// TTSConfig holds the text-to-speech voice catalog.
type TTSConfig struct {
	DefaultLanguage string                 `json:"default_language,omitempty" yaml:"default_language,omitempty"`
	Voices          map[string]VoiceConfig `json:"voices,omitempty"           yaml:"voices,omitempty"`
}

// VoiceConfig describes one synthesizer voice.
type VoiceConfig struct {
	Model      string         `json:"model"                yaml:"model"`
	Parameters map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// DefaultTunables returns the tunables used when no overlay file exists.
func DefaultTunables() *Tunables {
	return &Tunables{
		Version:     "1",
		HistorySize: DefaultHistorySize,
		MaxWorkers:  DefaultMaxWorkers,
		Transcribe: TranscribeConfig{
			BeamSize:    DefaultBeamSize,
			Temperature: 0.0,
			BestOf:      DefaultBestOf,
		},
		TTS: TTSConfig{
			DefaultLanguage: DefaultTTSLanguage,
		},
	}
}

// applyDefaults fills zero-valued tunables with their defaults so a sparse
// overlay file does not disable anything.
func (t *Tunables) applyDefaults() {
	if t.HistorySize <= 0 {
		t.HistorySize = DefaultHistorySize
	}
	if t.MaxWorkers <= 0 {
		t.MaxWorkers = DefaultMaxWorkers
	}
	if t.Transcribe.BeamSize <= 0 {
		t.Transcribe.BeamSize = DefaultBeamSize
	}
	if t.Transcribe.BestOf <= 0 {
		t.Transcribe.BestOf = DefaultBestOf
	}
	if t.TTS.DefaultLanguage == "" {
		t.TTS.DefaultLanguage = DefaultTTSLanguage
	}
}
