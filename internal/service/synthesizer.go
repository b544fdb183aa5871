package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ekisa-team/scribe/internal/config"
)

// VoiceSynthesizer is the text-to-speech capability.
type VoiceSynthesizer interface {
	Synthesize(ctx context.Context, text, modelPath string, parameters map[string]any) ([]byte, error)
}

// Synthesizer resolves a language to a configured voice and renders text
// to WAV audio.
type Synthesizer struct {
	backend  VoiceSynthesizer
	tunables TunablesProvider
}

// NewSynthesizer creates a Synthesizer.
func NewSynthesizer(backend VoiceSynthesizer, tunables TunablesProvider) *Synthesizer {
	return &Synthesizer{
		backend:  backend,
		tunables: tunables,
	}
}

// Synthesize renders text with the voice for language. An empty language
// picks the configured default; an explicit voice name bypasses the
// language mapping.
func (s *Synthesizer) Synthesize(ctx context.Context, text, language, voice string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	cfg, err := s.resolveVoice(language, voice)
	if err != nil {
		return nil, err
	}

	audio, err := s.backend.Synthesize(ctx, text, cfg.Model, cfg.Parameters)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInference, err)
	}

	return audio, nil
}

// resolveVoice picks the voice config: explicit voice name first, then
// the language mapping, then the default language.
func (s *Synthesizer) resolveVoice(language, voice string) (*config.VoiceConfig, error) {
	tun := s.tunables()
	if tun == nil || len(tun.TTS.Voices) == 0 {
		return nil, fmt.Errorf("%w: %q (no voices configured)", ErrUnknownVoice, language)
	}

	if voice != "" {
		if cfg, ok := tun.TTS.Voices[voice]; ok {
			return &cfg, nil
		}
		return nil, fmt.Errorf("%w: %q", ErrUnknownVoice, voice)
	}

	key := strings.ToLower(strings.TrimSpace(language))
	if key == "" {
		key = tun.TTS.DefaultLanguage
	}

	if cfg, ok := tun.TTS.Voices[key]; ok {
		return &cfg, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownVoice, key)
}

// Voices lists the configured voice names, for error guidance.
func (s *Synthesizer) Voices() []string {
	tun := s.tunables()
	if tun == nil {
		return nil
	}

	voices := make([]string, 0, len(tun.TTS.Voices))
	for name := range tun.TTS.Voices {
		voices = append(voices, name)
	}
	sort.Strings(voices)
	return voices
}
