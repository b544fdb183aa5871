// Package stt holds the transcription data model shared by backends,
// services and handlers.
package stt

import "strings"

// Word is a single recognized word with its timing.
type Word struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Word  string  `json:"word"`
}

// Segment is a recognized span of speech. Words is only populated when
// word-level timing was requested and the backend produced it.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

// Info is the capability-level summary metadata of one transcription run.
type Info struct {
	Language            string  `json:"language,omitempty"`
	LanguageProbability float64 `json:"language_probability,omitempty"`
}

// Result is the aggregated outcome of one transcription request.
type Result struct {
	Segments            []Segment `json:"segments"`
	Language            string    `json:"language,omitempty"`
	LanguageProbability float64   `json:"language_probability,omitempty"`
	WordCount           int       `json:"word_count"`
	CharCount           int       `json:"char_count"`
	SegmentCount        int       `json:"segment_count"`
}

// Text joins the retained segment texts with newlines.
func (r *Result) Text() string {
	lines := make([]string, 0, len(r.Segments))
	for _, seg := range r.Segments {
		lines = append(lines, seg.Text)
	}
	return strings.Join(lines, "\n")
}

// Options are per-request transcription parameters.
type Options struct {
	// Language is an ISO language code; empty enables auto-detection.
	Language string

	// VAD enables voice-activity filtering with a fixed 500ms
	// minimum-silence threshold.
	VAD bool

	// WordTimestamps requests word-level timing on each segment.
	WordTimestamps bool

	BeamSize    int
	Temperature float64
	BestOf      int
}

// MinSilenceMs is the voice-activity minimum-silence threshold applied
// when Options.VAD is set.
const MinSilenceMs = 500

// DefaultOptions returns the decoding defaults used when a request does
// not override them.
func DefaultOptions() Options {
	return Options{
		BeamSize:    5,
		Temperature: 0.0,
		BestOf:      5,
	}
}
