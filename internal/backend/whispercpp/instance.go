package whispercpp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/ekisa-team/scribe/internal/backend"
	"github.com/ekisa-team/scribe/internal/stt"
)

// inferenceResponse is the verbose_json payload of the whisper-server API.
type inferenceResponse struct {
	Task                        string             `json:"task,omitempty"`
	Language                    string             `json:"language,omitempty"`
	Duration                    float64            `json:"duration,omitempty"`
	Text                        string             `json:"text,omitempty"`
	Segments                    []responseSegment  `json:"segments,omitempty"`
	DetectedLanguage            string             `json:"detected_language,omitempty"`
	DetectedLanguageProbability float64            `json:"detected_language_probability,omitempty"`
	LanguageProbabilities       map[string]float64 `json:"language_probabilities,omitempty"`
}

// responseSegment is a single segment in the verbose_json payload.
type responseSegment struct {
	ID           int            `json:"id"`
	Text         string         `json:"text"`
	Start        float64        `json:"start"`
	End          float64        `json:"end"`
	Words        []responseWord `json:"words,omitempty"`
	Temperature  float64        `json:"temperature,omitempty"`
	AvgLogprob   float64        `json:"avg_logprob,omitempty"`
	NoSpeechProb float64        `json:"no_speech_prob,omitempty"`
}

// responseWord is a word in a verbose_json segment.
type responseWord struct {
	Word        string  `json:"word"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Probability float64 `json:"probability,omitempty"`
}

// instance is one loaded model served by a dedicated sidecar. The sidecar
// is not guaranteed to tolerate concurrent requests against one loaded
// model, so inference calls are serialized per instance.
type instance struct {
	recognizer *Recognizer
	modelPath  string
	port       int
	mu         sync.Mutex
	closed     bool
}

// Transcribe implements backend.Instance.
func (in *instance) Transcribe(ctx context.Context, audioPath string, opts stt.Options) (stt.SegmentStream, *stt.Info, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.closed {
		return nil, nil, backend.ErrInstanceClosed
	}

	audioData, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, nil, fmt.Errorf("whispercpp: failed to read staged audio: %w", err)
	}

	var requestBody bytes.Buffer
	writer := multipart.NewWriter(&requestBody)

	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, nil, fmt.Errorf("whispercpp: failed to create form file: %w", err)
	}
	if _, err := part.Write(audioData); err != nil {
		return nil, nil, fmt.Errorf("whispercpp: failed to write audio data: %w", err)
	}

	if err := writeInferenceParams(writer, opts); err != nil {
		return nil, nil, fmt.Errorf("whispercpp: failed to add parameters: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, nil, fmt.Errorf("whispercpp: failed to close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx,
		http.MethodPost,
		fmt.Sprintf("http://localhost:%d/inference", in.port),
		&requestBody,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("whispercpp: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := in.recognizer.client.Do(httpReq)
	if err != nil {
		return nil, nil, fmt.Errorf("whispercpp: failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, nil, fmt.Errorf("whispercpp: failed to read error body: %w", readErr)
		}
		return nil, nil, fmt.Errorf("whispercpp: request failed with status code %d: %s", resp.StatusCode, body)
	}

	var decoded inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, nil, fmt.Errorf("whispercpp: failed to decode response: %w", err)
	}

	return stt.Segments(mapSegments(decoded.Segments)), mapInfo(&decoded), nil
}

// Close stops the sidecar serving this instance.
func (in *instance) Close() error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.closed {
		return nil
	}
	in.closed = true

	return in.recognizer.servers.StopServer(RecognizerName, in.port)
}

// writeInferenceParams adds the decoding parameters to the multipart form.
func writeInferenceParams(w *multipart.Writer, opts stt.Options) error {
	params := map[string]string{
		"response_format": "verbose_json",
		"temperature":     fmt.Sprintf("%.2f", opts.Temperature),
	}

	if opts.Language != "" {
		params["language"] = opts.Language
	}

	if opts.BeamSize > 0 {
		params["beam_size"] = fmt.Sprintf("%d", opts.BeamSize)
	}

	if opts.BestOf > 0 {
		params["best_of"] = fmt.Sprintf("%d", opts.BestOf)
	}

	if opts.VAD {
		params["vad_filter"] = "true"
		params["vad_min_silence_duration_ms"] = fmt.Sprintf("%d", stt.MinSilenceMs)
	}

	if opts.WordTimestamps {
		params["word_timestamps"] = "true"
	}

	for key, value := range params {
		if err := w.WriteField(key, value); err != nil {
			return fmt.Errorf("failed to write field %s: %w", key, err)
		}
	}

	return nil
}

// mapSegments converts the wire segments into the shared data model.
func mapSegments(raw []responseSegment) []stt.Segment {
	segments := make([]stt.Segment, 0, len(raw))
	for _, seg := range raw {
		mapped := stt.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		}
		for _, w := range seg.Words {
			mapped.Words = append(mapped.Words, stt.Word{
				Start: w.Start,
				End:   w.End,
				Word:  w.Word,
			})
		}
		segments = append(segments, mapped)
	}
	return segments
}

// mapInfo derives the run summary. Detected language wins over the task
// language when the sidecar performed detection.
func mapInfo(resp *inferenceResponse) *stt.Info {
	info := &stt.Info{
		Language:            resp.Language,
		LanguageProbability: resp.DetectedLanguageProbability,
	}
	if resp.DetectedLanguage != "" {
		info.Language = resp.DetectedLanguage
	}
	return info
}
