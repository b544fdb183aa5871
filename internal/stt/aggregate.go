package stt

import (
	"fmt"
	"strings"
)

// Aggregate consumes a segment stream exactly once and assembles the final
// result. Segments whose trimmed text is empty are dropped: they contribute
// no lines and no counts. Word and character counts cover retained segments
// only. When wordTimestamps is set, word entries with empty trimmed text
// are filtered the same way, one level down.
func Aggregate(stream SegmentStream, info *Info, wordTimestamps bool) (*Result, error) {
	result := &Result{
		Segments: []Segment{},
	}

	if info != nil {
		result.Language = info.Language
		result.LanguageProbability = info.LanguageProbability
	}

	for {
		raw, err := stream.Next()
		if err != nil {
			return nil, fmt.Errorf("stt: segment stream failed: %w", err)
		}
		if raw == nil {
			break
		}

		text := strings.TrimSpace(raw.Text)
		if text == "" {
			continue
		}

		result.WordCount += len(strings.Fields(text))
		result.CharCount += len([]rune(text))

		segment := Segment{
			Start: raw.Start,
			End:   raw.End,
			Text:  text,
		}

		if wordTimestamps && len(raw.Words) > 0 {
			words := make([]Word, 0, len(raw.Words))
			for _, w := range raw.Words {
				if strings.TrimSpace(w.Word) == "" {
					continue
				}
				words = append(words, w)
			}
			segment.Words = words
		}

		result.Segments = append(result.Segments, segment)
	}

	result.SegmentCount = len(result.Segments)
	return result, nil
}
