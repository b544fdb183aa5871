package stt

// SegmentStream is a lazy, finite, single-pass sequence of raw segments as
// produced by a recognition backend. Next returns (nil, nil) once the
// stream is exhausted. Streams may be abandoned before exhaustion.
type SegmentStream interface {
	Next() (*Segment, error)
}

// sliceStream yields segments from an in-memory slice.
type sliceStream struct {
	segments []Segment
	pos      int
}

// Segments wraps an already materialized slice in a SegmentStream.
func Segments(segments []Segment) SegmentStream {
	return &sliceStream{segments: segments}
}

func (s *sliceStream) Next() (*Segment, error) {
	if s.pos >= len(s.segments) {
		return nil, nil
	}

	seg := &s.segments[s.pos]
	s.pos++
	return seg, nil
}
