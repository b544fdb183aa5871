package whispercpp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekisa-team/scribe/internal/backend"
	"github.com/ekisa-team/scribe/internal/stt"
)

// sidecarStub plays the role of a whisper-server that cannot handle
// overlapping inference requests against one loaded model.
func sidecarStub(t *testing.T, inflight *atomic.Int32, overlapped *atomic.Bool) int {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if inflight.Add(1) > 1 {
			overlapped.Store(true)
		}
		defer inflight.Add(-1)

		time.Sleep(10 * time.Millisecond)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"language":"en","segments":[{"id":0,"start":0,"end":1,"text":"ok"}]}`))
	}))
	t.Cleanup(srv.Close)

	parsed, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(parsed.Port())
	require.NoError(t, err)

	return port
}

func TestTranscribe_SerializesPerInstance(t *testing.T) {
	var inflight atomic.Int32
	var overlapped atomic.Bool
	port := sidecarStub(t, &inflight, &overlapped)

	rec := New("whisper-server", "cpu", "")
	in := &instance{recognizer: rec, port: port, modelPath: "m"}

	audio := filepath.Join(t.TempDir(), "clip.wav")
	require.NoError(t, os.WriteFile(audio, []byte("pcm"), 0o644))

	const callers = 8

	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, errs[i] = in.Transcribe(context.Background(), audio, stt.DefaultOptions())
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.False(t, overlapped.Load(), "inference calls against one instance must not overlap")
}

func TestTranscribe_ClosedInstance(t *testing.T) {
	rec := New("whisper-server", "cpu", "")
	in := &instance{recognizer: rec, port: 1, modelPath: "m", closed: true}

	_, _, err := in.Transcribe(context.Background(), "nope.wav", stt.DefaultOptions())
	assert.ErrorIs(t, err, backend.ErrInstanceClosed)
}
