package backend

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRunner struct {
	name     string
	args     []string
	stdin    string
	deadline bool
	stdout   []byte
	err      error
}

func (r *recordingRunner) Run(ctx context.Context, name string, args []string, stdin io.Reader) ([]byte, []byte, error) {
	r.name = name
	r.args = args
	_, r.deadline = ctx.Deadline()
	if stdin != nil {
		data, _ := io.ReadAll(stdin)
		r.stdin = string(data)
	}
	return r.stdout, nil, r.err
}

func TestExecutor_Execute(t *testing.T) {
	runner := &recordingRunner{stdout: []byte("done")}
	executor := NewExecutorWithRunner("/opt/piper", 5*time.Second, runner)

	stdout, _, err := executor.Execute(context.Background(), []string{"--model", "voice.onnx"}, strings.NewReader("bonjour"))
	require.NoError(t, err)

	assert.Equal(t, []byte("done"), stdout)
	assert.Equal(t, "/opt/piper", runner.name)
	assert.Equal(t, []string{"--model", "voice.onnx"}, runner.args)
	assert.Equal(t, "bonjour", runner.stdin)
	assert.True(t, runner.deadline, "execution context must carry the timeout")
}

func TestNewExecutor_MissingBinary(t *testing.T) {
	_, err := NewExecutor("/definitely/not/here", time.Second)
	assert.Error(t, err)
}

func TestResolveDevice(t *testing.T) {
	assert.Equal(t, "cpu", ResolveDevice("cpu"))
	assert.Equal(t, "cuda", ResolveDevice("cuda"))

	resolved := ResolveDevice("auto")
	assert.Contains(t, []string{"cpu", "cuda"}, resolved)
}

func TestResolveComputeType(t *testing.T) {
	assert.Equal(t, "int8", ResolveComputeType("cpu", "int8"))
	assert.Equal(t, "float32", ResolveComputeType("cpu", ""))
	assert.Equal(t, "float16", ResolveComputeType("cuda", ""))
}
