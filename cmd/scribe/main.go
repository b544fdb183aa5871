// scribe transcribes a single audio or video file to text from the
// command line, without going through the HTTP server.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ekisa-team/scribe/internal/backend/whispercpp"
	"github.com/ekisa-team/scribe/internal/config"
	"github.com/ekisa-team/scribe/internal/envvar"
	"github.com/ekisa-team/scribe/internal/stt"
)

var (
	flagOutput         string
	flagModel          string
	flagDevice         string
	flagComputeType    string
	flagLanguage       string
	flagVAD            bool
	flagWordTimestamps bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "scribe <audio>",
		Short: "Transcribe an audio/video file to text (local, offline)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return run(cmd.Context(), args[0])
		},
	}

	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output text file (default: <audio>.txt)")
	rootCmd.Flags().StringVarP(&flagModel, "model", "m",
		filepath.Join(config.DefaultModelRoot, config.DefaultModelName),
		"Path to a model directory")
	rootCmd.Flags().StringVar(&flagDevice, "device", "auto", "Execution device: auto, cpu or cuda")
	rootCmd.Flags().StringVar(&flagComputeType, "compute-type", "", "Numeric precision (int8, float16, float32, ...)")
	rootCmd.Flags().StringVar(&flagLanguage, "language", "", "Language code (fr, en, ...); empty auto-detects")
	rootCmd.Flags().BoolVar(&flagVAD, "vad", false, "Voice-activity filtering to suppress silence and noise")
	rootCmd.Flags().BoolVar(&flagWordTimestamps, "word-timestamps", false, "Word-level timestamps (slower)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, audioPath string) error {
	if _, err := os.Stat(audioPath); err != nil {
		return fmt.Errorf("audio file not found: %s", audioPath)
	}

	outPath := flagOutput
	if outPath == "" {
		outPath = strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".txt"
	}

	bin := os.Getenv(envvar.ScribeWhisperServerBin)
	if bin == "" {
		bin = "whisper-server"
	}

	recognizer := whispercpp.New(bin, flagDevice, flagComputeType)
	defer recognizer.Close()

	start := time.Now()
	fmt.Printf("[%s] Transcribing %q with model %q on %s (%s)\n",
		start.Format("2006-01-02 15:04:05"), audioPath, flagModel,
		recognizer.Device(), recognizer.ComputeType())

	instance, err := recognizer.Load(ctx, flagModel)
	if err != nil {
		return fmt.Errorf("failed to load model: %w", err)
	}
	defer instance.Close()

	opts := stt.DefaultOptions()
	opts.Language = flagLanguage
	opts.VAD = flagVAD
	opts.WordTimestamps = flagWordTimestamps

	stream, info, err := instance.Transcribe(ctx, audioPath, opts)
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}

	result, err := stt.Aggregate(stream, info, flagWordTimestamps)
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}

	if err := writeTranscription(result, outPath); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	elapsed := time.Since(start)
	fmt.Printf("[%s] Done: %s | segments=%d | words=%d | chars=%d | took=%.1fs\n",
		time.Now().Format("2006-01-02 15:04:05"), outPath,
		result.SegmentCount, result.WordCount, result.CharCount, elapsed.Seconds())

	return nil
}

// writeTranscription writes the joined text, with a trailing newline when
// there is any content at all.
func writeTranscription(result *stt.Result, destination string) error {
	if dir := filepath.Dir(destination); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	content := result.Text()
	if len(result.Segments) > 0 {
		content += "\n"
	}

	return os.WriteFile(destination, []byte(content), 0o644)
}
