// Package combine merges ordered per-chunk audio files into one final
// artifact. The actual audio manipulation is delegated to ffmpeg; this
// package only drives it.
package combine

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Combiner merges the ordered inputs into a single output file.
type Combiner interface {
	Combine(ctx context.Context, inputs []string, output string) error
}

// CheckFFmpegAvailable checks if ffmpeg is available in the system PATH.
// Called at startup so multi-chunk runs fail before any network work.
func CheckFFmpegAvailable() error {
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return fmt.Errorf("ffmpeg not found in PATH: combining chunked audio requires it. Install FFmpeg with: brew install ffmpeg (macOS) or apt install ffmpeg (Linux)")
	}
	log.Debug().Str("path", path).Msg("ffmpeg found")
	return nil
}

// FFmpeg concatenates audio files with ffmpeg's concat demuxer, copying the
// streams without re-encoding. All inputs must share one format, which holds
// here because every chunk of a file is synthesized with the same settings.
type FFmpeg struct{}

func (FFmpeg) Combine(ctx context.Context, inputs []string, output string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("no input files to combine")
	}

	listPath, err := writeConcatList(inputs)
	if err != nil {
		return err
	}
	defer os.Remove(listPath)

	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		output,
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		log.Warn().
			Err(err).
			Str("output", output).
			Str("ffmpeg_output", string(out)).
			Dur("duration", time.Since(start)).
			Msg("FFmpeg concat failed")
		return fmt.Errorf("ffmpeg concat failed: %w\nOutput: %s", err, string(out))
	}

	log.Debug().
		Int("inputs", len(inputs)).
		Str("output", output).
		Dur("duration", time.Since(start)).
		Msg("Combined audio chunks")
	return nil
}

// writeConcatList writes the concat demuxer file listing the inputs in order.
func writeConcatList(inputs []string) (string, error) {
	list, err := os.CreateTemp(filepath.Dir(inputs[0]), "concat-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create concat list: %w", err)
	}

	var b strings.Builder
	for _, input := range inputs {
		abs, err := filepath.Abs(input)
		if err != nil {
			list.Close()
			os.Remove(list.Name())
			return "", fmt.Errorf("failed to resolve input path: %w", err)
		}
		// Single quotes inside a quoted concat entry are escaped as '\''.
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(abs, "'", `'\''`))
	}

	if _, err := list.WriteString(b.String()); err != nil {
		list.Close()
		os.Remove(list.Name())
		return "", fmt.Errorf("failed to write concat list: %w", err)
	}
	if err := list.Close(); err != nil {
		os.Remove(list.Name())
		return "", fmt.Errorf("failed to close concat list: %w", err)
	}
	return list.Name(), nil
}
