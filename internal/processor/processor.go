// Package processor runs the whole pipeline for one input file: read,
// optionally clean, chunk, synthesize or transcribe with pacing between
// requests, and assemble the final artifact.
//
// Failures never propagate out of the processor. Every outcome, including
// filesystem errors and exhausted retries, is absorbed into a Result so the
// batch orchestrator can keep going.
package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"audiobatch/internal/api"
	"audiobatch/internal/chunker"
	"audiobatch/internal/cleaner"
	"audiobatch/internal/combine"
	"audiobatch/internal/config"
	"audiobatch/internal/pacing"
)

// SpeechSynthesizer is the slice of the API client the TTS path needs.
type SpeechSynthesizer interface {
	Speech(ctx context.Context, req api.SpeechRequest) ([]byte, error)
}

// Transcriber is the slice of the API client the transcription path needs.
type Transcriber interface {
	Transcribe(ctx context.Context, req api.TranscribeRequest) (*api.Transcription, error)
}

// Result is the outcome of processing one file.
type Result struct {
	OK  bool
	Err error
}

// Detail returns the error description of a failed Result, or "".
func (r Result) Detail() string {
	if r.Err != nil {
		return r.Err.Error()
	}
	return ""
}

func success() Result { return Result{OK: true} }

func failure(err error) Result { return Result{Err: err} }

// Deps are the collaborators a Processor works through. Speech and
// Transcriber are required for their respective pipelines; Cleaner is
// optional; zero-value Combiner and Limiter get working defaults.
type Deps struct {
	Speech      SpeechSynthesizer
	Transcriber Transcriber
	Cleaner     cleaner.Cleaner
	Combiner    combine.Combiner
	Limiter     *pacing.Limiter
}

// Processor processes single input files under one immutable configuration.
type Processor struct {
	cfg         *config.Config
	speech      SpeechSynthesizer
	transcriber Transcriber
	cleaner     cleaner.Cleaner
	combiner    combine.Combiner
	limiter     *pacing.Limiter
}

// New creates a Processor for the given configuration.
func New(cfg *config.Config, deps Deps) *Processor {
	limiter := deps.Limiter
	if limiter == nil {
		delay := cfg.TTS.RateLimitDelay
		if delay == 0 {
			delay = pacing.DelayFor(cfg.TTS.Model)
		}
		limiter = pacing.NewLimiter(delay)
	}
	combiner := deps.Combiner
	if combiner == nil {
		combiner = combine.FFmpeg{}
	}
	return &Processor{
		cfg:         cfg,
		speech:      deps.Speech,
		transcriber: deps.Transcriber,
		cleaner:     deps.Cleaner,
		combiner:    combiner,
		limiter:     limiter,
	}
}

// ProcessTTS converts one text file to speech. Oversized input is chunked,
// per-chunk audio goes to indexed temp files, and the temps are combined into
// the final artifact. On any terminal chunk failure all temp files created so
// far are removed before returning.
func (p *Processor) ProcessTTS(ctx context.Context, path, outputDir string) Result {
	log.Info().Str("file", path).Msg("Processing TTS file")

	data, err := os.ReadFile(path)
	if err != nil {
		return failure(fmt.Errorf("failed to read input: %w", err))
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return failure(fmt.Errorf("input file is empty: %s", path))
	}
	log.Debug().Int("length", len(text)).Msg("Read input text")

	text = p.maybeClean(ctx, text)

	outputPath, err := resolveOutputPath(path, outputDir, p.cfg.TTS.ResponseFormat)
	if err != nil {
		return failure(err)
	}

	chunks := chunker.Split(text, p.cfg.TTS.MaxChars)
	if len(chunks) == 1 {
		audio, err := p.speech.Speech(ctx, p.speechRequest(chunks[0], path))
		if err != nil {
			return failure(err)
		}
		if err := os.WriteFile(outputPath, audio, 0o644); err != nil {
			return failure(fmt.Errorf("failed to write output: %w", err))
		}
		log.Info().Str("output", outputPath).Int("bytes", len(audio)).Msg("Successfully created audio file")
		return success()
	}

	return p.processChunks(ctx, chunks, path, outputPath)
}

// maybeClean runs the optional cleaning pass, keeping the cleaned text only
// when its quality score clears the threshold. Cleaning problems never fail
// the file.
func (p *Processor) maybeClean(ctx context.Context, text string) string {
	if p.cleaner == nil {
		return text
	}

	log.Info().Msg("Cleaning text before synthesis")
	result, err := p.cleaner.Clean(ctx, text)
	if err != nil {
		log.Error().Err(err).Msg("Text cleaning failed, using original text")
		return text
	}
	if result.QualityScore <= cleaner.QualityThreshold {
		log.Warn().Float64("quality", result.QualityScore).Msg("Text cleaning quality too low, using original text")
		return text
	}
	log.Info().Float64("quality", result.QualityScore).Msg("Text cleaned successfully")
	return result.Text
}

func (p *Processor) processChunks(ctx context.Context, chunks []string, inputPath, outputPath string) Result {
	log.Info().Int("chunks", len(chunks)).Str("file", inputPath).Msg("Large input, processing in chunks")

	dir := filepath.Dir(outputPath)
	ext := filepath.Ext(outputPath)
	stem := strings.TrimSuffix(filepath.Base(outputPath), ext)

	var tempFiles []string
	removeTemps := func() {
		for _, f := range tempFiles {
			if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
				log.Warn().Err(err).Str("file", f).Msg("Failed to remove temp file")
			}
		}
	}

	for i, chunk := range chunks {
		log.Info().Int("chunk", i+1).Int("total", len(chunks)).Msg("Processing chunk")

		audio, err := p.speech.Speech(ctx, p.speechRequest(chunk, inputPath))
		if err != nil {
			removeTemps()
			return failure(fmt.Errorf("chunk %d/%d failed: %w", i+1, len(chunks), err))
		}

		tempPath := filepath.Join(dir, fmt.Sprintf("%s_temp_%d%s", stem, i, ext))
		if err := os.WriteFile(tempPath, audio, 0o644); err != nil {
			removeTemps()
			return failure(fmt.Errorf("failed to write temp file: %w", err))
		}
		tempFiles = append(tempFiles, tempPath)

		// pace between chunks, never after the last one
		if i < len(chunks)-1 {
			log.Debug().Dur("delay", p.limiter.Delay()).Msg("Waiting before next chunk")
			if err := p.limiter.Wait(ctx); err != nil {
				removeTemps()
				return failure(err)
			}
		}
	}

	if err := p.combiner.Combine(ctx, tempFiles, outputPath); err != nil {
		removeTemps()
		return failure(fmt.Errorf("failed to combine chunks: %w", err))
	}
	removeTemps()

	log.Info().Str("output", outputPath).Int("chunks", len(chunks)).Msg("Successfully created combined audio file")
	return success()
}

func (p *Processor) speechRequest(chunk, inputPath string) api.SpeechRequest {
	return api.SpeechRequest{
		Model:          p.cfg.TTS.Model,
		Voice:          p.cfg.TTS.Voice,
		ResponseFormat: p.cfg.TTS.ResponseFormat,
		Speed:          p.cfg.TTS.Speed,
		Text:           chunk,
		Filename:       filepath.Base(inputPath),
	}
}

// ProcessTranscription transcribes one audio file and writes the JSON result
// plus the extracted plain text next to it.
func (p *Processor) ProcessTranscription(ctx context.Context, path, outputDir string) Result {
	log.Info().Str("file", path).Msg("Processing transcription file")

	if _, err := os.Stat(path); err != nil {
		return failure(fmt.Errorf("input file not found: %s", path))
	}

	result, err := p.transcriber.Transcribe(ctx, api.TranscribeRequest{
		FilePath:       path,
		Model:          p.cfg.Transcription.Model,
		ResponseFormat: p.cfg.Transcription.ResponseFormat,
		Language:       p.cfg.Transcription.Language,
		Prompt:         p.cfg.Transcription.Prompt,
		Temperature:    p.cfg.Transcription.Temperature,
	})
	if err != nil {
		return failure(err)
	}

	jsonPath, err := resolveOutputPath(path, outputDir, "json")
	if err != nil {
		return failure(err)
	}
	jsonPath = withStemSuffix(jsonPath, "_transcription")

	if err := os.WriteFile(jsonPath, prettyJSON(result.Raw), 0o644); err != nil {
		return failure(fmt.Errorf("failed to write transcription result: %w", err))
	}
	log.Info().Str("output", jsonPath).Msg("Transcription completed")

	if result.Text != "" {
		textPath := strings.TrimSuffix(jsonPath, ".json") + ".txt"
		if err := os.WriteFile(textPath, []byte(result.Text), 0o644); err != nil {
			return failure(fmt.Errorf("failed to write extracted text: %w", err))
		}
		log.Info().Str("output", textPath).Msg("Text extracted")
	}

	return success()
}

// resolveOutputPath derives the artifact path by replacing the input's
// extension with the target format, in outputDir when given or next to the
// input otherwise. The directory is created if needed.
func resolveOutputPath(inputPath, outputDir, format string) (string, error) {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	name := stem + "." + format

	dir := outputDir
	if dir == "" {
		dir = filepath.Dir(inputPath)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return filepath.Join(dir, name), nil
}

// withStemSuffix inserts a suffix between a path's stem and extension.
func withStemSuffix(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ext
}

// prettyJSON indents a JSON body for human-readable output files; non-JSON
// bodies (text, srt, vtt response formats) pass through unchanged.
func prettyJSON(raw []byte) []byte {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return raw
	}
	return buf.Bytes()
}
