package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"audiobatch/internal/api"
	"audiobatch/internal/cleaner"
	"audiobatch/internal/config"
	"audiobatch/internal/pacing"
)

// fakeSpeech synthesizes deterministic audio and can be told to fail on a
// specific chunk index (1-based call count).
type fakeSpeech struct {
	calls    int
	failCall int
	texts    []string
}

func (f *fakeSpeech) Speech(_ context.Context, req api.SpeechRequest) ([]byte, error) {
	f.calls++
	f.texts = append(f.texts, req.Text)
	if f.failCall != 0 && f.calls == f.failCall {
		return nil, &api.RequestError{Status: 503, Detail: "overloaded"}
	}
	return []byte("AUDIO:" + req.Text), nil
}

type fakeTranscriber struct {
	result *api.Transcription
	err    error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ api.TranscribeRequest) (*api.Transcription, error) {
	return f.result, f.err
}

// fakeCombiner concatenates its inputs and records what it was asked to join.
type fakeCombiner struct {
	inputs []string
	err    error
}

func (f *fakeCombiner) Combine(_ context.Context, inputs []string, output string) error {
	f.inputs = append([]string(nil), inputs...)
	if f.err != nil {
		return f.err
	}
	var combined []byte
	for _, in := range inputs {
		data, err := os.ReadFile(in)
		if err != nil {
			return err
		}
		combined = append(combined, data...)
	}
	return os.WriteFile(output, combined, 0o644)
}

func newTestProcessor(speech *fakeSpeech, comb *fakeCombiner, maxChars int) *Processor {
	cfg := config.Defaults()
	cfg.TTS.MaxChars = maxChars
	return New(cfg, Deps{
		Speech:   speech,
		Combiner: comb,
		Limiter:  pacing.NewLimiter(0),
	})
}

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func listTempFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*_temp_*"))
	if err != nil {
		t.Fatal(err)
	}
	return matches
}

func TestProcessTTSSingleChunk(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "story.txt", "short text")

	speech := &fakeSpeech{}
	comb := &fakeCombiner{}
	p := newTestProcessor(speech, comb, 4096)

	res := p.ProcessTTS(context.Background(), input, "")
	if !res.OK {
		t.Fatalf("ProcessTTS failed: %v", res.Err)
	}
	if speech.calls != 1 {
		t.Errorf("speech calls = %d, want 1", speech.calls)
	}
	if comb.inputs != nil {
		t.Error("combiner should not run for single-chunk input")
	}

	data, err := os.ReadFile(filepath.Join(dir, "story.aac"))
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if string(data) != "AUDIO:short text" {
		t.Errorf("output = %q", data)
	}
	if temps := listTempFiles(t, dir); len(temps) != 0 {
		t.Errorf("temp files left behind: %v", temps)
	}
}

func TestProcessTTSMultiChunkCombines(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "long.txt", "aaaa bbbb cccc")

	speech := &fakeSpeech{}
	comb := &fakeCombiner{}
	p := newTestProcessor(speech, comb, 5)

	res := p.ProcessTTS(context.Background(), input, "")
	if !res.OK {
		t.Fatalf("ProcessTTS failed: %v", res.Err)
	}
	if speech.calls != 3 {
		t.Fatalf("speech calls = %d, want 3", speech.calls)
	}
	for i, in := range comb.inputs {
		want := filepath.Join(dir, fmt.Sprintf("long_temp_%d.aac", i))
		if in != want {
			t.Errorf("combiner input %d = %q, want %q", i, in, want)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "long.aac"))
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if string(data) != "AUDIO:aaaaAUDIO:bbbbAUDIO:cccc" {
		t.Errorf("combined output = %q", data)
	}
	if temps := listTempFiles(t, dir); len(temps) != 0 {
		t.Errorf("temp files left behind: %v", temps)
	}
}

func TestProcessTTSChunkFailureCleansUp(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "long.txt", "aaaa bbbb cccc")

	speech := &fakeSpeech{failCall: 2}
	comb := &fakeCombiner{}
	p := newTestProcessor(speech, comb, 5)

	res := p.ProcessTTS(context.Background(), input, "")
	if res.OK {
		t.Fatal("ProcessTTS succeeded, want failure")
	}
	if !strings.Contains(res.Detail(), "chunk 2/3") {
		t.Errorf("detail = %q, want chunk position", res.Detail())
	}
	if speech.calls != 2 {
		t.Errorf("speech calls = %d, want 2 (no attempts after failure)", speech.calls)
	}
	if temps := listTempFiles(t, dir); len(temps) != 0 {
		t.Errorf("temp files left behind after failure: %v", temps)
	}
	if _, err := os.Stat(filepath.Join(dir, "long.aac")); err == nil {
		t.Error("final output should not exist after chunk failure")
	}
}

func TestProcessTTSCombineFailureCleansUp(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "long.txt", "aaaa bbbb")

	speech := &fakeSpeech{}
	comb := &fakeCombiner{err: fmt.Errorf("ffmpeg exploded")}
	p := newTestProcessor(speech, comb, 5)

	res := p.ProcessTTS(context.Background(), input, "")
	if res.OK {
		t.Fatal("ProcessTTS succeeded, want failure")
	}
	if temps := listTempFiles(t, dir); len(temps) != 0 {
		t.Errorf("temp files left behind after combine failure: %v", temps)
	}
}

func TestProcessTTSEmptyInput(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "empty.txt", "   \n\t ")

	speech := &fakeSpeech{}
	p := newTestProcessor(speech, &fakeCombiner{}, 4096)

	res := p.ProcessTTS(context.Background(), input, "")
	if res.OK {
		t.Fatal("ProcessTTS succeeded on empty input")
	}
	if speech.calls != 0 {
		t.Errorf("speech calls = %d, want 0", speech.calls)
	}
}

func TestProcessTTSMissingInput(t *testing.T) {
	p := newTestProcessor(&fakeSpeech{}, &fakeCombiner{}, 4096)
	res := p.ProcessTTS(context.Background(), filepath.Join(t.TempDir(), "nope.txt"), "")
	if res.OK {
		t.Fatal("ProcessTTS succeeded on missing input")
	}
}

func TestProcessTTSOutputDir(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "story.txt", "short text")
	outDir := filepath.Join(dir, "out", "nested")

	p := newTestProcessor(&fakeSpeech{}, &fakeCombiner{}, 4096)
	res := p.ProcessTTS(context.Background(), input, outDir)
	if !res.OK {
		t.Fatalf("ProcessTTS failed: %v", res.Err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "story.aac")); err != nil {
		t.Errorf("output missing from output directory: %v", err)
	}
}

// scriptedCleaner returns a fixed cleaning result.
type scriptedCleaner struct {
	result cleaner.Result
	err    error
}

func (s *scriptedCleaner) Clean(_ context.Context, _ string) (cleaner.Result, error) {
	if s.err != nil {
		return cleaner.Result{}, s.err
	}
	return s.result, nil
}

func TestProcessTTSCleaningGate(t *testing.T) {
	tests := []struct {
		name     string
		cleaner  *scriptedCleaner
		wantText string
	}{
		{
			name:     "high quality uses cleaned text",
			cleaner:  &scriptedCleaner{result: cleaner.Result{Text: "cleaned", QualityScore: 0.9}},
			wantText: "cleaned",
		},
		{
			name:     "low quality keeps original",
			cleaner:  &scriptedCleaner{result: cleaner.Result{Text: "cleaned", QualityScore: 0.3}},
			wantText: "raw text",
		},
		{
			name:     "cleaner error keeps original",
			cleaner:  &scriptedCleaner{err: fmt.Errorf("chat unavailable")},
			wantText: "raw text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			input := writeInput(t, dir, "story.txt", "raw text")

			speech := &fakeSpeech{}
			cfg := config.Defaults()
			p := New(cfg, Deps{
				Speech:  speech,
				Cleaner: tt.cleaner,
				Limiter: pacing.NewLimiter(0),
			})

			res := p.ProcessTTS(context.Background(), input, "")
			if !res.OK {
				t.Fatalf("ProcessTTS failed: %v", res.Err)
			}
			if speech.texts[0] != tt.wantText {
				t.Errorf("synthesized text = %q, want %q", speech.texts[0], tt.wantText)
			}
		})
	}
}

func TestProcessTTSCancellationCleansUp(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "long.txt", "aaaa bbbb cccc")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	speech := &fakeSpeech{}
	cfg := config.Defaults()
	cfg.TTS.MaxChars = 5
	// a long delay so Wait observes the canceled context between chunks
	p := New(cfg, Deps{
		Speech:   speech,
		Combiner: &fakeCombiner{},
		Limiter:  pacing.NewLimiter(time.Minute),
	})

	res := p.ProcessTTS(ctx, input, "")
	if res.OK {
		t.Fatal("ProcessTTS succeeded with canceled context")
	}
	if temps := listTempFiles(t, dir); len(temps) != 0 {
		t.Errorf("temp files left behind after cancellation: %v", temps)
	}
}

func TestProcessTranscriptionWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "recording.mp3", "fake audio bytes")

	tr := &fakeTranscriber{result: &api.Transcription{
		Raw:  []byte(`{"text":"hello world","language":"english"}`),
		Text: "hello world",
	}}
	cfg := config.Defaults()
	p := New(cfg, Deps{Transcriber: tr, Limiter: pacing.NewLimiter(0)})

	res := p.ProcessTranscription(context.Background(), input, "")
	if !res.OK {
		t.Fatalf("ProcessTranscription failed: %v", res.Err)
	}

	jsonData, err := os.ReadFile(filepath.Join(dir, "recording_transcription.json"))
	if err != nil {
		t.Fatalf("JSON artifact missing: %v", err)
	}
	if !strings.Contains(string(jsonData), "\n") {
		t.Error("JSON artifact should be indented")
	}

	textData, err := os.ReadFile(filepath.Join(dir, "recording_transcription.txt"))
	if err != nil {
		t.Fatalf("text artifact missing: %v", err)
	}
	if string(textData) != "hello world" {
		t.Errorf("text artifact = %q", textData)
	}
}

func TestProcessTranscriptionMissingFile(t *testing.T) {
	cfg := config.Defaults()
	p := New(cfg, Deps{Transcriber: &fakeTranscriber{}, Limiter: pacing.NewLimiter(0)})

	res := p.ProcessTranscription(context.Background(), filepath.Join(t.TempDir(), "nope.mp3"), "")
	if res.OK {
		t.Fatal("ProcessTranscription succeeded on missing input")
	}
	if !strings.Contains(res.Detail(), "not found") {
		t.Errorf("detail = %q, want not-found message", res.Detail())
	}
}

func TestProcessTranscriptionAPIError(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "recording.mp3", "fake audio bytes")

	tr := &fakeTranscriber{err: &api.RequestError{Status: 500, Detail: "server error"}}
	cfg := config.Defaults()
	p := New(cfg, Deps{Transcriber: tr, Limiter: pacing.NewLimiter(0)})

	res := p.ProcessTranscription(context.Background(), input, "")
	if res.OK {
		t.Fatal("ProcessTranscription succeeded, want failure")
	}
	if matches, _ := filepath.Glob(filepath.Join(dir, "*_transcription*")); len(matches) != 0 {
		t.Errorf("artifacts written despite failure: %v", matches)
	}
}
