package main

import (
	"testing"

	"audiobatch/internal/config"
)

func TestApplyTranscribeFlags(t *testing.T) {
	cfg := config.Defaults()
	applyTranscribeFlags(cfg, transcribeCmd)

	// nothing set: the loaded configuration stays untouched
	if cfg.Transcription.Retries != 3 || cfg.Transcription.Temperature != 0 {
		t.Fatalf("unset flags must not override config: %+v", cfg.Transcription)
	}

	for flag, value := range map[string]string{
		"model":       "whisper-large",
		"language":    "uk",
		"temperature": "0.4",
		"retries":     "5",
	} {
		if err := transcribeCmd.Flags().Set(flag, value); err != nil {
			t.Fatalf("failed to set --%s: %v", flag, err)
		}
	}
	applyTranscribeFlags(cfg, transcribeCmd)

	if cfg.Transcription.Model != "whisper-large" {
		t.Errorf("model = %q, want whisper-large", cfg.Transcription.Model)
	}
	if cfg.Transcription.Language != "uk" {
		t.Errorf("language = %q, want uk", cfg.Transcription.Language)
	}
	if cfg.Transcription.Temperature != 0.4 {
		t.Errorf("temperature = %g, want 0.4", cfg.Transcription.Temperature)
	}
	if cfg.Transcription.Retries != 5 {
		t.Errorf("retries = %d, want 5", cfg.Transcription.Retries)
	}
}
