package config

import (
	"os"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.TTS.Model != "tts-1" {
		t.Errorf("expected default model tts-1, got %q", cfg.TTS.Model)
	}
	if cfg.TTS.MaxChars != 4096 {
		t.Errorf("expected default max chars 4096, got %d", cfg.TTS.MaxChars)
	}
	if cfg.TTS.Retries != 3 {
		t.Errorf("expected default retries 3, got %d", cfg.TTS.Retries)
	}
	if cfg.Transcription.Model != "whisper-1" {
		t.Errorf("expected default transcription model whisper-1, got %q", cfg.Transcription.Model)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	overrides := map[string]string{
		"AUDIOBATCH_TTS_MODEL": "tts-1-hd",
		"AUDIOBATCH_TTS_DELAY": "2s",
		"AUDIOBATCH_STT_MODEL": "whisper-large",
	}
	for k, v := range overrides {
		original := os.Getenv(k)
		os.Setenv(k, v)
		defer os.Setenv(k, original)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.TTS.Model != "tts-1-hd" {
		t.Errorf("expected model tts-1-hd, got %q", cfg.TTS.Model)
	}
	if cfg.TTS.RateLimitDelay != 2*time.Second {
		t.Errorf("expected delay 2s, got %v", cfg.TTS.RateLimitDelay)
	}
	if cfg.Transcription.Model != "whisper-large" {
		t.Errorf("expected transcription model whisper-large, got %q", cfg.Transcription.Model)
	}
	// Untouched fields keep their defaults.
	if cfg.TTS.Voice != "alloy" {
		t.Errorf("expected default voice alloy, got %q", cfg.TTS.Voice)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max chars", func(c *Config) { c.TTS.MaxChars = 0 }},
		{"zero retries", func(c *Config) { c.TTS.Retries = 0 }},
		{"speed too low", func(c *Config) { c.TTS.Speed = 0.5 }},
		{"speed too high", func(c *Config) { c.TTS.Speed = 2.0 }},
		{"unknown cleaning level", func(c *Config) { c.TTS.CleaningLevel = "extreme" }},
		{"bad base URL", func(c *Config) { c.BaseURL = "not-a-url" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
