package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// TTSConfig describes one text-to-speech run. It is built once per invocation
// and never mutated during processing.
type TTSConfig struct {
	Model          string        `env:"AUDIOBATCH_TTS_MODEL"`     // tts-1 (standard) or tts-1-hd
	Voice          string        `env:"AUDIOBATCH_TTS_VOICE"`     // alloy, echo, fable, onyx, nova, shimmer
	ResponseFormat string        `env:"AUDIOBATCH_TTS_FORMAT"`    // aac, mp3, opus, flac
	Speed          float64       `env:"AUDIOBATCH_TTS_SPEED"`     // 0.75 to 1.5
	MaxChars       int           `env:"AUDIOBATCH_TTS_MAX_CHARS"` // characters per request
	RateLimitDelay time.Duration `env:"AUDIOBATCH_TTS_DELAY"`     // 0 = derive from model tier
	Retries        int           `env:"AUDIOBATCH_TTS_RETRIES"`
	CleanText      bool          `env:"AUDIOBATCH_CLEAN_TEXT"` // run the LLM cleaning pass before synthesis
	CleaningModel  string        `env:"AUDIOBATCH_CLEAN_MODEL"`
	CleaningLevel  string        `env:"AUDIOBATCH_CLEAN_LEVEL"` // light, medium, aggressive
}

// TranscriptionConfig describes one transcription run.
type TranscriptionConfig struct {
	Model          string  `env:"AUDIOBATCH_STT_MODEL"`
	ResponseFormat string  `env:"AUDIOBATCH_STT_FORMAT"` // json, verbose_json, text, srt, vtt
	Language       string  `env:"AUDIOBATCH_STT_LANGUAGE"`
	Prompt         string  `env:"AUDIOBATCH_STT_PROMPT"`
	Temperature    float64 `env:"AUDIOBATCH_STT_TEMPERATURE"`
	Retries        int     `env:"AUDIOBATCH_STT_RETRIES"`
}

// Config is the full job configuration for one run.
type Config struct {
	BaseURL       string `env:"AUDIOBATCH_API_BASE_URL"`
	TTS           TTSConfig
	Transcription TranscriptionConfig
}

// Defaults returns the configuration with preset values. These are overridden
// by .env, environment variables, and CLI flags, in that order.
func Defaults() *Config {
	return &Config{
		BaseURL: "https://api.openai.com/v1",
		TTS: TTSConfig{
			Model:          "tts-1",
			Voice:          "alloy",
			ResponseFormat: "aac",
			Speed:          1.1,
			MaxChars:       4096,
			RateLimitDelay: 0, // derived from the model tier unless set
			Retries:        3,
			CleanText:      false,
			CleaningModel:  "gpt-4-turbo-preview",
			CleaningLevel:  "medium",
		},
		Transcription: TranscriptionConfig{
			Model:          "whisper-1",
			ResponseFormat: "verbose_json",
			Temperature:    0.0,
			Retries:        3,
		},
	}
}

// Load builds the configuration from defaults overlaid with .env and
// environment variables. CLI flag overrides are applied by the caller.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// Validate checks the invariants the pipeline depends on.
func (c *Config) Validate() error {
	if c.TTS.MaxChars < 1 {
		return fmt.Errorf("max chars must be positive, got %d", c.TTS.MaxChars)
	}
	if c.TTS.Retries < 1 {
		return fmt.Errorf("retries must be at least 1, got %d", c.TTS.Retries)
	}
	if c.TTS.Speed < 0.75 || c.TTS.Speed > 1.5 {
		return fmt.Errorf("speed must be between 0.75 and 1.5, got %g", c.TTS.Speed)
	}
	switch c.TTS.CleaningLevel {
	case "light", "medium", "aggressive":
	default:
		return fmt.Errorf("unknown cleaning level %q", c.TTS.CleaningLevel)
	}
	if !strings.HasPrefix(c.BaseURL, "http") {
		return fmt.Errorf("invalid API base URL %q", c.BaseURL)
	}
	return nil
}
