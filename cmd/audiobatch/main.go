// Command audiobatch converts text files to speech and audio files to text
// through the OpenAI audio API, one file or a whole directory at a time.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"audiobatch/internal/api"
	"audiobatch/internal/auth"
	"audiobatch/internal/cleaner"
	"audiobatch/internal/cli"
	"audiobatch/internal/config"
	"audiobatch/internal/logging"
	"audiobatch/internal/processor"
)

var rootCmd = &cobra.Command{
	Use:   "audiobatch",
	Short: "Batch text-to-speech and transcription with the OpenAI audio API",
	Long: `Audiobatch turns text files into audio and audio files back into text.

Long texts are split at word boundaries to fit the API's request limit, each
piece is synthesized separately with pacing between requests, and the pieces
are joined into a single audio file with ffmpeg. Transcription uploads audio
to Whisper and saves both the raw JSON result and the extracted plain text.

Examples:
  audiobatch tts chapter1.txt
  audiobatch tts --voice nova --model tts-1-hd --clean chapter1.txt
  audiobatch transcribe interview.mp3
  audiobatch batch ./book-chapters --output ./audio`,
}

var logLevel string

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.AddCommand(ttsCmd, transcribeCmd, batchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// signalContext returns a context canceled by Ctrl-C.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// loadConfig initializes logging and builds the run configuration from
// defaults, .env, and environment variables. Flag overrides are applied by
// each subcommand before validation.
func loadConfig() *config.Config {
	level := logLevel
	if level == "" {
		level = os.Getenv("AUDIOBATCH_LOG_LEVEL")
	}
	logging.Init(level)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	return cfg
}

func validateConfig(cfg *config.Config) {
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
}

// newClient builds the API client, asking for a key interactively when the
// environment does not provide one.
func newClient(cfg *config.Config, retries int) *api.Client {
	apiKey, err := auth.GetAPIKey()
	if err != nil {
		log.Warn().Msgf("API key not found in %s", auth.EnvVar)
		apiKey = cli.PromptForAPIKey()
		if apiKey == "" {
			log.Fatal().Msgf("No API key provided. Set %s and retry", auth.EnvVar)
		}
	}

	return api.New(apiKey, api.Options{
		BaseURL: cfg.BaseURL,
		Retries: retries,
	})
}

// newTTSProcessor wires the synthesis pipeline for the current
// configuration.
func newTTSProcessor(cfg *config.Config, client *api.Client) *processor.Processor {
	deps := processor.Deps{Speech: client}
	if cfg.TTS.CleanText {
		deps.Cleaner = cleaner.New(client, cleaner.Config{
			Model: cfg.TTS.CleaningModel,
			Level: cfg.TTS.CleaningLevel,
		})
	}
	return processor.New(cfg, deps)
}
