package main

import (
	"errors"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"audiobatch/internal/chunker"
	"audiobatch/internal/cli"
	"audiobatch/internal/combine"
	"audiobatch/internal/config"
)

var (
	ttsModel      string
	ttsVoice      string
	ttsFormat     string
	ttsSpeed      float64
	ttsMaxChars   int
	ttsRetries    int
	ttsDelay      time.Duration
	ttsOutput     string
	ttsClean      bool
	ttsCleanModel string
	ttsCleanLevel string
	ttsPick       bool
)

var ttsCmd = &cobra.Command{
	Use:   "tts [file]",
	Short: "Convert a text file to speech",
	Long: `Convert one text file to an audio file.

The input is split at word boundaries when it exceeds the per-request
character limit; the resulting pieces are synthesized one by one and joined
with ffmpeg. The output lands next to the input unless --output names a
directory.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runTTS,
}

func init() {
	ttsCmd.Flags().StringVarP(&ttsModel, "model", "m", "", "TTS model (tts-1, tts-1-hd)")
	ttsCmd.Flags().StringVar(&ttsVoice, "voice", "", "Voice (alloy, echo, fable, onyx, nova, shimmer)")
	ttsCmd.Flags().StringVar(&ttsFormat, "format", "", "Audio format (aac, mp3, opus, flac)")
	ttsCmd.Flags().Float64Var(&ttsSpeed, "speed", 0, "Playback speed (0.75 to 1.5)")
	ttsCmd.Flags().IntVar(&ttsMaxChars, "max-chars", 0, "Characters per request")
	ttsCmd.Flags().IntVar(&ttsRetries, "retries", 0, "Attempts per request")
	ttsCmd.Flags().DurationVar(&ttsDelay, "delay", 0, "Pause between chunk requests (default derived from model)")
	ttsCmd.Flags().StringVarP(&ttsOutput, "output", "o", "", "Output directory")
	ttsCmd.Flags().BoolVar(&ttsClean, "clean", false, "Clean the text with an LLM before synthesis")
	ttsCmd.Flags().StringVar(&ttsCleanModel, "clean-model", "", "Chat model for text cleaning")
	ttsCmd.Flags().StringVar(&ttsCleanLevel, "clean-level", "", "Cleaning level (light, medium, aggressive)")
	ttsCmd.Flags().BoolVar(&ttsPick, "pick", false, "Choose the input with a file picker dialog")
}

func runTTS(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	applyTTSFlags(cfg, cmd)
	validateConfig(cfg)

	path := resolveTTSInput(args)

	ctx, stop := signalContext()
	defer stop()

	client := newClient(cfg, cfg.TTS.Retries)
	defer client.Close()

	// fail before any API spend if multi-chunk assembly is impossible
	if needsCombining(path, cfg.TTS.MaxChars) {
		if err := combine.CheckFFmpegAvailable(); err != nil {
			log.Fatal().Err(err).Msg("ffmpeg is required to join audio chunks")
		}
	}

	p := newTTSProcessor(cfg, client)
	result := p.ProcessTTS(ctx, path, ttsOutput)
	if !result.OK {
		log.Fatal().Str("reason", result.Detail()).Msg("TTS failed")
	}
}

func applyTTSFlags(cfg *config.Config, cmd *cobra.Command) {
	if cmd.Flags().Changed("model") {
		cfg.TTS.Model = ttsModel
	}
	if cmd.Flags().Changed("voice") {
		cfg.TTS.Voice = ttsVoice
	}
	if cmd.Flags().Changed("format") {
		cfg.TTS.ResponseFormat = ttsFormat
	}
	if cmd.Flags().Changed("speed") {
		cfg.TTS.Speed = ttsSpeed
	}
	if cmd.Flags().Changed("max-chars") {
		cfg.TTS.MaxChars = ttsMaxChars
	}
	if cmd.Flags().Changed("retries") {
		cfg.TTS.Retries = ttsRetries
	}
	if cmd.Flags().Changed("delay") {
		cfg.TTS.RateLimitDelay = ttsDelay
	}
	if cmd.Flags().Changed("clean") {
		cfg.TTS.CleanText = ttsClean
	}
	if cmd.Flags().Changed("clean-model") {
		cfg.TTS.CleaningModel = ttsCleanModel
	}
	if cmd.Flags().Changed("clean-level") {
		cfg.TTS.CleaningLevel = ttsCleanLevel
	}
}

// resolveTTSInput picks the input file from the positional argument, the
// native picker, or an interactive prompt, in that order.
func resolveTTSInput(args []string) string {
	var path string
	switch {
	case len(args) == 1:
		path = args[0]
	case ttsPick:
		files, err := cli.PickTextFiles()
		if err != nil {
			if errors.Is(err, cli.ErrPickerCanceled) {
				log.Fatal().Msg("No file selected")
			}
			log.Fatal().Err(err).Msg("File picker failed")
		}
		if len(files) != 1 {
			log.Fatal().Int("selected", len(files)).Msg("Select exactly one file, or use the batch command")
		}
		path = files[0]
	default:
		path = cli.PromptForPath("Text file")
	}

	resolved, err := cli.ValidateAndResolveFile(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid input file")
	}
	return resolved
}

// needsCombining reports whether the input is large enough to be chunked.
func needsCombining(path string, maxChars int) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return len(chunker.Split(string(data), maxChars)) > 1
}
