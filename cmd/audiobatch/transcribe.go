package main

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"audiobatch/internal/batch"
	"audiobatch/internal/cli"
	"audiobatch/internal/config"
	"audiobatch/internal/processor"
)

var (
	sttModel       string
	sttFormat      string
	sttLanguage    string
	sttPrompt      string
	sttTemperature float64
	sttRetries     int
	sttOutput      string
	sttPick        bool
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe [files...]",
	Short: "Transcribe audio files to text",
	Long: `Transcribe one or more audio files with Whisper.

Each input produces a JSON result file and an extracted plain-text file next
to it, or in the --output directory. Files are processed in order; a failed
file is reported and the rest continue.`,
	Run: runTranscribe,
}

func init() {
	transcribeCmd.Flags().StringVarP(&sttModel, "model", "m", "", "Transcription model")
	transcribeCmd.Flags().StringVar(&sttFormat, "format", "", "Result format (json, verbose_json, text, srt, vtt)")
	transcribeCmd.Flags().StringVarP(&sttLanguage, "language", "l", "", "Input language as an ISO 639-1 code")
	transcribeCmd.Flags().StringVar(&sttPrompt, "prompt", "", "Optional prompt to guide the transcription")
	transcribeCmd.Flags().Float64Var(&sttTemperature, "temperature", 0, "Sampling temperature (0 to 1)")
	transcribeCmd.Flags().IntVar(&sttRetries, "retries", 0, "Attempts per request")
	transcribeCmd.Flags().StringVarP(&sttOutput, "output", "o", "", "Output directory")
	transcribeCmd.Flags().BoolVar(&sttPick, "pick", false, "Choose inputs with a file picker dialog")
}

func runTranscribe(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	applyTranscribeFlags(cfg, cmd)
	validateConfig(cfg)

	files := resolveTranscribeInputs(args)

	ctx, stop := signalContext()
	defer stop()

	client := newClient(cfg, cfg.Transcription.Retries)
	defer client.Close()

	p := processor.New(cfg, processor.Deps{Transcriber: client})
	o := batch.New(func(ctx context.Context, path, outputDir string) (bool, string) {
		r := p.ProcessTranscription(ctx, path, outputDir)
		return r.OK, r.Detail()
	})

	records, err := o.Run(ctx, files, sttOutput)
	if err != nil {
		log.Warn().Err(err).Msg("Run interrupted")
	}
	cli.PrintSummary(os.Stdout, records)

	if s := batch.Summarize(records); s.Succeeded < s.Total {
		os.Exit(1)
	}
}

func applyTranscribeFlags(cfg *config.Config, cmd *cobra.Command) {
	if cmd.Flags().Changed("model") {
		cfg.Transcription.Model = sttModel
	}
	if cmd.Flags().Changed("format") {
		cfg.Transcription.ResponseFormat = sttFormat
	}
	if cmd.Flags().Changed("language") {
		cfg.Transcription.Language = sttLanguage
	}
	if cmd.Flags().Changed("prompt") {
		cfg.Transcription.Prompt = sttPrompt
	}
	if cmd.Flags().Changed("temperature") {
		cfg.Transcription.Temperature = sttTemperature
	}
	if cmd.Flags().Changed("retries") {
		cfg.Transcription.Retries = sttRetries
	}
}

func resolveTranscribeInputs(args []string) []string {
	paths := args
	if len(paths) == 0 {
		if sttPick {
			selected, err := cli.PickAudioFiles()
			if err != nil {
				if errors.Is(err, cli.ErrPickerCanceled) {
					log.Fatal().Msg("No files selected")
				}
				log.Fatal().Err(err).Msg("File picker failed")
			}
			paths = selected
		} else {
			path := cli.PromptForPath("Audio file")
			if path == "" {
				log.Fatal().Msg("No input file given")
			}
			paths = []string{path}
		}
	}

	resolved := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := cli.ValidateAndResolveFile(p)
		if err != nil {
			// missing inputs become failed records later, keep the raw path
			resolved = append(resolved, p)
			continue
		}
		resolved = append(resolved, abs)
	}
	return resolved
}
