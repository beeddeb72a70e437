package main

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"audiobatch/internal/batch"
	"audiobatch/internal/cli"
	"audiobatch/internal/combine"
)

var batchFiles []string

var batchCmd = &cobra.Command{
	Use:   "batch [directory]",
	Short: "Convert every text file in a directory to speech",
	Long: `Run text-to-speech over a whole directory, or an explicit file list.

Every *.txt, *.md, and *.text file in the directory is converted in name
order. A file that fails is recorded and the run moves on; a summary of the
whole batch is printed at the end.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runBatch,
}

func init() {
	// shares the synthesis flags (and their variables) with the tts command
	batchCmd.Flags().AddFlagSet(ttsCmd.Flags())
	batchCmd.Flags().StringSliceVar(&batchFiles, "files", nil, "Explicit input files instead of a directory scan")
}

func runBatch(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	applyTTSFlags(cfg, cmd)
	validateConfig(cfg)

	files := resolveBatchInputs(args)
	if len(files) == 0 {
		log.Fatal().Msg("No text files to process")
	}

	ctx, stop := signalContext()
	defer stop()

	client := newClient(cfg, cfg.TTS.Retries)
	defer client.Close()

	// any input may chunk, so require ffmpeg up front
	if err := combine.CheckFFmpegAvailable(); err != nil {
		log.Fatal().Err(err).Msg("ffmpeg is required to join audio chunks")
	}

	p := newTTSProcessor(cfg, client)
	o := batch.New(func(ctx context.Context, path, outputDir string) (bool, string) {
		r := p.ProcessTTS(ctx, path, outputDir)
		return r.OK, r.Detail()
	})

	records, err := o.Run(ctx, files, ttsOutput)
	if err != nil {
		log.Warn().Err(err).Msg("Run interrupted")
	}
	cli.PrintSummary(os.Stdout, records)

	if s := batch.Summarize(records); s.Succeeded < s.Total {
		os.Exit(1)
	}
}

func resolveBatchInputs(args []string) []string {
	if len(batchFiles) > 0 {
		return batchFiles
	}

	if ttsPick {
		selected, err := cli.PickTextFiles()
		if err != nil {
			if errors.Is(err, cli.ErrPickerCanceled) {
				log.Fatal().Msg("No files selected")
			}
			log.Fatal().Err(err).Msg("File picker failed")
		}
		return selected
	}

	dirPath := ""
	if len(args) == 1 {
		dirPath = args[0]
	} else {
		dirPath = cli.PromptForPath("Directory with text files")
	}

	dir, err := cli.ValidateAndResolveDirectory(dirPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid input directory")
	}

	files, err := batch.DiscoverTextFiles(dir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to scan directory")
	}
	log.Info().Int("files", len(files)).Str("dir", dir).Msg("Discovered text files")
	return files
}
