package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kesslerio/local-whisper-openclaw-skill/internal/config"
	"github.com/kesslerio/local-whisper-openclaw-skill/internal/diagnostics"
	"github.com/kesslerio/local-whisper-openclaw-skill/internal/model"
	"github.com/kesslerio/local-whisper-openclaw-skill/internal/run"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	flagModel        string
	flagLanguage     string
	flagOutputDir    string
	flagSmartModel   bool
	flagNoSmartModel bool
	flagForce        bool
	flagCheck        bool
)

var rootCmd = &cobra.Command{
	Use:   "local-whisper <audio-file>",
	Short: "Transcribe local audio files with a local whisper binary",
	Long: `local-whisper transcribes a local audio file by shelling out to the whisper
CLI. The model size is chosen from the input's byte size unless set explicitly,
and runs are serialized machine-wide through a lock file.`,
	Version:       Version,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		cfg.FromEnv()
		cfg.ExpandPaths()
		setupLogging(cfg.LogLevel)

		runner := run.New(cfg)

		if flagCheck {
			status := runner.Check(cmd.Context())
			fmt.Print(diagnostics.Report(status))
			if len(status.Missing()) > 0 {
				return fmt.Errorf("missing required tools")
			}
			return nil
		}

		if len(args) != 1 {
			return fmt.Errorf("exactly one audio file argument is required")
		}

		opts, err := buildOptions(cfg, args[0])
		if err != nil {
			return err
		}

		result, err := runner.Run(cmd.Context(), opts)
		if err != nil {
			return err
		}

		fmt.Printf("Model: %s  Language: %s\n", result.Model, result.Language)
		fmt.Printf("Transcript: %s\n\n", result.ArtifactPath)
		fmt.Println(result.Text)
		return nil
	},
}

// buildOptions normalizes flags and config defaults into run options. An
// explicit model disables smart selection.
func buildOptions(cfg *config.Config, audioPath string) (run.Options, error) {
	explicit := flagModel
	if explicit == "" {
		explicit = cfg.DefaultModel
	}

	smart := flagSmartModel && !flagNoSmartModel

	m := model.Model(explicit)
	if explicit != "" && m != model.Auto {
		if !m.Valid() {
			return run.Options{}, fmt.Errorf("unknown model %q (valid: %v)", explicit, model.All())
		}
		smart = false
	} else {
		m = ""
	}

	language := flagLanguage
	if language == "" {
		language = cfg.DefaultLanguage
	}

	return run.Options{
		AudioPath:  audioPath,
		Model:      m,
		Language:   language,
		OutputDir:  flagOutputDir,
		SmartModel: smart,
		Force:      flagForce,
	}, nil
}

func setupLogging(level string) {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}

func init() {
	rootCmd.Flags().StringVar(&flagModel, "model", "", "Model size (tiny|base|small|medium|large); disables smart selection")
	rootCmd.Flags().StringVar(&flagLanguage, "language", "", "Language code, or auto for detection")
	rootCmd.Flags().StringVar(&flagOutputDir, "output-dir", "", "Directory for output artifacts (default: next to input)")
	rootCmd.Flags().BoolVar(&flagSmartModel, "smart-model", true, "Pick the model from the input's size")
	rootCmd.Flags().BoolVar(&flagNoSmartModel, "no-smart-model", false, "Disable smart model selection")
	rootCmd.Flags().BoolVar(&flagForce, "force", false, "Take over the lock from a running instance")
	rootCmd.Flags().BoolVar(&flagCheck, "check", false, "Check external dependencies and exit")
}

// Execute runs the CLI. Any failure exits with code 1.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
