package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/filesort/internal/llm"
)

// modelsCmd represents the models command
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Check the inference service and list its models",
	Long: `Models asks the configured inference service which models it serves and
reports whether the configured text and vision models are among them.`,
	Args: cobra.NoArgs,
	RunE: runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	client, err := llm.NewClient(llm.ConfigFromModel(cfg.Inference))
	if err != nil {
		return err
	}
	if client == nil {
		return fmt.Errorf("no inference provider configured (set inference.provider)")
	}

	prober := llm.NewProber(client, cfg.Inference.ProbeTimeout, 0, logger.Named("probe"))
	models, err := prober.Models(ctx)
	if err != nil {
		return fmt.Errorf("%s at %s: %w", client.Name(), cfg.Inference.BaseURL, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s at %s serves %d models:\n", client.Name(), cfg.Inference.BaseURL, len(models))
	for _, m := range models {
		fmt.Fprintf(out, "  %s\n", m)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Text model   %-20s %s\n", cfg.Inference.Model, mark(llm.MatchModel(models, cfg.Inference.Model)))
	fmt.Fprintf(out, "Vision model %-20s %s\n", cfg.Inference.VisionModel, mark(llm.MatchModel(models, cfg.Inference.VisionModel)))
	return nil
}

func mark(ok bool) string {
	if ok {
		return "✓ available"
	}
	return "✗ not installed"
}
