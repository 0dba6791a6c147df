package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/filesort/internal/model"
)

var (
	predictedCategory string
	correctCategory   string
)

// correctCmd represents the correct command
var correctCmd = &cobra.Command{
	Use:   "correct <filename>",
	Short: "Record that a file was put in the wrong category",
	Long: `Correct teaches filesort the right category for a filename.

The correction is appended to the correction log and the filename's keywords
are reinforced toward the correct category, so similar names follow it once
the learned score passes the threshold.

Example:
  filesort correct family_scan.jpg --predicted Images --correct Documents`,
	Args: cobra.ExactArgs(1),
	RunE: runCorrect,
}

func init() {
	rootCmd.AddCommand(correctCmd)

	names := strings.Join(model.CategoryNames(), ", ")
	correctCmd.Flags().StringVar(&predictedCategory, "predicted", "", "category filesort chose ("+names+")")
	correctCmd.Flags().StringVar(&correctCategory, "correct", "", "category the file belongs in ("+names+")")
	_ = correctCmd.MarkFlagRequired("predicted")
	_ = correctCmd.MarkFlagRequired("correct")
}

func runCorrect(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	predicted, err := model.ParseCategory(predictedCategory)
	if err != nil {
		return fmt.Errorf("--predicted: %w", err)
	}
	correct, err := model.ParseCategory(correctCategory)
	if err != nil {
		return fmt.Errorf("--correct: %w", err)
	}

	_, logger, p, err := setup(false)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	defer func() { _ = p.Close() }()

	filename := filepath.Base(args[0])
	if err := p.Learner().RecordCorrection(ctx, filename, predicted, correct); err != nil {
		return fmt.Errorf("record correction: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %s → %s\n", filename, predicted, correct)
	return nil
}
