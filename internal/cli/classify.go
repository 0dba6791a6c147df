package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	useAI   bool
	jsonOut bool
)

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify <file>...",
	Short: "Decide the category of one or more files",
	Long: `Classify prints a category decision for each file.

Without --ai the static keyword and extension rules decide. With --ai
learned patterns and the local inference service are consulted first, and
the rules only decide what they leave open.

Example:
  filesort classify ~/Downloads/invoice_march.pdf
  filesort classify --ai photo.jpg notes.txt
  filesort classify --ai --json *.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().BoolVar(&useAI, "ai", false, "use learned patterns and the inference service")
	classifyCmd.Flags().BoolVar(&jsonOut, "json", false, "print decisions as JSON")
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	_, logger, p, err := setup(useAI)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	defer func() { _ = p.Close() }()

	decisions := make([]decision, 0, len(args))
	failed := 0
	for _, path := range args {
		c, err := p.ClassifyPath(ctx, path)
		if err != nil {
			failed++
		}
		decisions = append(decisions, newDecision(path, c, err))
	}

	if err := printDecisions(cmd.OutOrStdout(), decisions, jsonOut); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be classified", failed, len(args))
	}
	return nil
}
