package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show what has been learned so far",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().BoolVar(&jsonOut, "json", false, "print statistics as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, logger, p, err := setup(false)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	defer func() { _ = p.Close() }()

	summary := p.Learner().Stats(ctx)
	out := cmd.OutOrStdout()

	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	fmt.Fprintf(out, "Learning store:         %s (%s)\n", p.Learner().Location(), cfg.Learning.Backend)
	fmt.Fprintf(out, "Total classifications:  %d\n", summary.TotalClassifications)
	fmt.Fprintf(out, "Unique patterns:        %d\n", summary.UniquePatterns)
	fmt.Fprintf(out, "Corrections:            %d\n", summary.Corrections)
	return nil
}
