package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/filesort/internal/watch"
)

var watchDebounce time.Duration

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Classify files as they land in a directory",
	Long: `Watch prints a decision for every file created in a directory
(non-recursive) once it has stopped changing. Hidden files are ignored.
Press Ctrl-C to stop.

Example:
  filesort watch ~/Downloads --ai`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVar(&useAI, "ai", false, "use learned patterns and the inference service")
	watchCmd.Flags().BoolVar(&jsonOut, "json", false, "print each decision as a JSON line")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet period before a file is classified")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	_, logger, p, err := setup(useAI)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	defer func() { _ = p.Close() }()

	w, err := watch.New(args[0], logger.Named("watch"))
	if err != nil {
		return err
	}
	w.SetDebounce(watchDebounce)

	out := cmd.OutOrStdout()
	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (Ctrl-C to stop)\n", args[0])

	return w.Run(ctx, func(ctx context.Context, path string) {
		c, err := p.ClassifyPath(ctx, path)
		if err != nil {
			logger.Warn("classify failed", zap.String("path", path), zap.Error(err))
		}
		d := newDecision(path, c, err)
		if jsonOut {
			_ = printJSONLine(out, d)
			return
		}
		printDecision(out, d)
	})
}
