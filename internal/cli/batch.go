package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/filesort/internal/worker"
)

var (
	concurrency  int
	recursive    bool
	fromFile     string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [dir]",
	Short: "Classify every file in a directory in parallel",
	Long: `Batch classifies many files concurrently:
- List the regular files of a directory (hidden entries are skipped)
- or read paths from a file (one per line) with --from
- Classify them with a bounded worker pool
- Print the decisions in listing order

Example:
  filesort batch ~/Downloads
  filesort batch ~/Downloads --recursive --ai --concurrency 4
  filesort batch --from paths.txt --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers)")
	batchCmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "descend into subdirectories")
	batchCmd.Flags().StringVar(&fromFile, "from", "", "read paths from this file instead of listing a directory")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&useAI, "ai", false, "use learned patterns and the inference service")
	batchCmd.Flags().BoolVar(&jsonOut, "json", false, "print decisions as JSON")
}

func runBatch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && fromFile == "" {
		return fmt.Errorf("a directory argument or --from is required")
	}
	if len(args) == 1 && fromFile != "" {
		return fmt.Errorf("give either a directory or --from, not both")
	}

	sigCtx, stop := signalContext()
	defer stop()
	ctx, cancel := context.WithTimeout(sigCtx, batchTimeout)
	defer cancel()

	cfg, logger, p, err := setup(useAI)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	defer func() { _ = p.Close() }()

	workers := cfg.Concurrency.Workers
	if cmd.Flags().Changed("concurrency") {
		workers = concurrency
	}
	if workers < 1 {
		workers = 1
	}

	source := fromFile
	if source == "" {
		source = args[0]
	}

	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "\n%s\n  filesort batch\n%s\n\n", banner, banner)
	fmt.Fprintf(stderr, "  Source:       %s\n", source)
	fmt.Fprintf(stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(stderr, "  AI:           %v\n", useAI)
	fmt.Fprintf(stderr, "  Timeout:      %v\n\n", batchTimeout)

	processor := worker.NewBatchProcessor(p, workers)

	start := time.Now()
	var results []*worker.ClassifyResult
	if fromFile != "" {
		results, err = processor.ProcessFile(ctx, fromFile)
	} else {
		results, err = processor.ProcessDir(ctx, args[0], recursive)
	}
	if err != nil {
		return fmt.Errorf("batch: %w", err)
	}

	decisions := make([]decision, 0, len(results))
	for _, r := range results {
		decisions = append(decisions, newDecision(r.Path, r.Classification, r.Error))
	}
	sum := summarize(results)

	if err := printDecisions(cmd.OutOrStdout(), decisions, jsonOut); err != nil {
		return err
	}

	fmt.Fprintf(stderr, "\n%s\n", banner)
	fmt.Fprintf(stderr, "  Classified:   %d\n", sum.classified)
	if useAI {
		fmt.Fprintf(stderr, "  AI decided:   %d\n", sum.ai)
	}
	fmt.Fprintf(stderr, "  Failed:       %d\n", sum.failed)
	fmt.Fprintf(stderr, "  Duration:     %v\n", time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(stderr, "%s\n\n", banner)

	if ctx.Err() != nil {
		return fmt.Errorf("batch interrupted: %w", ctx.Err())
	}
	if sum.failed > 0 && sum.classified == 0 {
		return fmt.Errorf("all %d files failed", sum.failed)
	}
	return nil
}

type batchSummary struct {
	classified int
	ai         int // decided by learned patterns or the inference service
	failed     int
}

func summarize(results []*worker.ClassifyResult) batchSummary {
	var sum batchSummary
	for _, r := range results {
		if r.Error != nil || r.Classification == nil {
			sum.failed++
			continue
		}
		sum.classified++
		if r.Classification.Source.IsAI() {
			sum.ai++
		}
	}
	return sum
}
