package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/labelgen/internal/split"
	"github.com/roach88/labelgen/internal/store"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - show the scenes of one run
}

// RunSummary is one ledger run with its per-split and per-reason counts.
type RunSummary struct {
	store.Run
	Splits  map[string]int `json:"splits"`
	Skipped map[string]int `json:"skipped"`
}

// RunDetail is one run with every recorded scene.
type RunDetail struct {
	RunSummary
	Records []store.SceneRecord `json:"records"`
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List runs recorded in the ledger",
		Long: `List every run in a run ledger with its split and skip counts.

With --run, show the outcome of every scene of one run instead.

Examples:
  labelgen runs --db ./runs.db
  labelgen runs --db ./runs.db --run 0190a6f2-...
  labelgen runs --db ./runs.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the SQLite run ledger (required)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show the scenes of this run")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runRuns(opts *RunsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	// Opening would create an empty ledger; a missing file is a user error.
	if _, err := os.Stat(opts.Database); os.IsNotExist(err) {
		return failWith(formatter, ExitCommandError, ErrCodeNotFound,
			fmt.Sprintf("ledger not found: %s", opts.Database), nil)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return failWith(formatter, ExitCommandError, ErrCodeLedger, "failed to open ledger", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.RunID != "" {
		return showRun(ctx, formatter, st, opts.RunID)
	}

	runs, err := st.ListRuns(ctx)
	if err != nil {
		return failWith(formatter, ExitCommandError, ErrCodeLedger, "failed to list runs", err)
	}

	summaries := make([]RunSummary, 0, len(runs))
	for _, r := range runs {
		s, err := summarizeRun(ctx, st, r)
		if err != nil {
			return failWith(formatter, ExitCommandError, ErrCodeLedger, "failed to read run", err)
		}
		summaries = append(summaries, s)
	}

	if opts.Format == "json" {
		return formatter.Success(summaries)
	}

	w := formatter.Writer
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	for _, s := range summaries {
		printRunLine(formatter, s)
	}
	return nil
}

func showRun(ctx context.Context, formatter *OutputFormatter, st *store.Store, runID string) error {
	run, err := st.GetRun(ctx, runID)
	if errors.Is(err, store.ErrRunNotFound) {
		return failWith(formatter, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("run not found: %s", runID), nil)
	}
	if err != nil {
		return failWith(formatter, ExitCommandError, ErrCodeLedger, "failed to read run", err)
	}

	summary, err := summarizeRun(ctx, st, run)
	if err != nil {
		return failWith(formatter, ExitCommandError, ErrCodeLedger, "failed to read run", err)
	}
	records, err := st.ReadRecords(ctx, runID)
	if err != nil {
		return failWith(formatter, ExitCommandError, ErrCodeLedger, "failed to read records", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(RunDetail{RunSummary: summary, Records: records})
	}

	w := formatter.Writer
	printRunLine(formatter, summary)
	for _, r := range records {
		if r.Status == store.StatusSkipped {
			fmt.Fprintf(w, "  %4d  %-28s skipped  %s\n", r.Seq, r.Scene, r.Reason)
			continue
		}
		fmt.Fprintf(w, "  %4d  %-28s %-8s %s\n", r.Seq, r.Scene, r.Split,
			split.FormatLine(split.Record{Video: r.Video, Label: r.Label}))
	}
	return nil
}

func summarizeRun(ctx context.Context, st *store.Store, r store.Run) (RunSummary, error) {
	splits, err := st.SplitCounts(ctx, r.ID)
	if err != nil {
		return RunSummary{}, err
	}
	skipped, err := st.SkipCounts(ctx, r.ID)
	if err != nil {
		return RunSummary{}, err
	}
	return RunSummary{Run: r, Splits: splits, Skipped: skipped}, nil
}

func printRunLine(f *OutputFormatter, s RunSummary) {
	skipped := 0
	for _, n := range s.Skipped {
		skipped += n
	}
	fmt.Fprintf(f.Writer, "#%d %s  %-9s profile=%s  train=%d val=%d test=%d test_val=%d skipped=%d\n",
		s.Seq, s.ID, s.Status, s.Profile,
		s.Splits[string(split.Train)], s.Splits[string(split.Validation)],
		s.Splits[string(split.Test)], s.Splits[string(split.TestValidation)],
		skipped)
	f.VerboseLog("  scenes dir %s, profile hash %s", s.ScenesDir, s.ProfileHash)
}
