package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/labelgen/internal/profile"
	"github.com/roach88/labelgen/internal/split"
	"github.com/roach88/labelgen/internal/vocab"
)

// SplitOptions holds flags for the split command.
type SplitOptions struct {
	*RootOptions
	Profile string
	OutDir  string
}

// SplitResult is the JSON payload of the split command.
type SplitResult struct {
	Profile string             `json:"profile"`
	Total   int                `json:"total"`
	Splits  map[split.Name]int `json:"splits"`
	HeldOut map[string]int     `json:"held_out"`
	Files   []string           `json:"files"`
}

// NewSplitCommand creates the split command.
func NewSplitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SplitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "split <labels-file>",
		Short: "Re-partition an existing label list",
		Long: `Partition a list of "video:i1,...,ik" lines into the four splits.

Records keep the order of the input file, so re-running with the same
profile reproduces the same split files.

Examples:
  labelgen split ./all_labels.txt --out ./lists
  labelgen split ./lists/train.txt --profile v2`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Profile, "profile", profile.DefaultName, "built-in profile name or profile .cue file")
	cmd.Flags().StringVarP(&opts.OutDir, "out", "o", "", "directory for the split files (omit to only report counts)")

	return cmd
}

func runSplit(opts *SplitOptions, labelsFile string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if _, err := os.Stat(labelsFile); os.IsNotExist(err) {
		return failWith(formatter, ExitCommandError, ErrCodeNotFound,
			fmt.Sprintf("labels file not found: %s", labelsFile), nil)
	}

	records, err := split.ReadFile(labelsFile)
	if err != nil {
		return failWith(formatter, ExitCommandError, ErrCodeBadInput, "failed to read labels", err)
	}
	formatter.VerboseLog("Read %d record(s) from %s", len(records), labelsFile)

	prof, err := profile.Resolve(opts.Profile)
	if err != nil {
		return failWith(formatter, ExitCommandError, ErrCodeProfile, "failed to load profile", err)
	}
	v := vocab.Default()
	if err := prof.Validate(v); err != nil {
		return failWith(formatter, ExitCommandError, ErrCodeProfile, "invalid profile", err)
	}
	rules, err := prof.Rules(v)
	if err != nil {
		return failWith(formatter, ExitCommandError, ErrCodeProfile, "invalid profile", err)
	}
	partitioner, err := split.NewPartitioner(v, rules, prof.SplitOptions())
	if err != nil {
		return failWith(formatter, ExitCommandError, ErrCodeProfile, "invalid profile", err)
	}

	res, err := partitioner.Partition(records)
	if err != nil {
		return failWith(formatter, ExitFailure, hardErrorCode(err), "partition failed", err)
	}

	files := []string{}
	if opts.OutDir != "" {
		files, err = split.WriteDir(opts.OutDir, res)
		if err != nil {
			return failWith(formatter, ExitCommandError, ErrCodeWriteFailed, "failed to write splits", err)
		}
	}

	summary := split.Summarize(res)
	if opts.Format == "json" {
		return formatter.Success(SplitResult{
			Profile: prof.Name,
			Total:   summary.Total,
			Splits:  summary.Counts,
			HeldOut: res.HeldOutMatches,
			Files:   files,
		})
	}

	fmt.Fprintf(formatter.Writer, "✓ Partitioned %d record(s) (profile %s)\n", summary.Total, prof.Name)
	printSummary(formatter.Writer, summary)
	for _, file := range files {
		fmt.Fprintf(formatter.Writer, "  wrote %s\n", file)
	}
	return nil
}

// printSummary writes one line per split with its count and share.
func printSummary(w io.Writer, s split.Summary) {
	for _, n := range split.Names {
		fmt.Fprintf(w, "  %-9s %6d  (%5.1f%%)\n", n, s.Counts[n], 100*s.Ratio(n))
	}
}
