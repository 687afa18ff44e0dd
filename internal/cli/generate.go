package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/labelgen/internal/metrics"
	"github.com/roach88/labelgen/internal/pipeline"
	"github.com/roach88/labelgen/internal/profile"
	"github.com/roach88/labelgen/internal/split"
	"github.com/roach88/labelgen/internal/store"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	OutDir      string
	VideosDir   string
	Database    string
	Profile     string
	MetricsFile string

	// RunIDs allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs pipeline.RunIDGenerator
}

// GenerateResult is the JSON payload of a generate run.
type GenerateResult struct {
	RunID    string             `json:"run_id"`
	Profile  string             `json:"profile"`
	Scenes   int                `json:"scenes"`
	Accepted int                `json:"accepted"`
	Skipped  map[string]int     `json:"skipped"`
	Splits   map[split.Name]int `json:"splits"`
	HeldOut  map[string]int     `json:"held_out"`
	Files    []string           `json:"files"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	return newGenerateCommand(&GenerateOptions{RootOptions: rootOpts})
}

func newGenerateCommand(opts *GenerateOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [scenes-dir]",
		Short: "Label a scenes directory and write the split files",
		Long: `Label every *.json scene in a directory, in file-name order, and write
train.txt, val.txt, test.txt and test_val.txt to the output directory.

Scenes that cannot be labelled are skipped with a reason. An unknown
symbol or a broken label aborts the whole run without writing splits.

Defaults come from LABELGEN_SCENES_DIR, LABELGEN_VIDEOS_DIR,
LABELGEN_OUT_DIR, LABELGEN_DB, LABELGEN_PROFILE and
LABELGEN_METRICS_FILE. Flags take precedence.

Exit codes:
  0 - Run completed
  1 - Run aborted by a hard error
  2 - Command error (missing directory, bad profile, etc.)

Examples:
  labelgen generate ./scenes --out ./lists
  labelgen generate ./scenes --videos ./videos --db ./runs.db
  labelgen generate ./scenes --profile v2 --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			scenesDir := ""
			if len(args) == 1 {
				scenesDir = args[0]
			}
			return runGenerate(opts, scenesDir, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.OutDir, "out", "o", "", "directory for the split files (default \".\")")
	cmd.Flags().StringVar(&opts.VideosDir, "videos", "", "directory that must contain every referenced video")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the SQLite run ledger")
	cmd.Flags().StringVar(&opts.Profile, "profile", "", "built-in profile name or profile .cue file (default \"v1\")")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus textfile metrics here")

	return cmd
}

// applyEnv fills flags the user did not set from the environment.
func (o *GenerateOptions) applyEnv(cmd *cobra.Command, scenesDir string, e profile.Env) string {
	overlay := func(flag string, dst *string, val string) {
		if !cmd.Flags().Changed(flag) {
			*dst = val
		}
	}
	overlay("out", &o.OutDir, e.OutDir)
	overlay("videos", &o.VideosDir, e.VideosDir)
	overlay("db", &o.Database, e.DB)
	overlay("profile", &o.Profile, e.Profile)
	overlay("metrics-file", &o.MetricsFile, e.MetricsFile)
	if scenesDir == "" {
		return e.ScenesDir
	}
	return scenesDir
}

func runGenerate(opts *GenerateOptions, scenesDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	env, err := profile.ParseEnv()
	if err != nil {
		return failWith(formatter, ExitCommandError, ErrCodeGeneric, "invalid environment", err)
	}
	scenesDir = opts.applyEnv(cmd, scenesDir, env)

	if scenesDir == "" {
		return failWith(formatter, ExitCommandError, ErrCodeNotFound,
			"scenes directory is required (argument or LABELGEN_SCENES_DIR)", nil)
	}
	if info, err := os.Stat(scenesDir); err != nil || !info.IsDir() {
		return failWith(formatter, ExitCommandError, ErrCodeNotFound,
			fmt.Sprintf("scenes directory not found: %s", scenesDir), nil)
	}
	if opts.VideosDir != "" {
		if info, err := os.Stat(opts.VideosDir); err != nil || !info.IsDir() {
			return failWith(formatter, ExitCommandError, ErrCodeNotFound,
				fmt.Sprintf("videos directory not found: %s", opts.VideosDir), nil)
		}
	}

	prof, err := profile.Resolve(opts.Profile)
	if err != nil {
		return failWith(formatter, ExitCommandError, ErrCodeProfile, "failed to load profile", err)
	}
	formatter.VerboseLog("Using profile %s", prof.Name)

	if opts.OutDir != "" {
		if err := os.MkdirAll(opts.OutDir, 0755); err != nil {
			return failWith(formatter, ExitCommandError, ErrCodeWriteFailed, "failed to create output directory", err)
		}
	}

	var st *store.Store
	if opts.Database != "" {
		formatter.VerboseLog("Opening ledger %s", opts.Database)
		st, err = store.Open(opts.Database)
		if err != nil {
			return failWith(formatter, ExitCommandError, ErrCodeLedger, "failed to open ledger", err)
		}
		defer st.Close()
	}

	// Stop between scenes on Ctrl-C; the run is then marked failed.
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := pipeline.Run(ctx, pipeline.Config{
		ScenesDir:   scenesDir,
		VideosDir:   opts.VideosDir,
		OutDir:      opts.OutDir,
		Profile:     prof,
		Store:       st,
		Metrics:     metrics.NewRecorder(),
		MetricsFile: opts.MetricsFile,
		RunIDs:      opts.RunIDs,
		Logger:      newLogger(opts.RootOptions, formatter.GetErrWriter()),
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return failWith(formatter, ExitFailure, ErrCodeRunFailed, "run cancelled", err)
		}
		return failWith(formatter, ExitFailure, hardErrorCode(err), "run aborted", err)
	}

	out := GenerateResult{
		RunID:    res.RunID,
		Profile:  prof.Name,
		Scenes:   len(res.Scenes),
		Accepted: res.Accepted(),
		Skipped:  res.Skipped,
		Splits:   res.Summary.Counts,
		HeldOut:  res.Split.HeldOutMatches,
		Files:    res.Files,
	}
	if out.Files == nil {
		out.Files = []string{}
	}

	if opts.Format == "json" {
		return formatter.Success(out)
	}
	printGenerateText(formatter, out, res.Summary)
	return nil
}

func printGenerateText(f *OutputFormatter, out GenerateResult, summary split.Summary) {
	w := f.Writer
	fmt.Fprintf(w, "✓ Run %s (profile %s)\n", out.RunID, out.Profile)
	fmt.Fprintf(w, "  %d scene(s): %d labelled, %d skipped\n", out.Scenes, out.Accepted, out.Scenes-out.Accepted)

	for _, reason := range sortedKeys(out.Skipped) {
		fmt.Fprintf(w, "    skipped %-22s %d\n", reason, out.Skipped[reason])
	}
	printSummary(w, summary)
	for _, name := range sortedKeys(out.HeldOut) {
		fmt.Fprintf(w, "    held out by %-18s %d\n", name, out.HeldOut[name])
	}
	for _, file := range out.Files {
		fmt.Fprintf(w, "  wrote %s\n", file)
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
