package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/labelgen/internal/label"
	"github.com/roach88/labelgen/internal/pipeline"
	"github.com/roach88/labelgen/internal/profile"
	"github.com/roach88/labelgen/internal/scene"
	"github.com/roach88/labelgen/internal/split"
)

// LabelOptions holds flags for the label command.
type LabelOptions struct {
	*RootOptions
	Profile   string
	VideosDir string
}

// LabelResult is the JSON payload of the label command.
type LabelResult struct {
	Scene     string         `json:"scene"`
	Video     string         `json:"video"`
	Tokens    []string       `json:"tokens"`
	Encoded   []int          `json:"encoded"`
	Line      string         `json:"line"`
	RecordID  string         `json:"record_id"`
	Overlap   *label.Overlap `json:"overlap,omitempty"`
	Conflicts int            `json:"conflicts"`
}

// NewLabelCommand creates the label command.
func NewLabelCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LabelOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "label <scene-file>",
		Short: "Derive the label of a single scene",
		Long: `Derive the token sequence and encoded label of one scene file.

A scene that would be skipped during generate is reported with its
reason and exit code 1.

Examples:
  labelgen label ./scenes/CLEVR_new_000001.json
  labelgen label ./scenes/CLEVR_new_000001.json --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLabel(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Profile, "profile", profile.DefaultName, "built-in profile name or profile .cue file")
	cmd.Flags().StringVar(&opts.VideosDir, "videos", "", "directory that must contain the referenced video")

	return cmd
}

func runLabel(opts *LabelOptions, sceneFile string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if _, err := os.Stat(sceneFile); os.IsNotExist(err) {
		return failWith(formatter, ExitCommandError, ErrCodeNotFound,
			fmt.Sprintf("scene file not found: %s", sceneFile), nil)
	}

	prof, err := profile.Resolve(opts.Profile)
	if err != nil {
		return failWith(formatter, ExitCommandError, ErrCodeProfile, "failed to load profile", err)
	}

	proc, err := pipeline.NewProcessor(prof, nil, scene.FileVideos{Dir: opts.VideosDir},
		newLogger(opts.RootOptions, formatter.GetErrWriter()))
	if err != nil {
		return failWith(formatter, ExitCommandError, ErrCodeProfile, "invalid profile", err)
	}

	sr, err := proc.ProcessFile(sceneFile)
	if err != nil {
		return failWith(formatter, ExitFailure, hardErrorCode(err), "labelling failed", err)
	}
	if !sr.Accepted() {
		_ = formatter.Error(ErrCodeSkipped, sr.Skip.Error(), map[string]string{
			"scene":  sr.Scene,
			"reason": sr.Reason(),
		})
		return WrapExitError(ExitFailure, "scene skipped", sr.Skip)
	}

	out := LabelResult{
		Scene:     sr.Scene,
		Video:     sr.Video,
		Tokens:    sr.Label.Tokens,
		Encoded:   sr.Label.Encoded,
		Line:      split.FormatLine(split.Record{Video: sr.Video, Label: sr.Label.Encoded}),
		RecordID:  sr.RecordID,
		Overlap:   sr.Label.Overlap,
		Conflicts: sr.Label.Conflicts,
	}
	if opts.Format == "json" {
		return formatter.Success(out)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ %s (%s)\n", out.Scene, out.Video)
	fmt.Fprintf(w, "  tokens:  %s\n", strings.Join(out.Tokens, " "))
	fmt.Fprintf(w, "  encoded: %s\n", out.Line)
	if out.Overlap != nil {
		fmt.Fprintf(w, "  overlap: main event %d, sub event %d (%d conflicting pair(s))\n",
			out.Overlap.Main, out.Overlap.Sub, out.Conflicts)
	}
	formatter.VerboseLog("record id %s", out.RecordID)
	return nil
}
