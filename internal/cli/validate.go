package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/labelgen/internal/profile"
	"github.com/roach88/labelgen/internal/vocab"
)

// ValidationError is one problem found in a profile.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool              `json:"valid"`
	Profile string            `json:"profile,omitempty"`
	Hash    string            `json:"hash,omitempty"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <profile>",
		Short: "Validate a dataset profile",
		Long: `Validate a CUE dataset profile without labelling anything.

Checks the profile against the schema, that the windows tile the frame
range, and that every held-out field names a symbol of its category.
The argument may be a built-in profile name or a .cue file.

Examples:
  labelgen validate ./profiles/custom.cue
  labelgen validate v2 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, ref string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	prof, err := profile.Resolve(ref)
	if err != nil {
		return outputValidationErrors(formatter, []ValidationError{toValidationError(err)})
	}
	formatter.VerboseLog("Loaded profile %s from %s", prof.Name, ref)

	if err := prof.Validate(vocab.Default()); err != nil {
		return outputValidationErrors(formatter, []ValidationError{toValidationError(err)})
	}

	hash, err := prof.Hash()
	if err != nil {
		return failWith(formatter, ExitFailure, ErrCodeGeneric, "failed to hash profile", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Profile: prof.Name, Hash: hash})
	}
	fmt.Fprintf(formatter.Writer, "✓ Profile %s valid\n", prof.Name)
	fmt.Fprintf(formatter.Writer, "  %d held-out combination(s), hash %s\n", len(prof.HeldOut), hash)
	return nil
}

// toValidationError extracts the field and source line of a profile error.
func toValidationError(err error) ValidationError {
	var perr *profile.ProfileError
	if errors.As(err, &perr) {
		ve := ValidationError{Field: perr.Field, Message: perr.Message, Code: ErrCodeProfile}
		if perr.Pos.IsValid() {
			ve.Line = perr.Pos.Line()
		}
		return ve
	}
	return ValidationError{Field: "profile", Message: err.Error(), Code: ErrCodeProfile}
}

// outputValidationErrors outputs validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
