package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/verist/cdl/internal/constraint"
	"github.com/verist/cdl/internal/parser"
)

// ValidationResult is the data payload of a successful validate run.
type ValidationResult struct {
	Valid        bool   `json:"valid"`
	ConstraintID string `json:"constraint_id,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <definition-file>",
		Short: "Parse and halt-check a constraint definition",
		Long: `Parse a JSON or YAML constraint definition, verify its structure,
and run the static halt check. Nothing is evaluated.

A definition that fails the halt check (excessive depth or fan-out,
missing or over-long aggregation window) is rejected here, before any
record is ever tested against it.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	def, err := LoadDefinition(path)
	if err != nil {
		formatter.Error(ErrCodeLoad, err.Error(), nil)
		return NewExitError(ExitCommandError, "load failed")
	}

	if err := lintDefinition(def); err != nil {
		formatter.Error(ErrCodeSchema, "definition does not match any constraint shape", err.Error())
		return NewExitError(ExitCommandError, "schema lint failed")
	}
	formatter.VerboseLog("schema lint passed for %s", path)

	c, err := parser.Parse(def)
	if err != nil {
		code, details := classifyParse(err)
		formatter.Error(code, err.Error(), details)
		return NewExitError(ExitCommandError, "validation failed")
	}

	return formatter.SuccessText(
		"valid: "+c.ID(),
		ValidationResult{Valid: true, ConstraintID: c.ID()},
	)
}

// classifyParse maps structural errors to their output codes.
func classifyParse(err error) (code string, details interface{}) {
	var nte *parser.NonTerminatingError
	if errors.As(err, &nte) {
		return ErrCodeNonTerminating, map[string]string{
			"violation": string(nte.Violation.Code),
			"reason":    nte.Violation.Reason,
		}
	}
	var mde *constraint.MalformedDurationError
	if errors.As(err, &mde) {
		return ErrCodeMalformedDuration, map[string]string{"input": mde.Input}
	}
	var pe *parser.ParseError
	if errors.As(err, &pe) {
		return ErrCodeParse, map[string]string{"field": pe.Field}
	}
	return ErrCodeParse, nil
}
