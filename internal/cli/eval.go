package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/verist/cdl/internal/engine"
	"github.com/verist/cdl/internal/journal"
	"github.com/verist/cdl/internal/parser"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Journal string
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <definition-file> <record-file>",
		Short: "Evaluate a constraint against a record",
		Long: `Parse and halt-check a constraint definition, then evaluate it
against a record and print the verdict.

Exit code 0 means the constraint passed, 1 means it failed, 2 means the
definition or record could not be processed at all.

Example:
  cdl eval spend-limit.json payment.json --journal audit.db`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "append the verdict to a journal database at this path")

	return cmd
}

func runEval(opts *EvalOptions, defPath, recordPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	def, err := LoadDefinition(defPath)
	if err != nil {
		formatter.Error(ErrCodeLoad, err.Error(), nil)
		return NewExitError(ExitCommandError, "load failed")
	}
	c, err := parser.Parse(def)
	if err != nil {
		code, details := classifyParse(err)
		formatter.Error(code, err.Error(), details)
		return NewExitError(ExitCommandError, "parse failed")
	}
	record, err := LoadRecord(recordPath)
	if err != nil {
		formatter.Error(ErrCodeLoad, err.Error(), nil)
		return NewExitError(ExitCommandError, "load failed")
	}

	result := engine.New().Evaluate(c, record)

	if opts.Journal != "" {
		if err := journalVerdict(cmd, opts.Journal, result); err != nil {
			formatter.Error(ErrCodeJournal, err.Error(), nil)
			return NewExitError(ExitCommandError, "journal write failed")
		}
	}

	if err := formatter.SuccessText(renderResult(result), result); err != nil {
		return err
	}
	if !result.Passed {
		return NewExitError(ExitFailure, "constraint failed")
	}
	return nil
}

func journalVerdict(cmd *cobra.Command, path string, result engine.Result) error {
	j, err := journal.Open(path)
	if err != nil {
		return err
	}
	defer j.Close()

	token := journal.UUIDv7Generator{}.Generate()
	verdict := journal.Verdict{
		RunToken:     token,
		ConstraintID: result.ConstraintID,
		Passed:       result.Passed,
		Message:      result.Message,
		Timestamp:    result.Timestamp,
		Fingerprint:  result.Fingerprint,
	}
	if err := j.Append(cmd.Context(), verdict); err != nil {
		return err
	}

	slog.Info("verdict journaled",
		"run_token", token,
		"constraint_id", result.ConstraintID,
		"passed", result.Passed,
	)
	return nil
}

func renderResult(r engine.Result) string {
	verdict := "PASS"
	if !r.Passed {
		verdict = "FAIL"
	}
	if r.Message != "" {
		return fmt.Sprintf("%s %s: %s", verdict, r.ConstraintID, r.Message)
	}
	return fmt.Sprintf("%s %s", verdict, r.ConstraintID)
}
