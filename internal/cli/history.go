package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verist/cdl/internal/journal"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Journal string
	Limit   int
	Run     string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled verdicts",
		Long: `List verdicts recorded in a journal database, newest first.
With --run, lists the verdicts of one run in append order instead.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "journal database path (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum verdicts to list")
	cmd.Flags().StringVar(&opts.Run, "run", "", "list only this run token's verdicts")
	cmd.MarkFlagRequired("journal")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	j, err := journal.Open(opts.Journal)
	if err != nil {
		formatter.Error(ErrCodeJournal, err.Error(), nil)
		return NewExitError(ExitCommandError, "journal open failed")
	}
	defer j.Close()

	var verdicts []journal.Verdict
	if opts.Run != "" {
		verdicts, err = j.ByRun(cmd.Context(), opts.Run)
	} else {
		verdicts, err = j.Recent(cmd.Context(), opts.Limit)
	}
	if err != nil {
		formatter.Error(ErrCodeJournal, err.Error(), nil)
		return NewExitError(ExitCommandError, "journal read failed")
	}

	return formatter.SuccessText(renderVerdicts(verdicts), verdicts)
}

func renderVerdicts(verdicts []journal.Verdict) string {
	if len(verdicts) == 0 {
		return "no verdicts"
	}

	var b strings.Builder
	for i, v := range verdicts {
		if i > 0 {
			b.WriteByte('\n')
		}
		verdict := "PASS"
		if !v.Passed {
			verdict = "FAIL"
		}
		ts := time.UnixMilli(v.Timestamp).UTC().Format(time.RFC3339)
		fmt.Fprintf(&b, "%s  %s %s  run=%s", ts, verdict, v.ConstraintID, v.RunToken)
		if v.Message != "" {
			fmt.Fprintf(&b, "  %s", v.Message)
		}
	}
	return b.String()
}
