package cmd

import (
	"errors"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/seaport-data/fixturewalk/laycan"
)

var (
	resolveAnchor   string
	resolveLocales  []string
	resolveRollover string
	resolveExplain  bool
)

// explainConfig dumps expression fields rather than their String form.
var explainConfig = spew.ConfigState{Indent: "  ", DisableMethods: true, DisablePointerAddresses: true}

var resolveCmd = &cobra.Command{
	Use:   "resolve <expression>",
	Short: "Resolve a relative date expression",
	Long: `Resolve a laycan or period expression against a reported date and print
the start and end dates.

An expression that cannot be parsed prints the null range; it is not an
error, matching how records are normalized.

Examples:
  fixturewalk resolve "29-01/12" --anchor 2018-11-26
  fixturewalk resolve "30-01 APR" --anchor 2019-08-17 --rollover shift_month
  fixturewalk resolve "3-5 DIC" --anchor 2018-11-26 --locale it
  fixturewalk resolve "END OCT" --anchor 2018-10-02 --explain`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveAnchor, "anchor", "", "Reported date (e.g. 2018-11-26)")
	resolveCmd.Flags().StringSliceVar(&resolveLocales, "locale", nil, "Localized month names to accept (it, es, pt)")
	resolveCmd.Flags().StringVar(&resolveRollover, "rollover", "month_end", "Previous-month policy: month_end or shift_month")
	resolveCmd.Flags().BoolVar(&resolveExplain, "explain", false, "Dump the classified expression")
	_ = resolveCmd.MarkFlagRequired("anchor")
}

func runResolve(cmd *cobra.Command, args []string) error {
	anchor, err := laycan.ParseAnchor(resolveAnchor)
	if err != nil {
		return fmt.Errorf("--anchor: %w", err)
	}
	rollover, err := laycan.ParseRollover(resolveRollover)
	if err != nil {
		return err
	}

	r := laycan.New(laycan.WithLocales(resolveLocales...), laycan.WithRollover(rollover))
	expr := r.Classify(args[0])

	out := cmd.OutOrStdout()
	if resolveExplain {
		fmt.Fprintf(out, "expression: %s\n", expr)
		explainConfig.Fdump(out, expr)
	}

	rng, err := r.ResolveExpression(expr, anchor)
	if err != nil && !errors.Is(err, laycan.ErrUnparseable) {
		return err
	}
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
	}

	start, end := rng.ISO()
	if rng.IsZero() {
		start, end = "null", "null"
	}
	fmt.Fprintf(out, "%s\t%s\n", start, end)
	return nil
}
