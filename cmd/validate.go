package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seaport-data/fixturewalk/pipeline"
	"github.com/seaport-data/fixturewalk/report"
)

var (
	validateInput       string
	validateAnchor      string
	validateStrict      bool
	validateProfilesDir string
)

var validateCmd = &cobra.Command{
	Use:   "validate <adapter>",
	Short: "Check raw rows without writing records",
	Long: `Validate raw rows by running them through an adapter and the schema
validator, then print a markdown report of every rejected row.

No records are written. The command fails when any row is rejected, which
makes it usable as a check before a scraper change is deployed.

Arguments:
  adapter  Adapter name (see "fixturewalk adapters list")

Input defaults to stdin.

Examples:
  fixturewalk validate gibson_lpg -i gibson.jsonl
  fixturewalk validate clarksons_fixtures --anchor 2018-11-05 < rows.json`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateInput, "input", "i", "", "Input file (default: stdin)")
	validateCmd.Flags().StringVar(&validateAnchor, "anchor", "", "Reported date for rows without their own")
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Reject rows with unmapped columns")
	validateCmd.Flags().StringVar(&validateProfilesDir, "profiles-dir", "", "Directory of profile overrides")
}

func runValidate(cmd *cobra.Command, args []string) error {
	a, err := lookupAdapter(cmd, args[0], validateProfilesDir)
	if err != nil {
		return err
	}

	records, err := readRows(validateInput)
	if err != nil {
		return err
	}

	opts, err := pipelineOptions(cmd, validateAnchor, validateStrict, "", 0)
	if err != nil {
		return err
	}
	opts.OnInvalid = pipeline.InvalidDrop

	res, err := pipeline.Run(cmd.Context(), a, records, opts)
	if err != nil {
		return err
	}

	if err := report.Markdown(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	if n := len(res.Rejected); n > 0 {
		return fmt.Errorf("%d of %d rows rejected", n, res.Total)
	}
	return nil
}
