package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/seaport-data/fixturewalk/adapter"
	"github.com/seaport-data/fixturewalk/laycan"
	"github.com/seaport-data/fixturewalk/mapping"
	"github.com/seaport-data/fixturewalk/pipeline"
	"github.com/seaport-data/fixturewalk/report"
)

var (
	normalizeInput       string
	normalizeOutput      string
	normalizeAnchor      string
	normalizeStrict      bool
	normalizeOnInvalid   string
	normalizeWorkers     int
	normalizeRejects     string
	normalizeProfilesDir string
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <adapter>",
	Short: "Normalize raw rows into canonical records",
	Long: `Normalize raw rows with a vendor adapter and write canonical records.

Input is JSON Lines or a JSON array of flat objects, one scraped row each.
Output is JSON Lines, one normalized record per line. Rows that cannot be
normalized are reported on stderr and, with --rejects, written as a
markdown table.

Arguments:
  adapter  Adapter name (see "fixturewalk adapters list")

Input defaults to stdin and output to stdout.

Examples:
  fixturewalk normalize gibson_lpg -i gibson.jsonl -o fixtures.jsonl
  fixturewalk normalize clarksons_fixtures --anchor 2018-11-05 -i rows.json
  fixturewalk normalize santos_lineup --strict --on-invalid fail < lineup.jsonl
  fixturewalk normalize banchero_costa -i bc.jsonl --rejects rejects.md`,
	Args: cobra.ExactArgs(1),
	RunE: runNormalize,
}

func init() {
	normalizeCmd.Flags().StringVarP(&normalizeInput, "input", "i", "", "Input file (default: stdin)")
	normalizeCmd.Flags().StringVarP(&normalizeOutput, "output", "o", "", "Output file (default: stdout)")
	normalizeCmd.Flags().StringVar(&normalizeAnchor, "anchor", "", "Reported date for rows without their own (e.g. 2018-11-26)")
	normalizeCmd.Flags().BoolVar(&normalizeStrict, "strict", false, "Reject rows with unmapped columns")
	normalizeCmd.Flags().StringVar(&normalizeOnInvalid, "on-invalid", "", "Schema failure policy: drop, passthrough or fail")
	normalizeCmd.Flags().IntVar(&normalizeWorkers, "workers", 0, "Concurrent rows (default: number of CPUs)")
	normalizeCmd.Flags().StringVar(&normalizeRejects, "rejects", "", "Write rejected rows as a markdown report")
	normalizeCmd.Flags().StringVar(&normalizeProfilesDir, "profiles-dir", "", "Directory of profile overrides")
}

func runNormalize(cmd *cobra.Command, args []string) (err error) {
	a, err := lookupAdapter(cmd, args[0], normalizeProfilesDir)
	if err != nil {
		return err
	}

	records, err := readRows(normalizeInput)
	if err != nil {
		return err
	}

	opts, err := pipelineOptions(cmd, normalizeAnchor, normalizeStrict, normalizeOnInvalid, normalizeWorkers)
	if err != nil {
		return err
	}

	res, err := pipeline.Run(cmd.Context(), a, records, opts)
	if err != nil {
		return err
	}

	out, err := createOutput(normalizeOutput)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing output file: %w", cerr)
		}
	}()
	if err := pipeline.WriteRecords(out, res.Records); err != nil {
		return fmt.Errorf("writing records: %w", err)
	}

	if normalizeRejects != "" {
		if err := writeRejects(normalizeRejects, res); err != nil {
			return err
		}
	}

	fmt.Fprintln(cmd.ErrOrStderr(), report.Summary(res))
	return nil
}

// lookupAdapter resolves an adapter by name. A --profiles-dir flag wins
// over the configured directory.
func lookupAdapter(cmd *cobra.Command, name, profilesDir string) (adapter.Adapter, error) {
	dir := cfg.ProfilesDir
	if cmd.Flags().Changed("profiles-dir") {
		dir = profilesDir
	}
	adapters, err := loadAdapters(dir)
	if err != nil {
		return nil, err
	}
	return adapters.Lookup(name)
}

func readRows(path string) (records []mapping.RawRecord, err error) {
	in, name, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := in.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing input file: %w", cerr)
		}
	}()

	records, err = pipeline.ReadRecords(in)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	slog.Debug("read input", "source", name, "rows", len(records))
	return records, nil
}

// pipelineOptions starts from the configuration and applies the flags the
// user set explicitly.
func pipelineOptions(cmd *cobra.Command, anchor string, strict bool, onInvalid string, workers int) (pipeline.Options, error) {
	opts := cfg.PipelineOptions()
	flags := cmd.Flags()

	if flags.Changed("strict") {
		opts.Strict = strict
	}
	if flags.Changed("on-invalid") {
		policy, err := pipeline.ParseOnInvalid(onInvalid)
		if err != nil {
			return opts, err
		}
		opts.OnInvalid = policy
	}
	if flags.Changed("workers") {
		opts.Workers = workers
	}
	if anchor != "" {
		t, err := laycan.ParseAnchor(anchor)
		if err != nil {
			return opts, fmt.Errorf("--anchor: %w", err)
		}
		opts.Anchor = t
	}

	schemas, err := loadSchemas(cfg.SchemasDir)
	if err != nil {
		return opts, err
	}
	opts.Validator = schemas
	opts.Logger = slog.Default()
	return opts, nil
}

func writeRejects(path string, res *pipeline.Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating rejects file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing rejects file: %w", cerr)
		}
	}()
	return report.Markdown(f, res)
}
