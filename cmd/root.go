// Package cmd provides CLI commands for fixturewalk.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/seaport-data/fixturewalk/adapter"
	"github.com/seaport-data/fixturewalk/config"
	"github.com/seaport-data/fixturewalk/mapping"
	"github.com/seaport-data/fixturewalk/schema"
)

var (
	cfgFile string
	cfg     = config.Default()
)

func setupLogger(level slog.Level) {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewTextHandler(os.Stderr, opts)
	logger := slog.New(handler)

	slog.SetDefault(logger)
}

var rootCmd = &cobra.Command{
	Use:   "fixturewalk",
	Short: "Normalize maritime market reports into canonical records",
	Long: `Fixturewalk turns scraped broker fixture lists, port line-ups, customs
manifests and statistics tables into canonical records.

Each vendor layout is an adapter backed by a YAML mapping profile. Relative
dates such as "29-01/12" or "END OCT" are resolved against the report's
publication date.

Examples:
  fixturewalk normalize gibson_lpg -i gibson.jsonl -o fixtures.jsonl
  fixturewalk normalize clarksons_fixtures --anchor 2018-11-05 < rows.json
  fixturewalk resolve "30-01 APR" --anchor 2019-08-17 --explain
  fixturewalk adapters list
  fixturewalk validate santos_lineup -i lineup.jsonl`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(); err != nil {
			return err
		}
		c, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = c
		setupLogger(cfg.Level())
		return nil
	},
}

// Execute runs the root command. An interrupt cancels the running batch.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	level, _ := config.ParseLevel(os.Getenv(config.EnvLogLevel))
	setupLogger(level)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML configuration file")

	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(adaptersCmd)
}

// loadAdapters builds the adapter registry from the embedded profiles and
// any profiles in dir, which override embedded ones by name.
func loadAdapters(dir string) (*adapter.Registry, error) {
	profiles, err := mapping.NewProfileRegistry()
	if err != nil {
		return nil, err
	}
	if dir != "" {
		if err := profiles.LoadFromDirectory(dir); err != nil {
			return nil, fmt.Errorf("loading profiles from %s: %w", dir, err)
		}
	}
	return adapter.FromProfiles(profiles)
}

// loadSchemas builds the schema registry, with overrides from dir.
func loadSchemas(dir string) (*schema.Registry, error) {
	schemas, err := schema.NewDefaultRegistry()
	if err != nil {
		return nil, err
	}
	if dir != "" {
		if err := schemas.LoadFromPath(dir); err != nil {
			return nil, fmt.Errorf("loading schemas from %s: %w", dir, err)
		}
	}
	return schemas, nil
}

// openInput opens path, or stdin when path is empty or "-".
func openInput(path string) (io.ReadCloser, string, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), "stdin", nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening input file: %w", err)
	}
	return f, path, nil
}

// createOutput creates path, or returns stdout when path is empty or "-".
func createOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
