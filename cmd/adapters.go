package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seaport-data/fixturewalk/adapter"
	"github.com/seaport-data/fixturewalk/mapping"
	"github.com/seaport-data/fixturewalk/report"
)

var adaptersProfilesDir string

var adaptersCmd = &cobra.Command{
	Use:   "adapters",
	Short: "List and inspect vendor adapters",
	Long:  `List and inspect the vendor adapters and the mapping profiles behind them.`,
}

var adaptersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available adapters",
	RunE: func(cmd *cobra.Command, args []string) error {
		adapters, err := loadAdapters(profilesDir(cmd))
		if err != nil {
			return err
		}

		names := adapters.List()
		if len(names) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No adapters found")
			return nil
		}

		rows := make([][]string, 0, len(names))
		for _, name := range names {
			a, _ := adapters.Get(name)
			rows = append(rows, []string{name, string(a.Kind()), a.Description()})
		}
		lines := report.Table([]string{"Adapter", "Kind", "Description"}, rows)
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(lines, "\n"))
		return nil
	},
}

var adaptersShowCmd = &cobra.Command{
	Use:   "show <adapter>",
	Short: "Show the mapping profile behind an adapter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		adapters, err := loadAdapters(profilesDir(cmd))
		if err != nil {
			return err
		}
		a, err := adapters.Lookup(args[0])
		if err != nil {
			return err
		}

		pa, ok := a.(*adapter.ProfileAdapter)
		if !ok {
			return fmt.Errorf("adapter %s has no mapping profile", a.Name())
		}

		// Print as YAML
		out, err := mapping.MarshalYAML(pa.Profile())
		if err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func profilesDir(cmd *cobra.Command) string {
	if cmd.Flags().Changed("profiles-dir") {
		return adaptersProfilesDir
	}
	return cfg.ProfilesDir
}

func init() {
	adaptersCmd.PersistentFlags().StringVar(&adaptersProfilesDir, "profiles-dir", "", "Directory of profile overrides")
	adaptersCmd.AddCommand(adaptersListCmd)
	adaptersCmd.AddCommand(adaptersShowCmd)
}
