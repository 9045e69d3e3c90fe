package cmd

import (
	"fmt"
	"time"

	"github.com/gnodet/hnvm/pkg/cache"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the version cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list [tool]",
	Short: "List installed versions",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}

		store := cache.NewStore(s.settings.Path)
		toolNames := args
		if len(toolNames) == 0 {
			if toolNames, err = store.Tools(); err != nil {
				return err
			}
		}

		var rows [][]string
		for _, name := range toolNames {
			entries, err := store.Entries(name)
			if err != nil {
				return err
			}
			for _, entry := range entries {
				rows = append(rows, []string{
					entry.Key.Tool,
					entry.Key.Version,
					entry.Key.Variant,
					entry.Metadata.InstalledAt.Local().Format(time.DateTime),
				})
			}
		}
		if len(rows) == 0 {
			s.printer.Info("No versions installed in %s", store.Root())
			return nil
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.Header([]string{"Tool", "Version", "Variant", "Installed"})
		if err := table.Bulk(rows); err != nil {
			return err
		}
		return table.Render()
	},
}

var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the cache root directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), s.settings.Path)
		return err
	},
}

func init() {
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cachePathCmd)
}
