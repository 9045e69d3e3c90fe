package cmd

import (
	"fmt"

	"github.com/gnodet/hnvm/pkg/resolve"
	"github.com/spf13/cobra"
)

// matchCmd exposes the version matcher through a JSON request read from stdin
var matchCmd = &cobra.Command{
	Use:   "match [tool]",
	Short: "Match a version range read from stdin",
	Long: `Read a JSON request from stdin and print the matching version on stdout.

The request holds "desiredVersionRange" and either "availableVersionsColonDelimited"
(versions separated by colons, the first match wins) or "npmPackageInfo" (a registry
document, the greatest match or the dist-tag wins).

Example:
  echo '{"desiredVersionRange": "^14", "availableVersionsColonDelimited": "16.0.0:14.18.0"}' | hnvm match`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := newSession(); err != nil {
			return err
		}

		tool := "node"
		if len(args) == 1 {
			tool = args[0]
		}
		res, err := resolve.Match(tool, cmd.InOrStdin())
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), resolve.FormatResult(res))
		return err
	},
}
