package cmd

import (
	"github.com/spf13/cobra"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective hnvm configuration",
	Long: `Show the effective configuration as YAML.

Settings come from HNVM_* environment variables and the optional config.yaml
file in the cache root ($HNVM_PATH, ~/.hnvm by default). Environment variables win.

Example config.yaml:
  node-variant: musl
  skip-checksum: false
  registry-url: https://npm.mycompany.net
  url-replacements:
    - match: nodejs.org
      replace: nodejs-mirror.mycompany.net
    - match: "regex:^http://(.+)"
      replace: "https://$1"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}

		out, err := s.settings.YAML()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}
