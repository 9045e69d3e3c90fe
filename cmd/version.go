package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display version information for hnvm including version number,
commit hash, build date, and runtime information.`,
	Run: func(cmd *cobra.Command, args []string) {
		showVersion(cmd)
	},
}

func showVersion(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "hnvm version %s\n", version)

	if verbose {
		fmt.Fprintf(out, "Commit:      %s\n", commit)
		fmt.Fprintf(out, "Built:       %s\n", date)
		fmt.Fprintf(out, "Go version:  %s\n", runtime.Version())
		fmt.Fprintf(out, "OS/Arch:     %s/%s\n", runtime.GOOS, runtime.GOARCH)
	}
}
