package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// execCmd runs one of the wrapped binaries. Flags are not parsed so that
// every argument reaches the binary untouched.
var execCmd = &cobra.Command{
	Use:   "exec <node|npm|npx|pnpm|pnpx> [args...]",
	Short: "Run a tool with the version the project requires",
	Long: `Resolve the version the project requires, install it if needed, then
replace hnvm with the tool. Arguments are passed through unmodified.

Examples:
  hnvm exec node --version
  hnvm exec pnpm install --frozen-lockfile
  hnvm exec npx cowsay hello`,
	DisableFlagParsing: true,
	Args:               cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] == "-h" || args[0] == "--help" {
			return cmd.Help()
		}
		return runShim(cmd.Context(), args[0], args[1:])
	},
}

// IsShim reports whether hnvm was invoked under the name of a wrapped binary
func IsShim(name string) bool {
	return shimBinary(name) != ""
}

// shimBinary maps an executable name (node, npx.exe, pnpm.cmd...) to the binary it stands for
func shimBinary(name string) string {
	name = strings.ToLower(name)
	for _, ext := range []string{".exe", ".cmd"} {
		name = strings.TrimSuffix(name, ext)
	}
	switch name {
	case "node", "npm", "npx", "pnpm", "pnpx":
		return name
	}
	return ""
}

// RunShim runs binary on behalf of a multi-call invocation, reporting errors itself
func RunShim(ctx context.Context, name string, args []string) error {
	err := runShim(ctx, name, args)
	if err != nil {
		reportError(err)
	}
	endSession()
	return err
}

func runShim(ctx context.Context, name string, args []string) error {
	binary := shimBinary(name)
	if binary == "" {
		return fmt.Errorf("unknown binary %q: expected one of node, npm, npx, pnpm, pnpx", name)
	}

	s, err := newSession()
	if err != nil {
		return err
	}

	e, err := s.executor()
	if err != nil {
		return err
	}
	return e.Run(ctx, binary, args)
}
