package cmd

import (
	"github.com/gnodet/hnvm/pkg/tools"
	"github.com/spf13/cobra"
)

// installCmd downloads the versions a project requires without running anything
var installCmd = &cobra.Command{
	Use:   "install [node|npm|pnpm...]",
	Short: "Install the tool versions the project requires",
	Long: `Resolve and install the versions required by the nearest package.json.

Without arguments, node is installed along with npm and pnpm when the project
declares them in "engines".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}

		e, err := s.executor()
		if err != nil {
			return err
		}

		toolNames := args
		if len(toolNames) == 0 {
			toolNames = []string{tools.ToolNode}
			for _, name := range []string{tools.ToolNpm, tools.ToolPnpm} {
				declared, err := e.HasRequirement(name)
				if err != nil {
					return err
				}
				if declared {
					toolNames = append(toolNames, name)
				}
			}
		}
		for _, name := range toolNames {
			if _, err := s.manager.GetTool(name); err != nil {
				return err
			}
		}

		entries, err := e.InstallAll(cmd.Context(), toolNames)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			s.printer.Info("%s v%s installed in %s", entry.Key.Tool, entry.Key.Version, s.printer.Highlight(entry.Dir))
		}
		return nil
	},
}
