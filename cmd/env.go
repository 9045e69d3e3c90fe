package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/gnodet/hnvm/pkg/tools"
	"github.com/spf13/cobra"
)

var (
	envShell string
)

// envCmd represents the env command
var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Output PATH setup for the project's hermetic Node.js",
	Long: `Install the Node.js version the current project requires and output the
shell statements putting its bin directory first on PATH.

Examples:
  # Bash/Zsh
  eval "$(hnvm env --shell bash)"

  # Fish
  hnvm env --shell fish | source

  # PowerShell
  Invoke-Expression (hnvm env --shell powershell | Out-String)`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}

		e, err := s.executor()
		if err != nil {
			return err
		}
		entry, err := e.Install(cmd.Context(), tools.ToolNode)
		if err != nil {
			return err
		}
		node, err := s.manager.GetTool(tools.ToolNode)
		if err != nil {
			return err
		}
		ep, err := node.Entrypoint(entry.Dir, tools.BinaryNode, s.manager.Platform())
		if err != nil {
			return err
		}
		return outputEnvironment(cmd.OutOrStdout(), envShell, []string{filepath.Dir(ep.Path)})
	},
}

func init() {
	envCmd.Flags().StringVar(&envShell, "shell", detectShell(), "shell type (bash, zsh, fish, powershell)")
}

// detectShell attempts to detect the current shell
func detectShell() string {
	shell := os.Getenv("SHELL")
	if shell != "" {
		if strings.Contains(shell, "bash") {
			return "bash"
		}
		if strings.Contains(shell, "zsh") {
			return "zsh"
		}
		if strings.Contains(shell, "fish") {
			return "fish"
		}
	}

	if runtime.GOOS == "windows" {
		return "powershell"
	}
	return "bash"
}

// outputEnvironment writes the PATH setup for shell
func outputEnvironment(w io.Writer, shell string, pathDirs []string) error {
	switch shell {
	case "bash", "zsh":
		return outputBashEnv(w, pathDirs)
	case "fish":
		return outputFishEnv(w, pathDirs)
	case "powershell":
		return outputPowerShellEnv(w, pathDirs)
	default:
		return fmt.Errorf("unsupported shell: %s", shell)
	}
}

// outputBashEnv outputs environment in bash/zsh format
func outputBashEnv(w io.Writer, pathDirs []string) error {
	if len(pathDirs) == 0 {
		return nil
	}
	escaped := strings.ReplaceAll(strings.Join(pathDirs, ":"), `"`, `\"`)
	_, err := fmt.Fprintf(w, "export PATH=\"%s:$PATH\"\n", escaped)
	return err
}

// outputFishEnv outputs environment in fish format
func outputFishEnv(w io.Writer, pathDirs []string) error {
	// Prepended in reverse so pathDirs[0] ends up first
	for i := len(pathDirs) - 1; i >= 0; i-- {
		escaped := strings.ReplaceAll(pathDirs[i], `"`, `\"`)
		if _, err := fmt.Fprintf(w, "set -gx PATH \"%s\" $PATH\n", escaped); err != nil {
			return err
		}
	}
	return nil
}

// outputPowerShellEnv outputs environment in PowerShell format
func outputPowerShellEnv(w io.Writer, pathDirs []string) error {
	if len(pathDirs) == 0 {
		return nil
	}
	escaped := strings.ReplaceAll(strings.Join(pathDirs, ";"), `"`, "`\"")
	_, err := fmt.Fprintf(w, "$env:PATH = \"%s;$env:PATH\"\n", escaped)
	return err
}
