package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// resolveCmd prints the version a project resolves to, without installing it
var resolveCmd = &cobra.Command{
	Use:   "resolve <node|npm|pnpm>",
	Short: "Print the version the project resolves a tool to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}

		if _, err := s.manager.GetTool(args[0]); err != nil {
			return err
		}
		e, err := s.executor()
		if err != nil {
			return err
		}
		req, err := e.Requirement(args[0])
		if err != nil {
			return err
		}
		res, err := e.ResolveVersion(cmd.Context(), req)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Version)
		return err
	},
}
