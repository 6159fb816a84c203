package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pete-tpl/pete-core"
)

func newDebugStructureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debug-structure <template-file>",
		Short: "Build a template and print its node tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			templateBytes, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading template file: %w", err)
			}
			out, err := petetpl.New().DebugPrintStructure(string(templateBytes))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	return cmd
}
