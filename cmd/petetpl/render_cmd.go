package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pete-tpl/pete-core"
)

func newRenderCmd() *cobra.Command {
	var varsPath string
	cmd := &cobra.Command{
		Use:   "render <template-file>",
		Short: "Render a template file against a YAML variable store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			templateBytes, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading template file: %w", err)
			}
			vars, err := loadVars(varsPath)
			if err != nil {
				return err
			}
			logger.Debug("rendering template", "file", args[0], "vars_path", varsPath)

			out, err := petetpl.New().Render(string(templateBytes), vars)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&varsPath, "vars", "f", "", "path to a YAML file of template variables")
	return cmd
}
