package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zeusync/behave/internal/core/bt"
)

func newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe FILE",
		Short: "Print the shape of a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(cmd)
			if err != nil {
				return err
			}
			def, root, err := loadTree(app, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if def.Description != "" {
				fmt.Fprintf(out, "# %s\n", def.Description)
			}
			fmt.Fprint(out, bt.Describe(root))
			return nil
		},
	}
}
