package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zeusync/behave/internal/core/bt"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check that a tree definition builds",
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
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d nodes, fingerprint %016x)\n",
				def.Name, bt.Count(root), bt.Fingerprint(root))
			return nil
		},
	}
}
