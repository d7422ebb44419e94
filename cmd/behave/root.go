package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zeusync/behave/internal/core/bt"
	"github.com/zeusync/behave/internal/core/loader"
	"github.com/zeusync/behave/internal/core/observability/log"
	"github.com/zeusync/behave/internal/injector"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "behave",
		Short:         "Behave loads, inspects and runs behavior trees",
		Long:          `Behave builds behavior trees from YAML or JSON definitions and ticks them against a blackboard.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error or silent")

	root.AddCommand(newValidateCmd(), newDescribeCmd(), newRunCmd())
	return root
}

// setup builds the shared infrastructure from the persistent flags.
func setup(cmd *cobra.Command) (*injector.App, error) {
	raw, _ := cmd.Flags().GetString("log-level")
	level, err := log.ParseLevel(raw)
	if err != nil {
		return nil, err
	}
	return injector.InitializeApp(injector.Options{LogLevel: level})
}

// loadTree reads a definition file and builds it.
func loadTree(app *injector.App, path string) (*loader.Definition, bt.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	def, err := loader.Load(path, f)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	root, err := def.Build(app.Registry, bt.WithLogger(app.Logger))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, root, nil
}
