package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zeusync/behave/internal/core/observability/log"
	"github.com/zeusync/behave/internal/inspector"
	"github.com/zeusync/behave/internal/runner"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Tick a tree until it finishes",
		Long: `Builds the tree, seeds a blackboard from the definition and ticks it at a fixed
interval until the root succeeds or fails, the tick limit is reached or the
process is interrupted. With --listen, tick reports are streamed over websocket.`,
		Args: cobra.ExactArgs(1),
		RunE: runTree,
	}
	cmd.Flags().Int("ticks", 0, "Stop after this many ticks (0 = no limit)")
	cmd.Flags().Duration("interval", runner.DefaultConfig().Interval, "Time between ticks")
	cmd.Flags().Bool("keep-running", false, "Keep ticking after the root succeeds or fails")
	cmd.Flags().String("listen", "", "Serve the inspector on this address, e.g. :7070")
	return cmd
}

func runTree(cmd *cobra.Command, args []string) error {
	app, err := setup(cmd)
	if err != nil {
		return err
	}
	def, root, err := loadTree(app, args[0])
	if err != nil {
		return err
	}

	cfg := runner.DefaultConfig()
	cfg.Name = def.Name
	cfg.MaxTicks, _ = cmd.Flags().GetInt("ticks")
	cfg.Interval, _ = cmd.Flags().GetDuration("interval")
	keep, _ := cmd.Flags().GetBool("keep-running")
	cfg.StopOnTerminal = !keep

	bb := def.NewBlackboard()
	r, err := runner.New(root, cfg,
		runner.WithLogger(app.Logger),
		runner.WithEventBus(app.Events),
		runner.WithObserver(app.Collector),
		runner.WithState(bb),
	)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if addr, _ := cmd.Flags().GetString("listen"); addr != "" {
		icfg := inspector.DefaultConfig()
		icfg.Addr = addr
		in, err := inspector.New(icfg, app.Events, app.Metrics, app.Logger)
		if err != nil {
			return err
		}
		if err = in.Start(ctx); err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := in.Stop(sctx); err != nil {
				app.Logger.Warn("inspector shutdown", log.Error(err))
			}
		}()
	}

	report, err := r.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %s after %d ticks\n", def.Name, report.Status, report.Seq)
	state, err := json.MarshalIndent(bb.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode blackboard: %w", err)
	}
	fmt.Fprintln(out, string(state))
	return nil
}
