package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/oukeidos/vekotin/internal/config"
	"github.com/oukeidos/vekotin/internal/uiloop"
)

func newWatchCmd(opts *globalOptions) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print configuration changes as they happen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()
			return runWatch(ctx, cmd.OutOrStdout(), opts, debounce)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().DurationVar(&debounce, "debounce", config.DefaultDebounce, "Quiet time before a changed file is reloaded")
	return cmd
}

func runWatch(ctx context.Context, out io.Writer, opts *globalOptions, debounce time.Duration) error {
	loop := uiloop.New()
	store, err := openWatchedStore(opts,
		config.WithDispatcher(loop),
		config.WithDebounce(debounce),
	)
	if err != nil {
		return err
	}

	sub := store.SubscribeFunc(func(c config.Change) {
		fmt.Fprintln(out, formatChange(c))
	})
	defer sub.Unsubscribe()

	fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", store.Path())
	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func formatChange(c config.Change) string {
	active := 0
	for _, ws := range c.Snapshot.Widgets {
		if ws.Active {
			active++
		}
	}
	return fmt.Sprintf("%s %-8s widgets=%d active=%d id=%s",
		c.Time.Format("15:04:05"), c.Type, len(c.Snapshot.Widgets), active, c.ID)
}
