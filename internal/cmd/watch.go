package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/atikulmunna/tally/internal/watcher"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newWatchCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [directory]",
		Short: "Re-print the summary whenever matching files change",
		Long: `Print the summary once, then watch the directory and print it again
each time a matching file is created, written, removed or renamed.

Examples:
  tally watch
  tally watch runs --pattern "**/*.json"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, v, args)
		},
	}
	cmd.Flags().Duration("debounce", watcher.DefaultDebounce, "quiet period before re-scanning")
	_ = v.BindPFlag("debounce", cmd.Flags().Lookup("debounce"))
	return cmd
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nTally shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

func runWatch(cmd *cobra.Command, v *viper.Viper, args []string) error {
	e, err := newEnv(cmd, v, args)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	w, err := watcher.New(e.dir, e.scanner.Pattern(), v.GetDuration("debounce"), e.log)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", e.dir, err)
	}
	go w.Start(ctx)

	e.banner()
	e.render()

	for batch := range w.Changes() {
		e.log.Info("change detected, re-scanning", "dir", e.dir, "events", len(batch))
		e.banner()
		e.render()
	}
	return nil
}
