package cmd

import (
	"fmt"

	"github.com/atikulmunna/tally/internal/aggregator"
	"github.com/atikulmunna/tally/internal/hub"
	"github.com/atikulmunna/tally/internal/model"
	"github.com/atikulmunna/tally/internal/server"
	"github.com/atikulmunna/tally/internal/watcher"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [directory]",
		Short: "Serve the summary over HTTP and push updates over WebSocket",
		Long: `Scan the directory, then serve the latest summary as JSON and keep it
current as matching files change.

Endpoints:
  GET /healthz       liveness and scan counters
  GET /api/summary   latest report
  GET /api/stats     per-model and per-task counts
  GET /ws            WebSocket stream of reports

Example:
  tally serve runs --port 8080`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, v, args)
		},
	}
	cmd.Flags().String("port", "8080", "HTTP listen port")
	cmd.Flags().Duration("debounce", watcher.DefaultDebounce, "quiet period before re-scanning")
	_ = v.BindPFlag("port", cmd.Flags().Lookup("port"))
	_ = v.BindPFlag("serve-debounce", cmd.Flags().Lookup("debounce"))
	return cmd
}

func runServe(cmd *cobra.Command, v *viper.Viper, args []string) error {
	e, err := newEnv(cmd, v, args)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	reports := make(chan model.Report, 1)
	h := hub.New(reports, e.log)
	agg := aggregator.New()
	go h.Start(ctx)

	publish := func() {
		report := e.scanner.Scan(e.dir)
		agg.Record(report)
		select {
		case reports <- report:
		case <-ctx.Done():
		}
	}
	publish()

	// A missing directory still serves the empty report; it is just not watched.
	if w, err := watcher.New(e.dir, e.scanner.Pattern(), v.GetDuration("serve-debounce"), e.log); err != nil {
		e.log.Warn("not watching directory", "dir", e.dir, "err", err)
	} else {
		go w.Start(ctx)
		go func() {
			for range w.Changes() {
				publish()
			}
		}()
	}

	addr := ":" + v.GetString("port")
	e.log.Info("serving summary", "addr", addr, "dir", e.dir)
	if err := server.New(h, agg, addr, e.log).Start(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
