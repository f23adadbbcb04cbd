package root

import (
	"cmp"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/animalscode/actracker/pkg/server"
	"github.com/animalscode/actracker/pkg/tracker"
	"github.com/animalscode/actracker/pkg/userconfig"
)

// defaultCheckInterval is how often run fires the send event. The tracker
// decides on its own whether a report is actually due.
const defaultCheckInterval = time.Hour

type runFlags struct {
	listen   string
	interval time.Duration
}

func newRunCmd(root *rootFlags) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the tracker in the background",
		Long: `Fire the send event periodically until interrupted. With --listen, also
serve the HTTP trigger and preview endpoints on the given address.`,
		Example: `  actracker run
  actracker run --listen 127.0.0.1:8089
  actracker run --listen unix:///run/actracker.sock`,
		GroupID: "advanced",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.run(cmd, root)
		},
	}

	cmd.Flags().StringVarP(&flags.listen, "listen", "l", "", "Address for the trigger server (overrides schedule.listen)")
	cmd.Flags().DurationVar(&flags.interval, "interval", 0, "How often to fire the send event (overrides schedule.interval, default 1h)")

	return cmd
}

func (f *runFlags) run(cmd *cobra.Command, root *rootFlags) error {
	ctx := cmd.Context()

	a, err := newApp(root.configPath)
	if err != nil {
		return runtimeError(cmd, err)
	}
	defer func() {
		if err := a.Close(ctx); err != nil {
			slog.Warn("Failed to shut down cleanly", "error", err)
		}
	}()

	configured, _ := userconfig.ParseDuration(a.config.GetSchedule().Interval)
	interval := cmp.Or(f.interval, configured, defaultCheckInterval)
	listen := cmp.Or(f.listen, a.config.GetSchedule().Listen)

	var ln net.Listener
	if listen != "" {
		ln, err = server.Listen(ctx, listen)
		if err != nil {
			return runtimeError(cmd, fmt.Errorf("failed to listen on %s: %w", listen, err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", ln.Addr())
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Debug("Scheduling send event", "interval", interval)
		return a.scheduler.Every(ctx, tracker.SendEvent, interval)
	})

	if ln != nil {
		srv := server.New(a.tracker, a.scheduler)
		g.Go(func() error {
			return srv.Serve(ctx, ln)
		})
	}

	if err := g.Wait(); err != nil {
		return runtimeError(cmd, err)
	}
	return nil
}
