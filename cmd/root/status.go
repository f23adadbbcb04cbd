package root

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newStatusCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   "Show when the last report was sent and when the next one is due",
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			st, err := a.tracker.Status(ctx)
			if err != nil {
				return runtimeError(cmd, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Enabled:   %t\n", st.Enabled)
			fmt.Fprintf(out, "Endpoint:  %s\n", st.Endpoint)
			fmt.Fprintf(out, "Interval:  %s\n", st.Interval)
			if st.LastSend != nil {
				fmt.Fprintf(out, "Last sent: %s\n", time.Unix(*st.LastSend, 0).UTC().Format(time.RFC3339))
			} else {
				fmt.Fprintln(out, "Last sent: never")
			}
			if st.Due {
				fmt.Fprintln(out, "Next send: due now")
			} else {
				fmt.Fprintf(out, "Next send: %s\n", time.Unix(st.NextSend, 0).UTC().Format(time.RFC3339))
			}
			if len(st.Filters) > 0 {
				fmt.Fprintf(out, "Filters:   %s\n", strings.Join(st.Filters, ", "))
			}
			return nil
		},
	}
}
