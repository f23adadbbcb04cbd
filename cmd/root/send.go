package root

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/animalscode/actracker/pkg/tracker"
)

type sendFlags struct {
	force bool
}

func newSendCmd(root *rootFlags) *cobra.Command {
	var flags sendFlags

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a usage report if one is due",
		Long: `Send a usage report if the last one is older than the send interval.
With --force, the interval is replaced by a one hour cooldown.`,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.run(cmd, root)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Send even if the interval has not passed (at most once per hour)")

	return cmd
}

func (f *sendFlags) run(cmd *cobra.Command, root *rootFlags) error {
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

	outcome := a.tracker.SendTrackingData(ctx, f.force)
	out := cmd.OutOrStdout()
	switch outcome {
	case tracker.OutcomeSent:
		fmt.Fprintln(out, "Report sent.")
	case tracker.OutcomeDisabled:
		fmt.Fprintln(out, "Tracking is not enabled. Run `actracker optin` to allow usage reports.")
	case tracker.OutcomeThrottled:
		fmt.Fprintln(out, "A report was sent recently; nothing to do.")
	default:
		fmt.Fprintf(out, "Report skipped (%s).\n", outcome)
	}
	return nil
}
