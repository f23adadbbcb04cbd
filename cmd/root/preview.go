package root

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

type previewFlags struct {
	pretty bool
}

func newPreviewCmd(root *rootFlags) *cobra.Command {
	var flags previewFlags

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the report that would be sent, without sending it",
		Long: `Print the report that would be sent, without sending it.
Output is indented on a terminal and compact otherwise.`,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.run(cmd, root)
		},
	}

	cmd.Flags().BoolVarP(&flags.pretty, "pretty", "p", false, "Always indent the output")

	return cmd
}

func (f *previewFlags) run(cmd *cobra.Command, root *rootFlags) error {
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

	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	if f.pretty || isTerminal(out) {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(a.tracker.BuildSnapshot(ctx)); err != nil {
		return runtimeError(cmd, fmt.Errorf("failed to encode report: %w", err))
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
