package root

import (
	"cmp"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/animalscode/actracker/pkg/userconfig"
)

// newOptInCmd builds "optin" (enable) or "optout".
func newOptInCmd(root *rootFlags, enable bool) *cobra.Command {
	use, short := "optout", "Stop sending usage reports"
	if enable {
		use, short = "optin", "Allow anonymous usage reports"
	}

	return &cobra.Command{
		Use:     use,
		Short:   short,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := cmp.Or(root.configPath, userconfig.Path())

			cfg, err := userconfig.Read(path)
			if err != nil {
				return runtimeError(cmd, err)
			}
			cfg.SetEnabled(enable)
			if err := cfg.SaveTo(path); err != nil {
				return runtimeError(cmd, err)
			}

			if enable {
				fmt.Fprintln(cmd.OutOrStdout(), "Usage reports enabled. Thank you!")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Usage reports disabled.")
			}
			return nil
		},
	}
}
