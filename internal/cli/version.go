package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the database's schema user version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := openDatabase(rootOpts)
			if err != nil {
				return err
			}
			defer d.Close()

			version, err := d.UserVersion()
			if err != nil {
				return WrapExitError(ExitFailure, "read user version", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d\n", version)
			return err
		},
	}
	return cmd
}
