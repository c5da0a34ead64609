package cli

import (
	"github.com/spf13/cobra"
)

// NewLocalCommand creates the local command.
func NewLocalCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "local <key>",
		Short: "Read a local_storage value",
		Long: `Read the value stored in the local_storage table under the given key.
Prints null when the key is absent or its value is null.

Example:
  tidepool --db app.db local last_sync_at`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := openDatabase(rootOpts)
			if err != nil {
				return err
			}
			defer d.Close()

			value, err := d.GetLocal(args[0])
			if err != nil {
				return WrapExitError(ExitFailure, "read local storage", err)
			}
			return writeValue(cmd.OutOrStdout(), rootOpts.Format, value)
		},
	}
	return cmd
}
