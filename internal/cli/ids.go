package cli

import (
	"github.com/spf13/cobra"
)

// NewIDsCommand creates the ids command.
func NewIDsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ids <sql> [arg...]",
		Short: "Run a query and print record ids only",
		Long: `Run a query whose first column is named id and print the id of every row.

Example:
  tidepool --db app.db ids "select id from tasks where done = ?" 1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := openDatabase(rootOpts)
			if err != nil {
				return err
			}
			defer d.Close()

			ids, err := d.QueryIDs(args[0], stringArgs(args[1:]))
			if err != nil {
				return WrapExitError(ExitFailure, "query failed", err)
			}
			return writeValue(cmd.OutOrStdout(), rootOpts.Format, ids)
		},
	}
	return cmd
}
