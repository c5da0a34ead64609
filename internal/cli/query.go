package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/tidepool/internal/hostval"
)

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <sql> [arg...]",
		Short: "Run an ad-hoc query and print each row",
		Long: `Run an ad-hoc SQL query with optional positional arguments and print each
row as a dictionary. The query bypasses the record identity cache.

Example:
  tidepool --db app.db query "select * from tasks where done = ?" 0
  tidepool --db app.db --format json query "select count(*) n from tasks"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(rootOpts, cmd, args[0], args[1:])
		},
	}
	return cmd
}

func runQuery(opts *RootOptions, cmd *cobra.Command, sql string, rawArgs []string) error {
	d, err := openDatabase(opts)
	if err != nil {
		return err
	}
	defer d.Close()

	rows, err := d.UnsafeQueryRaw(sql, stringArgs(rawArgs))
	if err != nil {
		return WrapExitError(ExitFailure, "query failed", err)
	}
	return writeValue(cmd.OutOrStdout(), opts.Format, rows)
}

// stringArgs converts command line arguments to host string values. They bind
// as TEXT; SQLite's type affinity converts them when they are compared with or
// stored into numeric columns, so they compare correctly against those columns
// in practice.
func stringArgs(rawArgs []string) hostval.Array {
	args := make(hostval.Array, len(rawArgs))
	for i, a := range rawArgs {
		args[i] = hostval.String(a)
	}
	return args
}
