package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// ResetOptions holds flags for the reset command.
type ResetOptions struct {
	*RootOptions
	SchemaPath string
	Version    int
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Destroy all data and install a fresh schema",
		Long: `Destroy every object in the database and install the schema from the given
SQL file at the given user version. This is irreversible.

Example:
  tidepool --db app.db reset --schema schema.sql --version 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.SchemaPath, "schema", "", "path to the schema SQL file (required)")
	cmd.Flags().IntVar(&opts.Version, "version", 0, "user version to install the schema at (required)")
	_ = cmd.MarkFlagRequired("schema")
	_ = cmd.MarkFlagRequired("version")

	return cmd
}

func runReset(opts *ResetOptions, cmd *cobra.Command) error {
	schema, err := os.ReadFile(opts.SchemaPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "read schema file", err)
	}

	d, err := openDatabase(opts.RootOptions)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.UnsafeResetDatabase(string(schema), opts.Version); err != nil {
		return WrapExitError(ExitFailure, "reset database", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "schema installed at version %d\n", opts.Version)
	return nil
}
