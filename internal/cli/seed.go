package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tidepool/internal/db"
	"github.com/roach88/tidepool/internal/hostval"
	"github.com/roach88/tidepool/internal/testutil"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	Count int

	// IDs allows overriding the id generator (for testing).
	// If nil, defaults to testutil.UUIDGenerator.
	IDs testutil.IDGenerator
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed <table>",
		Short: "Insert generated records into a table",
		Long: `Insert records with generated UUID ids into a table. Only the id column is
populated; every other column must be nullable or defaulted. Useful for
exercising queries against development databases.

Example:
  tidepool --db dev.db seed tasks --count 100`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(opts, cmd, args[0])
		},
	}

	cmd.Flags().IntVar(&opts.Count, "count", 1, "number of records to insert")

	return cmd
}

func runSeed(opts *SeedOptions, cmd *cobra.Command, table string) error {
	if opts.Count < 1 {
		return WrapExitError(ExitCommandError, "invalid count", fmt.Errorf("count must be positive, got %d", opts.Count))
	}

	ids := opts.IDs
	if ids == nil {
		ids = testutil.UUIDGenerator{}
	}

	d, err := openDatabase(opts.RootOptions)
	if err != nil {
		return err
	}
	defer d.Close()

	argsBatches := make([]hostval.Array, opts.Count)
	for i := range argsBatches {
		argsBatches[i] = hostval.Array{hostval.String(ids.Generate())}
	}

	err = d.Batch([]db.Operation{{
		CacheBehavior: db.CacheBehaviorNone,
		SQL:           fmt.Sprintf("insert into %s (id) values (?)", quoteTable(table)),
		ArgsBatches:   argsBatches,
	}})
	if err != nil {
		return WrapExitError(ExitFailure, "seed failed", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "inserted %d records into %s\n", opts.Count, table)
	return nil
}

// quoteTable quotes a table name for interpolation into the insert.
func quoteTable(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
