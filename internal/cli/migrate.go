package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// MigrationManifest describes one migration step in a YAML file.
type MigrationManifest struct {
	// From is the user version the database must be at.
	From int `yaml:"from"`

	// To is the user version the migration moves the database to.
	To int `yaml:"to"`

	// SQL is the migration script, inline.
	SQL string `yaml:"sql,omitempty"`

	// SQLFile is a path to the migration script, relative to the manifest.
	// Exactly one of SQL and SQLFile must be set.
	SQLFile string `yaml:"sql_file,omitempty"`
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate <manifest.yaml>",
		Short: "Apply a migration manifest",
		Long: `Apply the migration described by a YAML manifest. The manifest names the
versions it migrates between and carries the SQL inline or by file reference:

  from: 3
  to: 4
  sql: |
    alter table tasks add column priority integer;

The database's user version must equal the manifest's "from" version.

Example:
  tidepool --db app.db migrate migrations/0004_priority.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(rootOpts, cmd, args[0])
		},
	}
	return cmd
}

func runMigrate(opts *RootOptions, cmd *cobra.Command, manifestPath string) error {
	manifest, sql, err := loadManifest(manifestPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load migration manifest", err)
	}

	d, err := openDatabase(opts)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Migrate(sql, manifest.From, manifest.To); err != nil {
		return WrapExitError(ExitFailure, "migration failed", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "migrated %d -> %d\n", manifest.From, manifest.To)
	return nil
}

// loadManifest parses the manifest and resolves its migration SQL.
func loadManifest(path string) (*MigrationManifest, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}

	var manifest MigrationManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, "", fmt.Errorf("parse %s: %w", path, err)
	}

	switch {
	case manifest.SQL != "" && manifest.SQLFile != "":
		return nil, "", fmt.Errorf("%s: sql and sql_file are mutually exclusive", path)
	case manifest.SQL != "":
		return &manifest, manifest.SQL, nil
	case manifest.SQLFile != "":
		sqlPath := filepath.Join(filepath.Dir(path), manifest.SQLFile)
		sql, err := os.ReadFile(sqlPath)
		if err != nil {
			return nil, "", err
		}
		return &manifest, string(sql), nil
	default:
		return nil, "", fmt.Errorf("%s: one of sql or sql_file is required", path)
	}
}
