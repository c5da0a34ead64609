package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tidepool/internal/db"
	"github.com/roach88/tidepool/internal/hostval"
	"github.com/roach88/tidepool/internal/testutil"
)

const cliTestSchema = `
create table tasks(id text primary key, title text, done int);
create table local_storage(key text primary key, value text);
`

// newTestDatabase creates a database file with the CLI test schema installed
// at version 1 and returns its path.
func newTestDatabase(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	d, err := db.Open(path)
	require.NoError(t, err)
	require.NoError(t, d.UnsafeResetDatabase(cliTestSchema, 1))
	require.NoError(t, d.Close())
	return path
}

// seedTask inserts one task row directly.
func seedTask(t *testing.T, path, id, title string, done int) {
	t.Helper()

	d, err := db.Open(path)
	require.NoError(t, err)
	defer d.Close()

	err = d.Batch([]db.Operation{{
		CacheBehavior: db.CacheBehaviorNone,
		SQL:           "insert into tasks values(?, ?, ?)",
		ArgsBatches: []hostval.Array{{
			hostval.String(id),
			hostval.String(title),
			hostval.Number(float64(done)),
		}},
	}})
	require.NoError(t, err)
}

// execute runs the CLI with the given arguments and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestQueryCommand(t *testing.T) {
	path := newTestDatabase(t)
	seedTask(t, path, "a1", "Write docs", 0)

	out, err := execute(t, "--db", path, "query", "select title, done from tasks")
	require.NoError(t, err)
	assert.Equal(t, "{\"done\":0,\"title\":\"Write docs\"}\n", out)
}

func TestQueryCommand_JSONFormat(t *testing.T) {
	path := newTestDatabase(t)
	seedTask(t, path, "a1", "Write docs", 0)

	out, err := execute(t, "--db", path, "--format", "json", "query", "select title from tasks")
	require.NoError(t, err)
	assert.Equal(t, "[{\"title\":\"Write docs\"}]\n", out)
}

func TestQueryCommand_WithArgs(t *testing.T) {
	path := newTestDatabase(t)
	seedTask(t, path, "a1", "One", 0)
	seedTask(t, path, "a2", "Two", 1)

	out, err := execute(t, "--db", path, "query", "select title from tasks where done = ?", "1")
	require.NoError(t, err)
	assert.Equal(t, "{\"title\":\"Two\"}\n", out)
}

func TestQueryCommand_BadSQL(t *testing.T) {
	path := newTestDatabase(t)

	_, err := execute(t, "--db", path, "query", "select * from no_such_table")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestIDsCommand(t *testing.T) {
	path := newTestDatabase(t)
	seedTask(t, path, "a1", "One", 0)
	seedTask(t, path, "a2", "Two", 1)

	out, err := execute(t, "--db", path, "ids", "select id from tasks order by id")
	require.NoError(t, err)
	assert.Equal(t, "\"a1\"\n\"a2\"\n", out)
}

func TestLocalCommand(t *testing.T) {
	path := newTestDatabase(t)

	d, err := db.Open(path)
	require.NoError(t, err)
	require.NoError(t, d.Batch([]db.Operation{{
		CacheBehavior: db.CacheBehaviorNone,
		SQL:           "insert into local_storage values(?, ?)",
		ArgsBatches:   []hostval.Array{{hostval.String("greeting"), hostval.String("hello")}},
	}}))
	require.NoError(t, d.Close())

	out, err := execute(t, "--db", path, "local", "greeting")
	require.NoError(t, err)
	assert.Equal(t, "\"hello\"\n", out)

	out, err = execute(t, "--db", path, "local", "absent")
	require.NoError(t, err)
	assert.Equal(t, "null\n", out)
}

func TestVersionCommand(t *testing.T) {
	path := newTestDatabase(t)

	out, err := execute(t, "--db", path, "version")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)
}

func TestResetCommand(t *testing.T) {
	path := newTestDatabase(t)
	seedTask(t, path, "a1", "Old", 0)

	schemaPath := filepath.Join(t.TempDir(), "schema.sql")
	require.NoError(t, os.WriteFile(schemaPath, []byte("create table fresh(id text primary key);"), 0o644))

	_, err := execute(t, "--db", path, "reset", "--schema", schemaPath, "--version", "9")
	require.NoError(t, err)

	out, err := execute(t, "--db", path, "version")
	require.NoError(t, err)
	assert.Equal(t, "9\n", out)

	_, err = execute(t, "--db", path, "query", "select * from tasks")
	assert.Error(t, err, "old tables must be gone after reset")
}

func TestMigrateCommand(t *testing.T) {
	path := newTestDatabase(t)

	manifestPath := filepath.Join(t.TempDir(), "0002_priority.yaml")
	manifest := "from: 1\nto: 2\nsql: |\n  alter table tasks add column priority integer;\n"
	require.NoError(t, os.WriteFile(manifestPath, []byte(manifest), 0o644))

	out, err := execute(t, "--db", path, "migrate", manifestPath)
	require.NoError(t, err)
	assert.Contains(t, out, "migrated 1 -> 2")

	out, err = execute(t, "--db", path, "version")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)
}

func TestMigrateCommand_VersionMismatch(t *testing.T) {
	path := newTestDatabase(t)

	manifestPath := filepath.Join(t.TempDir(), "bad.yaml")
	manifest := "from: 5\nto: 6\nsql: |\n  alter table tasks add column priority integer;\n"
	require.NoError(t, os.WriteFile(manifestPath, []byte(manifest), 0o644))

	_, err := execute(t, "--db", path, "migrate", manifestPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var engineErr *db.Error
	require.True(t, errors.As(err, &engineErr))
	assert.Equal(t, db.ErrCodeMigrationPrecondition, engineErr.Code)
}

func TestLoadManifest_Validation(t *testing.T) {
	dir := t.TempDir()

	neither := filepath.Join(dir, "neither.yaml")
	require.NoError(t, os.WriteFile(neither, []byte("from: 1\nto: 2\n"), 0o644))
	_, _, err := loadManifest(neither)
	assert.Error(t, err)

	both := filepath.Join(dir, "both.yaml")
	require.NoError(t, os.WriteFile(both, []byte("from: 1\nto: 2\nsql: x\nsql_file: y.sql\n"), 0o644))
	_, _, err = loadManifest(both)
	assert.Error(t, err)
}

func TestSeed_DeterministicGenerator(t *testing.T) {
	path := newTestDatabase(t)

	opts := &SeedOptions{
		RootOptions: &RootOptions{Database: path, Format: "text"},
		Count:       3,
		IDs:         testutil.NewSequentialGenerator("task"),
	}
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, runSeed(opts, cmd, "tasks"))

	listed, err := execute(t, "--db", path, "ids", "select id from tasks order by id")
	require.NoError(t, err)
	assert.Equal(t, "\"task-1\"\n\"task-2\"\n\"task-3\"\n", listed)
}

func TestSeed_RejectsNonPositiveCount(t *testing.T) {
	opts := &SeedOptions{
		RootOptions: &RootOptions{Database: "unused", Format: "text"},
		Count:       0,
	}
	err := runSeed(opts, NewRootCommand(), "tasks")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	path := newTestDatabase(t)

	_, err := execute(t, "--db", path, "--format", "xml", "version")
	assert.Error(t, err)
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "boom", nil)))
}
