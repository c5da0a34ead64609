package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tidepool/internal/db"
	"github.com/roach88/tidepool/internal/hostval"
)

// Scenario defines a conformance scenario: a schema plus an ordered sequence
// of engine operations whose results form the trace.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schema is the multi-statement SQL script installed before the steps
	// run. It should include local_storage if any step reads it.
	Schema string `yaml:"schema"`

	// Version is the user version the schema installs at.
	Version int `yaml:"version"`

	// Steps is the operation sequence. Each step contributes one trace
	// event.
	Steps []Step `yaml:"steps"`
}

// Step is one engine operation. Exactly one operation field must be set.
type Step struct {
	// Batch is the host wire format for a batch: an array of
	// [cacheBehavior, table, sql, argsBatches] entries.
	Batch []any `yaml:"batch,omitempty"`

	Find         *FindStep    `yaml:"find,omitempty"`
	Query        *QueryStep   `yaml:"query,omitempty"`
	QueryAsArray *QueryStep   `yaml:"query_as_array,omitempty"`
	QueryIDs     *SQLStep     `yaml:"query_ids,omitempty"`
	Raw          *SQLStep     `yaml:"unsafe_query_raw,omitempty"`
	Count        *SQLStep     `yaml:"count,omitempty"`
	GetLocal     *LocalStep   `yaml:"get_local,omitempty"`
	Migrate      *MigrateStep `yaml:"migrate,omitempty"`

	// ExpectError marks a step whose operation must fail. The trace event
	// records the error code instead of a result.
	ExpectError bool `yaml:"expect_error,omitempty"`
}

// FindStep looks up one record by id.
type FindStep struct {
	Table string `yaml:"table"`
	ID    string `yaml:"id"`
}

// QueryStep runs a table-scoped query.
type QueryStep struct {
	Table string `yaml:"table"`
	SQL   string `yaml:"sql"`
	Args  []any  `yaml:"args,omitempty"`
}

// SQLStep runs a query that needs no table scope.
type SQLStep struct {
	SQL  string `yaml:"sql"`
	Args []any  `yaml:"args,omitempty"`
}

// LocalStep reads a local_storage key.
type LocalStep struct {
	Key string `yaml:"key"`
}

// MigrateStep applies a migration script.
type MigrateStep struct {
	SQL  string `yaml:"sql"`
	From int    `yaml:"from"`
	To   int    `yaml:"to"`
}

// LoadScenario reads and parses a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if scenario.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	if scenario.Schema == "" {
		return nil, fmt.Errorf("scenario %s: schema is required", path)
	}
	return &scenario, nil
}

// Result holds the trace produced by running a scenario.
type Result struct {
	Scenario *Scenario
	Trace    hostval.Array
}

// Run executes the scenario against a fresh in-memory database and collects
// the trace. Expected errors (ExpectError steps) become trace events; any
// other failure aborts the run.
func Run(scenario *Scenario) (*Result, error) {
	// Expected failures would otherwise spam the test log.
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	d, err := db.Open(":memory:", db.WithLogger(quiet))
	if err != nil {
		return nil, err
	}
	defer d.Close()

	if err := d.UnsafeResetDatabase(scenario.Schema, scenario.Version); err != nil {
		return nil, fmt.Errorf("scenario %s: install schema: %w", scenario.Name, err)
	}

	result := &Result{Scenario: scenario, Trace: hostval.Array{}}
	for i, step := range scenario.Steps {
		op, value, err := runStep(d, step)
		if err != nil && !step.ExpectError {
			return nil, fmt.Errorf("scenario %s: step %d (%s): %w", scenario.Name, i+1, op, err)
		}
		if err == nil && step.ExpectError {
			return nil, fmt.Errorf("scenario %s: step %d (%s): expected an error", scenario.Name, i+1, op)
		}

		event := hostval.Object{
			"op":  hostval.String(op),
			"seq": hostval.Number(float64(i + 1)),
		}
		if err != nil {
			event["error"] = hostval.String(errorCode(err))
		} else {
			event["result"] = value
		}
		result.Trace = append(result.Trace, event)
	}

	return result, nil
}

// runStep dispatches one step to the engine, returning the operation name
// and its shaped result.
func runStep(d *db.Database, step Step) (string, hostval.Value, error) {
	switch {
	case step.Batch != nil:
		wire, err := hostval.FromAnySlice(step.Batch)
		if err != nil {
			return "batch", nil, err
		}
		operations, err := db.DecodeOperations(wire)
		if err != nil {
			return "batch", nil, err
		}
		if err := d.Batch(operations); err != nil {
			return "batch", nil, err
		}
		return "batch", hostval.String("ok"), nil

	case step.Find != nil:
		value, err := d.Find(step.Find.Table, step.Find.ID)
		return "find", value, err

	case step.Query != nil:
		args, err := hostval.FromAnySlice(step.Query.Args)
		if err != nil {
			return "query", nil, err
		}
		value, err := d.Query(step.Query.Table, step.Query.SQL, args)
		return "query", value, err

	case step.QueryAsArray != nil:
		args, err := hostval.FromAnySlice(step.QueryAsArray.Args)
		if err != nil {
			return "query_as_array", nil, err
		}
		value, err := d.QueryAsArray(step.QueryAsArray.Table, step.QueryAsArray.SQL, args)
		return "query_as_array", value, err

	case step.QueryIDs != nil:
		args, err := hostval.FromAnySlice(step.QueryIDs.Args)
		if err != nil {
			return "query_ids", nil, err
		}
		value, err := d.QueryIDs(step.QueryIDs.SQL, args)
		return "query_ids", value, err

	case step.Raw != nil:
		args, err := hostval.FromAnySlice(step.Raw.Args)
		if err != nil {
			return "unsafe_query_raw", nil, err
		}
		value, err := d.UnsafeQueryRaw(step.Raw.SQL, args)
		return "unsafe_query_raw", value, err

	case step.Count != nil:
		args, err := hostval.FromAnySlice(step.Count.Args)
		if err != nil {
			return "count", nil, err
		}
		value, err := d.Count(step.Count.SQL, args)
		return "count", value, err

	case step.GetLocal != nil:
		value, err := d.GetLocal(step.GetLocal.Key)
		return "get_local", value, err

	case step.Migrate != nil:
		if err := d.Migrate(step.Migrate.SQL, step.Migrate.From, step.Migrate.To); err != nil {
			return "migrate", nil, err
		}
		version, err := d.UserVersion()
		if err != nil {
			return "migrate", nil, err
		}
		return "migrate", hostval.Number(float64(version)), nil

	default:
		return "unknown", nil, errors.New("step has no operation")
	}
}

// errorCode extracts the engine error code, or ERROR for anything else.
func errorCode(err error) string {
	var e *db.Error
	if errors.As(err, &e) {
		return string(e.Code)
	}
	return "ERROR"
}
