// Package harness executes conformance scenarios against the storage engine.
//
// A scenario is a YAML file describing a schema, a version, and a sequence of
// engine operations (batches, finds, queries, migrations). Running a scenario
// produces a trace: one event per step, carrying the step's shaped result or
// its error code. The trace serializes to canonical JSON and is compared
// against a golden file, which serves as the source of truth for expected
// engine behavior.
//
// Scenarios run against a fresh in-memory database, so they are
// deterministic and safe to run repeatedly.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
package harness
