package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/tidepool/internal/hostval"
)

// Snapshot serializes the result's trace as canonical JSON. Two runs of the
// same scenario always produce byte-identical snapshots.
func (r *Result) Snapshot() ([]byte, error) {
	root := hostval.Object{
		"name":  hostval.String(r.Scenario.Name),
		"trace": r.Trace,
	}
	data, err := hostval.MarshalCanonical(root)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RunWithGolden executes a scenario and compares its trace snapshot against
// the golden file testdata/{scenario.Name}.golden.
//
// Returns an error if the scenario itself fails to run; a trace mismatch is
// reported as a test failure via goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	snapshot, err := result.Snapshot()
	if err != nil {
		return err
	}

	g := goldie.New(t)
	g.Assert(t, scenario.Name, snapshot)
	return nil
}
