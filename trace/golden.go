package trace

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/verdict-eval/verdict/condition"
)

// AssertGolden compares a context log against the golden file
// testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./... -update
//
// Golden files are the source of truth for expected trace output; use
// deterministic trees (fixed node IDs, no async children) when asserting
// on them.
func AssertGolden(t *testing.T, name string, log []condition.Outcome) {
	t.Helper()

	snapshot := NewSnapshot(name, log)
	data, err := snapshot.MarshalCanonical()
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
}
