package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RenderTrace renders a scenario trace as the text stored in golden files.
//
// The format is one header line followed by one line per step:
//
//	scenario: borrow_and_return
//	[01] borrow member=M1 book=B1 seq=1 -> success: Ada borrowed 'Dune'
//
// Output is deterministic for a given result.
func RenderTrace(name string, result *Result) []byte {
	var buf strings.Builder
	fmt.Fprintf(&buf, "scenario: %s\n", name)
	for _, ev := range result.Trace {
		buf.WriteString(formatEvent(ev))
		buf.WriteByte('\n')
	}
	return []byte(buf.String())
}

func formatEvent(ev TraceEvent) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "[%02d] %s", ev.Step, ev.Action)
	if ev.Member != "" {
		fmt.Fprintf(&buf, " member=%s", ev.Member)
	}
	if ev.Book != "" {
		fmt.Fprintf(&buf, " book=%s", ev.Book)
	}
	if ev.Seq > 0 {
		fmt.Fprintf(&buf, " seq=%d", ev.Seq)
	}
	if ev.Action == ActionMostBorrowed && ev.Outcome == "found" {
		fmt.Fprintf(&buf, " count=%d", ev.Count)
	}
	fmt.Fprintf(&buf, " -> %s: %s", ev.Outcome, ev.Message)
	return buf.String()
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an existing result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, RenderTrace(scenarioName, result))
}
