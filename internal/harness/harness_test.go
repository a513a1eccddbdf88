package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int    { return &n }
func boolPtr(b bool) *bool { return &b }

func duneScenario(flow ...Step) *Scenario {
	return &Scenario{
		Name:        "dune",
		Description: "single book, single member",
		Setup: Setup{
			Books:   []BookSeed{{ID: "B1", Title: "Dune", Author: "Herbert"}},
			Members: []MemberSeed{{ID: "M1", Name: "Ada"}},
		},
		Flow: flow,
	}
}

func TestRun_BorrowTrace(t *testing.T) {
	scenario := duneScenario(
		Step{Action: ActionBorrow, Member: "M1", Book: "B1", Expect: &Expect{Outcome: "success"}},
	)

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, result.Errors)
	require.Len(t, result.Trace, 1)
	assert.Equal(t, TraceEvent{
		Step:    1,
		Action:  ActionBorrow,
		Member:  "M1",
		Book:    "B1",
		Outcome: "success",
		Message: "Ada borrowed 'Dune'",
		Seq:     1,
	}, result.Trace[0])
}

func TestRun_SetupProducesNoTrace(t *testing.T) {
	result, err := Run(duneScenario(Step{Action: ActionMostBorrowed}))
	require.NoError(t, err)

	require.Len(t, result.Trace, 1)
	assert.Equal(t, ActionMostBorrowed, result.Trace[0].Action)
	assert.Equal(t, int64(0), result.Trace[0].Seq)
}

func TestRun_ExpectMismatchFailsButContinues(t *testing.T) {
	scenario := duneScenario(
		Step{Action: ActionReturn, Member: "M1", Book: "B1", Expect: &Expect{Outcome: "success"}},
		Step{Action: ActionBorrow, Member: "M1", Book: "B1", Expect: &Expect{Message: "wrong"}},
		Step{Action: ActionMostBorrowed, Expect: &Expect{Book: "B1", Count: intPtr(1)}},
	)

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Len(t, result.Trace, 3, "flow continues after a mismatch")
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], `step 1 (return): expected outcome "success", got "not_borrowed"`)
	assert.Contains(t, result.Errors[1], `step 2 (borrow): expected message "wrong"`)
}

func TestRun_AssertionsSeeReloadedState(t *testing.T) {
	scenario := duneScenario(
		Step{Action: ActionBorrow, Member: "M1", Book: "B1"},
	)
	scenario.Assertions = []Assertion{
		{Type: AssertBookAvailable, Book: "B1", Available: boolPtr(false)},
		{Type: AssertMemberHolds, Member: "M1", Books: []string{"B1"}},
		{Type: AssertBorrowCount, Book: "B1", Count: intPtr(1)},
		{Type: AssertJournalCount, Member: "M1", Kind: "borrow", Count: intPtr(1)},
		{Type: AssertTraceCount, Action: ActionBorrow, Count: intPtr(1)},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestRun_FailingAssertions(t *testing.T) {
	scenario := duneScenario(
		Step{Action: ActionBorrow, Member: "M1", Book: "B1"},
	)
	scenario.Assertions = []Assertion{
		{Type: AssertBookAvailable, Book: "B1", Available: boolPtr(true)},
		{Type: AssertBookAvailable, Book: "B9", Available: boolPtr(true)},
		{Type: AssertMemberHolds, Member: "M1"},
		{Type: AssertMemberHolds, Member: "M9"},
		{Type: AssertBorrowCount, Book: "B1", Count: intPtr(2)},
		{Type: AssertJournalCount, Kind: "return", Count: intPtr(1)},
		{Type: AssertTraceCount, Action: ActionBorrow, Outcome: "already_borrowed", Count: intPtr(1)},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 7)
	assert.Contains(t, result.Errors[0], "available=false")
	assert.Contains(t, result.Errors[1], "book not found")
	assert.Contains(t, result.Errors[2], "holding [B1]")
	assert.Contains(t, result.Errors[3], "member not found")
	assert.Contains(t, result.Errors[4], "Actual: 1")
	assert.Contains(t, result.Errors[5], "{kind=return}")
	assert.Contains(t, result.Errors[6], "0 occurrences")
}

func TestRun_DeterministicAcrossRuns(t *testing.T) {
	scenario := duneScenario(
		Step{Action: ActionBorrow, Member: "M1", Book: "B1"},
		Step{Action: ActionReturn, Member: "M1", Book: "B1"},
		Step{Action: ActionMostBorrowed},
	)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.Equal(t, RenderTrace("dune", first), RenderTrace("dune", second))
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{
		Type:     AssertBorrowCount,
		Expected: "book B1 borrowed 2 times",
		Actual:   "1",
		Trace: []TraceEvent{
			{Step: 1, Action: ActionBorrow, Member: "M1", Book: "B1", Outcome: "success", Message: "Ada borrowed 'Dune'", Seq: 1},
		},
	}

	want := "Assertion failed: borrow_count\n" +
		"  Expected: book B1 borrowed 2 times\n" +
		"  Actual: 1\n" +
		"\nFull trace:\n" +
		"  [01] borrow member=M1 book=B1 seq=1 -> success: Ada borrowed 'Dune'\n"
	assert.Equal(t, want, err.Error())
}
