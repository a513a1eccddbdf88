package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/libris/internal/circulation"
	"github.com/roach88/libris/internal/journal"
)

// AssertionContext provides what state assertions need.
type AssertionContext struct {
	Ctx context.Context

	// Library is the service reopened from the scenario's data directory.
	Library *circulation.Service
}

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  %s\n", formatEvent(event))
		}
	}
	return buf.String()
}

func assertBookAvailable(lib *circulation.Service, trace []TraceEvent, a Assertion) error {
	book, ok := lib.Book(a.Book)
	if !ok {
		return &AssertionError{
			Type:     AssertBookAvailable,
			Expected: fmt.Sprintf("book %s with available=%t", a.Book, *a.Available),
			Actual:   "book not found",
			Trace:    trace,
		}
	}
	if book.Available != *a.Available {
		return &AssertionError{
			Type:     AssertBookAvailable,
			Expected: fmt.Sprintf("book %s with available=%t", a.Book, *a.Available),
			Actual:   fmt.Sprintf("available=%t", book.Available),
			Trace:    trace,
		}
	}
	return nil
}

func assertMemberHolds(lib *circulation.Service, trace []TraceEvent, a Assertion) error {
	want := a.Books
	if want == nil {
		want = []string{}
	}
	member, ok := lib.Member(a.Member)
	if !ok {
		return &AssertionError{
			Type:     AssertMemberHolds,
			Expected: fmt.Sprintf("member %s holding %v", a.Member, want),
			Actual:   "member not found",
			Trace:    trace,
		}
	}
	if !slices.Equal(member.Borrowed, want) {
		return &AssertionError{
			Type:     AssertMemberHolds,
			Expected: fmt.Sprintf("member %s holding %v", a.Member, want),
			Actual:   fmt.Sprintf("holding %v", member.Borrowed),
			Trace:    trace,
		}
	}
	return nil
}

func assertBorrowCount(lib *circulation.Service, trace []TraceEvent, a Assertion) error {
	if got := lib.BorrowCount(a.Book); got != *a.Count {
		return &AssertionError{
			Type:     AssertBorrowCount,
			Expected: fmt.Sprintf("book %s borrowed %d times", a.Book, *a.Count),
			Actual:   fmt.Sprintf("%d", got),
			Trace:    trace,
		}
	}
	return nil
}

func assertJournalCount(actx *AssertionContext, trace []TraceEvent, a Assertion) error {
	entries, err := actx.Library.History(actx.Ctx, journal.Filter{
		MemberID: a.Member,
		BookID:   a.Book,
		Kind:     journal.Kind(a.Kind),
	})
	if err != nil {
		return fmt.Errorf("journal_count: %w", err)
	}
	if a.Outcome != "" {
		entries = slices.DeleteFunc(entries, func(e journal.Entry) bool {
			return e.Outcome != a.Outcome
		})
	}
	if len(entries) != *a.Count {
		return &AssertionError{
			Type:     AssertJournalCount,
			Expected: fmt.Sprintf("%d entries matching %s", *a.Count, describeFilter(a)),
			Actual:   fmt.Sprintf("%d entries", len(entries)),
			Trace:    trace,
		}
	}
	return nil
}

// assertTraceCount checks that an action appears exactly Count times,
// optionally restricted to one outcome.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Action != a.Action {
			continue
		}
		if a.Outcome != "" && event.Outcome != a.Outcome {
			continue
		}
		count++
	}
	if count != *a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", *a.Count, describeFilter(a)),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

func describeFilter(a Assertion) string {
	var parts []string
	for _, kv := range [][2]string{
		{"action", a.Action},
		{"kind", a.Kind},
		{"member", a.Member},
		{"book", a.Book},
		{"outcome", a.Outcome},
	} {
		if kv[1] != "" {
			parts = append(parts, kv[0]+"="+kv[1])
		}
	}
	if len(parts) == 0 {
		return "{}"
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// EvaluateAssertions runs every assertion and returns the failure messages.
// An empty slice means all assertions passed.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertBookAvailable:
			err = assertBookAvailable(actx.Library, result.Trace, a)
		case AssertMemberHolds:
			err = assertMemberHolds(actx.Library, result.Trace, a)
		case AssertBorrowCount:
			err = assertBorrowCount(actx.Library, result.Trace, a)
		case AssertJournalCount:
			err = assertJournalCount(actx, result.Trace, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d: %s", i, err.Error()))
		}
	}
	return errs
}
