package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/libris/internal/circulation"
	"github.com/roach88/libris/internal/testutil"
)

// Harness is the scenario execution engine.
// It runs scenarios with a deterministic clock and entry ids.
type Harness struct {
	svc    *circulation.Service
	clock  *testutil.DeterministicClock
	ids    *testutil.SequentialIDGenerator
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Create a fresh data directory
// 2. Open a library over it with deterministic helpers
// 3. Add setup books and members
// 4. Execute flow steps with expect validation
// 5. Close, reopen from disk and evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	dir, err := os.MkdirTemp("", "libris-scenario-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario dir: %w", err)
	}
	defer os.RemoveAll(dir)

	paths := circulation.Paths{
		Books:   filepath.Join(dir, "books.csv"),
		Members: filepath.Join(dir, "members.csv"),
		Journal: filepath.Join(dir, "circulation.db"),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in scenarios

	h := &Harness{
		clock:  testutil.NewDeterministicClock(),
		ids:    testutil.NewSequentialIDGenerator("entry"),
		logger: logger,
	}
	h.svc, err = circulation.Open(ctx, paths,
		circulation.WithSequencer(h.clock),
		circulation.WithIDGenerator(h.ids),
		circulation.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open library: %w", err)
	}

	result := NewResult()
	if err := h.executeSetup(ctx, scenario.Setup); err != nil {
		h.svc.Close()
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}
	if err := h.executeFlow(ctx, scenario.Flow, result); err != nil {
		h.svc.Close()
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}
	if err := h.svc.Close(); err != nil {
		return nil, fmt.Errorf("failed to close library: %w", err)
	}

	reloaded, err := circulation.Open(ctx, paths, circulation.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to reopen library: %w", err)
	}
	defer reloaded.Close()

	actx := &AssertionContext{Ctx: ctx, Library: reloaded}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

// executeSetup adds the seed records. Setup produces no trace events.
func (h *Harness) executeSetup(ctx context.Context, setup Setup) error {
	for _, b := range setup.Books {
		if _, err := h.svc.AddBook(ctx, b.ID, b.Title, b.Author); err != nil {
			return err
		}
	}
	for _, m := range setup.Members {
		if _, err := h.svc.AddMember(ctx, m.ID, m.Name); err != nil {
			return err
		}
	}
	return nil
}

// executeFlow runs each step, records it in the trace and checks its expect
// clause. Only persistence faults abort the flow; a mismatch is recorded as a
// result error and the flow continues.
func (h *Harness) executeFlow(ctx context.Context, flow []Step, result *Result) error {
	for i, step := range flow {
		ev, err := h.executeStep(ctx, step)
		if err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Action, err)
		}
		result.AddTrace(ev)

		if step.Expect != nil {
			for _, msg := range checkExpect(ev, *step.Expect) {
				result.AddError(fmt.Sprintf("step %d (%s): %s", i+1, step.Action, msg))
			}
		}
	}
	return nil
}

func (h *Harness) executeStep(ctx context.Context, step Step) (TraceEvent, error) {
	ev := TraceEvent{Action: step.Action, Member: step.Member, Book: step.Book}

	switch step.Action {
	case ActionAddBook:
		if _, err := h.svc.AddBook(ctx, step.Book, step.Title, step.Author); err != nil {
			return ev, err
		}
		ev.Outcome, ev.Message = "ok", "Book added successfully"

	case ActionAddMember:
		if _, err := h.svc.AddMember(ctx, step.Member, step.Name); err != nil {
			return ev, err
		}
		ev.Outcome, ev.Message = "ok", "Member added successfully"

	case ActionBorrow, ActionReturn:
		op := h.svc.Borrow
		if step.Action == ActionReturn {
			op = h.svc.Return
		}
		out, err := op(ctx, step.Member, step.Book)
		if err != nil {
			return ev, err
		}
		ev.Outcome, ev.Message = string(out.Kind), out.Message
		ev.Seq = h.clock.Current()

	case ActionMostBorrowed:
		book, count, ok := h.svc.MostBorrowed()
		if !ok {
			ev.Outcome, ev.Message = "none", "No books borrowed yet."
			break
		}
		ev.Book = book.ID
		ev.Outcome = "found"
		ev.Message = fmt.Sprintf("Most Borrowed Book: %s by %s", book.Title, book.Author)
		ev.Count = count

	default:
		return ev, fmt.Errorf("unknown action %q", step.Action)
	}
	return ev, nil
}

// checkExpect compares one trace event against its expect clause.
func checkExpect(ev TraceEvent, want Expect) []string {
	var errs []string
	if want.Outcome != "" && ev.Outcome != want.Outcome {
		errs = append(errs, fmt.Sprintf("expected outcome %q, got %q", want.Outcome, ev.Outcome))
	}
	if want.Message != "" && ev.Message != want.Message {
		errs = append(errs, fmt.Sprintf("expected message %q, got %q", want.Message, ev.Message))
	}
	if want.Book != "" && ev.Book != want.Book {
		errs = append(errs, fmt.Sprintf("expected book %q, got %q", want.Book, ev.Book))
	}
	if want.Count != nil && ev.Count != *want.Count {
		errs = append(errs, fmt.Sprintf("expected count %d, got %d", *want.Count, ev.Count))
	}
	return errs
}
