// Package harness runs circulation scenarios end to end.
//
// Each scenario gets its own temporary data directory holding real CSV tables
// and a real SQLite journal. The flow is driven through circulation.Service,
// and assertions are evaluated against a second service opened from disk, so
// a scenario checks what survives a restart rather than in-memory state.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: borrow_and_return
//	description: "A member borrows a book and gives it back"
//	setup:
//	  books:
//	    - { id: B1, title: Dune, author: Herbert }
//	  members:
//	    - { id: M1, name: Ada }
//	flow:
//	  - action: borrow
//	    member: M1
//	    book: B1
//	    expect:
//	      outcome: success
//	      message: "Ada borrowed 'Dune'"
//	  - action: most_borrowed
//	    expect: { outcome: found, book: B1, count: 1 }
//	assertions:
//	  - type: book_available
//	    book: B1
//	    available: false
//	  - type: member_holds
//	    member: M1
//	    books: [B1]
//
// Unknown fields are rejected so typos fail loudly.
//
// # Determinism
//
// Journal sequence numbers come from testutil.DeterministicClock and entry
// ids from testutil.SequentialIDGenerator, so the same scenario always
// produces the same trace. RenderTrace turns a result into the text compared
// against testdata/golden/<name>.golden.
//
// # Assertion Types
//
//   - book_available: a book's availability after reload
//   - member_holds: a member's borrowed list after reload, in order
//   - borrow_count: a book's cumulative borrow count after journal replay
//   - journal_count: number of journaled attempts matching member/book/kind
//   - trace_count: number of trace events for an action (and outcome)
package harness
