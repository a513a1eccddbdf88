package journal

import "fmt"

// Kind is the circulation action an entry records.
type Kind string

const (
	KindBorrow Kind = "borrow"
	KindReturn Kind = "return"
)

// OutcomeSuccess is the outcome text of a transition that changed state.
// Failed attempts carry the failure kind instead (e.g. "already_borrowed").
const OutcomeSuccess = "success"

// Entry is one journaled borrow or return attempt.
type Entry struct {
	ID       string `json:"id"`
	Seq      int64  `json:"seq"`
	Kind     Kind   `json:"kind"`
	MemberID string `json:"member_id"`
	BookID   string `json:"book_id"`
	Outcome  string `json:"outcome"`
}

// Succeeded reports whether the entry recorded a state change.
func (e Entry) Succeeded() bool {
	return e.Outcome == OutcomeSuccess
}

func (e Entry) validate() error {
	if e.ID == "" {
		return fmt.Errorf("id is required")
	}
	if e.Kind != KindBorrow && e.Kind != KindReturn {
		return fmt.Errorf("invalid kind %q", e.Kind)
	}
	if e.Outcome == "" {
		return fmt.Errorf("outcome is required")
	}
	return nil
}

// Filter narrows Entries. Empty fields match everything.
type Filter struct {
	MemberID string
	BookID   string
	Kind     Kind
}
