package circulation

import (
	"fmt"

	"github.com/roach88/libris/internal/model"
)

// OutcomeKind tags the result of a borrow or return.
type OutcomeKind string

const (
	// OutcomeSuccess means the transition happened.
	OutcomeSuccess OutcomeKind = "success"

	// OutcomeMemberNotFound means no member has the given id.
	OutcomeMemberNotFound OutcomeKind = "member_not_found"

	// OutcomeBookNotFound means no book has the given id.
	OutcomeBookNotFound OutcomeKind = "book_not_found"

	// OutcomeAlreadyBorrowed means the book is held by someone.
	OutcomeAlreadyBorrowed OutcomeKind = "already_borrowed"

	// OutcomeNotBorrowed means the member does not hold the book.
	OutcomeNotBorrowed OutcomeKind = "not_borrowed"
)

// Outcome is the result of a borrow or return attempt.
// Message is the human-readable text shown by the CLI; callers that need to
// branch should switch on Kind.
type Outcome struct {
	Kind    OutcomeKind   `json:"kind"`
	Message string        `json:"message"`
	Book    *model.Book   `json:"book,omitempty"`
	Member  *model.Member `json:"member,omitempty"`
}

// OK reports whether the transition happened.
func (o Outcome) OK() bool {
	return o.Kind == OutcomeSuccess
}

func (o Outcome) String() string {
	return o.Message
}

func memberNotFound() Outcome {
	return Outcome{Kind: OutcomeMemberNotFound, Message: "Member not found"}
}

func bookNotFound(m model.Member) Outcome {
	return Outcome{Kind: OutcomeBookNotFound, Message: "Book not found", Member: &m}
}

func alreadyBorrowed(m model.Member, b model.Book) Outcome {
	return Outcome{Kind: OutcomeAlreadyBorrowed, Message: "Book is already borrowed", Member: &m, Book: &b}
}

func notBorrowed(m model.Member, b model.Book) Outcome {
	return Outcome{Kind: OutcomeNotBorrowed, Message: "This book was not borrowed by the member", Member: &m, Book: &b}
}

func borrowed(m model.Member, b model.Book) Outcome {
	return Outcome{
		Kind:    OutcomeSuccess,
		Message: fmt.Sprintf("%s borrowed '%s'", m.Name, b.Title),
		Member:  &m,
		Book:    &b,
	}
}

func returned(m model.Member, b model.Book) Outcome {
	return Outcome{
		Kind:    OutcomeSuccess,
		Message: fmt.Sprintf("'%s' returned successfully", b.Title),
		Member:  &m,
		Book:    &b,
	}
}
