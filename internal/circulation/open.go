package circulation

import (
	"context"
	"fmt"

	"github.com/roach88/libris/internal/journal"
	"github.com/roach88/libris/internal/ledger"
	"github.com/roach88/libris/internal/store"
)

// Paths locates the persisted state of one library.
type Paths struct {
	Books   string
	Members string
	// Journal is the SQLite journal path. Empty disables journaling, in which
	// case borrow counts start at zero on every run.
	Journal string
}

// Open loads both tables, rebuilds the ledger and returns a ready service.
//
// Ledger order is: books in table order (count 0), then any book ids that
// only appear in the journal. Journaled borrows are replayed on top and the
// logical clock resumes after the journal's last seq. Options passed by the
// caller take precedence over the journal-derived defaults.
//
// The caller must Close the returned service.
func Open(ctx context.Context, p Paths, opts ...Option) (*Service, error) {
	books := store.NewBookTable(p.Books)
	if err := books.Load(); err != nil {
		return nil, fmt.Errorf("open library: %w", err)
	}
	members := store.NewMemberTable(p.Members)
	if err := members.Load(); err != nil {
		return nil, fmt.Errorf("open library: %w", err)
	}

	l := ledger.New()
	for _, b := range books.All() {
		l.Register(b.ID)
	}

	if p.Journal == "" {
		return New(books, members, l, opts...), nil
	}

	j, err := journal.Open(p.Journal)
	if err != nil {
		return nil, fmt.Errorf("open library: %w", err)
	}
	if _, err := j.ReplayLedger(ctx, l); err != nil {
		j.Close()
		return nil, fmt.Errorf("open library: %w", err)
	}
	last, err := j.LastSeq(ctx)
	if err != nil {
		j.Close()
		return nil, fmt.Errorf("open library: %w", err)
	}

	defaults := []Option{WithJournal(j), WithSequencer(NewClockAt(last))}
	svc := New(books, members, l, append(defaults, opts...)...)
	svc.closer = j
	return svc, nil
}
