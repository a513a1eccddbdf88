package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/roach88/libris/internal/ledger"
)

// Entries returns the entries matching f, ordered by seq ASC, id ASC.
// Returns an empty slice (not nil) when nothing matches.
func (j *Journal) Entries(ctx context.Context, f Filter) ([]Entry, error) {
	var (
		where []string
		args  []any
	)
	if f.MemberID != "" {
		where = append(where, "member_id = ?")
		args = append(args, f.MemberID)
	}
	if f.BookID != "" {
		where = append(where, "book_id = ?")
		args = append(args, f.BookID)
	}
	if f.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(f.Kind))
	}

	query := "SELECT id, seq, kind, member_id, book_id, outcome FROM entries"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq ASC, id COLLATE BINARY ASC"

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e    Entry
			kind string
		)
		if err := rows.Scan(&e.ID, &e.Seq, &kind, &e.MemberID, &e.BookID, &e.Outcome); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Kind = Kind(kind)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	return entries, nil
}

// LastSeq returns the highest seq in the journal, or 0 when it is empty.
// Used to resume the logical clock after a restart.
func (j *Journal) LastSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	if err := j.db.QueryRowContext(ctx, "SELECT MAX(seq) FROM entries").Scan(&seq); err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq.Int64, nil
}

// ReplayLedger increments l once per successful borrow, in journal order,
// and returns the number of borrows applied.
// Returns are not replayed: counts are cumulative borrows, not current loans.
func (j *Journal) ReplayLedger(ctx context.Context, l *ledger.Ledger) (int, error) {
	entries, err := j.Entries(ctx, Filter{Kind: KindBorrow})
	if err != nil {
		return 0, fmt.Errorf("replay ledger: %w", err)
	}

	applied := 0
	for _, e := range entries {
		if !e.Succeeded() {
			continue
		}
		l.Increment(e.BookID)
		applied++
	}
	return applied, nil
}
