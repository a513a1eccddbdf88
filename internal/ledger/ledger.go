// Package ledger keeps the cumulative per-book borrow counts used for
// analytics.
//
// The ledger is auxiliary: it never decides availability. Counts only grow,
// and entries keep the order in which their book ids were first seen, which
// is what breaks ties in Top.
package ledger

// Entry is one book's cumulative borrow count.
type Entry struct {
	BookID string `json:"book_id"`
	Count  int    `json:"count"`
}

// Ledger maps book ids to borrow counts in first-seen order.
// The zero value is not usable; call New.
type Ledger struct {
	order  []string
	counts map[string]int
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{counts: make(map[string]int)}
}

// Register creates a zero entry for bookID if none exists.
// Existing counts are left untouched.
func (l *Ledger) Register(bookID string) {
	if _, ok := l.counts[bookID]; ok {
		return
	}
	l.order = append(l.order, bookID)
	l.counts[bookID] = 0
}

// Increment adds one borrow for bookID, creating the entry at 1 if absent,
// and returns the new count.
func (l *Ledger) Increment(bookID string) int {
	l.Register(bookID)
	l.counts[bookID]++
	return l.counts[bookID]
}

// Count returns the cumulative count for bookID (0 when unknown).
func (l *Ledger) Count(bookID string) int {
	return l.counts[bookID]
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	return len(l.order)
}

// Entries returns all entries in first-seen order.
func (l *Ledger) Entries() []Entry {
	entries := make([]Entry, len(l.order))
	for i, id := range l.order {
		entries[i] = Entry{BookID: id, Count: l.counts[id]}
	}
	return entries
}

// Top returns the entry with the strictly highest count. On ties the entry
// seen first wins. ok is false only when the ledger is empty.
func (l *Ledger) Top() (Entry, bool) {
	if len(l.order) == 0 {
		return Entry{}, false
	}
	best := Entry{BookID: l.order[0], Count: l.counts[l.order[0]]}
	for _, id := range l.order[1:] {
		if c := l.counts[id]; c > best.Count {
			best = Entry{BookID: id, Count: c}
		}
	}
	return best, true
}
