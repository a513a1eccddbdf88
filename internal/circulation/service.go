package circulation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/roach88/libris/internal/journal"
	"github.com/roach88/libris/internal/ledger"
	"github.com/roach88/libris/internal/model"
	"github.com/roach88/libris/internal/store"
)

// ErrNoJournal is returned by History when the service runs without a journal.
var ErrNoJournal = errors.New("no circulation journal configured")

// ErrInvalidBookID is returned by AddBook for ids that a member's borrowed
// column cannot hold: the empty id and ids containing the column separator.
var ErrInvalidBookID = errors.New("book id must be non-empty and must not contain " + strconv.Quote(store.BorrowedSeparator))

// BookStore is the book table the service reads and mutates.
type BookStore interface {
	Get(id string) (model.Book, bool)
	Put(b model.Book)
	All() []model.Book
	Save() error
}

// MemberStore is the member table the service reads and mutates.
type MemberStore interface {
	Get(id string) (model.Member, bool)
	Put(m model.Member)
	All() []model.Member
	Save() error
}

// Recorder persists circulation attempts.
type Recorder interface {
	Append(ctx context.Context, e journal.Entry) error
	Entries(ctx context.Context, f journal.Filter) ([]journal.Entry, error)
}

// Service enforces borrow/return rules across the book and member tables.
type Service struct {
	mu      sync.Mutex
	books   BookStore
	members MemberStore
	ledger  *ledger.Ledger

	journal Recorder
	closer  io.Closer
	seq     Sequencer
	ids     IDGenerator
	logger  *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithJournal records every borrow/return attempt to r.
func WithJournal(r Recorder) Option {
	return func(s *Service) { s.journal = r }
}

// WithSequencer overrides the logical clock (default NewClock()).
func WithSequencer(seq Sequencer) Option {
	return func(s *Service) { s.seq = seq }
}

// WithIDGenerator overrides the entry id source (default UUIDv7Generator).
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Service) { s.ids = g }
}

// WithLogger sets the logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a service over already-loaded tables. Every book present in
// books gets a ledger entry (count 0 unless l already has one).
func New(books BookStore, members MemberStore, l *ledger.Ledger, opts ...Option) *Service {
	s := &Service{
		books:   books,
		members: members,
		ledger:  l,
		seq:     NewClock(),
		ids:     UUIDv7Generator{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, b := range books.All() {
		l.Register(b.ID)
	}
	return s
}

// Close releases the journal, if the service opened one.
func (s *Service) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// AddBook registers an available book and saves the book table.
// An existing book with the same id is replaced, including its availability.
// Ids a borrowed list cannot hold fail with ErrInvalidBookID.
func (s *Service) AddBook(ctx context.Context, id, title, author string) (model.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book := model.NewBook(id, title, author)
	if book.ID == "" || strings.Contains(book.ID, store.BorrowedSeparator) {
		return book, fmt.Errorf("add book %q: %w", book.ID, ErrInvalidBookID)
	}
	if prev, ok := s.books.Get(book.ID); ok {
		s.logger.Warn("replacing existing book", "book_id", book.ID, "was_available", prev.Available)
	}
	s.books.Put(book)
	s.ledger.Register(book.ID)

	if err := s.books.Save(); err != nil {
		s.logger.Error("failed to save books", "error", err)
		return book, fmt.Errorf("add book: %w", err)
	}
	s.logger.Info("book added", "book_id", book.ID, "title", book.Title)
	return book, nil
}

// AddMember registers a member holding no books and saves the member table.
// An existing member with the same id is replaced, including its loans.
func (s *Service) AddMember(ctx context.Context, id, name string) (model.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	member := model.NewMember(id, name)
	if prev, ok := s.members.Get(member.ID); ok {
		s.logger.Warn("replacing existing member", "member_id", member.ID, "dropped_loans", len(prev.Borrowed))
	}
	s.members.Put(member)

	if err := s.members.Save(); err != nil {
		s.logger.Error("failed to save members", "error", err)
		return member, fmt.Errorf("add member: %w", err)
	}
	s.logger.Info("member added", "member_id", member.ID, "name", member.Name)
	return member, nil
}

// Borrow lends bookID to memberID.
func (s *Service) Borrow(ctx context.Context, memberID, bookID string) (Outcome, error) {
	memberID, bookID = model.Normalize(memberID), model.Normalize(bookID)

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.recordsOf(memberID, bookID)
	out := s.borrow(memberID, bookID)
	return out, s.finish(ctx, journal.KindBorrow, memberID, bookID, out, prev)
}

func (s *Service) borrow(memberID, bookID string) Outcome {
	member, ok := s.members.Get(memberID)
	if !ok {
		return memberNotFound()
	}
	book, ok := s.books.Get(bookID)
	if !ok {
		return bookNotFound(member)
	}
	if !book.Available {
		return alreadyBorrowed(member, book)
	}

	book.Available = false
	member = member.WithBorrowed(bookID)
	s.books.Put(book)
	s.members.Put(member)

	return borrowed(member, book)
}

// Return takes bookID back from memberID.
// The ledger is not touched: counts are cumulative borrows.
func (s *Service) Return(ctx context.Context, memberID, bookID string) (Outcome, error) {
	memberID, bookID = model.Normalize(memberID), model.Normalize(bookID)

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.recordsOf(memberID, bookID)
	out := s.giveBack(memberID, bookID)
	return out, s.finish(ctx, journal.KindReturn, memberID, bookID, out, prev)
}

func (s *Service) giveBack(memberID, bookID string) Outcome {
	member, ok := s.members.Get(memberID)
	if !ok {
		return memberNotFound()
	}
	book, ok := s.books.Get(bookID)
	if !ok {
		return bookNotFound(member)
	}
	if !member.Holds(bookID) {
		return notBorrowed(member, book)
	}

	book.Available = true
	member = member.WithReturned(bookID)
	s.books.Put(book)
	s.members.Put(member)

	return returned(member, book)
}

// records is the state of one member and one book before a transition.
type records struct {
	member model.Member
	book   model.Book
}

func (s *Service) recordsOf(memberID, bookID string) records {
	member, _ := s.members.Get(memberID)
	book, _ := s.books.Get(bookID)
	return records{member: member, book: book}
}

// finish persists a successful transition and journals the attempt.
//
// A failed save restores prev and returns the error; the attempt is not
// journaled. A failed journal append after a successful save is logged only:
// the tables already hold the new state.
func (s *Service) finish(ctx context.Context, kind journal.Kind, memberID, bookID string, out Outcome, prev records) error {
	s.logger.Debug("circulation attempt",
		"kind", kind, "member_id", memberID, "book_id", bookID, "outcome", out.Kind)

	if out.OK() {
		if err := s.persist(); err != nil {
			s.logger.Error("failed to persist transition", "kind", kind, "error", err)
			s.rollback(prev)
			return fmt.Errorf("%s: %w", kind, err)
		}
		if kind == journal.KindBorrow {
			s.ledger.Increment(bookID)
		}
		s.logger.Info("transition applied", "kind", kind, "message", out.Message, "member_id", memberID, "book_id", bookID)
	}

	if s.journal == nil {
		return nil
	}
	entry := journal.Entry{
		ID:       s.ids.Generate(),
		Seq:      s.seq.Next(),
		Kind:     kind,
		MemberID: memberID,
		BookID:   bookID,
		Outcome:  string(out.Kind),
	}
	if err := s.journal.Append(ctx, entry); err != nil {
		s.logger.Error("failed to journal attempt",
			"kind", kind, "entry_id", entry.ID, "outcome", out.Kind, "error", err)
	}
	return nil
}

// rollback puts prev back and rewrites both tables, so a table that was saved
// before its sibling failed returns to the old state.
func (s *Service) rollback(prev records) {
	s.books.Put(prev.book)
	s.members.Put(prev.member)
	if err := s.persist(); err != nil {
		s.logger.Error("failed to restore tables", "member_id", prev.member.ID, "book_id", prev.book.ID, "error", err)
	}
}

// persist saves both tables; both are attempted even if the first fails.
func (s *Service) persist() error {
	return errors.Join(s.books.Save(), s.members.Save())
}

// MostBorrowed returns the book with the highest cumulative borrow count and
// that count. Ties go to the book the ledger saw first. ok is false when the
// ledger is empty or its top entry has no book record.
func (s *Service) MostBorrowed() (model.Book, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	top, ok := s.ledger.Top()
	if !ok {
		return model.Book{}, 0, false
	}
	book, ok := s.books.Get(top.BookID)
	if !ok {
		return model.Book{}, 0, false
	}
	return book, top.Count, true
}

// Book returns the book stored under id.
func (s *Service) Book(id string) (model.Book, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.books.Get(model.Normalize(id))
}

// Member returns the member stored under id.
func (s *Service) Member(id string) (model.Member, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.members.Get(model.Normalize(id))
}

// Books returns all books in table order.
func (s *Service) Books() []model.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.books.All()
}

// Members returns all members in table order.
func (s *Service) Members() []model.Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.members.All()
}

// BorrowCount returns the cumulative borrow count of a book.
func (s *Service) BorrowCount(bookID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Count(model.Normalize(bookID))
}

// Ledger returns every ledger entry in first-seen order.
func (s *Service) Ledger() []ledger.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Entries()
}

// History returns journaled attempts matching f.
func (s *Service) History(ctx context.Context, f journal.Filter) ([]journal.Entry, error) {
	if s.journal == nil {
		return nil, ErrNoJournal
	}
	f.MemberID = model.Normalize(f.MemberID)
	f.BookID = model.Normalize(f.BookID)
	return s.journal.Entries(ctx, f)
}
