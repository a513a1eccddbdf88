package store

import (
	"strings"

	"github.com/roach88/libris/internal/model"
)

// Codec maps a record type to and from one table row.
type Codec[T any] interface {
	// Key returns the record's identifier.
	Key(rec T) string
	// Encode returns the row fields for rec.
	Encode(rec T) []string
	// Decode builds a record from a row. fields has already been checked
	// against Width.
	Decode(fields []string) (T, error)
	// Width is the exact number of fields per row.
	Width() int
}

// BorrowedSeparator joins book ids in a member's borrowed column. A book id
// containing it would not survive a save and reload.
const BorrowedSeparator = "|"

const (
	availableTrue  = "True"
	availableFalse = "False"
)

// BookCodec encodes books as id,title,author,available.
type BookCodec struct{}

func (BookCodec) Key(b model.Book) string { return b.ID }

func (BookCodec) Width() int { return 4 }

func (BookCodec) Encode(b model.Book) []string {
	available := availableFalse
	if b.Available {
		available = availableTrue
	}
	return []string{b.ID, b.Title, b.Author, available}
}

// Decode treats any availability text other than "True" as unavailable.
// Text fields are normalized the same way as input to the service, so rows
// written by other tools are found under the ids users type.
func (BookCodec) Decode(f []string) (model.Book, error) {
	return model.Book{
		ID:        model.Normalize(f[0]),
		Title:     model.Normalize(f[1]),
		Author:    model.Normalize(f[2]),
		Available: f[3] == availableTrue,
	}, nil
}

// MemberCodec encodes members as id,name,borrowed.
type MemberCodec struct{}

func (MemberCodec) Key(m model.Member) string { return m.ID }

func (MemberCodec) Width() int { return 3 }

func (MemberCodec) Encode(m model.Member) []string {
	return []string{m.ID, m.Name, strings.Join(m.Borrowed, BorrowedSeparator)}
}

func (MemberCodec) Decode(f []string) (model.Member, error) {
	borrowed := []string{}
	if f[2] != "" {
		for _, id := range strings.Split(f[2], BorrowedSeparator) {
			borrowed = append(borrowed, model.Normalize(id))
		}
	}
	return model.Member{ID: model.Normalize(f[0]), Name: model.Normalize(f[1]), Borrowed: borrowed}, nil
}

// BookTable is the book store.
type BookTable = Table[model.Book]

// MemberTable is the member store.
type MemberTable = Table[model.Member]

// NewBookTable creates a book table backed by path.
func NewBookTable(path string) *BookTable {
	return NewTable[model.Book](path, BookCodec{})
}

// NewMemberTable creates a member table backed by path.
func NewMemberTable(path string) *MemberTable {
	return NewTable[model.Member](path, MemberCodec{})
}
