package model

import (
	"slices"

	"golang.org/x/text/unicode/norm"
)

// Book is a single catalogued title.
type Book struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Available bool   `json:"available"`
}

// NewBook returns an available book with normalized fields.
func NewBook(id, title, author string) Book {
	return Book{
		ID:        Normalize(id),
		Title:     Normalize(title),
		Author:    Normalize(author),
		Available: true,
	}
}

// Member is a registered borrower.
type Member struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Borrowed []string `json:"borrowed"`
}

// NewMember returns a member holding no books.
func NewMember(id, name string) Member {
	return Member{
		ID:       Normalize(id),
		Name:     Normalize(name),
		Borrowed: []string{},
	}
}

// Holds reports whether bookID is in the member's borrowed list.
func (m Member) Holds(bookID string) bool {
	return slices.Contains(m.Borrowed, bookID)
}

// WithBorrowed returns a copy of m with bookID appended.
// The receiver's slice is never written to.
func (m Member) WithBorrowed(bookID string) Member {
	borrowed := make([]string, 0, len(m.Borrowed)+1)
	borrowed = append(borrowed, m.Borrowed...)
	m.Borrowed = append(borrowed, bookID)
	return m
}

// WithReturned returns a copy of m with the first occurrence of bookID removed.
// If bookID is not held, the copy is identical to m.
func (m Member) WithReturned(bookID string) Member {
	borrowed := slices.Clone(m.Borrowed)
	if i := slices.Index(borrowed, bookID); i >= 0 {
		borrowed = slices.Delete(borrowed, i, i+1)
	}
	if borrowed == nil {
		borrowed = []string{}
	}
	m.Borrowed = borrowed
	return m
}

// Normalize returns s in Unicode NFC form.
// Identifiers typed on different terminals can arrive decomposed; without this
// a precomposed and a decomposed "é" would be two different keys.
func Normalize(s string) string {
	return norm.NFC.String(s)
}
