package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/libris/internal/model"
)

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	books := NewBookTable(filepath.Join(t.TempDir(), "books.csv"))

	require.NoError(t, books.Load())
	assert.Equal(t, 0, books.Len())
}

func TestLoad_ReadsBooksInFileOrder(t *testing.T) {
	path := writeFile(t, "books.csv", "B2,Emma,Austen,False\r\nB1,Dune,Herbert,True\r\n")
	books := NewBookTable(path)

	require.NoError(t, books.Load())

	assert.Equal(t, []model.Book{
		{ID: "B2", Title: "Emma", Author: "Austen", Available: false},
		{ID: "B1", Title: "Dune", Author: "Herbert", Available: true},
	}, books.All())
}

func TestLoad_AvailabilityOnlyTrueLiteral(t *testing.T) {
	path := writeFile(t, "books.csv", "a,t,x,True\nb,t,x,true\nc,t,x,yes\nd,t,x,\n")
	books := NewBookTable(path)

	require.NoError(t, books.Load())

	for id, want := range map[string]bool{"a": true, "b": false, "c": false, "d": false} {
		b, ok := books.Get(id)
		require.True(t, ok, id)
		assert.Equal(t, want, b.Available, id)
	}
}

func TestLoad_QuotedFields(t *testing.T) {
	path := writeFile(t, "books.csv", "B1,\"War, and Peace\",Tolstoy,True\n")
	books := NewBookTable(path)

	require.NoError(t, books.Load())

	b, ok := books.Get("B1")
	require.True(t, ok)
	assert.Equal(t, "War, and Peace", b.Title)
}

func TestLoad_WrongFieldCount(t *testing.T) {
	path := writeFile(t, "books.csv", "B1,Dune,Herbert,True\nB2,Emma,Austen\n")
	books := NewBookTable(path)

	err := books.Load()

	require.Error(t, err)
	assert.True(t, IsMalformed(err))
	var rowErr *RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 2, rowErr.Line)
	assert.Equal(t, path, rowErr.Path)
	assert.Contains(t, err.Error(), "expected 4 fields, got 3")
}

func TestLoad_MalformedLeavesTableUnchanged(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "books.csv")
	books := NewBookTable(path)
	books.Put(model.NewBook("B1", "Dune", "Herbert"))
	require.NoError(t, books.Save())

	require.NoError(t, os.WriteFile(path, []byte("only,two\n"), 0644))
	require.Error(t, books.Load())

	assert.Equal(t, 1, books.Len())
	_, ok := books.Get("B1")
	assert.True(t, ok)
}

func TestLoad_UnreadableCSV(t *testing.T) {
	path := writeFile(t, "members.csv", "M1,\"Ada,\n")
	members := NewMemberTable(path)

	err := members.Load()

	require.Error(t, err)
	assert.True(t, IsMalformed(err))
	assert.Contains(t, err.Error(), "unreadable row")
}

func TestLoad_MemberBorrowedList(t *testing.T) {
	path := writeFile(t, "members.csv", "M1,Ada,B1|B2\r\nM2,Grace,\r\n")
	members := NewMemberTable(path)

	require.NoError(t, members.Load())

	m1, ok := members.Get("M1")
	require.True(t, ok)
	assert.Equal(t, []string{"B1", "B2"}, m1.Borrowed)

	m2, ok := members.Get("M2")
	require.True(t, ok)
	assert.NotNil(t, m2.Borrowed)
	assert.Empty(t, m2.Borrowed)
}

func TestLoad_NormalizesDecomposedText(t *testing.T) {
	books := NewBookTable(writeFile(t, "books.csv", "Cafe\u0301,Cre\u0300me,Zola,True\n"))
	require.NoError(t, books.Load())

	b, ok := books.Get("Caf\u00e9")
	require.True(t, ok, "decomposed id is stored under its NFC form")
	assert.Equal(t, "Cr\u00e8me", b.Title)

	members := NewMemberTable(writeFile(t, "members.csv", "Jose\u0301,Ada,B1|Cafe\u0301\n"))
	require.NoError(t, members.Load())

	m, ok := members.Get("Jos\u00e9")
	require.True(t, ok)
	assert.Equal(t, []string{"B1", "Caf\u00e9"}, m.Borrowed)
}

func TestLoad_MemberWrongFieldCount(t *testing.T) {
	path := writeFile(t, "members.csv", "M1,Ada\n")
	err := NewMemberTable(path).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 3 fields, got 2")
}

func TestSave_WritesRowsWithoutHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.csv")
	books := NewBookTable(path)
	books.Put(model.NewBook("B1", "Dune", "Herbert"))
	unavailable := model.NewBook("B2", "Emma", "Austen")
	unavailable.Available = false
	books.Put(unavailable)

	require.NoError(t, books.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "B1,Dune,Herbert,True\r\nB2,Emma,Austen,False\r\n", string(data))
}

func TestSave_MemberEmptyBorrowedField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "members.csv")
	members := NewMemberTable(path)
	members.Put(model.NewMember("M1", "Ada"))
	members.Put(model.NewMember("M2", "Grace").WithBorrowed("B1").WithBorrowed("B2"))

	require.NoError(t, members.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "M1,Ada,\r\nM2,Grace,B1|B2\r\n", string(data))
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	books := NewBookTable(filepath.Join(dir, "books.csv"))
	books.Put(model.NewBook("B1", "Dune", "Herbert"))

	require.NoError(t, books.Save())
	require.NoError(t, books.Save())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "books.csv", entries[0].Name())
}

func TestSave_MissingDirectory(t *testing.T) {
	books := NewBookTable(filepath.Join(t.TempDir(), "nope", "books.csv"))
	books.Put(model.NewBook("B1", "Dune", "Herbert"))

	err := books.Save()
	require.Error(t, err)
	assert.False(t, IsMalformed(err))
}

func TestPut_OverwriteKeepsPosition(t *testing.T) {
	books := NewBookTable(filepath.Join(t.TempDir(), "books.csv"))
	books.Put(model.NewBook("B1", "Dune", "Herbert"))
	books.Put(model.NewBook("B2", "Emma", "Austen"))
	books.Put(model.NewBook("B1", "Dune Messiah", "Herbert"))

	all := books.All()
	require.Len(t, all, 2)
	assert.Equal(t, "B1", all[0].ID)
	assert.Equal(t, "Dune Messiah", all[0].Title)
	assert.Equal(t, "B2", all[1].ID)
}

func TestRoundTrip_FreshTable(t *testing.T) {
	dir := t.TempDir()
	booksPath := filepath.Join(dir, "books.csv")
	membersPath := filepath.Join(dir, "members.csv")

	books := NewBookTable(booksPath)
	books.Put(model.NewBook("B1", "Dune", "Herbert"))
	lent := model.NewBook("B2", "Emma, Vol. 1", "Austen")
	lent.Available = false
	books.Put(lent)
	members := NewMemberTable(membersPath)
	members.Put(model.NewMember("M1", "Ada").WithBorrowed("B2"))
	members.Put(model.NewMember("M2", "Grace"))
	require.NoError(t, books.Save())
	require.NoError(t, members.Save())

	books2 := NewBookTable(booksPath)
	members2 := NewMemberTable(membersPath)
	require.NoError(t, books2.Load())
	require.NoError(t, members2.Load())

	assert.Equal(t, books.All(), books2.All())
	assert.Equal(t, members.All(), members2.All())
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
