package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Table is an ordered in-memory mapping from identifier to record, backed by
// one CSV file.
type Table[T any] struct {
	path  string
	codec Codec[T]
	keys  []string
	rows  map[string]T
}

// NewTable creates an empty table backed by path. Nothing is read until Load.
func NewTable[T any](path string, codec Codec[T]) *Table[T] {
	return &Table[T]{
		path:  path,
		codec: codec,
		rows:  make(map[string]T),
	}
}

// Path returns the backing file path.
func (t *Table[T]) Path() string {
	return t.path
}

// Len returns the number of records.
func (t *Table[T]) Len() int {
	return len(t.keys)
}

// Get returns the record stored under id.
func (t *Table[T]) Get(id string) (T, bool) {
	rec, ok := t.rows[id]
	return rec, ok
}

// Put stores rec under its key. An existing record with the same key is
// replaced without changing its position.
func (t *Table[T]) Put(rec T) {
	key := t.codec.Key(rec)
	if _, ok := t.rows[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.rows[key] = rec
}

// All returns every record in iteration order.
func (t *Table[T]) All() []T {
	out := make([]T, len(t.keys))
	for i, k := range t.keys {
		out[i] = t.rows[k]
	}
	return out
}

// Load replaces the table contents with the rows of the backing file.
// A missing file yields an empty table. On a malformed row the table is left
// as it was before the call.
func (t *Table[T]) Load() error {
	f, err := os.Open(t.path)
	if errors.Is(err, fs.ErrNotExist) {
		t.keys = nil
		t.rows = make(map[string]T)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", t.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // width is checked per row for a better message

	var keys []string
	rows := make(map[string]T)
	for {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			line := 0
			if errors.As(err, &pe) {
				line = pe.Line
			}
			return &RowError{Path: t.path, Line: line, Msg: "unreadable row", Err: err}
		}
		line, _ := r.FieldPos(0)

		if len(fields) != t.codec.Width() {
			return &RowError{
				Path: t.path,
				Line: line,
				Msg:  fmt.Sprintf("expected %d fields, got %d", t.codec.Width(), len(fields)),
			}
		}
		rec, err := t.codec.Decode(fields)
		if err != nil {
			return &RowError{Path: t.path, Line: line, Msg: "undecodable row", Err: err}
		}

		key := t.codec.Key(rec)
		if _, ok := rows[key]; !ok {
			keys = append(keys, key)
		}
		rows[key] = rec
	}

	t.keys = keys
	t.rows = rows
	return nil
}

// Save rewrites the backing file with every record in iteration order.
// The new content is written to a temporary file and renamed into place.
func (t *Table[T]) Save() error {
	dir := filepath.Dir(t.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(t.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("save %s: %w", t.path, err)
	}
	tmpName := tmp.Name()
	// No-op once the rename has happened.
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("save %s: %w", t.path, err)
	}
	if err := t.write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("save %s: %w", t.path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("save %s: sync: %w", t.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save %s: close: %w", t.path, err)
	}
	if err := os.Rename(tmpName, t.path); err != nil {
		return fmt.Errorf("save %s: rename: %w", t.path, err)
	}
	return nil
}

// write encodes all rows to w. Rows end in CRLF, the terminator of the
// tables this tool has always produced.
func (t *Table[T]) write(w io.Writer) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	for _, k := range t.keys {
		if err := cw.Write(t.codec.Encode(t.rows[k])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
