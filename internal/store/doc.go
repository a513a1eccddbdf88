// Package store provides flat-file record tables for libris.
//
// A Table keeps an in-memory mapping from identifier to record and mirrors it
// to a comma-separated file with no header and one record per row:
//   - books.csv:   id,title,author,available   (available is "True" or anything else)
//   - members.csv: id,name,borrowed            (borrowed is "|"-joined, empty if none)
//
// # Ordering
//
// Iteration order is insertion order. Re-adding an existing identifier
// replaces the record in place, so the row keeps its original position.
// Load preserves the file's row order.
//
// # Failure Policy
//
//   - Missing file on Load: empty table, no error
//   - Wrong field count or unreadable CSV: Load fails with *RowError
//     (errors.Is(err, ErrMalformedRow)) and the table is left unchanged
//   - Save writes a temporary file in the same directory and renames it over
//     the table, so a crash mid-write leaves the previous file intact
//
// Tables are not safe for concurrent use; callers serialize access.
package store
