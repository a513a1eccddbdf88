// Package circulation implements the borrow/return rules of libris.
//
// The Service owns no records itself: the book and member tables and the
// borrow ledger are injected at construction. Every operation runs to
// completion under one mutex, so a Service may be shared between goroutines
// even though the tables beneath it are not.
//
// Per book the state machine is:
//
//	Available --Borrow--> Borrowed --Return--> Available
//
// Guards are evaluated in a fixed order and the first failing guard decides
// the Outcome. A failed guard never changes state.
//
// Borrow:  member exists, book exists, book available.
// Return:  member exists, book exists, member holds the book.
//
// On success the in-memory records change first, then the book table and the
// member table are saved, then (if configured) the attempt is journaled. Save
// failures are returned as errors; they are the only errors the transition
// methods produce. Not-found and invalid-transition cases are Outcomes.
//
// Journal entries are stamped with a logical sequence number from Clock,
// never wall time, and identified by IDs from an IDGenerator (UUIDv7 by
// default, fixed sequences in tests).
package circulation
