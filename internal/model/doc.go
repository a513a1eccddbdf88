// Package model defines the records tracked by libris.
//
// This package contains type definitions and small value helpers only. All
// other internal packages import model; model imports nothing internal.
//
// Key constraints:
//   - A Book is unavailable exactly when one Member lists it in Borrowed
//   - Member.Borrowed keeps borrow order; the same id is not expected twice
//   - Records are never deleted, only overwritten by a repeated add
package model
