// Package report keeps an append-only audit trail of command runs and state
// reads. Records are written by a background goroutine so reporting never
// blocks a request.
package report
