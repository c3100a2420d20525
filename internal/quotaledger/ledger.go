// Package quotaledger implements the process-wide QuotaLedger (spec §3, §5):
// a single shared counter that every upstream call reserves cost from before
// executing. Adapted from the teacher's internal/service/quota.Manager,
// which keeps the same reserve-then-act shape but persists usage in
// Postgres; here usage lives only for the lifetime of one run, since a
// single pipeline invocation (not a long-lived server) owns it (spec §9:
// "a single owned object passed into every upstream call site — not a
// global").
package quotaledger

import (
	"sync"

	"github.com/chessopenings/video-indexer/internal/xerrors"
)

// Ledger is a process-wide quota counter. Zero value is not usable; use New.
type Ledger struct {
	mu    sync.Mutex
	limit int
	used  int
}

// New creates a Ledger with the given daily limit (spec §6 quotaLimit,
// default 10000).
func New(limit int) *Ledger {
	if limit <= 0 {
		limit = 10000
	}
	return &Ledger{limit: limit}
}

// Reserve atomically reserves cost units. It fails the whole reservation if
// it would exceed the limit — quota is not partially reservable (spec §5).
func (l *Ledger) Reserve(cost int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.used+cost > l.limit {
		return xerrors.ErrQuotaExceeded
	}
	l.used += cost
	return nil
}

// Used returns the quota consumed so far.
func (l *Ledger) Used() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.used
}

// Limit returns the configured daily limit.
func (l *Ledger) Limit() int {
	return l.limit
}

// Remaining returns the quota left before the limit is hit.
func (l *Ledger) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	remaining := l.limit - l.used
	if remaining < 0 {
		return 0
	}
	return remaining
}
