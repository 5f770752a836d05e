package store

import (
	"iter"
	"sync/atomic"

	"loanrag/internal/domain"
)

// Store is an immutable, ordered collection of loan records.
// A new dataset means a new Store; nothing mutates one after New returns.
type Store struct {
	records []domain.LoanRecord
}

// New copies records into a fresh store. The caller keeps ownership of the input slice.
func New(records []domain.LoanRecord) *Store {
	cp := make([]domain.LoanRecord, len(records))
	copy(cp, records)
	return &Store{records: cp}
}

// Len returns the number of records. A nil store is empty.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// At returns a read-only pointer to the i-th record.
func (s *Store) At(i int) *domain.LoanRecord { return &s.records[i] }

// Records iterates the records in load order.
func (s *Store) Records() iter.Seq2[int, *domain.LoanRecord] {
	return func(yield func(int, *domain.LoanRecord) bool) {
		for i := 0; i < s.Len(); i++ {
			if !yield(i, &s.records[i]) {
				return
			}
		}
	}
}

// Handle publishes the current store. Readers take a snapshot with Current
// and keep using it even if Replace runs concurrently.
type Handle struct {
	current atomic.Pointer[Store]
}

// NewHandle creates a handle publishing st.
func NewHandle(st *Store) *Handle {
	h := &Handle{}
	if st == nil {
		st = New(nil)
	}
	h.current.Store(st)
	return h
}

// Current returns the store visible at the time of the call.
func (h *Handle) Current() *Store { return h.current.Load() }

// Replace publishes st and returns the store it superseded.
func (h *Handle) Replace(st *Store) *Store {
	if st == nil {
		st = New(nil)
	}
	return h.current.Swap(st)
}
