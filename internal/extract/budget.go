package extract

import "sync"

// Budget is the run-wide API-call allowance shared by every concurrent seed
// fetch. A zero max means unlimited.
type Budget struct {
	mu        sync.Mutex
	remaining int
	unlimited bool
}

func NewBudget(max int) *Budget {
	return &Budget{remaining: max, unlimited: max <= 0}
}

// Take consumes one call from the budget. It returns false once the budget
// is exhausted; callers stop fetching and keep what they have.
func (b *Budget) Take() bool {
	if b.unlimited {
		return true
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.remaining <= 0 {
		return false
	}
	b.remaining--
	return true
}

// Remaining reports the calls left; -1 when unlimited.
func (b *Budget) Remaining() int {
	if b.unlimited {
		return -1
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remaining
}
