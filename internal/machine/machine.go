// Package machine owns the mutable coin state of a single vending machine:
// the ledger of inserted coins and the reserve of dispensable change. All
// mutation goes through this API; callers never touch the maps directly.
package machine

import (
	"sync"

	"github.com/fairyhunter13/vending-machine-service/internal/coin"
	"github.com/shopspring/decimal"
)

// State is the in-process ledger and change reserve of one machine.
type State struct {
	mu      sync.Mutex
	ledger  []coin.Denomination
	reserve map[coin.Denomination]int
	seed    int
}

// New creates a State with the reserve seeded at seed coins per
// denomination.
func New(seed int) *State {
	s := &State{seed: seed}
	s.ResetReserve()
	return s
}

// InsertCoin appends d to the ledger. Always succeeds.
func (s *State) InsertCoin(d coin.Denomination) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger = append(s.ledger, d)
}

// InsertedTotal returns the sum of face values in the ledger, in stotinki.
func (s *State) InsertedTotal() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return coin.Sum(s.ledger)
}

// InsertedCoins returns a copy of the ledger in insertion order.
func (s *State) InsertedCoins() []coin.Denomination {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]coin.Denomination, len(s.ledger))
	copy(out, s.ledger)
	return out
}

// ClearLedger empties the ledger and returns the coins in insertion order.
// Used by both coin return and purchase completion.
func (s *State) ClearLedger() []coin.Denomination {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.ledger
	s.ledger = nil
	if out == nil {
		out = []coin.Denomination{}
	}
	return out
}

// ReserveSnapshot returns a copy of the reserve counts. Callers mutate the
// copy freely; the reserve itself changes only through CommitReserve.
func (s *State) ReserveSnapshot() map[coin.Denomination]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[coin.Denomination]int, len(s.reserve))
	for d, n := range s.reserve {
		out[d] = n
	}
	return out
}

// CommitReserve atomically replaces the reserve. Only called after a
// successful change computation.
func (s *State) CommitReserve(newReserve map[coin.Denomination]int) {
	cp := make(map[coin.Denomination]int, len(newReserve))
	for d, n := range newReserve {
		cp[d] = n
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reserve = cp
}

// ResetReserve reseeds every denomination to the configured seed count.
func (s *State) ResetReserve() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reserve = make(map[coin.Denomination]int, len(coin.Denominations))
	for _, d := range coin.Denominations {
		s.reserve[d] = s.seed
	}
}

// ReserveTotal returns the total face value of the reserve in stotinki.
func (s *State) ReserveTotal() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for d, n := range s.reserve {
		total += d.Value() * int64(n)
	}
	return total
}

// ReserveBalance returns the reserve's total face value in levs as an exact
// decimal.
func (s *State) ReserveBalance() decimal.Decimal {
	return decimal.New(s.ReserveTotal(), -2)
}
