// Package coin defines the accepted denominations and the change-making
// algorithm over a finite coin reserve.
package coin

import (
	"fmt"
	"sort"
)

// Denomination is one accepted coin type, named after its face value.
type Denomination string

// Accepted denominations. Face values are in stotinki.
const (
	TenSt    Denomination = "TEN_ST"
	TwentySt Denomination = "TWENTY_ST"
	FiftySt  Denomination = "FIFTY_ST"
	OneLv    Denomination = "ONE_LV"
	TwoLv    Denomination = "TWO_LV"
)

var faceValues = map[Denomination]int64{
	TenSt:    10,
	TwentySt: 20,
	FiftySt:  50,
	OneLv:    100,
	TwoLv:    200,
}

// Denominations lists all accepted denominations ordered by face value
// ascending. Built once at init; the greedy walk uses the reversed copy so
// nothing depends on declaration order.
var Denominations []Denomination

// descending mirrors Denominations from largest to smallest face value.
var descending []Denomination

func init() {
	for d := range faceValues {
		Denominations = append(Denominations, d)
	}
	sort.Slice(Denominations, func(i, j int) bool {
		return faceValues[Denominations[i]] < faceValues[Denominations[j]]
	})
	descending = make([]Denomination, len(Denominations))
	for i, d := range Denominations {
		descending[len(Denominations)-1-i] = d
	}
}

// Value returns the face value of d in stotinki.
func (d Denomination) Value() int64 { return faceValues[d] }

// Valid reports whether d is an accepted denomination.
func (d Denomination) Valid() bool {
	_, ok := faceValues[d]
	return ok
}

// Parse converts a denomination name into a Denomination.
func Parse(s string) (Denomination, error) {
	d := Denomination(s)
	if !d.Valid() {
		return "", fmt.Errorf("unknown denomination %q", s)
	}
	return d, nil
}

// Sum returns the total face value of the given coins in stotinki.
func Sum(coins []Denomination) int64 {
	var total int64
	for _, d := range coins {
		total += d.Value()
	}
	return total
}

// InsufficientReserveError reports that the reserve cannot produce the
// requested amount exactly.
type InsufficientReserveError struct {
	Amount int64
}

func (e *InsufficientReserveError) Error() string {
	return fmt.Sprintf("reserve cannot make change for %d stotinki", e.Amount)
}

// MakeChange decomposes amount into coins drawn from reserve, largest
// denomination first. It returns the dispensed counts and a new reserve with
// those counts subtracted; the caller's reserve is never touched. On failure
// the working copy is discarded and both return maps are nil.
//
// Greedy is exact-minimal only because the accepted denomination set is
// canonical; anyone extending Denominations must re-verify that property or
// swap this for a dynamic-programming solver.
func MakeChange(amount int64, reserve map[Denomination]int) (map[Denomination]int, map[Denomination]int, error) {
	remaining := amount
	dispensed := make(map[Denomination]int)
	working := make(map[Denomination]int, len(reserve))
	for d, n := range reserve {
		working[d] = n
	}
	for _, d := range descending {
		if remaining <= 0 {
			break
		}
		v := d.Value()
		n := int(remaining / v)
		if avail := working[d]; n > avail {
			n = avail
		}
		if n <= 0 {
			continue
		}
		remaining -= int64(n) * v
		working[d] -= n
		dispensed[d] = n
	}
	if remaining > 0 {
		return nil, nil, &InsufficientReserveError{Amount: amount}
	}
	return dispensed, working, nil
}
