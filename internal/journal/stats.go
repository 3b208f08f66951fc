package journal

import "sync/atomic"

// Stats aggregates running totals from processed entries. Amounts are in
// stotinki.
type Stats struct {
	purchases      atomic.Uint64
	revenue        atomic.Int64
	coinsInserted  atomic.Uint64
	insertedAmount atomic.Int64
	returnedAmount atomic.Int64
	resets         atomic.Uint64
}

// Apply folds one entry into the totals.
func (st *Stats) Apply(e Entry) {
	switch e.Kind {
	case KindPurchase:
		st.purchases.Add(1)
		st.revenue.Add(e.Amount)
	case KindCoinInserted:
		st.coinsInserted.Add(1)
		st.insertedAmount.Add(e.Amount)
	case KindCoinsReturned:
		st.returnedAmount.Add(e.Amount)
	case KindReserveReset:
		st.resets.Add(1)
	}
}

// Snapshot returns the current totals as a flat map for the metrics
// endpoint.
func (st *Stats) Snapshot() map[string]any {
	return map[string]any{
		"purchases":         st.purchases.Load(),
		"revenue_stotinki":  st.revenue.Load(),
		"coins_inserted":    st.coinsInserted.Load(),
		"inserted_stotinki": st.insertedAmount.Load(),
		"returned_stotinki": st.returnedAmount.Load(),
		"reserve_resets":    st.resets.Load(),
	}
}
