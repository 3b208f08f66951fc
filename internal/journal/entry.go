package journal

import (
	"time"

	"github.com/fairyhunter13/vending-machine-service/internal/coin"
)

// Entry kinds recorded by the engine.
const (
	KindCoinInserted   = "coin_inserted"
	KindCoinsReturned  = "coins_returned"
	KindPurchase       = "purchase"
	KindProductAdded   = "product_added"
	KindProductUpdated = "product_updated"
	KindProductRemoved = "product_removed"
	KindReserveReset   = "reserve_reset"
)

// Entry is one audit record of a machine state change.
type Entry struct {
	Kind      string            `json:"kind"`
	ProductID string            `json:"product_id,omitempty"`
	Coin      coin.Denomination `json:"coin,omitempty"`
	Amount    int64             `json:"amount,omitempty"`
	Sequence  uint64            `json:"sequence"`
	At        time.Time         `json:"at"`
}
