// Package vending implements the transaction engine of a single vending
// machine: the purchase protocol, coin handling, and product CRUD against
// the catalog. One mutex serializes every operation that touches the coin
// ledger, the change reserve, or stock counts, so no two purchases ever
// commit against the same coins.
package vending

import (
	"fmt"
	"sync"
	"time"

	"github.com/fairyhunter13/vending-machine-service/internal/coin"
	"github.com/fairyhunter13/vending-machine-service/internal/journal"
	"github.com/fairyhunter13/vending-machine-service/internal/machine"
	"github.com/fairyhunter13/vending-machine-service/internal/model"
	"github.com/fairyhunter13/vending-machine-service/internal/obs"
)

// Catalog is the product store the engine reads and writes through. The
// in-memory implementation lives in internal/catalog; a durable store can
// stand in as long as calls stay synchronous.
type Catalog interface {
	FindByID(id string) (model.Product, bool, error)
	FindByName(name string) (model.Product, bool, error)
	Save(p model.Product) (model.Product, error)
	DeleteByID(id string) error
	FindAll() ([]model.Product, error)
}

// Recorder receives fire-and-forget audit entries.
type Recorder interface {
	Record(e journal.Entry)
}

// Service orchestrates purchases and coin movement for one machine.
type Service struct {
	mu      sync.Mutex
	catalog Catalog
	state   *machine.State
	rec     Recorder
}

// NewService wires the engine to its catalog, machine state, and optional
// audit recorder (nil disables recording).
func NewService(c Catalog, st *machine.State, rec Recorder) *Service {
	return &Service{catalog: c, state: st, rec: rec}
}

func (s *Service) record(e journal.Entry) {
	if s.rec == nil {
		return
	}
	e.At = time.Now().UTC()
	s.rec.Record(e)
}

func validateProduct(p model.Product) error {
	if p.Name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if p.Price < 0 {
		return &ValidationError{Field: "price", Reason: "must be >= 0"}
	}
	if p.Quantity < 0 {
		return &ValidationError{Field: "quantity", Reason: "must be >= 0"}
	}
	if p.Quantity > model.MaxQuantity {
		return &ValidationError{Field: "quantity", Reason: fmt.Sprintf("must not exceed %d", model.MaxQuantity)}
	}
	return nil
}

// AddProduct validates and stores a new product, returning it with its
// assigned id.
func (s *Service) AddProduct(p model.Product) (model.Product, error) {
	if err := validateProduct(p); err != nil {
		return model.Product{}, err
	}
	p.ID = ""
	saved, err := s.catalog.Save(p)
	if err != nil {
		return model.Product{}, fmt.Errorf("save product: %w", err)
	}
	obs.Logger.Info("product_added", "product_id", saved.ID, "name", saved.Name, "price", saved.Price, "quantity", saved.Quantity)
	s.record(journal.Entry{Kind: journal.KindProductAdded, ProductID: saved.ID, Amount: saved.Price})
	return saved, nil
}

// UpdateProduct applies a partial update: name and price overwrite only when
// present in the patch, quantity is always overwritten and re-validated.
func (s *Service) UpdateProduct(id string, patch model.ProductPatch) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(id, patch)
}

func (s *Service) updateLocked(id string, patch model.ProductPatch) (model.Product, error) {
	p, ok, err := s.catalog.FindByID(id)
	if err != nil {
		return model.Product{}, fmt.Errorf("lookup product: %w", err)
	}
	if !ok {
		return model.Product{}, fmt.Errorf("product %s: %w", id, ErrProductNotFound)
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	p.Quantity = patch.Quantity
	if err := validateProduct(p); err != nil {
		return model.Product{}, err
	}
	saved, err := s.catalog.Save(p)
	if err != nil {
		return model.Product{}, fmt.Errorf("save product: %w", err)
	}
	obs.Logger.Info("product_updated", "product_id", saved.ID)
	s.record(journal.Entry{Kind: journal.KindProductUpdated, ProductID: saved.ID})
	return saved, nil
}

// RemoveProduct deletes a product from the catalog.
func (s *Service) RemoveProduct(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok, err := s.catalog.FindByID(id)
	if err != nil {
		return fmt.Errorf("lookup product: %w", err)
	}
	if !ok {
		return fmt.Errorf("product %s: %w", id, ErrProductNotFound)
	}
	if err := s.catalog.DeleteByID(id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	obs.Logger.Info("product_removed", "product_id", id)
	s.record(journal.Entry{Kind: journal.KindProductRemoved, ProductID: id})
	return nil
}

// ListProducts returns the full catalog ordered by id.
func (s *Service) ListProducts() ([]model.Product, error) {
	return s.catalog.FindAll()
}

// InsertCoin appends a recognized coin to the ledger.
func (s *Service) InsertCoin(d coin.Denomination) error {
	if !d.Valid() {
		return &ValidationError{Field: "coin", Reason: fmt.Sprintf("unknown denomination %q", string(d))}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.InsertCoin(d)
	obs.Logger.Info("coin_inserted", "coin", string(d), "total_inserted", s.state.InsertedTotal())
	s.record(journal.Entry{Kind: journal.KindCoinInserted, Coin: d, Amount: d.Value()})
	return nil
}

// ReturnCoins drains the ledger and returns the coins in insertion order.
func (s *Service) ReturnCoins() []coin.Denomination {
	s.mu.Lock()
	defer s.mu.Unlock()
	coins := s.state.ClearLedger()
	if len(coins) > 0 {
		obs.Logger.Info("coins_returned", "count", len(coins), "amount", coin.Sum(coins))
		s.record(journal.Entry{Kind: journal.KindCoinsReturned, Amount: coin.Sum(coins)})
	}
	return coins
}

// Buy runs the purchase protocol for the product with the given id and
// returns the dispensed change per denomination.
//
// Stages run strictly in order: lookup, stock check, affordability check,
// change computation, commit. On any failure before commit nothing has
// mutated; on an InsufficientFunds or InsufficientReserve failure the
// inserted coins stay in the ledger so the caller can add coins, retry, or
// ask for a return. The stock decrement is persisted before the reserve and
// ledger commit, so a failing store leaves machine state untouched.
func (s *Service) Buy(id string) (map[coin.Denomination]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok, err := s.catalog.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("lookup product: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, ErrProductNotFound)
	}
	if p.Quantity <= 0 {
		return nil, fmt.Errorf("product %s: %w", p.Name, ErrOutOfStock)
	}

	total := s.state.InsertedTotal()
	if total < p.Price {
		return nil, &InsufficientFundsError{Inserted: total, Price: p.Price}
	}

	changeAmount := total - p.Price
	dispensed, newReserve, err := coin.MakeChange(changeAmount, s.state.ReserveSnapshot())
	if err != nil {
		return nil, fmt.Errorf("change for %d stotinki: %w", changeAmount, ErrInsufficientReserve)
	}

	p.Quantity--
	if _, err := s.catalog.Save(p); err != nil {
		return nil, fmt.Errorf("persist stock: %w", err)
	}
	s.state.CommitReserve(newReserve)
	s.state.ClearLedger()

	obs.Logger.Info("purchase_completed",
		"product_id", p.ID,
		"name", p.Name,
		"price", p.Price,
		"inserted", total,
		"change", changeAmount,
	)
	s.record(journal.Entry{Kind: journal.KindPurchase, ProductID: p.ID, Amount: p.Price})
	return dispensed, nil
}

// InsertedTotal returns the ledger sum in stotinki.
func (s *Service) InsertedTotal() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.InsertedTotal()
}

// InsertedCoins returns the ledger contents in insertion order.
func (s *Service) InsertedCoins() []coin.Denomination {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.InsertedCoins()
}

// ReserveBreakdown returns the per-denomination reserve counts.
func (s *Service) ReserveBreakdown() map[coin.Denomination]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ReserveSnapshot()
}

// ReserveBalance returns the reserve total in levs.
func (s *Service) ReserveBalance() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ReserveBalance().StringFixed(2)
}

// ResetReserve reseeds the reserve to its configured per-denomination count.
func (s *Service) ResetReserve() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ResetReserve()
	obs.Logger.Info("reserve_reset")
	s.record(journal.Entry{Kind: journal.KindReserveReset})
}
