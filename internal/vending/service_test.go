package vending

import (
	"errors"
	"sync"
	"testing"

	"github.com/fairyhunter13/vending-machine-service/internal/catalog"
	"github.com/fairyhunter13/vending-machine-service/internal/coin"
	"github.com/fairyhunter13/vending-machine-service/internal/machine"
	"github.com/fairyhunter13/vending-machine-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*Service, *catalog.Store, *machine.State) {
	t.Helper()
	cat := catalog.New()
	st := machine.New(10)
	return NewService(cat, st, nil), cat, st
}

func addProduct(t *testing.T, svc *Service, name string, price int64, qty int) model.Product {
	t.Helper()
	p, err := svc.AddProduct(model.Product{Name: name, Price: price, Quantity: qty})
	require.NoError(t, err)
	return p
}

func TestAddProductValidation(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.AddProduct(model.Product{Name: "", Price: 10, Quantity: 1})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Field)

	_, err = svc.AddProduct(model.Product{Name: "Water", Price: -1, Quantity: 1})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "price", ve.Field)

	_, err = svc.AddProduct(model.Product{Name: "Water", Price: 50, Quantity: 11})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "quantity", ve.Field)

	p, err := svc.AddProduct(model.Product{Name: "Water", Price: 50, Quantity: 10})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
}

func TestInsertCoinAndTotal(t *testing.T) {
	svc, _, _ := newService(t)
	require.NoError(t, svc.InsertCoin(coin.TwoLv))
	require.NoError(t, svc.InsertCoin(coin.TwentySt))
	assert.EqualValues(t, 220, svc.InsertedTotal())
	assert.Equal(t, []coin.Denomination{coin.TwoLv, coin.TwentySt}, svc.InsertedCoins())

	err := svc.InsertCoin(coin.Denomination("FIVE_LV"))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.EqualValues(t, 220, svc.InsertedTotal())
}

func TestReturnCoinsFIFO(t *testing.T) {
	svc, _, _ := newService(t)
	require.NoError(t, svc.InsertCoin(coin.FiftySt))
	require.NoError(t, svc.InsertCoin(coin.TenSt))
	require.NoError(t, svc.InsertCoin(coin.OneLv))

	coins := svc.ReturnCoins()
	assert.Equal(t, []coin.Denomination{coin.FiftySt, coin.TenSt, coin.OneLv}, coins)
	assert.EqualValues(t, 0, svc.InsertedTotal())

	again := svc.ReturnCoins()
	require.NotNil(t, again)
	assert.Empty(t, again)
}

func TestBuyHappyPath(t *testing.T) {
	svc, _, _ := newService(t)
	p := addProduct(t, svc, "Water", 50, 5)
	require.NoError(t, svc.InsertCoin(coin.OneLv))

	change, err := svc.Buy(p.ID)
	require.NoError(t, err)
	assert.Equal(t, map[coin.Denomination]int{coin.FiftySt: 1}, change)

	got, err := svc.ListProducts()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 4, got[0].Quantity)
	assert.EqualValues(t, 0, svc.InsertedTotal())
	assert.Empty(t, svc.InsertedCoins())
	// dispensed fifty left the reserve, inserted lev is not added to it
	assert.Equal(t, 9, svc.ReserveBreakdown()[coin.FiftySt])
}

func TestBuyExactAmountNoChange(t *testing.T) {
	svc, _, _ := newService(t)
	p := addProduct(t, svc, "Tea", 110, 2)
	require.NoError(t, svc.InsertCoin(coin.OneLv))
	require.NoError(t, svc.InsertCoin(coin.TenSt))

	change, err := svc.Buy(p.ID)
	require.NoError(t, err)
	assert.Empty(t, change)
	assert.EqualValues(t, 0, svc.InsertedTotal())
}

func TestBuyProductNotFound(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.Buy("no-such-id")
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestBuyOutOfStock(t *testing.T) {
	svc, _, _ := newService(t)
	p := addProduct(t, svc, "Coffee", 235, 0)
	require.NoError(t, svc.InsertCoin(coin.TwoLv))

	_, err := svc.Buy(p.ID)
	require.ErrorIs(t, err, ErrOutOfStock)
	// ledger untouched on failure
	assert.EqualValues(t, 200, svc.InsertedTotal())
}

func TestBuyInsufficientFunds(t *testing.T) {
	svc, _, _ := newService(t)
	p := addProduct(t, svc, "Coffee", 235, 3)
	require.NoError(t, svc.InsertCoin(coin.TwoLv))
	require.NoError(t, svc.InsertCoin(coin.TwentySt))

	_, err := svc.Buy(p.ID)
	var fe *InsufficientFundsError
	require.ErrorAs(t, err, &fe)
	assert.EqualValues(t, 15, fe.Shortfall())

	// stock and ledger unchanged, coins still inserted
	got, _, _ := svcCatalogLookup(t, svc, p.ID)
	assert.Equal(t, 3, got.Quantity)
	assert.Equal(t, []coin.Denomination{coin.TwoLv, coin.TwentySt}, svc.InsertedCoins())
}

func TestBuyInsufficientReserve(t *testing.T) {
	svc, _, st := newService(t)
	p := addProduct(t, svc, "Gum", 5, 1)

	// zero everything except 200s and 50s; 245 change is then unreachable
	st.CommitReserve(map[coin.Denomination]int{
		coin.TwoLv:    10,
		coin.OneLv:    0,
		coin.FiftySt:  10,
		coin.TwentySt: 0,
		coin.TenSt:    0,
	})
	require.NoError(t, svc.InsertCoin(coin.TwoLv))
	require.NoError(t, svc.InsertCoin(coin.FiftySt))

	_, err := svc.Buy(p.ID)
	require.ErrorIs(t, err, ErrInsufficientReserve)

	// reserve, stock and ledger exactly as before the attempt
	assert.Equal(t, 10, svc.ReserveBreakdown()[coin.TwoLv])
	assert.Equal(t, 10, svc.ReserveBreakdown()[coin.FiftySt])
	got, _, _ := svcCatalogLookup(t, svc, p.ID)
	assert.Equal(t, 1, got.Quantity)
	assert.Equal(t, []coin.Denomination{coin.TwoLv, coin.FiftySt}, svc.InsertedCoins())
}

func svcCatalogLookup(t *testing.T, svc *Service, id string) (model.Product, bool, error) {
	t.Helper()
	return svc.catalog.FindByID(id)
}

type failingSaveCatalog struct {
	*catalog.Store
	fail bool
}

func (f *failingSaveCatalog) Save(p model.Product) (model.Product, error) {
	if f.fail {
		return model.Product{}, errors.New("store down")
	}
	return f.Store.Save(p)
}

func TestBuyStoreFailureLeavesMachineUntouched(t *testing.T) {
	cat := &failingSaveCatalog{Store: catalog.New()}
	st := machine.New(10)
	svc := NewService(cat, st, nil)

	p := addProduct(t, svc, "Water", 50, 5)
	require.NoError(t, svc.InsertCoin(coin.OneLv))

	cat.fail = true
	_, err := svc.Buy(p.ID)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrProductNotFound)

	// no partial commit: reserve, ledger, and stock are as before
	assert.Equal(t, 10, st.ReserveSnapshot()[coin.FiftySt])
	assert.Equal(t, []coin.Denomination{coin.OneLv}, svc.InsertedCoins())
	got, _, _ := cat.FindByID(p.ID)
	assert.Equal(t, 5, got.Quantity)
}

func TestUpdateProductPatchSemantics(t *testing.T) {
	svc, _, _ := newService(t)
	p := addProduct(t, svc, "Tea", 110, 4)

	// price-only patch keeps the name, overwrites quantity explicitly
	newPrice := int64(120)
	updated, err := svc.UpdateProduct(p.ID, model.ProductPatch{Price: &newPrice, Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, "Tea", updated.Name)
	assert.EqualValues(t, 120, updated.Price)
	assert.Equal(t, 4, updated.Quantity)

	// name-only patch keeps the price
	newName := "Green Tea"
	updated, err = svc.UpdateProduct(p.ID, model.ProductPatch{Name: &newName, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, "Green Tea", updated.Name)
	assert.EqualValues(t, 120, updated.Price)
	assert.Equal(t, 2, updated.Quantity)
}

func TestUpdateProductQuantityCeiling(t *testing.T) {
	svc, _, _ := newService(t)
	p := addProduct(t, svc, "Tea", 110, 4)
	_, err := svc.UpdateProduct(p.ID, model.ProductPatch{Quantity: 11})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "quantity", ve.Field)
}

func TestUpdateProductNotFound(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.UpdateProduct("missing", model.ProductPatch{Quantity: 1})
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestRemoveProduct(t *testing.T) {
	svc, _, _ := newService(t)
	p := addProduct(t, svc, "Water", 50, 1)
	require.NoError(t, svc.RemoveProduct(p.ID))
	require.ErrorIs(t, svc.RemoveProduct(p.ID), ErrProductNotFound)
}

func TestReserveBalanceAndReset(t *testing.T) {
	svc, _, st := newService(t)
	assert.Equal(t, "38.00", svc.ReserveBalance())

	st.CommitReserve(map[coin.Denomination]int{coin.TenSt: 1})
	assert.Equal(t, "0.10", svc.ReserveBalance())

	svc.ResetReserve()
	assert.Equal(t, "38.00", svc.ReserveBalance())
}

func TestConcurrentInsertsKeepTotalConsistent(t *testing.T) {
	svc, _, _ := newService(t)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = svc.InsertCoin(coin.TenSt)
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 500, svc.InsertedTotal())
}

func TestConcurrentBuysNeverOversell(t *testing.T) {
	svc, _, _ := newService(t)
	p := addProduct(t, svc, "Water", 10, 1)
	require.NoError(t, svc.InsertCoin(coin.TenSt))
	require.NoError(t, svc.InsertCoin(coin.TenSt))

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Buy(p.ID)
		}(i)
	}
	wg.Wait()

	// exactly one purchase succeeds: the first clears the ledger, so the
	// second sees no funds (or an out-of-stock product)
	var ok, failed int
	for _, err := range results {
		if err == nil {
			ok++
		} else {
			failed++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, failed)

	got, _, _ := svcCatalogLookup(t, svc, p.ID)
	assert.Equal(t, 0, got.Quantity)
}
