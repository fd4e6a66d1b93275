package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-service/models"
)

func newSeededStore(t *testing.T) *MemoryStore {
	t.Helper()
	store := NewMemoryStore()
	ctx := context.Background()

	products := []models.Product{
		{ID: "p1", Name: "Espresso Roast", Price: decimal.RequireFromString("9.99"), StockQuantity: 10, ReorderLevel: 3, Category: "Coffee"},
		{ID: "p2", Name: "Ceramic Mug", Price: decimal.RequireFromString("12.00"), StockQuantity: 1, ReorderLevel: 2, Category: "Merch"},
		{ID: "p3", Name: "Muffin", Price: decimal.RequireFromString("3.25"), StockQuantity: 0, ReorderLevel: 4, Category: "Bakery"},
	}
	for i := range products {
		require.NoError(t, store.Create(ctx, &products[i]))
	}
	return store
}

func TestDecrementStockHappyPath(t *testing.T) {
	store := newSeededStore(t)
	ctx := context.Background()

	newQty, err := store.DecrementStock(ctx, []models.SaleItemInput{
		{ProductID: "p1", Quantity: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, 6, newQty["p1"])

	p, err := store.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 6, p.StockQuantity)
}

func TestDecrementStockShortageLeavesEverythingUntouched(t *testing.T) {
	store := newSeededStore(t)
	ctx := context.Background()

	_, err := store.DecrementStock(ctx, []models.SaleItemInput{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 5},
	})

	var shortage *StockShortageError
	require.ErrorAs(t, err, &shortage)
	assert.Equal(t, "p2", shortage.ProductID)
	assert.Equal(t, 5, shortage.Requested)
	assert.Equal(t, 1, shortage.Available)

	p1, _ := store.FindByID(ctx, "p1")
	assert.Equal(t, 10, p1.StockQuantity, "no partial decrement on shortage")
}

func TestDecrementStockUnknownProduct(t *testing.T) {
	store := newSeededStore(t)
	_, err := store.DecrementStock(context.Background(), []models.SaleItemInput{
		{ProductID: "ghost", Quantity: 1},
	})
	var shortage *StockShortageError
	require.ErrorAs(t, err, &shortage)
	assert.Equal(t, 0, shortage.Available)
}

func TestConcurrentDecrementLastUnit(t *testing.T) {
	store := newSeededStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = store.DecrementStock(ctx, []models.SaleItemInput{
				{ProductID: "p2", Quantity: 1},
			})
		}(i)
	}
	wg.Wait()

	successes := 0
	shortages := 0
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		var shortage *StockShortageError
		require.ErrorAs(t, err, &shortage)
		shortages++
	}
	assert.Equal(t, 1, successes, "exactly one finalize wins the last unit")
	assert.Equal(t, 1, shortages)

	p2, _ := store.FindByID(ctx, "p2")
	assert.Equal(t, 0, p2.StockQuantity)
}

func TestRestoreStock(t *testing.T) {
	store := newSeededStore(t)
	ctx := context.Background()

	items := []models.SaleItemInput{{ProductID: "p1", Quantity: 3}}
	_, err := store.DecrementStock(ctx, items)
	require.NoError(t, err)
	require.NoError(t, store.RestoreStock(ctx, items))

	p, _ := store.FindByID(ctx, "p1")
	assert.Equal(t, 10, p.StockQuantity)
}

func TestReplenish(t *testing.T) {
	store := newSeededStore(t)
	p, err := store.Replenish(context.Background(), "p3", 8)
	require.NoError(t, err)
	assert.Equal(t, 8, p.StockQuantity)

	_, err = store.Replenish(context.Background(), "ghost", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindWithFilters(t *testing.T) {
	store := newSeededStore(t)
	ctx := context.Background()

	coffee, err := store.Find(ctx, ProductFilter{Category: "Coffee"})
	require.NoError(t, err)
	require.Len(t, coffee, 1)
	assert.Equal(t, "p1", coffee[0].ID)

	matches, err := store.Find(ctx, ProductFilter{Search: "mug"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "p2", matches[0].ID)
}

func TestCountsAndCategories(t *testing.T) {
	store := newSeededStore(t)
	ctx := context.Background()

	total, err := store.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	// p2 (1 <= 2) and p3 (0 <= 4) are at or below their reorder levels.
	low, err := store.CountLowStock(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, low)

	categories, err := store.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bakery", "Coffee", "Merch"}, categories)
}

func TestSalesAppendOnlyAndFindSince(t *testing.T) {
	store := newSeededStore(t)
	sales := store.Sales()
	ctx := context.Background()

	old := models.Sale{ID: "s1", SaleNumber: "SALE-1", CreatedAt: time.Now().UTC().AddDate(0, 0, -10)}
	recent := models.Sale{ID: "s2", SaleNumber: "SALE-2", CreatedAt: time.Now().UTC()}
	require.NoError(t, sales.Create(ctx, &old))
	require.NoError(t, sales.Create(ctx, &recent))

	found, err := sales.FindSince(ctx, time.Now().UTC().AddDate(0, 0, -7))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "s2", found[0].ID)
}
