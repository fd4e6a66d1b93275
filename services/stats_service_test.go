package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-service/models"
	"pos-service/repository"
)

func fixedNow() time.Time {
	return time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC)
}

func newStatsFixture(t *testing.T) (*StatsService, *repository.MemoryStore) {
	t.Helper()
	store := newTestStore(t)
	stats := NewStatsService(store, store.Customers(), store.Sales())
	stats.now = fixedNow
	return stats, store
}

func sampleSale(id string, total string, createdAt time.Time, items ...models.SaleItem) models.Sale {
	return models.Sale{
		ID:         id,
		SaleNumber: "SALE-" + id,
		Items:      items,
		Total:      decimal.RequireFromString(total),
		Status:     models.SaleStatusCompleted,
		CreatedAt:  createdAt,
	}
}

func saleItem(productID, name string, qty int, lineTotal string) models.SaleItem {
	return models.SaleItem{
		ProductID: productID,
		Name:      name,
		Quantity:  qty,
		LineTotal: decimal.RequireFromString(lineTotal),
	}
}

func TestApplySaleIsIdempotent(t *testing.T) {
	stats, _ := newStatsFixture(t)

	sale := sampleSale("s1", "21.58", fixedNow())
	stats.ApplySale(sale)
	stats.ApplySale(sale)
	stats.ApplySale(sale)

	dash, err := stats.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, dash.TodaySales.Count, "replaying the same sale must not double-count")
	assert.True(t, dash.TodaySales.Total.Equal(decimal.RequireFromString("21.58")))
}

func TestStatsTodayOnlyCountsToday(t *testing.T) {
	stats, _ := newStatsFixture(t)

	stats.ApplySale(sampleSale("s1", "10.00", fixedNow()))
	stats.ApplySale(sampleSale("s2", "5.00", fixedNow().Add(-26*time.Hour)))

	dash, err := stats.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, dash.TodaySales.Count)
	assert.True(t, dash.TodaySales.Total.Equal(decimal.RequireFromString("10.00")))
}

func TestStatsCountsFromRepositories(t *testing.T) {
	stats, _ := newStatsFixture(t)

	dash, err := stats.Stats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, dash.TotalProducts.Count)
	// p2 (1 <= 2) and p3 is at 2 > 1; only p2 is at or below its level.
	assert.EqualValues(t, 1, dash.LowStock.Count)
	assert.EqualValues(t, 0, dash.TotalCustomers.Count)
}

func TestSalesChartBucketsWindow(t *testing.T) {
	stats, _ := newStatsFixture(t)

	stats.ApplySale(sampleSale("s1", "10.00", fixedNow()))
	stats.ApplySale(sampleSale("s2", "7.50", fixedNow().AddDate(0, 0, -2)))
	stats.ApplySale(sampleSale("s3", "2.50", fixedNow().AddDate(0, 0, -2)))

	chart := stats.SalesChart()
	require.Len(t, chart, 7)
	assert.Equal(t, "2026-08-26", chart[0].Date)
	assert.Equal(t, "2026-09-01", chart[6].Date)

	assert.Equal(t, 1, chart[6].Count)
	assert.True(t, chart[6].Total.Equal(decimal.RequireFromString("10.00")))

	assert.Equal(t, 2, chart[4].Count)
	assert.True(t, chart[4].Total.Equal(decimal.RequireFromString("10.00")))

	assert.Equal(t, 0, chart[1].Count)
	assert.True(t, chart[1].Total.IsZero())
}

func TestTopProductsRankedByUnits(t *testing.T) {
	stats, _ := newStatsFixture(t)

	stats.ApplySale(sampleSale("s1", "50.00", fixedNow(),
		saleItem("p1", "Espresso Roast", 3, "29.97"),
		saleItem("p2", "Ceramic Mug", 1, "12.00"),
	))
	stats.ApplySale(sampleSale("s2", "40.00", fixedNow(),
		saleItem("p2", "Ceramic Mug", 5, "60.00"),
	))

	top := stats.TopProducts()
	require.Len(t, top, 2)
	assert.Equal(t, "p2", top[0].ProductID)
	assert.Equal(t, 6, top[0].Units)
	assert.True(t, top[0].Revenue.Equal(decimal.RequireFromString("72.00")))
	assert.Equal(t, "p1", top[1].ProductID)
}

func TestRebuildReplaysFromStorage(t *testing.T) {
	stats, store := newStatsFixture(t)
	ctx := context.Background()

	persisted := sampleSale("s1", "21.58", fixedNow())
	require.NoError(t, store.Sales().Create(ctx, &persisted))
	outside := sampleSale("s2", "5.00", fixedNow().AddDate(0, 0, -30))
	require.NoError(t, store.Sales().Create(ctx, &outside))

	require.NoError(t, stats.Rebuild(ctx))

	dash, err := stats.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, dash.TodaySales.Count)

	// Applying the rebuilt sale again stays idempotent.
	stats.ApplySale(persisted)
	dash, _ = stats.Stats(ctx)
	assert.Equal(t, 1, dash.TodaySales.Count)
}
