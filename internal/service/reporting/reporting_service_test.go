package reporting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/domain/valuation"
	"github.com/mamadbah2/stockledger/internal/repository/memory"
)

func record(name, location string, qty, price float64) models.StockRecord {
	return models.StockRecord{
		Name:        name,
		LocationTag: location,
		Quantity:    qty,
		UnitPrice:   price,
		TotalValue:  valuation.TotalValue(qty, price),
	}
}

func TestSummarizeByLocation_Punjab(t *testing.T) {
	got := SummarizeByLocation([]models.StockRecord{
		record("Urea", "Punjab", 100, 10),
		record("DAP", "Punjab", 200, 20),
	})

	require.Len(t, got, 1)
	assert.Equal(t, models.LocationSummary{
		Location:      "Punjab",
		TotalQuantity: 300,
		TotalValue:    5000,
		Count:         2,
		AvgUnitPrice:  15,
	}, got[0])
}

func TestSummarizeByLocation_OrderAndTies(t *testing.T) {
	got := SummarizeByLocation([]models.StockRecord{
		record("A", "Gujarat", 10, 10),  // 100
		record("B", "Haryana", 5, 100),  // 500
		record("C", "Punjab", 20, 5),    // 100
		record("D", "Karnataka", 1, 50), // 50
	})

	locations := make([]string, 0, len(got))
	for _, s := range got {
		locations = append(locations, s.Location)
	}
	assert.Equal(t, []string{"Haryana", "Gujarat", "Punjab", "Karnataka"}, locations)
}

func TestSummarizeByLocation_Empty(t *testing.T) {
	got := SummarizeByLocation(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSummarizeByLocation_Deterministic(t *testing.T) {
	records := []models.StockRecord{
		record("A", "Punjab", 1, 1),
		record("B", "Gujarat", 1, 1),
		record("C", "Punjab", 3, 2),
	}
	assert.Equal(t, SummarizeByLocation(records), SummarizeByLocation(records))
}

func newServiceWith(t *testing.T, records ...models.StockRecord) *Service {
	t.Helper()
	repo := memory.NewStockRepository()
	for _, rec := range records {
		_, err := repo.Create(context.Background(), rec)
		require.NoError(t, err)
	}
	return NewService(repo, valuation.DefaultThresholds(), nil)
}

func TestDashboard(t *testing.T) {
	svc := newServiceWith(t,
		record("Urea", "Maharashtra", 5000, 850),
		record("DAP", "Punjab", 5, 1500),
		record("MOP", "Gujarat", 20, 1200),
	)
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	d, err := svc.Dashboard(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, now, d.GeneratedAt)
	assert.Equal(t, 3, d.RecordCount)
	assert.Equal(t, 5025.0, d.TotalQuantity)
	assert.Equal(t, 4250000.0+7500+24000, d.TotalValue)
	assert.Equal(t, map[string]int{"critical": 1, "low": 1, "normal": 1}, d.LevelCounts)
	require.Len(t, d.LeastAvailable, 3)
	assert.Equal(t, "DAP", d.LeastAvailable[0].Name)
	assert.Equal(t, "critical", d.LeastAvailable[0].StockLevel)
	assert.Len(t, d.Locations, 3)
}

func TestDigest(t *testing.T) {
	svc := newServiceWith(t,
		record("Urea", "Punjab", 100, 10),
		record("DAP", "Punjab", 4, 20),
	)

	digest, err := svc.Digest(context.Background(), time.Date(2025, 5, 1, 20, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "2025-05-01", digest.Date)
	require.Len(t, digest.Critical, 1)
	assert.Equal(t, "DAP", digest.Critical[0].Name)
	assert.Contains(t, digest.Text, "2 records worth 1080.00 across 1 locations")
	assert.Contains(t, digest.Text, "Critical stock (1)")
}

func TestDigest_Empty(t *testing.T) {
	svc := newServiceWith(t)

	digest, err := svc.Digest(context.Background(), time.Date(2025, 5, 1, 20, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "Stock digest (2025-05-01): no records yet.", digest.Text)
}
