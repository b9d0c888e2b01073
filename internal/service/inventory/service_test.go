package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/domain/validation"
	"github.com/mamadbah2/stockledger/internal/domain/valuation"
	"github.com/mamadbah2/stockledger/internal/idempotency"
	"github.com/mamadbah2/stockledger/internal/repository/memory"
)

type fixture struct {
	svc        *Service
	stocks     *memory.StockRepository
	categories *memory.CategoryRepository
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	stocks := memory.NewStockRepository()
	categories := memory.NewCategoryRepository()
	svc := NewService(stocks, categories, validation.New(nil), idempotency.NewMemoryStore(time.Hour), Options{
		Thresholds:      valuation.DefaultThresholds(),
		DefaultPageSize: 2,
		MaxPageSize:     3,
	}, nil)
	return fixture{svc: svc, stocks: stocks, categories: categories}
}

func urea() models.StockInput {
	return models.StockInput{Name: "Urea", LocationTag: "Maharashtra", Quantity: 5000, UnitPrice: 850}
}

func TestCreate_UreaScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, replayed, err := f.svc.Create(ctx, urea(), nil, "")
	require.NoError(t, err)
	assert.False(t, replayed)
	assert.Equal(t, 4250000.0, created.TotalValue)
	assert.Equal(t, DefaultRecorder, created.RecordedBy)
	assert.Equal(t, "normal", created.StockLevel)

	got, err := f.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestCreate_RecordedBySession(t *testing.T) {
	f := newFixture(t)

	created, _, err := f.svc.Create(context.Background(), urea(), &models.Session{UserID: "u1", Username: "asha"}, "")
	require.NoError(t, err)
	assert.Equal(t, "asha", created.RecordedBy)
}

func TestCreate_ValidationBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		quantity float64
		wantErr  bool
	}{
		{name: "minimum", quantity: 0.01},
		{name: "zero", quantity: 0, wantErr: true},
		{name: "maximum", quantity: 1_000_000},
		{name: "above maximum", quantity: 1_000_000.01, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			in := urea()
			in.Quantity = tc.quantity

			_, _, err := f.svc.Create(context.Background(), in, nil, "")
			if !tc.wantErr {
				require.NoError(t, err)
				return
			}

			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "quantity", verr.Violations[0].Field)

			records, _, listErr := f.stocks.List(context.Background(), models.StockFilter{})
			require.NoError(t, listErr)
			assert.Empty(t, records, "rejected input must not be persisted")
		})
	}
}

func TestCreate_UnknownCategory(t *testing.T) {
	f := newFixture(t)
	in := urea()
	in.CategoryID = "507f1f77bcf86cd799439011"

	_, _, err := f.svc.Create(context.Background(), in, nil, "")
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "category_id", verr.Violations[0].Field)
}

func TestCreate_IdempotencyKeyReplays(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, replayed, err := f.svc.Create(ctx, urea(), nil, "req-1")
	require.NoError(t, err)
	assert.False(t, replayed)

	second, replayed, err := f.svc.Create(ctx, urea(), nil, "req-1")
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Equal(t, first.ID, second.ID)

	records, total, err := f.stocks.List(ctx, models.StockFilter{})
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, int64(1), total)
}

func TestCreate_IdempotencyKeyConcurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const callers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ids     = map[string]struct{}{}
		success int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			view, _, err := f.svc.Create(ctx, urea(), nil, "req-2")
			if err != nil {
				assert.True(t, errors.Is(err, models.ErrConflict))
				return
			}
			mu.Lock()
			ids[view.ID] = struct{}{}
			success++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, ids, 1, "a key must never produce two records")
	assert.GreaterOrEqual(t, success, 1)

	records, _, err := f.stocks.List(ctx, models.StockFilter{})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestCreate_FailedValidationReleasesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bad := urea()
	bad.Quantity = 0

	_, _, err := f.svc.Create(ctx, bad, nil, "req-3")
	require.Error(t, err)

	_, replayed, err := f.svc.Create(ctx, urea(), nil, "req-3")
	require.NoError(t, err)
	assert.False(t, replayed)
}

func TestUpdate_RecomputesTotalValue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, _, err := f.svc.Create(ctx, models.StockInput{Name: "DAP", LocationTag: "Punjab", Quantity: 10, UnitPrice: 5}, nil, "")
	require.NoError(t, err)

	qty := 20.0
	updated, err := f.svc.Update(ctx, created.ID, models.StockPatch{Quantity: &qty}, 0)
	require.NoError(t, err)
	assert.Equal(t, 100.0, updated.TotalValue)
	assert.Equal(t, 5.0, updated.UnitPrice)
	assert.Equal(t, int64(2), updated.Version)
	assert.Equal(t, "low", updated.StockLevel)
}

func TestUpdate_VersionConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, _, err := f.svc.Create(ctx, urea(), nil, "")
	require.NoError(t, err)

	price := 900.0
	_, err = f.svc.Update(ctx, created.ID, models.StockPatch{UnitPrice: &price}, created.Version)
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, created.ID, models.StockPatch{UnitPrice: &price}, created.Version)
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestUpdate_Invalid(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Update(context.Background(), "whatever", models.StockPatch{}, 0)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)

	bad := -1.0
	_, err = f.svc.Update(context.Background(), "whatever", models.StockPatch{UnitPrice: &bad}, 0)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "unit_price", verr.Violations[0].Field)
}

func TestDelete_IsTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, _, err := f.svc.Create(ctx, urea(), nil, "")
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, created.ID))

	_, err = f.svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, created.ID), models.ErrNotFound)
}

func TestList_StatusAndPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, q := range []float64{5, 20, 60, 70, 8} {
		in := urea()
		in.Quantity = q
		_, _, err := f.svc.Create(ctx, in, nil, "")
		require.NoError(t, err)
	}

	critical, page, err := f.svc.List(ctx, ListQuery{Status: "CRITICAL"})
	require.NoError(t, err)
	assert.Len(t, critical, 2)
	assert.Equal(t, int64(2), page.TotalRecords)
	for _, v := range critical {
		assert.Equal(t, "critical", v.StockLevel)
	}

	all, page, err := f.svc.List(ctx, ListQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.Equal(t, 1, page.TotalPages)

	paged, page, err := f.svc.List(ctx, ListQuery{Page: 2})
	require.NoError(t, err)
	assert.Len(t, paged, 2)
	assert.Equal(t, 2, page.Limit)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, all[2].ID, paged[0].ID)

	capped, page, err := f.svc.List(ctx, ListQuery{Limit: 50})
	require.NoError(t, err)
	assert.Len(t, capped, 3)
	assert.Equal(t, 3, page.Limit)
}

func TestList_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, _, err := f.svc.Create(ctx, urea(), nil, "")
		require.NoError(t, err)
	}

	first, _, err := f.svc.List(ctx, ListQuery{})
	require.NoError(t, err)
	second, _, err := f.svc.List(ctx, ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestList_InvalidQuery(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.List(context.Background(), ListQuery{Status: "empty", Page: -1})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Violations, 2)
}
