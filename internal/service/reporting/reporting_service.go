package reporting

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/domain/valuation"
	"github.com/mamadbah2/stockledger/internal/repository"
)

const (
	dateLayout = "2006-01-02"

	// leastAvailableSize bounds the dashboard's low-quantity list.
	leastAvailableSize = 5
)

// Service exposes the valuation summaries shown on the dashboard and in the digest.
type Service struct {
	repo       repository.StockRepository
	thresholds valuation.Thresholds
	logger     *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(repo repository.StockRepository, thresholds valuation.Thresholds, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, thresholds: thresholds, logger: logger}
}

// SummarizeByLocation groups records by location tag and orders the groups by
// total value, highest first. Groups with equal value keep the order in which
// their location first appeared in records.
func SummarizeByLocation(records []models.StockRecord) []models.LocationSummary {
	index := make(map[string]int)
	var summaries []models.LocationSummary
	priceSums := make([]float64, 0)

	for _, rec := range records {
		i, ok := index[rec.LocationTag]
		if !ok {
			i = len(summaries)
			index[rec.LocationTag] = i
			summaries = append(summaries, models.LocationSummary{Location: rec.LocationTag})
			priceSums = append(priceSums, 0)
		}
		s := &summaries[i]
		s.TotalQuantity += rec.Quantity
		s.TotalValue += rec.TotalValue
		s.Count++
		priceSums[i] += rec.UnitPrice
	}

	for i := range summaries {
		summaries[i].AvgUnitPrice = priceSums[i] / float64(summaries[i].Count)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].TotalValue > summaries[j].TotalValue
	})

	if summaries == nil {
		return []models.LocationSummary{}
	}
	return summaries
}

// LocationSummary summarizes a full snapshot of the stored records.
func (s *Service) LocationSummary(ctx context.Context) ([]models.LocationSummary, error) {
	records, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return SummarizeByLocation(records), nil
}

// Dashboard computes inventory-wide totals, per-level counts and the records
// with the least quantity on hand.
func (s *Service) Dashboard(ctx context.Context, now time.Time) (models.Dashboard, error) {
	records, err := s.snapshot(ctx)
	if err != nil {
		return models.Dashboard{}, err
	}

	d := models.Dashboard{
		GeneratedAt: now,
		RecordCount: len(records),
		LevelCounts: make(map[string]int, len(valuation.Levels)),
		Locations:   SummarizeByLocation(records),
	}
	for _, level := range valuation.Levels {
		d.LevelCounts[string(level)] = 0
	}

	for _, rec := range records {
		d.TotalQuantity += rec.Quantity
		d.TotalValue += rec.TotalValue
		d.LevelCounts[string(s.thresholds.Classify(rec.Quantity))]++
	}

	least := append([]models.StockRecord(nil), records...)
	sort.SliceStable(least, func(i, j int) bool {
		return least[i].Quantity < least[j].Quantity
	})
	if len(least) > leastAvailableSize {
		least = least[:leastAvailableSize]
	}

	d.LeastAvailable = make([]models.StockView, 0, len(least))
	for _, rec := range least {
		d.LeastAvailable = append(d.LeastAvailable, models.StockView{
			StockRecord: rec,
			StockLevel:  string(s.thresholds.Classify(rec.Quantity)),
		})
	}

	return d, nil
}

// Digest is the scheduled valuation report.
type Digest struct {
	Date      string                   `json:"date"`
	Text      string                   `json:"text"`
	Summaries []models.LocationSummary `json:"summaries"`
	Critical  []models.StockRecord     `json:"critical"`
}

// Digest renders the location summary and the records below the critical threshold.
func (s *Service) Digest(ctx context.Context, now time.Time) (Digest, error) {
	records, err := s.snapshot(ctx)
	if err != nil {
		return Digest{}, err
	}

	summaries := SummarizeByLocation(records)
	var critical []models.StockRecord
	var totalValue float64
	for _, rec := range records {
		totalValue += rec.TotalValue
		if s.thresholds.Classify(rec.Quantity) == valuation.LevelCritical {
			critical = append(critical, rec)
		}
	}

	date := now.Format(dateLayout)
	var b strings.Builder
	if len(records) == 0 {
		fmt.Fprintf(&b, "Stock digest (%s): no records yet.", date)
	} else {
		fmt.Fprintf(&b, "Stock digest (%s): %d records worth %.2f across %d locations.",
			date, len(records), totalValue, len(summaries))
		for _, sum := range summaries {
			fmt.Fprintf(&b, "\n- %s: %.2f units, value %.2f (%d records, avg price %.2f)",
				sum.Location, sum.TotalQuantity, sum.TotalValue, sum.Count, sum.AvgUnitPrice)
		}
		if len(critical) > 0 {
			fmt.Fprintf(&b, "\nCritical stock (%d):", len(critical))
			for _, rec := range critical {
				fmt.Fprintf(&b, "\n- %s @ %s: %.2f left", rec.Name, rec.LocationTag, rec.Quantity)
			}
		}
	}

	return Digest{Date: date, Text: b.String(), Summaries: summaries, Critical: critical}, nil
}

func (s *Service) snapshot(ctx context.Context) ([]models.StockRecord, error) {
	records, _, err := s.repo.List(ctx, models.StockFilter{})
	if err != nil {
		return nil, fmt.Errorf("load stock snapshot: %w", err)
	}
	s.logger.Debug("stock snapshot loaded", zap.Int("records", len(records)))
	return records, nil
}
