package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/stockledger/internal/config"
	"github.com/mamadbah2/stockledger/internal/domain/models"
)

// SummaryRange receives one row per location: date, location, quantity, value, count, average price.
const SummaryRange = "Summary!A:F"

// Exporter appends location summaries to a spreadsheet.
type Exporter interface {
	AppendSummary(ctx context.Context, date string, summaries []models.LocationSummary) error
}

// GoogleSheetRepository implements Exporter using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed exporter.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// AppendSummary writes the summaries below the existing rows of SummaryRange.
func (r *GoogleSheetRepository) AppendSummary(ctx context.Context, date string, summaries []models.LocationSummary) error {
	rows := SummaryRows(date, summaries)
	if len(rows) == 0 {
		return nil
	}

	payload := &sheetsapi.ValueRange{Values: rows}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, SummaryRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append rows into range %s: %w", SummaryRange, err)
	}

	r.logger.Debug("summary appended to sheet", zap.String("range", SummaryRange), zap.Int("rows", len(rows)))
	return nil
}

// SummaryRows lays summaries out as spreadsheet rows.
func SummaryRows(date string, summaries []models.LocationSummary) [][]interface{} {
	rows := make([][]interface{}, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []interface{}{date, s.Location, s.TotalQuantity, s.TotalValue, s.Count, s.AvgUnitPrice})
	}
	return rows
}
