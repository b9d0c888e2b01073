// Package inventory orchestrates stock record writes: validate, value, persist.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/domain/validation"
	"github.com/mamadbah2/stockledger/internal/domain/valuation"
	"github.com/mamadbah2/stockledger/internal/idempotency"
	"github.com/mamadbah2/stockledger/internal/repository"
)

// DefaultRecorder is stored in recorded_by when a record is created without a session.
const DefaultRecorder = "System Admin"

// ListQuery carries the listing parameters accepted from clients.
type ListQuery struct {
	Location         string
	LocationContains string
	Name             string
	Status           string
	CategoryID       string
	Page             int
	Limit            int
}

// Options tunes the service.
type Options struct {
	Thresholds      valuation.Thresholds
	DefaultPageSize int
	MaxPageSize     int
}

// Service owns the stock record use cases.
type Service struct {
	stocks     repository.StockRepository
	categories repository.CategoryRepository
	validator  *validation.Validator
	keys       idempotency.Store
	opts       Options
	logger     *zap.Logger
}

// NewService wires the inventory service. keys may be nil to disable Idempotency-Key handling.
func NewService(
	stocks repository.StockRepository,
	categories repository.CategoryRepository,
	validator *validation.Validator,
	keys idempotency.Store,
	opts Options,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = 10
	}
	if opts.MaxPageSize < opts.DefaultPageSize {
		opts.MaxPageSize = opts.DefaultPageSize
	}
	return &Service{
		stocks:     stocks,
		categories: categories,
		validator:  validator,
		keys:       keys,
		opts:       opts,
		logger:     logger,
	}
}

// Locations returns the location tags a record may carry.
func (s *Service) Locations() []string {
	return s.validator.Locations()
}

// Create validates and stores a new record. When idempotencyKey is set, a
// repeated request returns the record created by the first one and replayed
// is true; a repeat arriving while the first is still running gets ErrConflict.
func (s *Service) Create(ctx context.Context, in models.StockInput, session *models.Session, idempotencyKey string) (view models.StockView, replayed bool, err error) {
	in, err = s.validator.ValidateCreate(in)
	if err != nil {
		return models.StockView{}, false, err
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return models.StockView{}, false, err
	}

	key := strings.TrimSpace(idempotencyKey)
	if key != "" && s.keys != nil {
		recordID, reserved, reserveErr := s.keys.Reserve(ctx, key)
		if reserveErr != nil {
			return models.StockView{}, false, &models.PersistenceError{Op: "reserve idempotency key", Err: reserveErr}
		}
		if !reserved {
			if recordID == "" {
				return models.StockView{}, false, fmt.Errorf("idempotency key %q is in use: %w", key, models.ErrConflict)
			}
			existing, getErr := s.stocks.GetByID(ctx, recordID)
			if getErr != nil {
				return models.StockView{}, false, getErr
			}
			s.logger.Info("replayed idempotent create", zap.String("id", recordID))
			return s.view(existing), true, nil
		}

		defer func() {
			if err != nil {
				if relErr := s.keys.Release(context.WithoutCancel(ctx), key); relErr != nil {
					s.logger.Warn("failed to release idempotency key", zap.Error(relErr))
				}
			}
		}()
	}

	recorder := DefaultRecorder
	if session != nil && session.Username != "" {
		recorder = session.Username
	}

	created, err := s.stocks.Create(ctx, models.StockRecord{
		Name:        in.Name,
		LocationTag: in.LocationTag,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		TotalValue:  valuation.TotalValue(in.Quantity, in.UnitPrice),
		Notes:       in.Notes,
		RecordedBy:  recorder,
		CategoryID:  in.CategoryID,
	})
	if err != nil {
		return models.StockView{}, false, err
	}

	if key != "" && s.keys != nil {
		if bindErr := s.keys.Bind(ctx, key, created.ID); bindErr != nil {
			// The record exists; a retry with this key would create a second one.
			s.logger.Error("failed to bind idempotency key", zap.String("id", created.ID), zap.Error(bindErr))
		}
	}

	s.logger.Info("stock record created",
		zap.String("id", created.ID),
		zap.String("location", created.LocationTag),
		zap.Float64("total_value", created.TotalValue))
	return s.view(created), false, nil
}

// List returns the matching page, newest first. A query without page and
// limit returns every match.
func (s *Service) List(ctx context.Context, q ListQuery) ([]models.StockView, models.Pagination, error) {
	filter, err := s.filter(q)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	records, total, err := s.stocks.List(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	views := make([]models.StockView, 0, len(records))
	for _, rec := range records {
		views = append(views, s.view(rec))
	}

	limit := filter.Limit
	if limit == 0 {
		limit = int(total)
	}
	page := filter.Page
	if page == 0 {
		page = 1
	}
	return views, models.NewPagination(page, limit, total), nil
}

// Get returns one record.
func (s *Service) Get(ctx context.Context, id string) (models.StockView, error) {
	rec, err := s.stocks.GetByID(ctx, id)
	if err != nil {
		return models.StockView{}, err
	}
	return s.view(rec), nil
}

// Update applies a partial update. expectedVersion > 0 rejects the write with
// ErrConflict when the record has changed since the client read it.
func (s *Service) Update(ctx context.Context, id string, patch models.StockPatch, expectedVersion int64) (models.StockView, error) {
	patch, err := s.validator.ValidatePatch(patch)
	if err != nil {
		return models.StockView{}, err
	}
	if patch.CategoryID != nil {
		if err := s.checkCategory(ctx, *patch.CategoryID); err != nil {
			return models.StockView{}, err
		}
	}

	updated, err := s.stocks.Update(ctx, id, patch, expectedVersion)
	if err != nil {
		return models.StockView{}, err
	}

	s.logger.Info("stock record updated",
		zap.String("id", updated.ID),
		zap.Int64("version", updated.Version),
		zap.Bool("revalued", patch.TouchesValuation()))
	return s.view(updated), nil
}

// Delete removes a record. Deleting it again reports ErrNotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.stocks.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("stock record deleted", zap.String("id", id))
	return nil
}

func (s *Service) view(rec models.StockRecord) models.StockView {
	return models.StockView{StockRecord: rec, StockLevel: string(s.opts.Thresholds.Classify(rec.Quantity))}
}

func (s *Service) filter(q ListQuery) (models.StockFilter, error) {
	var violations []models.FieldViolation

	f := models.StockFilter{
		Location:         strings.TrimSpace(q.Location),
		LocationContains: strings.TrimSpace(q.LocationContains),
		Name:             strings.TrimSpace(q.Name),
		CategoryID:       strings.TrimSpace(q.CategoryID),
	}

	if status := strings.TrimSpace(q.Status); status != "" {
		level, err := valuation.ParseLevel(status)
		if err != nil {
			violations = append(violations, models.FieldViolation{Field: "status", Message: "must be one of critical, low, normal"})
		} else {
			f.MinQuantity, f.MaxQuantity = s.opts.Thresholds.QuantityRange(level)
		}
	}

	if q.Page < 0 {
		violations = append(violations, models.FieldViolation{Field: "page", Message: "must be at least 1"})
	}
	if q.Limit < 0 {
		violations = append(violations, models.FieldViolation{Field: "limit", Message: "must be at least 1"})
	}
	if len(violations) > 0 {
		return models.StockFilter{}, &models.ValidationError{Violations: violations}
	}

	if q.Page > 0 || q.Limit > 0 {
		f.Page = max(q.Page, 1)
		f.Limit = q.Limit
		if f.Limit == 0 {
			f.Limit = s.opts.DefaultPageSize
		}
		f.Limit = min(f.Limit, s.opts.MaxPageSize)
	}
	return f, nil
}

func (s *Service) checkCategory(ctx context.Context, id string) error {
	if id == "" || s.categories == nil {
		return nil
	}
	if _, err := s.categories.GetByID(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return &models.ValidationError{Violations: []models.FieldViolation{
				{Field: "category_id", Message: "does not reference an existing category"},
			}}
		}
		return err
	}
	return nil
}
