package models

import "time"

// StockRecord is a persisted quantity of a tracked item at a location.
type StockRecord struct {
	ID          string    `bson:"-" json:"id"`
	Name        string    `bson:"name" json:"name"`
	LocationTag string    `bson:"location_tag" json:"location_tag"`
	Quantity    float64   `bson:"quantity" json:"quantity"`
	UnitPrice   float64   `bson:"unit_price" json:"unit_price"`
	TotalValue  float64   `bson:"total_value" json:"total_value"`
	Notes       string    `bson:"notes,omitempty" json:"notes,omitempty"`
	RecordedBy  string    `bson:"recorded_by" json:"recorded_by"`
	CategoryID  string    `bson:"category_id,omitempty" json:"category_id,omitempty"`
	Version     int64     `bson:"version" json:"version"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// StockInput is the client-supplied payload for a new stock record.
type StockInput struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	LocationTag string  `json:"location_tag" validate:"required,location"`
	Quantity    float64 `json:"quantity" validate:"finite,gte=0.01,lte=1000000"`
	UnitPrice   float64 `json:"unit_price" validate:"finite,gte=0.01,lte=100000"`
	Notes       string  `json:"notes" validate:"max=500"`
	CategoryID  string  `json:"category_id" validate:"omitempty,mongodb"`
}

// StockPatch carries a partial update. Nil fields are left untouched.
type StockPatch struct {
	Name        *string  `json:"name,omitempty"`
	LocationTag *string  `json:"location_tag,omitempty"`
	Quantity    *float64 `json:"quantity,omitempty"`
	UnitPrice   *float64 `json:"unit_price,omitempty"`
	Notes       *string  `json:"notes,omitempty"`
	CategoryID  *string  `json:"category_id,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p StockPatch) IsEmpty() bool {
	return p.Name == nil && p.LocationTag == nil && p.Quantity == nil &&
		p.UnitPrice == nil && p.Notes == nil && p.CategoryID == nil
}

// TouchesValuation reports whether applying the patch changes total_value operands.
func (p StockPatch) TouchesValuation() bool {
	return p.Quantity != nil || p.UnitPrice != nil
}

// StockView is a record as returned to clients, with its presentational stock level.
type StockView struct {
	StockRecord
	StockLevel string `json:"stock_level"`
}

// StockFilter narrows a stock listing.
type StockFilter struct {
	Location         string
	LocationContains string
	Name             string
	CategoryID       string

	// MinQuantity is inclusive, MaxQuantity exclusive. Both are derived from a stock level.
	MinQuantity *float64
	MaxQuantity *float64

	Page  int
	Limit int
}

// Offset returns the number of matching records to skip for the requested page.
func (f StockFilter) Offset() int {
	if f.Limit <= 0 || f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}
