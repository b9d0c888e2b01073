package models

import "time"

// LocationSummary aggregates stock records sharing a location tag.
type LocationSummary struct {
	Location      string  `bson:"location" json:"location"`
	TotalQuantity float64 `bson:"total_quantity" json:"total_quantity"`
	TotalValue    float64 `bson:"total_value" json:"total_value"`
	Count         int     `bson:"count" json:"count"`
	AvgUnitPrice  float64 `bson:"avg_unit_price" json:"avg_unit_price"`
}

// Dashboard holds the figures shown on the inventory overview.
type Dashboard struct {
	GeneratedAt    time.Time         `json:"generated_at"`
	RecordCount    int               `json:"record_count"`
	TotalQuantity  float64           `json:"total_quantity"`
	TotalValue     float64           `json:"total_value"`
	LevelCounts    map[string]int    `json:"level_counts"`
	Locations      []LocationSummary `json:"locations"`
	LeastAvailable []StockView       `json:"least_available"`
}
