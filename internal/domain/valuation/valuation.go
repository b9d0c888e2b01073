// Package valuation derives monetary totals and stock-level classes for stock records.
package valuation

import (
	"fmt"
	"strings"
)

// Level is a presentational stock classification.
type Level string

const (
	LevelCritical Level = "critical"
	LevelLow      Level = "low"
	LevelNormal   Level = "normal"
)

// Levels lists every level in ascending order of quantity.
var Levels = []Level{LevelCritical, LevelLow, LevelNormal}

// TotalValue returns quantity * unitPrice.
func TotalValue(quantity, unitPrice float64) float64 {
	return quantity * unitPrice
}

// Thresholds are the quantity bounds separating the stock levels.
// Quantities below Critical are critical, below Low are low, the rest normal.
type Thresholds struct {
	Critical float64
	Low      float64
}

// DefaultThresholds matches the inventory screens: red under 10, orange under 50.
func DefaultThresholds() Thresholds {
	return Thresholds{Critical: 10, Low: 50}
}

// Validate rejects thresholds that would produce overlapping levels.
func (t Thresholds) Validate() error {
	if t.Critical < 0 {
		return fmt.Errorf("critical threshold must not be negative, got %v", t.Critical)
	}
	if t.Low < t.Critical {
		return fmt.Errorf("low threshold %v must not be below critical threshold %v", t.Low, t.Critical)
	}
	return nil
}

// Classify maps a quantity to its level.
func (t Thresholds) Classify(quantity float64) Level {
	switch {
	case quantity < t.Critical:
		return LevelCritical
	case quantity < t.Low:
		return LevelLow
	default:
		return LevelNormal
	}
}

// QuantityRange returns the [min, max) quantity interval of a level. A nil bound is open.
func (t Thresholds) QuantityRange(level Level) (min, max *float64) {
	critical, low := t.Critical, t.Low
	switch level {
	case LevelCritical:
		return nil, &critical
	case LevelLow:
		return &critical, &low
	case LevelNormal:
		return &low, nil
	}
	return nil, nil
}

// ParseLevel accepts a level name in any case.
func ParseLevel(value string) (Level, error) {
	normalized := Level(strings.ToLower(strings.TrimSpace(value)))
	for _, l := range Levels {
		if l == normalized {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown stock level %q", value)
}
