package models

import "time"

// Category groups stock records. ProductCount is computed on read.
type Category struct {
	ID           string    `bson:"-" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Description  string    `bson:"description" json:"description"`
	ProductCount int64     `bson:"-" json:"product_count"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// CategoryInput is the payload for creating or replacing a category.
type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}
