package domain

import (
	"context"
	"time"
)

// Category is the seeded lookup table. Products store category as free text;
// this table only feeds pick-lists and does not constrain product rows.
type Category struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:text;not null;uniqueIndex:ux_categories_name"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Category) TableName() string { return "categories" }

// DefaultNames seeds the lookup table on first migration.
var DefaultNames = []string{
	"Electronics",
	"Groceries",
	"Stationery",
	"Clothing",
	"Hardware",
}

type Response struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Service interface {
	List(ctx context.Context) ([]Response, error)
}
