package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unit is the selling unit of a product.
type Unit string

const (
	UnitOyster Unit = "oyster"
	UnitDozen  Unit = "dozen"
	UnitPiece  Unit = "piece"
	UnitPound  Unit = "pound"
)

// DefaultBasePrice applies when a product is created without a price.
var DefaultBasePrice = decimal.RequireFromString("0.80")

// Product is a sellable item. Products are deactivated, never deleted, once referenced.
type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	BasePrice   decimal.Decimal `json:"base_price"`
	Unit        Unit            `json:"unit"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductRef points at a product by id on write paths.
type ProductRef struct {
	ID int `json:"id" validate:"required,gt=0"`
}

// ProductInput creates or replaces a product. A nil BasePrice means the default.
type ProductInput struct {
	Name        string           `json:"name" validate:"required,max=120"`
	Description string           `json:"description" validate:"max=1000"`
	BasePrice   *decimal.Decimal `json:"base_price" validate:"omitempty,gte=0"`
	Unit        Unit             `json:"unit" validate:"omitempty,oneof=oyster dozen piece pound"`
	IsActive    *bool            `json:"is_active"`
}

func (in ProductInput) basePrice() decimal.Decimal {
	if in.BasePrice == nil {
		return DefaultBasePrice
	}
	return in.BasePrice.Round(2)
}

func (in ProductInput) unit() Unit {
	if in.Unit == "" {
		return UnitOyster
	}
	return in.Unit
}
