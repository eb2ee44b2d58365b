package model

import (
	"time"

	"github.com/google/uuid"
)

// Dress is catalogue data, read-only from the contract engine's point of view.
// PriceHT/PriceTTC is the sale price and doubles as the security-deposit
// basis; the daily rates are zero when the dress is not rented per day.
type Dress struct {
	ID            uuid.UUID `gorm:"primaryKey" json:"id"`
	Name          string    `json:"name"`
	Reference     string    `json:"reference"`
	PriceHT       float64   `json:"price_ht"`
	PriceTTC      float64   `json:"price_ttc"`
	DailyPriceHT  float64   `json:"daily_price_ht"`
	DailyPriceTTC float64   `json:"daily_price_ttc"`
	CreatedAt     time.Time `json:"created_at"`
}

// DressRate is a dated rate card row used by the price-quote lookup. A rate
// applies to a dress when the requested range falls inside [ValidFrom, ValidTo).
type DressRate struct {
	ID            uuid.UUID `gorm:"primaryKey" json:"id"`
	DressID       uuid.UUID `gorm:"index" json:"dress_id"`
	ValidFrom     time.Time `json:"valid_from"`
	ValidTo       time.Time `json:"valid_to"`
	DailyPriceHT  float64   `json:"daily_price_ht"`
	DailyPriceTTC float64   `json:"daily_price_ttc"`
}
