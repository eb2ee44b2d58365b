package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lmarchal/robeo-contracts/internal/money"
	"github.com/lmarchal/robeo-contracts/internal/pricing"
	"github.com/lmarchal/robeo-contracts/internal/repository"
)

// QuoteService prices a dress over a date range from the dated rate cards.
// A missing rate is a normal outcome: the pricing calculator falls back to
// the dress's static fields.
type QuoteService struct {
	catalog *repository.CatalogRepository
}

func NewQuoteService(catalog *repository.CatalogRepository) *QuoteService {
	return &QuoteService{catalog: catalog}
}

func (s *QuoteService) QuotePrice(ctx context.Context, dressID uuid.UUID, start, end time.Time) (*pricing.Quote, error) {
	if dressID == uuid.Nil {
		return nil, fmt.Errorf("%w: dress id is required", ErrInvalidInput)
	}
	rate, err := s.catalog.FindRate(ctx, dressID, start, end)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteUnavailable
		}
		return nil, err
	}

	days := money.RentalDays(start, end)
	return &pricing.Quote{
		FinalPriceHT:  rate.DailyPriceHT * float64(days),
		FinalPriceTTC: rate.DailyPriceTTC * float64(days),
		DurationDays:  days,
	}, nil
}
