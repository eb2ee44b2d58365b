package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lmarchal/robeo-contracts/internal/model"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// ListBooked returns the dress ids occupied by a non-cancelled booking
// overlapping [start, end). Implements availability.Source.
func (r *BookingRepository) ListBooked(ctx context.Context, start, end time.Time) (map[uuid.UUID]bool, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("status <> ?", model.BookingStatusCancelled).
		Where("start_at < ? AND end_at > ?", end, start).
		Distinct().
		Pluck("dress_id", &ids).Error
	if err != nil {
		return nil, err
	}
	booked := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		booked[id] = true
	}
	return booked, nil
}

// CreateForContract blocks the contract's dresses for its period.
func (r *BookingRepository) CreateForContract(ctx context.Context, tx *gorm.DB, contract *model.Contract) error {
	db := tx
	if db == nil {
		db = r.db.WithContext(ctx)
	}
	for _, dressID := range contract.DressIDs {
		booking := model.Booking{
			ID:         uuid.New(),
			DressID:    dressID,
			ContractID: &contract.ID,
			StartAt:    contract.StartAt,
			EndAt:      contract.EndAt,
			Status:     model.BookingStatusConfirmed,
			CreatedAt:  time.Now().UTC(),
		}
		if err := db.Create(&booking).Error; err != nil {
			return err
		}
	}
	return nil
}
