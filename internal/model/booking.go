package model

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusActive    BookingStatus = "ACTIVE"
	BookingStatusReturned  BookingStatus = "RETURNED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// Booking is an existing rental occupying a dress for a period. Cancelled
// bookings do not block availability.
type Booking struct {
	ID         uuid.UUID     `gorm:"primaryKey" json:"id"`
	DressID    uuid.UUID     `gorm:"index" json:"dress_id"`
	ContractID *uuid.UUID    `json:"contract_id,omitempty"`
	StartAt    time.Time     `json:"start_at"`
	EndAt      time.Time     `json:"end_at"`
	Status     BookingStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
}
