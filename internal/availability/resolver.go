// Package availability answers "can these dresses be booked for this range"
// against an external booking source, with a fail-open policy: the server
// enforces real conflicts at booking creation, so an unreachable source must
// degrade to "available" instead of blocking the flow.
package availability

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Source is the range-overlap query over existing non-cancelled bookings.
// The returned set contains the dress ids occupied somewhere in [start, end).
type Source interface {
	ListBooked(ctx context.Context, start, end time.Time) (map[uuid.UUID]bool, error)
}

// Result maps each requested dress to its availability for the range.
// Degraded marks a fail-open answer: the source failed and every dress was
// reported available as a non-fatal warning.
type Result struct {
	ByDress  map[uuid.UUID]bool `json:"by_dress"`
	Degraded bool               `json:"degraded"`
}

// AllAvailable is the package-mode gate: one unavailable dress marks the
// whole draft unavailable.
func (r Result) AllAvailable() bool {
	for _, ok := range r.ByDress {
		if !ok {
			return false
		}
	}
	return true
}

type Resolver struct {
	source Source
}

func NewResolver(source Source) *Resolver {
	return &Resolver{source: source}
}

// Check resolves availability for every requested dress over [start, end).
// Source failures fail open (all available, Degraded set); only context
// cancellation surfaces as an error.
func (r *Resolver) Check(ctx context.Context, dressIDs []uuid.UUID, start, end time.Time) (Result, error) {
	result := Result{ByDress: make(map[uuid.UUID]bool, len(dressIDs))}

	booked, err := r.source.ListBooked(ctx, start, end)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Result{}, err
		}
		for _, id := range dressIDs {
			result.ByDress[id] = true
		}
		result.Degraded = true
		return result, nil
	}

	for _, id := range dressIDs {
		result.ByDress[id] = !booked[id]
	}
	return result, nil
}

// ReservedToday answers the "reserved today" badge over the fixed range
// [today 00:00, today 23:59:59]. Display only; it never gates submission and
// ignores any user-chosen range.
func (r *Resolver) ReservedToday(ctx context.Context, dressIDs []uuid.UUID, now time.Time) (Result, error) {
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	end := start.Add(24*time.Hour - time.Second)

	res, err := r.Check(ctx, dressIDs, start, end)
	if err != nil {
		return Result{}, err
	}
	// Invert: the badge reports reservation, not availability.
	reserved := Result{ByDress: make(map[uuid.UUID]bool, len(res.ByDress)), Degraded: res.Degraded}
	for id, available := range res.ByDress {
		reserved.ByDress[id] = !available
	}
	return reserved, nil
}
