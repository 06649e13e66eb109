package booking

import (
	"context"
	"time"

	reservationRepo "domostay/database/repository/reservation"
	"domostay/models"
)

// BookingService is the boundary the dialogue and HTTP layers consume. They
// never touch the store directly.
type BookingService interface {
	GetAvailability(ctx context.Context, q AvailabilityQuery) (*models.PerDayReport, error)
	QuotePrice(ctx context.Context, req QuoteRequest) (*models.PriceBreakdown, error)
	CreateReservation(ctx context.Context, in CreateReservationInput) (*models.Reservation, error)
	UpdateReservation(ctx context.Context, id uint, in UpdateReservationInput) (*models.Reservation, error)
	CancelReservation(ctx context.Context, id uint) error
	ListReservations(ctx context.Context) ([]models.Reservation, error)
	ReservationStats(ctx context.Context) (*models.ReservationStats, error)
	Units() []models.Unit
}

// DefaultBookingService wires the calculator, pricing engine and coordinator
// over the reservation store. Cache may be nil; availability then always hits
// the store.
type DefaultBookingService struct {
	Repo       reservationRepo.ReservationRepository
	Catalog    *Catalog
	Cache      AvailabilityCache
	MaxRetries int
}

// GetAvailability answers an availability query, read-through over the cache.
// The commit path never uses this; it re-checks the store inside its own
// transaction.
func (s *DefaultBookingService) GetAvailability(ctx context.Context, q AvailabilityQuery) (*models.PerDayReport, error) {
	q = q.normalize()
	if err := q.validate(s.Catalog); err != nil {
		return nil, err
	}

	if s.Cache != nil {
		if report, ok := s.Cache.Get(ctx, q); ok {
			return report, nil
		}
	}

	report, err := s.computeAvailability(ctx, q)
	if err != nil {
		return nil, err
	}
	if s.Cache != nil {
		s.Cache.Set(ctx, q, report)
	}
	return report, nil
}

// computeAvailability loads intersecting reservations and runs the pure
// calculator. It reads the store directly, bypassing the cache.
func (s *DefaultBookingService) computeAvailability(ctx context.Context, q AvailabilityQuery) (*models.PerDayReport, error) {
	units := filterUnits(s.Catalog.Units(), q)
	if !q.Start.Before(q.End) || len(units) == 0 {
		return buildPerDayReport(q, units, nil), nil
	}
	reservations, err := s.Repo.Intersecting(ctx, q.UnitFilter, q.Start, q.End)
	if err != nil {
		return nil, s.classifyStoreError(err)
	}
	return buildPerDayReport(q, units, reservations), nil
}

// QuotePrice exposes the pricing engine at the service boundary.
func (s *DefaultBookingService) QuotePrice(_ context.Context, req QuoteRequest) (*models.PriceBreakdown, error) {
	return s.Quote(req)
}

func (s *DefaultBookingService) ListReservations(ctx context.Context) ([]models.Reservation, error) {
	out, err := s.Repo.ListAll(ctx)
	if err != nil {
		return nil, s.classifyStoreError(err)
	}
	return out, nil
}

func (s *DefaultBookingService) ReservationStats(ctx context.Context) (*models.ReservationStats, error) {
	stats, err := s.Repo.Stats(ctx)
	if err != nil {
		return nil, s.classifyStoreError(err)
	}
	return stats, nil
}

func (s *DefaultBookingService) Units() []models.Unit {
	return s.Catalog.Units()
}

func (s *DefaultBookingService) invalidateCache(ctx context.Context, unitID string, entry, exit time.Time) {
	if s.Cache != nil {
		s.Cache.Invalidate(ctx, unitID, entry, exit)
	}
}
