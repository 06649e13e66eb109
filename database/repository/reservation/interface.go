package reservationRepo

import (
	"context"
	"time"

	"domostay/models"
)

// ReservationRepository defines data access for reservation rows. Intersecting
// uses the standard half-open interval test (entry_date < end AND
// exit_date > start); an empty unitID means all units.
type ReservationRepository interface {
	Create(ctx context.Context, r *models.Reservation) error
	GetByID(ctx context.Context, id uint) (*models.Reservation, error)
	Save(ctx context.Context, r *models.Reservation) error
	Delete(ctx context.Context, id uint) error
	ListAll(ctx context.Context) ([]models.Reservation, error)
	Intersecting(ctx context.Context, unitID string, start, end time.Time) ([]models.Reservation, error)
	Stats(ctx context.Context) (*models.ReservationStats, error)

	// InTx runs fn inside one atomic transaction; the repository passed to fn
	// operates on that transaction. Rolling back on error is guaranteed.
	InTx(ctx context.Context, fn func(txRepo ReservationRepository) error) error
}
