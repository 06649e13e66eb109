package booking

import (
	"context"
	"database/sql/driver"
	"errors"
	"strconv"
	"strings"
	"time"

	reservationRepo "domostay/database/repository/reservation"
	"domostay/models"
	"domostay/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateReservationInput is the already-parsed payload supplied by the
// dialogue or HTTP layer. Dates are calendar days; free-text parsing is the
// caller's problem.
type CreateReservationInput struct {
	UnitID        string
	GuestCount    int
	EntryDate     time.Time
	ExitDate      time.Time
	ContactPhone  string
	ContactEmail  string
	PaymentMethod string
	Addons        []string
	SpecialNotes  string
}

// UpdateReservationInput carries the administrative update path. Nil fields
// are left untouched. Changing the unit or either date re-runs the same
// overlap check as creation.
type UpdateReservationInput struct {
	UnitID       *string
	EntryDate    *time.Time
	ExitDate     *time.Time
	ContactPhone *string
	ContactEmail *string
	SpecialNotes *string
}

// CreateReservation commits a new reservation. All checks that matter run
// inside one store transaction: the overlap re-check against committed state
// closes the gap between an earlier availability quote and this commit, and
// the store's unique and exclusion constraints are the last line of defense
// against a concurrent transaction sneaking in after the re-check. Conflicts
// are never retried; the caller must be told someone else took the slot.
func (s *DefaultBookingService) CreateReservation(ctx context.Context, in CreateReservationInput) (*models.Reservation, error) {
	logger := utils.GetLogger()

	unit, err := s.validateCreateInput(in)
	if err != nil {
		return nil, err
	}
	entry, exit := models.Day(in.EntryDate), models.Day(in.ExitDate)

	// Price at commit time; the persisted total is never recomputed later.
	breakdown, err := s.Quote(QuoteRequest{
		UnitID:     in.UnitID,
		GuestCount: in.GuestCount,
		EntryDate:  entry,
		ExitDate:   exit,
		Addons:     in.Addons,
	})
	if err != nil {
		return nil, err
	}

	reservation := &models.Reservation{
		UnitID:        unit.ID,
		ContactPhone:  in.ContactPhone,
		ContactEmail:  in.ContactEmail,
		GuestCount:    in.GuestCount,
		EntryDate:     entry,
		ExitDate:      exit,
		PaymentMethod: in.PaymentMethod,
		Addons:        models.JoinAddons(in.Addons),
		TotalAmount:   breakdown.TotalAmount,
		SpecialNotes:  in.SpecialNotes,
	}

	err = s.withRetry(ctx, func() error {
		return s.Repo.InTx(ctx, func(tx reservationRepo.ReservationRepository) error {
			existing, err := tx.Intersecting(ctx, unit.ID, entry, exit)
			if err != nil {
				return err
			}
			if len(existing) > 0 {
				kind := ConflictOverlap
				for _, r := range existing {
					if r.ContactPhone == in.ContactPhone &&
						r.EntryDate.Equal(entry) && r.ExitDate.Equal(exit) {
						kind = ConflictDuplicate
						break
					}
				}
				return &ConflictError{Kind: kind, UnitID: unit.ID}
			}
			if err := tx.Create(ctx, reservation); err != nil {
				return translateConstraintError(err, unit.ID)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, unit.ID, entry, exit)
	logger.Info("reservation committed",
		zap.Uint("reservationID", reservation.ID),
		zap.String("unitID", unit.ID),
		zap.String("entryDate", entry.Format(models.DateLayout)),
		zap.String("exitDate", exit.Format(models.DateLayout)),
		zap.Int64("totalAmount", reservation.TotalAmount))
	return reservation, nil
}

// UpdateReservation applies the administrative edit path. Identity fields
// (unit, dates) go through the same transactional overlap check as creation,
// excluding the reservation's own row.
func (s *DefaultBookingService) UpdateReservation(ctx context.Context, id uint, in UpdateReservationInput) (*models.Reservation, error) {
	var updated *models.Reservation
	var oldUnit string
	var oldEntry, oldExit time.Time

	err := s.withRetry(ctx, func() error {
		return s.Repo.InTx(ctx, func(tx reservationRepo.ReservationRepository) error {
			current, err := tx.GetByID(ctx, id)
			if err != nil {
				return err
			}
			oldUnit, oldEntry, oldExit = current.UnitID, current.EntryDate, current.ExitDate

			if in.UnitID != nil {
				unit, err := s.Catalog.Lookup(*in.UnitID)
				if err != nil {
					return err
				}
				// The stored guest count must still fit the new unit.
				if err := validateGuestCount(unit, current.GuestCount); err != nil {
					return err
				}
				current.UnitID = unit.ID
			}
			if in.EntryDate != nil {
				current.EntryDate = models.Day(*in.EntryDate)
			}
			if in.ExitDate != nil {
				current.ExitDate = models.Day(*in.ExitDate)
			}
			if in.ContactPhone != nil {
				current.ContactPhone = *in.ContactPhone
			}
			if in.ContactEmail != nil {
				current.ContactEmail = *in.ContactEmail
			}
			if in.SpecialNotes != nil {
				current.SpecialNotes = *in.SpecialNotes
			}

			if !current.ExitDate.After(current.EntryDate) {
				return NewValidationError("dates", "exit date must be after entry date")
			}

			identityChanged := current.UnitID != oldUnit ||
				!current.EntryDate.Equal(oldEntry) || !current.ExitDate.Equal(oldExit)
			if identityChanged {
				existing, err := tx.Intersecting(ctx, current.UnitID, current.EntryDate, current.ExitDate)
				if err != nil {
					return err
				}
				for _, r := range existing {
					if r.ID != current.ID {
						return &ConflictError{Kind: ConflictOverlap, UnitID: current.UnitID}
					}
				}
			}

			if err := tx.Save(ctx, current); err != nil {
				return translateConstraintError(err, current.UnitID)
			}
			updated = current
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, reservationRepo.ErrNotFound) {
			return nil, &NotFoundError{Resource: "reservation", ID: itoa(id)}
		}
		return nil, err
	}

	s.invalidateCache(ctx, oldUnit, oldEntry, oldExit)
	s.invalidateCache(ctx, updated.UnitID, updated.EntryDate, updated.ExitDate)
	return updated, nil
}

// CancelReservation deletes a reservation and frees its dates.
func (s *DefaultBookingService) CancelReservation(ctx context.Context, id uint) error {
	reservation, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrNotFound) {
			return &NotFoundError{Resource: "reservation", ID: itoa(id)}
		}
		return s.classifyStoreError(err)
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, reservationRepo.ErrNotFound) {
			return &NotFoundError{Resource: "reservation", ID: itoa(id)}
		}
		return s.classifyStoreError(err)
	}
	s.invalidateCache(ctx, reservation.UnitID, reservation.EntryDate, reservation.ExitDate)
	utils.GetLogger().Info("reservation cancelled",
		zap.Uint("reservationID", id), zap.String("unitID", reservation.UnitID))
	return nil
}

// validateCreateInput rejects malformed payloads before anything touches the
// store.
func (s *DefaultBookingService) validateCreateInput(in CreateReservationInput) (models.Unit, error) {
	unit, err := s.Catalog.Lookup(in.UnitID)
	if err != nil {
		return models.Unit{}, err
	}
	if err := validateGuestCount(unit, in.GuestCount); err != nil {
		return models.Unit{}, err
	}
	entry, exit := models.Day(in.EntryDate), models.Day(in.ExitDate)
	if in.EntryDate.IsZero() || in.ExitDate.IsZero() {
		return models.Unit{}, NewValidationError("dates", "entry and exit dates are required")
	}
	if !exit.After(entry) {
		return models.Unit{}, NewValidationError("dates", "minimum stay is one night")
	}
	if strings.TrimSpace(in.ContactPhone) == "" {
		return models.Unit{}, NewValidationError("contactPhone", "contact phone is required")
	}
	for _, id := range in.Addons {
		if _, ok := resolveAddon(id, in.GuestCount); !ok {
			return models.Unit{}, NewValidationError("addons", "unknown add-on: "+id)
		}
	}
	return unit, nil
}

// withRetry retries fn a small bounded number of times on transient store
// failures, with linear backoff. Conflicts and validation failures pass
// through untouched. Each attempt is all-or-nothing, so exhausting retries
// still guarantees no partial row was committed.
func (s *DefaultBookingService) withRetry(ctx context.Context, fn func() error) error {
	maxAttempts := s.MaxRetries
	if maxAttempts < 1 {
		maxAttempts = 3
	}
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn()
		if err == nil || !isTransient(err) {
			return err
		}
		utils.GetLogger().Warn("transient store failure, retrying",
			zap.Int("attempt", attempt), zap.Error(err))
		if attempt < maxAttempts {
			select {
			case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
			case <-ctx.Done():
				return &TransientError{Err: ctx.Err()}
			}
		}
	}
	return &TransientError{Err: err}
}

// translateConstraintError turns store constraint violations into the typed
// conflict they represent: a unique-index hit is the duplicate-submission
// guard, a range exclusion hit means a concurrent transaction committed an
// overlapping stay between the re-check and this insert.
func translateConstraintError(err error, unitID string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &ConflictError{Kind: ConflictDuplicate, UnitID: unitID}
	}
	msg := err.Error()
	if strings.Contains(msg, "23P01") || strings.Contains(msg, "exclusion constraint") {
		return &ConflictError{Kind: ConflictOverlap, UnitID: unitID}
	}
	if strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "23505") {
		return &ConflictError{Kind: ConflictDuplicate, UnitID: unitID}
	}
	return err
}

// classifyStoreError wraps infrastructure failures as transient; everything
// else is passed through for the taxonomy handling above.
func (s *DefaultBookingService) classifyStoreError(err error) error {
	if err == nil {
		return nil
	}
	if isTransient(err) {
		return &TransientError{Err: err}
	}
	return err
}

// isTransient matches the connection-loss and timeout class of store errors.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	var conflict *ConflictError
	var validation *ValidationError
	var notFound *NotFoundError
	if errors.As(err, &conflict) || errors.As(err, &validation) || errors.As(err, &notFound) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := err.Error()
	for _, marker := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"i/o timeout",
		"too many connections",
		"database is locked",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
