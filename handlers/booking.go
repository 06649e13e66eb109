package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"domostay/models"
	"domostay/services/booking"
	"domostay/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the booking engine's boundary operations over HTTP.
type BookingHandler struct {
	Svc    booking.BookingService
	Logger *zap.Logger
}

func NewBookingHandler(svc booking.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Svc: svc, Logger: logger}
}

// GetAvailabilityHandler answers GET /api/availability?start=&end=&unit=&guests=.
func (h *BookingHandler) GetAvailabilityHandler(c *gin.Context) {
	start, err := parseDate(c.Query("start"))
	if err != nil {
		utils.JSONError(c, http.StatusUnprocessableEntity, "VALIDATION", "invalid start date", err.Error())
		return
	}
	end, err := parseDate(c.Query("end"))
	if err != nil {
		utils.JSONError(c, http.StatusUnprocessableEntity, "VALIDATION", "invalid end date", err.Error())
		return
	}
	guests := 0
	if raw := c.Query("guests"); raw != "" {
		guests, err = strconv.Atoi(raw)
		if err != nil {
			utils.JSONError(c, http.StatusUnprocessableEntity, "VALIDATION", "invalid guests value", err.Error())
			return
		}
	}

	report, err := h.Svc.GetAvailability(c.Request.Context(), booking.AvailabilityQuery{
		Start:      start,
		End:        end,
		UnitFilter: c.Query("unit"),
		GuestCount: guests,
	})
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

type quoteRequest struct {
	UnitID     string   `json:"unitId" binding:"required"`
	GuestCount int      `json:"guestCount" binding:"required"`
	EntryDate  string   `json:"entryDate" binding:"required"`
	ExitDate   string   `json:"exitDate" binding:"required"`
	Addons     []string `json:"addons"`
}

// QuotePriceHandler answers POST /api/pricing/quote.
func (h *BookingHandler) QuotePriceHandler(c *gin.Context) {
	var input quoteRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusUnprocessableEntity, "VALIDATION", "invalid input", err.Error())
		return
	}
	entry, exit, err := parseDatePair(input.EntryDate, input.ExitDate)
	if err != nil {
		utils.JSONError(c, http.StatusUnprocessableEntity, "VALIDATION", "invalid dates", err.Error())
		return
	}

	breakdown, err := h.Svc.QuotePrice(c.Request.Context(), booking.QuoteRequest{
		UnitID:     input.UnitID,
		GuestCount: input.GuestCount,
		EntryDate:  entry,
		ExitDate:   exit,
		Addons:     input.Addons,
	})
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, breakdown)
}

type createReservationRequest struct {
	UnitID        string   `json:"unitId" binding:"required"`
	GuestCount    int      `json:"guestCount" binding:"required"`
	EntryDate     string   `json:"entryDate" binding:"required"`
	ExitDate      string   `json:"exitDate" binding:"required"`
	ContactPhone  string   `json:"contactPhone" binding:"required"`
	ContactEmail  string   `json:"contactEmail"`
	PaymentMethod string   `json:"paymentMethod"`
	Addons        []string `json:"addons"`
	SpecialNotes  string   `json:"specialNotes"`
}

// CreateReservationHandler answers POST /api/reservations.
func (h *BookingHandler) CreateReservationHandler(c *gin.Context) {
	var input createReservationRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusUnprocessableEntity, "VALIDATION", "invalid input", err.Error())
		return
	}
	entry, exit, err := parseDatePair(input.EntryDate, input.ExitDate)
	if err != nil {
		utils.JSONError(c, http.StatusUnprocessableEntity, "VALIDATION", "invalid dates", err.Error())
		return
	}

	reservation, err := h.Svc.CreateReservation(c.Request.Context(), booking.CreateReservationInput{
		UnitID:        input.UnitID,
		GuestCount:    input.GuestCount,
		EntryDate:     entry,
		ExitDate:      exit,
		ContactPhone:  input.ContactPhone,
		ContactEmail:  input.ContactEmail,
		PaymentMethod: input.PaymentMethod,
		Addons:        input.Addons,
		SpecialNotes:  input.SpecialNotes,
	})
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"reservationId": reservation.ID, "totalAmount": reservation.TotalAmount})
}

type updateReservationRequest struct {
	UnitID       *string `json:"unitId"`
	EntryDate    *string `json:"entryDate"`
	ExitDate     *string `json:"exitDate"`
	ContactPhone *string `json:"contactPhone"`
	ContactEmail *string `json:"contactEmail"`
	SpecialNotes *string `json:"specialNotes"`
}

// UpdateReservationHandler answers PATCH /api/reservations/:id.
func (h *BookingHandler) UpdateReservationHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.JSONError(c, http.StatusUnprocessableEntity, "VALIDATION", "invalid reservation id", err.Error())
		return
	}
	var input updateReservationRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusUnprocessableEntity, "VALIDATION", "invalid input", err.Error())
		return
	}

	update := booking.UpdateReservationInput{
		UnitID:       input.UnitID,
		ContactPhone: input.ContactPhone,
		ContactEmail: input.ContactEmail,
		SpecialNotes: input.SpecialNotes,
	}
	if input.EntryDate != nil {
		d, err := parseDate(*input.EntryDate)
		if err != nil {
			utils.JSONError(c, http.StatusUnprocessableEntity, "VALIDATION", "invalid entry date", err.Error())
			return
		}
		update.EntryDate = &d
	}
	if input.ExitDate != nil {
		d, err := parseDate(*input.ExitDate)
		if err != nil {
			utils.JSONError(c, http.StatusUnprocessableEntity, "VALIDATION", "invalid exit date", err.Error())
			return
		}
		update.ExitDate = &d
	}

	reservation, err := h.Svc.UpdateReservation(c.Request.Context(), uint(id), update)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, reservation)
}

// CancelReservationHandler answers DELETE /api/reservations/:id.
func (h *BookingHandler) CancelReservationHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.JSONError(c, http.StatusUnprocessableEntity, "VALIDATION", "invalid reservation id", err.Error())
		return
	}
	if err := h.Svc.CancelReservation(c.Request.Context(), uint(id)); err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// ListReservationsHandler answers GET /api/reservations.
func (h *BookingHandler) ListReservationsHandler(c *gin.Context) {
	reservations, err := h.Svc.ListReservations(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservations": reservations})
}

// ReservationStatsHandler answers GET /api/reservations/stats.
func (h *BookingHandler) ReservationStatsHandler(c *gin.Context) {
	stats, err := h.Svc.ReservationStats(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListUnitsHandler answers GET /api/units.
func (h *BookingHandler) ListUnitsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"units": h.Svc.Units()})
}

// writeServiceError maps the error taxonomy onto transport statuses, keeping
// "pick different dates" distinguishable from "try again shortly".
func (h *BookingHandler) writeServiceError(c *gin.Context, err error) {
	var validation *booking.ValidationError
	var conflict *booking.ConflictError
	var notFound *booking.NotFoundError
	var transient *booking.TransientError

	switch {
	case errors.As(err, &validation):
		utils.JSONError(c, http.StatusUnprocessableEntity, "VALIDATION", validation.Reason, validation.Field)
	case errors.As(err, &conflict):
		utils.JSONError(c, http.StatusConflict, string(conflict.Kind),
			"the requested dates are no longer available", conflict.UnitID)
	case errors.As(err, &notFound):
		utils.JSONError(c, http.StatusNotFound, "NOT_FOUND", notFound.Error(), "")
	case errors.As(err, &transient):
		utils.JSONError(c, http.StatusServiceUnavailable, "TRANSIENT",
			"temporary storage failure, try again shortly", "")
	default:
		h.Logger.Error("unclassified booking failure", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "INTERNAL", "internal error", "")
	}
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse(models.DateLayout, raw)
}

func parseDatePair(entry, exit string) (time.Time, time.Time, error) {
	entryDate, err := parseDate(entry)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	exitDate, err := parseDate(exit)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return entryDate, exitDate, nil
}
