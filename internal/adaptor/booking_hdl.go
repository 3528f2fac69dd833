package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"

	"journey-booking/internal/dto/request"
	"journey-booking/internal/usecase"
	"journey-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service usecase.BookingService
	query   usecase.BookingQueryService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, query usecase.BookingQueryService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		query:   query,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// CreateBooking handles POST /api/bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	booking, err := h.service.CreateBooking(r.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(w, err, "create booking")
		return
	}

	utils.ResponseCreated(w, "success", booking)
}

// CancelBooking handles PUT /api/bookings/{bookingId}/cancel
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}
	role, _ := utils.GetRoleFromContext(r.Context())

	bookingID := chi.URLParam(r, "bookingId")
	if bookingID == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	cancellation, err := h.service.CancelBooking(r.Context(), bookingID, userID, role)
	if err != nil {
		h.handleServiceError(w, err, "cancel booking")
		return
	}

	utils.ResponseSuccess(w, "success", cancellation)
}

// GetAllBookings handles GET /api/bookings/admin/all (admin only)
func (h *BookingHandler) GetAllBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.query.GetAllBookings(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "get all bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// GetUserBookings handles GET /api/bookings/user
func (h *BookingHandler) GetUserBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	bookings, err := h.query.GetUserBookings(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err, "get user bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// GetUpcomingJourneys handles GET /api/bookings/user/upcoming
func (h *BookingHandler) GetUpcomingJourneys(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	bookings, err := h.query.GetUpcomingJourneys(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err, "get upcoming journeys")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// HasActiveBookings handles GET /api/bookings/check-schedule/{scheduleId}.
// Used by the schedule service to gate schedule deletion.
func (h *BookingHandler) HasActiveBookings(w http.ResponseWriter, r *http.Request) {
	scheduleID, ok := utils.ParseInt64(chi.URLParam(r, "scheduleId"))
	if !ok {
		utils.ResponseBadRequest(w, "Invalid schedule ID", nil)
		return
	}

	active, err := h.service.HasActiveBookingsBySchedule(r.Context(), scheduleID)
	if err != nil {
		h.handleServiceError(w, err, "check active bookings")
		return
	}

	utils.ResponseSuccess(w, "success", active)
}

// GetPassengersBySchedule handles GET /api/bookings/schedule/{scheduleId}/passengers
func (h *BookingHandler) GetPassengersBySchedule(w http.ResponseWriter, r *http.Request) {
	scheduleID, ok := utils.ParseInt64(chi.URLParam(r, "scheduleId"))
	if !ok {
		utils.ResponseBadRequest(w, "Invalid schedule ID", nil)
		return
	}

	passengers, err := h.query.GetPassengersBySchedule(r.Context(), scheduleID)
	if err != nil {
		h.handleServiceError(w, err, "get schedule passengers")
		return
	}

	utils.ResponseSuccess(w, "success", passengers)
}

// handleServiceError maps the error taxonomy to HTTP statuses
func (h *BookingHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, usecase.ErrValidation):
		h.log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrSeatConflict):
		h.log.Warn(operation+" failed - seat conflict", zap.Error(err))
		utils.ResponseConflict(w, err.Error())

	case errors.Is(err, usecase.ErrNotFound):
		h.log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrForbidden):
		h.log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, err.Error())

	case errors.Is(err, usecase.ErrInvalidState):
		h.log.Warn(operation+" failed - invalid state", zap.Error(err))
		utils.ResponseUnprocessable(w, err.Error())

	case errors.Is(err, usecase.ErrStorageUnavailable):
		h.log.Error("Failed to "+operation+" - storage unavailable", zap.Error(err))
		utils.ResponseServiceUnavailable(w, "Storage temporarily unavailable, retry the request")

	default:
		h.log.Error("Failed to "+operation, zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
