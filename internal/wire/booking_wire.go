package wire

import (
	"journey-booking/internal/adaptor"
	"journey-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(r chi.Router, bookingHandler *adaptor.BookingHandler, log *zap.Logger) {
	r.Route("/api/bookings", func(r chi.Router) {
		// ==================== SERVICE ROUTES (no caller identity) ====================
		// Consumed by the schedule service before deleting/updating a schedule
		r.Get("/check-schedule/{scheduleId}", bookingHandler.HasActiveBookings)
		r.Get("/schedule/{scheduleId}/passengers", bookingHandler.GetPassengersBySchedule)

		// ==================== USER ROUTES (require identity headers) ====================
		r.Group(func(r chi.Router) {
			r.Use(middleware.Identity(log))

			// POST /api/bookings - Create booking with passenger seats
			r.Post("/", bookingHandler.CreateBooking)

			// PUT /api/bookings/{bookingId}/cancel - Cancel own booking (admin may cancel any)
			r.Put("/{bookingId}/cancel", bookingHandler.CancelBooking)

			// GET /api/bookings/user - Caller's booking history
			r.Get("/user", bookingHandler.GetUserBookings)

			// GET /api/bookings/user/upcoming - Confirmed future journeys, soonest first
			r.Get("/user/upcoming", bookingHandler.GetUpcomingJourneys)
		})

		// ==================== ADMIN ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(middleware.Identity(log))
			r.Use(middleware.Admin(log))

			// GET /api/bookings/admin/all - Every booking in the system
			r.Get("/admin/all", bookingHandler.GetAllBookings)
		})
	})
}
