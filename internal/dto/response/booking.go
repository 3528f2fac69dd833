package response

import (
	"time"

	"journey-booking/internal/data/entity"
)

type PassengerSeat struct {
	Name       string `json:"name"`
	SeatNumber int    `json:"seat_number"`
}

type BookingResponse struct {
	ID          string               `json:"id"`
	UserID      string               `json:"user_id"`
	ScheduleID  int64                `json:"schedule_id"`
	JourneyDate time.Time            `json:"journey_date"`
	TotalSeats  int                  `json:"total_seats"`
	Status      entity.BookingStatus `json:"status"`
	Passengers  []PassengerSeat      `json:"passengers,omitempty"`
	CancelledAt *time.Time           `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

type CancellationResponse struct {
	BookingID      string    `json:"booking_id"`
	CancelledAt    time.Time `json:"cancelled_at"`
	RefundEligible bool      `json:"refund_eligible"`
}

type PassengerResponse struct {
	BookingID  string `json:"booking_id"`
	Name       string `json:"name"`
	SeatNumber int    `json:"seat_number"`
}

// Helper converters
func BookingToResponse(booking *entity.Booking, passengers []*entity.Passenger) BookingResponse {
	seats := make([]PassengerSeat, len(passengers))
	for i, p := range passengers {
		seats[i] = PassengerSeat{
			Name:       p.Name,
			SeatNumber: p.SeatNumber,
		}
	}

	return BookingResponse{
		ID:          booking.ID.String(),
		UserID:      booking.UserID,
		ScheduleID:  booking.ScheduleID,
		JourneyDate: booking.JourneyDate,
		TotalSeats:  booking.TotalSeats,
		Status:      booking.Status,
		Passengers:  seats,
		CancelledAt: booking.CancelledAt,
		CreatedAt:   booking.CreatedAt,
	}
}

func PassengerToResponse(p *entity.Passenger) PassengerResponse {
	return PassengerResponse{
		BookingID:  p.BookingID.String(),
		Name:       p.Name,
		SeatNumber: p.SeatNumber,
	}
}
