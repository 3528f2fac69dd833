package request

import "time"

type PassengerRequest struct {
	Name       string `json:"name" validate:"required,max=120"`
	SeatNumber int    `json:"seat_number" validate:"required,gt=0"`
}

type CreateBookingRequest struct {
	ScheduleID  int64              `json:"schedule_id" validate:"required,gt=0"`
	JourneyDate time.Time          `json:"journey_date" validate:"required"`
	Passengers  []PassengerRequest `json:"passengers" validate:"required,min=1,dive"`
}
